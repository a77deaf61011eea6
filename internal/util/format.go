package util

import (
	"fmt"
	"math"
)

// FormatMinutes renders an elapsed time in minutes as "2h 05m" or "45m".
// Non-finite values render as "n/a".
func FormatMinutes(minutes float64) string {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return "n/a"
	}
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	total := int(math.Round(minutes))
	hours := total / 60
	rest := total % 60

	if hours > 0 {
		return fmt.Sprintf("%s%dh %02dm", sign, hours, rest)
	}
	return fmt.Sprintf("%s%dm", sign, rest)
}

// FormatReach renders a reach value; missing values render as "-".
func FormatReach(reach float64) string {
	if math.IsNaN(reach) {
		return "-"
	}
	if reach == math.Trunc(reach) && !math.IsInf(reach, 0) {
		return fmt.Sprintf("%d", int64(reach))
	}
	return fmt.Sprintf("%.1f", reach)
}

// FormatOpacity renders an opacity in [0, 1] with one decimal.
func FormatOpacity(opacity float64) string {
	return fmt.Sprintf("%.1f", opacity)
}
