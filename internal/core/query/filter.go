package query

import (
	"strings"

	"github.com/penwyp/go-virus-feed/internal/core/model"
)

// Filter returns the records whose title contains q, ignoring case. Input order
// is kept and the input slice is never modified. An empty query matches every
// record.
func Filter(reps []model.DetailRecord, q string) []model.DetailRecord {
	needle := strings.ToLower(q)
	view := make([]model.DetailRecord, 0, len(reps))

	for _, rep := range reps {
		if strings.Contains(strings.ToLower(rep.Title), needle) {
			view = append(view, rep)
		}
	}

	return view
}
