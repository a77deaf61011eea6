// Package screen emulates enough of a VT100 terminal to inspect what the
// terminal browser draws.
package screen

import (
	"regexp"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
)

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

// StripANSI removes all CSI escape sequences from s
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// Screen is a virtual terminal. It implements io.Writer so a display can
// draw into it directly.
type Screen struct {
	mu      sync.Mutex
	rows    int
	cols    int
	buffer  [][]rune
	cursorX int
	cursorY int
	alt     bool
	pending []rune // incomplete escape sequence from the last write
}

// New creates a blank screen of cols x rows cells
func New(cols, rows int) *Screen {
	s := &Screen{rows: rows, cols: cols}
	s.buffer = make([][]rune, rows)
	for i := range s.buffer {
		s.buffer[i] = blankRow(cols)
	}
	return s
}

func blankRow(cols int) []rune {
	row := make([]rune, cols)
	for i := range row {
		row[i] = ' '
	}
	return row
}

// Write interprets p as terminal output
func (s *Screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runes := append(s.pending, []rune(string(p))...)
	s.pending = nil

	for i := 0; i < len(runes); {
		switch r := runes[i]; r {
		case '\x1b':
			next, ok := s.escape(runes, i)
			if !ok {
				s.pending = append([]rune(nil), runes[i:]...)
				return len(p), nil
			}
			i = next
			continue
		case '\r':
			s.cursorX = 0
		case '\n':
			s.cursorX = 0
			s.lineFeed()
		case '\b':
			if s.cursorX > 0 {
				s.cursorX--
			}
		default:
			s.put(r)
		}
		i++
	}
	return len(p), nil
}

// escape handles the sequence starting at runes[start] and returns the
// index after it. ok is false when the sequence is cut off.
func (s *Screen) escape(runes []rune, start int) (int, bool) {
	if start+1 >= len(runes) {
		return 0, false
	}
	if runes[start+1] != '[' {
		return start + 2, true
	}

	private := false
	var params []int
	current, hasCurrent := 0, false
	for i := start + 2; i < len(runes); i++ {
		switch r := runes[i]; {
		case r == '?':
			private = true
		case r >= '0' && r <= '9':
			current = current*10 + int(r-'0')
			hasCurrent = true
		case r == ';':
			params = append(params, current)
			current, hasCurrent = 0, false
		default:
			if hasCurrent {
				params = append(params, current)
			}
			s.command(r, params, private)
			return i + 1, true
		}
	}
	return 0, false
}

func param(params []int, i, def int) int {
	if i < len(params) && params[i] > 0 {
		return params[i]
	}
	return def
}

func (s *Screen) command(cmd rune, params []int, private bool) {
	if private {
		if cmd == 'h' && param(params, 0, 0) == 1049 {
			s.alt = true
		}
		if cmd == 'l' && param(params, 0, 0) == 1049 {
			s.alt = false
		}
		return
	}

	switch cmd {
	case 'H', 'f':
		s.cursorY = clamp(param(params, 0, 1)-1, 0, s.rows-1)
		s.cursorX = clamp(param(params, 1, 1)-1, 0, s.cols-1)
	case 'A':
		s.cursorY = clamp(s.cursorY-param(params, 0, 1), 0, s.rows-1)
	case 'B':
		s.cursorY = clamp(s.cursorY+param(params, 0, 1), 0, s.rows-1)
	case 'C':
		s.cursorX = clamp(s.cursorX+param(params, 0, 1), 0, s.cols-1)
	case 'D':
		s.cursorX = clamp(s.cursorX-param(params, 0, 1), 0, s.cols-1)
	case 'J':
		s.eraseDisplay(param(params, 0, 0))
	case 'K':
		s.eraseLine(s.cursorY, param(params, 0, 0))
	}
	// SGR and everything else leave the cells alone
}

func (s *Screen) eraseDisplay(mode int) {
	switch mode {
	case 0:
		s.eraseLine(s.cursorY, 0)
		for y := s.cursorY + 1; y < s.rows; y++ {
			s.buffer[y] = blankRow(s.cols)
		}
	case 1:
		for y := 0; y < s.cursorY; y++ {
			s.buffer[y] = blankRow(s.cols)
		}
		s.eraseLine(s.cursorY, 1)
	case 2, 3:
		for y := range s.buffer {
			s.buffer[y] = blankRow(s.cols)
		}
	}
}

func (s *Screen) eraseLine(y, mode int) {
	if y < 0 || y >= s.rows {
		return
	}
	from, to := 0, s.cols
	switch mode {
	case 0:
		from = s.cursorX
	case 1:
		to = min(s.cursorX+1, s.cols)
	}
	for x := from; x < to; x++ {
		s.buffer[y][x] = ' '
	}
}

// put writes r at the cursor. Wide runes take two cells; the second one
// holds a zero rune that Lines skips.
func (s *Screen) put(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return
	}
	if s.cursorX+w > s.cols {
		s.cursorX = 0
		s.lineFeed()
	}
	s.buffer[s.cursorY][s.cursorX] = r
	if w == 2 {
		s.buffer[s.cursorY][s.cursorX+1] = 0
	}
	s.cursorX += w
}

func (s *Screen) lineFeed() {
	if s.cursorY < s.rows-1 {
		s.cursorY++
		return
	}
	copy(s.buffer, s.buffer[1:])
	s.buffer[s.rows-1] = blankRow(s.cols)
}

// Lines returns every row with trailing spaces removed
func (s *Screen) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]string, s.rows)
	for y, row := range s.buffer {
		var b strings.Builder
		for _, r := range row {
			if r != 0 {
				b.WriteRune(r)
			}
		}
		lines[y] = strings.TrimRight(b.String(), " ")
	}
	return lines
}

// Line returns row y, or "" when out of range
func (s *Screen) Line(y int) string {
	lines := s.Lines()
	if y < 0 || y >= len(lines) {
		return ""
	}
	return lines[y]
}

// Contains reports whether any row contains text
func (s *Screen) Contains(text string) bool {
	for _, line := range s.Lines() {
		if strings.Contains(line, text) {
			return true
		}
	}
	return false
}

// InAlternateScreen reports whether the alternate buffer is active
func (s *Screen) InAlternateScreen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alt
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
