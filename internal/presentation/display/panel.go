package display

import "github.com/penwyp/go-virus-feed/internal/core/model"

// Panel is the title/day/time box above the timeline
type Panel struct {
	Title      string
	Day        string
	Time       string
	Background string
}

// SetField sets one of the title, day and time fields
func (p *Panel) SetField(name, text string) {
	switch name {
	case model.FieldTitle:
		p.Title = text
	case model.FieldDay:
		p.Day = text
	case model.FieldTime:
		p.Time = text
	}
}

// SetBackground sets the background image reference
func (p *Panel) SetBackground(ref string) {
	p.Background = ref
}
