package browser

import "github.com/penwyp/go-virus-feed/internal/core/model"

// PanelState is the last content pushed to the panel
type PanelState struct {
	Title      string `json:"title"`
	Day        string `json:"day"`
	Time       string `json:"time"`
	Background string `json:"background"`
}

// SetField implements Panel
func (p *PanelState) SetField(name, text string) {
	switch name {
	case model.FieldTitle:
		p.Title = text
	case model.FieldDay:
		p.Day = text
	case model.FieldTime:
		p.Time = text
	}
}

// SetBackground implements Panel
func (p *PanelState) SetBackground(ref string) {
	p.Background = ref
}

// panels fans updates out to several panels in order
type panels []Panel

func (ps panels) SetField(name, text string) {
	for _, p := range ps {
		p.SetField(name, text)
	}
}

func (ps panels) SetBackground(ref string) {
	for _, p := range ps {
		p.SetBackground(ref)
	}
}
