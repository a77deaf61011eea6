package browser

import (
	"github.com/penwyp/go-virus-feed/internal/presentation/display"
	"github.com/penwyp/go-virus-feed/internal/presentation/interaction"
)

// Panel shows the text fields and background of the selected entity
type Panel interface {
	// SetField sets the text of a named field (title, day or time)
	SetField(name, text string)
	// SetBackground sets the background image reference
	SetBackground(ref string)
}

// DisplayController handles terminal display operations
type DisplayController interface {
	// EnterAlternateScreen switches to alternate terminal screen
	EnterAlternateScreen()
	// ExitAlternateScreen returns to normal terminal screen
	ExitAlternateScreen()
	// Resize lays the screen out for cols x rows cells
	Resize(cols, rows int)
	// Render draws one frame
	Render(frame display.Frame)
}

// InputHandler processes keyboard and other input events
type InputHandler interface {
	// Events returns a channel of keyboard events
	Events() <-chan interaction.KeyEvent
	// Close cleans up input handler resources
	Close() error
}

// TerminalSizer reports the terminal size in cells
type TerminalSizer interface {
	TerminalSize() (cols, rows int)
}
