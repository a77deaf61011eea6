package model

// FileEvent represents a file system event
type FileEvent struct {
	Path      string
	Operation string
}

// InteractionState represents the current UI interaction state
type InteractionState struct {
	ShowHelp      bool
	Cursor        int    // Index of the focused tile in the rendered feed
	StatusMessage string // Status message to display
}
