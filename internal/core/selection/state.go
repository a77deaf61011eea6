package selection

import "github.com/penwyp/go-virus-feed/internal/core/model"

// Listener is notified after the selection changes.
type Listener func(id model.EntityID)

// State holds the single selected entity. It is owned by one goroutine; the
// listeners run synchronously inside Select, in registration order.
type State struct {
	current     model.EntityID
	initialized bool
	listeners   []Listener
}

// NewState creates an uninitialized selection
func NewState() *State {
	return &State{}
}

// OnChange registers a listener. Listeners run in the order they were added.
func (s *State) OnChange(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Current returns the selected entity. It is the zero id until the first Select.
func (s *State) Current() model.EntityID {
	return s.current
}

// Initialized reports whether Select has been called at least once.
func (s *State) Initialized() bool {
	return s.initialized
}

// Select sets the selected entity and notifies every listener, even when id
// is already selected.
func (s *State) Select(id model.EntityID) {
	s.current = id
	s.initialized = true

	for _, l := range s.listeners {
		l(id)
	}
}
