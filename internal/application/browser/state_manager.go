package browser

import (
	"sync"

	"github.com/penwyp/go-virus-feed/internal/core/model"
)

// StateManager holds what the render loop reads while the key loop writes:
// the last published pipeline snapshot, the loading banner and the
// terminal interaction state.
type StateManager struct {
	mu          sync.RWMutex
	snapshot    Snapshot
	loading     string
	interaction model.InteractionState
}

func NewStateManager() *StateManager {
	return &StateManager{}
}

func (sm *StateManager) GetSnapshot() Snapshot {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.snapshot
}

func (sm *StateManager) SetSnapshot(snapshot Snapshot) {
	sm.mu.Lock()
	sm.snapshot = snapshot
	sm.mu.Unlock()
}

// Loading returns the banner shown while the dataset loads. Empty means idle.
func (sm *StateManager) Loading() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.loading
}

func (sm *StateManager) SetLoading(message string) {
	sm.mu.Lock()
	sm.loading = message
	sm.mu.Unlock()
}

func (sm *StateManager) GetInteractionState() model.InteractionState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.interaction
}

// UpdateInteractionState applies update under the write lock
func (sm *StateManager) UpdateInteractionState(update func(*model.InteractionState)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	update(&sm.interaction)
}
