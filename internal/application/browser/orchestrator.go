package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/penwyp/go-virus-feed/internal/core/model"
	"github.com/penwyp/go-virus-feed/internal/presentation/display"
	"github.com/penwyp/go-virus-feed/internal/presentation/interaction"
	"github.com/penwyp/go-virus-feed/internal/presentation/layout"
	"github.com/penwyp/go-virus-feed/internal/util"
)

// stdoutSizer reads the size of the terminal on stdout
type stdoutSizer struct{}

func (stdoutSizer) TerminalSize() (int, int) {
	return layout.TerminalSize()
}

// Orchestrator runs the interactive terminal browser
type Orchestrator struct {
	config *Config

	// Core components
	dataLoader   *DataLoader
	pipeline     *Pipeline
	stateManager *StateManager

	// UI components
	display DisplayController
	input   InputHandler
	sizer   TerminalSizer
	editor  *interaction.QueryEditor
	cursor  interaction.Cursor

	cols, rows int
}

// NewOrchestrator creates an orchestrator drawing on stdout and reading the
// keyboard once Run starts
func NewOrchestrator(config *Config) (*Orchestrator, error) {
	td := display.NewTerminalDisplay(nil, config.CellWidth, config.CellHeight)
	return NewOrchestratorWithComponents(config, td, nil, stdoutSizer{})
}

// NewOrchestratorWithComponents creates an orchestrator over the given
// display, input and sizer. A nil input opens the keyboard in Run.
func NewOrchestratorWithComponents(config *Config, td *display.TerminalDisplay, input InputHandler, sizer TerminalSizer) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	pipeline := NewPipeline(OptionsFromConfig(config, td.Canvas(), td.Panel()))

	return &Orchestrator{
		config:       config,
		dataLoader:   NewDataLoader(config),
		pipeline:     pipeline,
		stateManager: NewStateManager(),
		display:      td,
		input:        input,
		sizer:        sizer,
		editor:       interaction.NewQueryEditor(),
	}, nil
}

// Run starts the orchestrator main loop
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting virus feed browser...")

	// Phase 1: Load data before touching the terminal so errors stay readable
	o.stateManager.SetLoading("Loading dataset...")
	details, err := o.dataLoader.Load()
	if err != nil {
		return err
	}

	// Phase 2: Initialize keyboard
	if o.input == nil {
		keyboard, err := interaction.NewKeyboardReader()
		if err != nil {
			return fmt.Errorf("failed to initialize keyboard: %w", err)
		}
		o.input = keyboard
	}
	defer o.input.Close()

	// Enter alternate screen mode
	o.display.EnterAlternateScreen()
	defer o.display.ExitAlternateScreen()

	o.checkResize()
	o.Start(details)
	o.stateManager.SetLoading("")
	o.updateDisplay()

	// Phase 3: Main event loop
	resizeTicker := time.NewTicker(o.config.RefreshInterval())
	defer resizeTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down virus feed browser...")
			return nil

		case <-resizeTicker.C:
			if o.checkResize() {
				o.pipeline.Redraw()
				o.publish()
				o.updateDisplay()
			}

		case keyEvent, ok := <-o.input.Events():
			if !ok {
				return nil
			}
			if o.HandleKey(keyEvent) {
				return nil // Exit requested
			}
			o.updateDisplay()
		}
	}
}

// Start loads details into the pipeline and publishes the first state
func (o *Orchestrator) Start(details []model.DetailRecord) {
	o.pipeline.Load(details)
	o.cursor.Reset()
	o.publish()
}

// HandleKey applies one key event and reports whether the browser should quit
func (o *Orchestrator) HandleKey(event interaction.KeyEvent) bool {
	state := o.stateManager.GetInteractionState()

	switch event.Type {
	case interaction.KeyInterrupt:
		return true
	case interaction.KeyEscape:
		// If help is shown, close it; otherwise quit
		if !state.ShowHelp {
			return true
		}
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.ShowHelp = false
		})
	case interaction.KeyHelp:
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.ShowHelp = !s.ShowHelp
		})
	case interaction.KeyUp:
		o.cursor.Move(-1, len(o.pipeline.View()))
	case interaction.KeyDown:
		o.cursor.Move(1, len(o.pipeline.View()))
	case interaction.KeyEnter:
		view := o.pipeline.View()
		if o.cursor.Pos() < len(view) {
			if err := o.pipeline.TileClicked(view[o.cursor.Pos()].EntityID); err != nil {
				util.LogWarn(err.Error())
			}
		}
	default:
		if o.editor.Apply(event) {
			o.pipeline.QueryChanged(o.editor.String())
			o.cursor.Reset()
		}
	}

	o.cursor.Clamp(len(o.pipeline.View()))
	o.publish()
	return false
}

// Snapshot returns the last published pipeline state
func (o *Orchestrator) Snapshot() Snapshot {
	return o.stateManager.GetSnapshot()
}

// checkResize follows the terminal size and reports whether it changed
func (o *Orchestrator) checkResize() bool {
	cols, rows := o.sizer.TerminalSize()
	if cols == o.cols && rows == o.rows {
		return false
	}
	util.LogDebugf("Terminal resized to %dx%d", cols, rows)
	o.cols, o.rows = cols, rows
	o.display.Resize(cols, rows)
	return true
}

// publish stores a snapshot of the pipeline and the matching status line
func (o *Orchestrator) publish() {
	snapshot := o.pipeline.Snapshot()
	o.stateManager.SetSnapshot(snapshot)

	var status string
	switch {
	case len(o.pipeline.Representatives()) == 0:
		status = "Dataset is empty"
	case len(snapshot.Tiles) == 0:
		status = fmt.Sprintf("No virus matches %q", snapshot.Query)
	default:
		status = fmt.Sprintf("%d of %d viruses · %s", len(snapshot.Tiles), len(o.pipeline.Representatives()), snapshot.Panel.Title)
	}

	o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
		s.Cursor = o.cursor.Pos()
		s.StatusMessage = status
	})
}

// updateDisplay updates the terminal display
func (o *Orchestrator) updateDisplay() {
	snapshot := o.stateManager.GetSnapshot()
	state := o.stateManager.GetInteractionState()
	if message := o.stateManager.Loading(); message != "" {
		state.StatusMessage = message
	}

	o.display.Render(display.Frame{
		Query:    snapshot.Query,
		Tiles:    snapshot.Tiles,
		Cursor:   state.Cursor,
		Status:   state.StatusMessage,
		ShowHelp: state.ShowHelp,
	})
}
