package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/kycfill/internal/keybinds"
	"github.com/studiowebux/kycfill/internal/logging"
	"github.com/studiowebux/kycfill/internal/render"
	"github.com/studiowebux/kycfill/internal/workflow"
)

// New creates a new TUI model
func New(opts Options) (Model, error) {
	if opts.Service == nil {
		return Model{}, errors.New("service is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	coord := opts.Coordinator
	if coord == nil {
		coord = workflow.NewCoordinator(workflow.LastResponseWins, logger)
	}

	registry := opts.Keybinds
	if registry == nil {
		registry = keybinds.NewDefaultRegistry()
	}

	renderer := opts.Renderer
	if renderer.Format == "" {
		renderer.Format = render.FormatJSON
	}

	docDir := opts.DocumentDir
	if docDir == "" {
		docDir = "."
	}

	// Extracted documents can be long: no size limits on the buffer
	editor := textarea.New()
	editor.Placeholder = "Document text appears here. Type or paste text, then press ctrl+g to generate."
	editor.ShowLineNumbers = false
	editor.Prompt = ""
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.MaxWidth = 0
	editor.SetValue(coord.Buffer())
	editor.Blur()

	pickerInput := textinput.New()
	pickerInput.Placeholder = "Filter documents..."
	pickerInput.Prompt = "> "
	pickerInput.CharLimit = 256

	m := Model{
		svc:            opts.Service,
		coord:          coord,
		historyManager: opts.History,
		keybinds:       registry,
		renderer:       renderer,
		logger:         logger,
		version:        opts.Version,
		mode:           ModeNormal,
		focusedPanel:   PanelDisplay,
		docDir:         docDir,
		docExts:        opts.DocumentExts,
		pickerInput:    pickerInput,
		editor:         editor,
		displayView:    viewport.New(80, 20),
		helpView:       viewport.New(80, 20),
		spinner:        spinner.New(spinner.WithSpinner(spinner.Dot)),
		requestState:   NewRequestState(),
	}
	m.spinner.Style = styleWarning
	m.refreshDisplay()

	return m, nil
}

// Run starts the TUI
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	// Abort anything still in flight when the user quits
	m.requestState.CancelAll()
	return nil
}
