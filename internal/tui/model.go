package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/kycfill/internal/history"
	"github.com/studiowebux/kycfill/internal/keybinds"
	"github.com/studiowebux/kycfill/internal/render"
	"github.com/studiowebux/kycfill/internal/types"
	"github.com/studiowebux/kycfill/internal/workflow"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModePicker
	ModeHistory
	ModeHistoryClearConfirm
	ModeHelp
)

// Panel identifies which main panel receives keys
type Panel int

const (
	PanelDisplay Panel = iota
	PanelEditor
)

// Options configures a Model
type Options struct {
	Service      workflow.Service
	Coordinator  *workflow.Coordinator
	History      *history.Manager // nil when history is disabled
	Keybinds     *keybinds.Registry
	Renderer     render.Renderer
	DocumentDir  string
	DocumentExts []string
	Logger       *slog.Logger
	Version      string
}

// Model is the Bubble Tea model
type Model struct {
	svc            workflow.Service
	coord          *workflow.Coordinator
	historyManager *history.Manager
	keybinds       *keybinds.Registry
	renderer       render.Renderer
	logger         *slog.Logger
	version        string

	mode         Mode
	focusedPanel Panel

	// Documents
	docDir      string
	docExts     []string
	allFiles    []types.FileInfo
	files       []types.FileInfo // allFiles narrowed by the picker filter
	fileIndex   int
	pickerInput textinput.Model

	// Panels
	editor      textarea.Model
	displayView viewport.Model
	helpView    viewport.Model
	spinner     spinner.Model

	// History browser
	historyEntries []types.HistoryEntry
	historyIndex   int

	requestState *RequestState

	width     int
	height    int
	statusMsg string
	errorMsg  string
}

// Messages
type (
	intakeDoneMsg struct {
		ticket workflow.Ticket
		result *types.ExtractionResult
		err    error
	}

	generationDoneMsg struct {
		ticket workflow.Ticket
		result *types.GenerationResult
		err    error
	}

	documentsLoadedMsg struct {
		files []types.FileInfo
		err   error
	}

	historyLoadedMsg struct {
		entries []types.HistoryEntry
		err     error
	}

	historyClearedMsg struct {
		err error
	}

	historyDeletedMsg struct {
		id  int64
		err error
	}

	pasteMsg struct {
		text string
		err  error
	}

	errorMsg      string
	statusMessage string
)

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.loadDocuments())
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case intakeDoneMsg:
		m.requestState.Done(msg.ticket.Seq)
		// A failed upload leaves whatever was typed meanwhile
		if m.coord.ResolveIntake(msg.ticket, msg.result, msg.err) && msg.err == nil {
			m.editor.SetValue(m.coord.Buffer())
		}
		m.refreshDisplay()
		return m, nil

	case generationDoneMsg:
		m.requestState.Done(msg.ticket.Seq)
		m.coord.ResolveGeneration(msg.ticket, msg.result, msg.err)
		m.refreshDisplay()
		return m, nil

	case documentsLoadedMsg:
		if msg.err != nil {
			m.errorMsg = "Failed to list documents: " + msg.err.Error()
			return m, nil
		}
		m.allFiles = msg.files
		m.applyPickerFilter()
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.errorMsg = "Failed to load history: " + msg.err.Error()
			return m, nil
		}
		m.historyEntries = msg.entries
		m.historyIndex = 0
		m.mode = ModeHistory
		return m, nil

	case historyClearedMsg:
		if msg.err != nil {
			m.errorMsg = "Failed to clear history: " + msg.err.Error()
			m.mode = ModeHistory
			return m, nil
		}
		m.historyEntries = nil
		m.historyIndex = 0
		m.mode = ModeHistory
		m.statusMsg = "History cleared"
		return m, nil

	case historyDeletedMsg:
		if msg.err != nil {
			m.errorMsg = "Failed to delete history entry: " + msg.err.Error()
			return m, nil
		}
		for i, entry := range m.historyEntries {
			if entry.ID == msg.id {
				m.historyEntries = append(m.historyEntries[:i], m.historyEntries[i+1:]...)
				break
			}
		}
		if m.historyIndex >= len(m.historyEntries) && m.historyIndex > 0 {
			m.historyIndex = len(m.historyEntries) - 1
		}
		m.statusMsg = "History entry deleted"
		return m, nil

	case pasteMsg:
		if msg.err != nil {
			m.errorMsg = "Failed to read clipboard: " + msg.err.Error()
			return m, nil
		}
		m.editor.InsertString(msg.text)
		return m, nil

	case spinner.TickMsg:
		if !isProcessing(m.coord.State()) {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshDisplay()
		return m, cmd

	case errorMsg:
		m.errorMsg = string(msg)
		m.statusMsg = ""
		return m, nil

	case statusMessage:
		m.statusMsg = string(msg)
		m.errorMsg = ""
		return m, nil
	}

	// Cursor blink and other component messages
	if m.focusedPanel == PanelEditor {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.mode {
	case ModePicker:
		return m.renderPicker()
	case ModeHistory:
		return m.renderHistory()
	case ModeHistoryClearConfirm:
		return m.renderConfirm("Clear all history entries? (y/n)")
	case ModeHelp:
		return m.renderHelp()
	default:
		return m.renderMain()
	}
}

// resize distributes the window between the panels
func (m *Model) resize() {
	editorWidth, displayWidth := m.panelWidths()
	bodyHeight := m.bodyHeight()

	// Borders take two columns and two rows, panel titles one row
	m.editor.SetWidth(max(editorWidth-2, 1))
	m.editor.SetHeight(max(bodyHeight-3, 1))
	m.displayView.Width = max(displayWidth-2, 1)
	m.displayView.Height = max(bodyHeight-3, 1)

	modalWidth := m.width * ModalWidthPercent / 100
	m.helpView.Width = max(modalWidth-4, 1)
	m.helpView.Height = max(m.height-ChromeHeight-4, 1)
	m.pickerInput.Width = max(modalWidth-8, 10)

	m.refreshDisplay()
	m.helpView.SetContent(m.helpContent())
}

func (m *Model) panelWidths() (int, int) {
	editorWidth := max(MinEditorWidth, m.width*40/100)
	if m.width < NarrowScreenWidth {
		editorWidth = m.width / 2
	}
	return editorWidth, m.width - editorWidth
}

func (m *Model) bodyHeight() int {
	return max(m.height-ChromeHeight, 4)
}

// refreshDisplay re-renders the display panel from the coordinator state
func (m *Model) refreshDisplay() {
	m.displayView.SetContent(m.renderDisplay(m.displayView.Width))
}
