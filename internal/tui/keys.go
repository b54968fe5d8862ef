package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/kycfill/internal/keybinds"
)

// handleKeyPress routes a key to the handler of the current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModePicker:
		return m.handlePickerKeys(msg)
	case ModeHistory:
		return m.handleHistoryKeys(msg)
	case ModeHistoryClearConfirm:
		return m.handleConfirmKeys(msg)
	case ModeHelp:
		return m.handleHelpKeys(msg)
	}

	if m.focusedPanel == PanelEditor {
		return m.handleEditorKeys(msg)
	}
	return m.handleDisplayKeys(msg)
}

// handleGlobalAction runs actions available in every mode
func (m *Model) handleGlobalAction(action keybinds.Action) (tea.Cmd, bool) {
	switch action {
	case keybinds.ActionQuitForce:
		return tea.Quit, true
	case keybinds.ActionOpenPicker:
		return m.openPicker(), true
	case keybinds.ActionGenerate:
		m.mode = ModeNormal
		return m.generateProfile(), true
	case keybinds.ActionCancel:
		m.cancelRequests()
		return nil, true
	}
	return nil, false
}

func (m *Model) handleDisplayKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, ok, partial := m.keybinds.MatchMultiKey(keybinds.ContextDisplay, msg.String())
	if partial || !ok {
		return m, nil
	}

	// Any handled key dismisses the previous message
	m.errorMsg = ""
	m.statusMsg = ""

	if cmd, handled := m.handleGlobalAction(action); handled {
		return m, cmd
	}

	switch action {
	case keybinds.ActionQuit:
		return m, tea.Quit
	case keybinds.ActionSwitchFocus:
		return m, m.focusEditor()
	case keybinds.ActionNavigateUp:
		m.displayView.LineUp(1)
	case keybinds.ActionNavigateDown:
		m.displayView.LineDown(1)
	case keybinds.ActionPageUp:
		m.displayView.HalfViewUp()
	case keybinds.ActionPageDown:
		m.displayView.HalfViewDown()
	case keybinds.ActionGoToTop:
		m.displayView.GotoTop()
	case keybinds.ActionGoToBottom:
		m.displayView.GotoBottom()
	case keybinds.ActionCopyResult:
		return m, m.copyProfile()
	case keybinds.ActionToggleFormat:
		m.toggleFormat()
	case keybinds.ActionOpenHistory:
		return m, m.loadHistory()
	case keybinds.ActionOpenHelp:
		m.helpView.SetContent(m.helpContent())
		m.helpView.GotoTop()
		m.mode = ModeHelp
	}

	return m, nil
}

func (m *Model) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if action, ok := m.keybinds.Match(keybinds.ContextEditor, msg.String()); ok {
		if cmd, handled := m.handleGlobalAction(action); handled {
			return m, cmd
		}

		switch action {
		case keybinds.ActionSwitchFocus:
			m.focusDisplay()
			return m, nil
		case keybinds.ActionPaste:
			return m, m.pasteFromClipboard()
		case keybinds.ActionClearBuffer:
			m.editor.Reset()
			m.coord.SetBuffer("")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if action, ok := m.keybinds.Match(keybinds.ContextPicker, msg.String()); ok {
		switch action {
		case keybinds.ActionProcess:
			if len(m.files) == 0 {
				return m, nil
			}
			file := m.files[m.fileIndex]
			m.closePicker()
			return m, m.processDocument(file)
		case keybinds.ActionCloseModal:
			m.closePicker()
			return m, nil
		case keybinds.ActionRefreshPicker:
			return m, m.loadDocuments()
		case keybinds.ActionNavigateUp:
			if m.fileIndex > 0 {
				m.fileIndex--
			}
			return m, nil
		case keybinds.ActionNavigateDown:
			if m.fileIndex < len(m.files)-1 {
				m.fileIndex++
			}
			return m, nil
		case keybinds.ActionOpenPicker:
			m.closePicker()
			return m, nil
		}

		if cmd, handled := m.handleGlobalAction(action); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.pickerInput, cmd = m.pickerInput.Update(msg)
	m.applyPickerFilter()
	return m, cmd
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, ok := m.keybinds.Match(keybinds.ContextHistory, msg.String())
	if !ok {
		return m, nil
	}

	switch action {
	case keybinds.ActionCloseModal:
		m.mode = ModeNormal
	case keybinds.ActionNavigateUp:
		if m.historyIndex > 0 {
			m.historyIndex--
		}
	case keybinds.ActionNavigateDown:
		if m.historyIndex < len(m.historyEntries)-1 {
			m.historyIndex++
		}
	case keybinds.ActionHistoryClear:
		if len(m.historyEntries) > 0 {
			m.mode = ModeHistoryClearConfirm
		}
	case keybinds.ActionHistoryDelete:
		return m, m.deleteHistoryEntry()
	default:
		cmd, _ := m.handleGlobalAction(action)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, ok := m.keybinds.Match(keybinds.ContextConfirm, msg.String())
	if !ok {
		return m, nil
	}

	switch action {
	case keybinds.ActionConfirm:
		return m, m.clearHistory()
	case keybinds.ActionDeny:
		m.mode = ModeHistory
		return m, nil
	case keybinds.ActionQuitForce:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, ok := m.keybinds.Match(keybinds.ContextHelp, msg.String())
	if !ok {
		return m, nil
	}

	switch action {
	case keybinds.ActionCloseModal:
		m.mode = ModeNormal
	case keybinds.ActionNavigateUp:
		m.helpView.LineUp(1)
	case keybinds.ActionNavigateDown:
		m.helpView.LineDown(1)
	default:
		cmd, _ := m.handleGlobalAction(action)
		return m, cmd
	}
	return m, nil
}

func (m *Model) focusEditor() tea.Cmd {
	m.focusedPanel = PanelEditor
	return m.editor.Focus()
}

// focusDisplay leaves the editor and hands its text to the coordinator
func (m *Model) focusDisplay() {
	m.focusedPanel = PanelDisplay
	m.editor.Blur()
	m.coord.SetBuffer(m.editor.Value())
}

func (m *Model) openPicker() tea.Cmd {
	if m.focusedPanel == PanelEditor {
		m.focusDisplay()
	}
	m.mode = ModePicker
	m.pickerInput.SetValue("")
	m.fileIndex = 0
	m.applyPickerFilter()
	return tea.Batch(m.pickerInput.Focus(), m.loadDocuments())
}

func (m *Model) closePicker() {
	m.mode = ModeNormal
	m.pickerInput.Blur()
}
