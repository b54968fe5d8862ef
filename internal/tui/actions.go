package tui

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/kycfill/internal/filter"
	"github.com/studiowebux/kycfill/internal/render"
	"github.com/studiowebux/kycfill/internal/types"
)

// processDocument starts an intake request for the chosen file
func (m *Model) processDocument(file types.FileInfo) tea.Cmd {
	doc, err := types.LoadDocument(file.Path)
	if err != nil {
		m.errorMsg = fmt.Sprintf("Failed to read %s: %v", file.Name, err)
		return nil
	}

	// Sync the coordinator with the editor before the upload
	m.coord.SetBuffer(m.editor.Value())
	ticket, ok := m.coord.BeginIntake(doc)
	if !ok {
		return nil
	}
	m.logger.Debug("tui.intake.start", "seq", ticket.Seq, "document", doc.Name)
	m.statusMsg = "Processing " + file.Name
	m.refreshDisplay()

	ctx, cancel := context.WithCancel(context.Background())
	m.requestState.Start(ticket.Seq, cancel)

	svc := m.svc
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		result, err := svc.Process(ctx, doc)
		return intakeDoneMsg{ticket: ticket, result: result, err: err}
	})
}

// generateProfile submits the text buffer. A blank buffer does nothing.
func (m *Model) generateProfile() tea.Cmd {
	m.coord.SetBuffer(m.editor.Value())
	ticket, text, ok := m.coord.BeginGeneration()
	if !ok {
		m.statusMsg = msgNothingToGenerate
		return nil
	}
	m.logger.Debug("tui.generation.start", "seq", ticket.Seq, "chars", len(text))
	m.statusMsg = ""
	m.errorMsg = ""
	m.refreshDisplay()

	ctx, cancel := context.WithCancel(context.Background())
	m.requestState.Start(ticket.Seq, cancel)

	svc := m.svc
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		result, err := svc.Generate(ctx, text)
		return generationDoneMsg{ticket: ticket, result: result, err: err}
	})
}

// cancelRequests aborts every in-flight request. Their responses arrive as errors.
func (m *Model) cancelRequests() {
	n := m.requestState.CancelAll()
	if n == 0 {
		m.statusMsg = "No request in flight"
		return
	}
	m.logger.Info("tui.requests.cancelled", "count", n)
	m.statusMsg = fmt.Sprintf("Cancelled %d request(s)", n)
}

// profileText returns the profile block as currently displayed
func (m *Model) profileText() (string, bool) {
	profiles := m.renderer.State(m.coord.State()).Find(render.NodeProfile)
	if len(profiles) == 0 {
		return "", false
	}
	return profiles[0].Text, true
}

func (m *Model) copyProfile() tea.Cmd {
	text, ok := m.profileText()
	if !ok {
		m.statusMsg = msgNoProfile
		return nil
	}

	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return errorMsg(fmt.Sprintf("Failed to copy to clipboard: %v", err))
		}
		return statusMessage("Profile copied to clipboard")
	}
}

func (m *Model) pasteFromClipboard() tea.Cmd {
	return func() tea.Msg {
		text, err := clipboard.ReadAll()
		return pasteMsg{text: text, err: err}
	}
}

func (m *Model) toggleFormat() {
	if m.renderer.Format == render.FormatYAML {
		m.renderer.Format = render.FormatJSON
	} else {
		m.renderer.Format = render.FormatYAML
	}
	m.statusMsg = "Profile format: " + string(m.renderer.Format)
	m.refreshDisplay()
}

func (m *Model) loadDocuments() tea.Cmd {
	dir, exts := m.docDir, m.docExts
	return func() tea.Msg {
		files, err := filter.ListDocuments(dir, exts)
		return documentsLoadedMsg{files: files, err: err}
	}
}

// applyPickerFilter narrows the document list to the fuzzy matches of the filter input
func (m *Model) applyPickerFilter() {
	m.files = filter.FuzzyFiles(m.allFiles, m.pickerInput.Value())
	if m.fileIndex >= len(m.files) {
		m.fileIndex = max(len(m.files)-1, 0)
	}
}

func (m *Model) loadHistory() tea.Cmd {
	if m.historyManager == nil {
		m.statusMsg = msgHistoryDisabled
		return nil
	}

	manager := m.historyManager
	return func() tea.Msg {
		entries, err := manager.List(HistoryLimit)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

// deleteHistoryEntry removes the selected entry from the database
func (m *Model) deleteHistoryEntry() tea.Cmd {
	if m.historyManager == nil || m.historyIndex >= len(m.historyEntries) {
		return nil
	}

	manager := m.historyManager
	id := m.historyEntries[m.historyIndex].ID
	return func() tea.Msg {
		return historyDeletedMsg{id: id, err: manager.Delete(id)}
	}
}

func (m *Model) clearHistory() tea.Cmd {
	if m.historyManager == nil {
		return nil
	}

	manager := m.historyManager
	return func() tea.Msg {
		return historyClearedMsg{err: manager.Clear()}
	}
}
