package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/kycfill/internal/client"
	"github.com/studiowebux/kycfill/internal/keybinds"
	"github.com/studiowebux/kycfill/internal/render"
	"github.com/studiowebux/kycfill/internal/workflow"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)
)

// renderMain renders the main view (text buffer + result panel)
func (m Model) renderMain() string {
	editorWidth, displayWidth := m.panelWidths()
	bodyHeight := m.bodyHeight()

	editorBorder := colorGray
	displayBorder := colorGray
	if m.focusedPanel == PanelEditor {
		editorBorder = colorGreen
	} else {
		displayBorder = colorGreen
	}

	editorBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(editorBorder).
		Width(editorWidth - 2).
		Height(bodyHeight - 2).
		Render(styleTitle.Render("Document Text") + "\n" + m.editor.View())

	displayBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(displayBorder).
		Width(displayWidth - 2).
		Height(bodyHeight - 2).
		Render(styleTitle.Render("Result") + "\n" + m.displayView.View())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitleBar(),
		lipgloss.JoinHorizontal(lipgloss.Top, editorBox, displayBox),
		m.renderStatusBar(),
	)
}

func (m Model) renderTitleBar() string {
	title := "kycfill"
	if m.version != "" {
		title += " " + m.version
	}
	return styleTitle.Render(title) + styleSubtle.Render("  "+m.docDir)
}

// renderStatusBar shows the current message or the main key hints
func (m Model) renderStatusBar() string {
	if m.errorMsg != "" {
		return styleError.Render(m.errorMsg)
	}

	var parts []string
	if n := m.requestState.InFlight(); n > 0 {
		parts = append(parts, styleWarning.Render(fmt.Sprintf("%d in flight", n)))
	}
	if m.statusMsg != "" {
		parts = append(parts, m.statusMsg)
	} else {
		ctx := keybinds.ContextDisplay
		if m.focusedPanel == PanelEditor {
			ctx = keybinds.ContextEditor
		}
		parts = append(parts, styleSubtle.Render(fmt.Sprintf(
			"%s open | %s generate | %s focus | %s help",
			m.keybinds.GetBindingString(ctx, keybinds.ActionOpenPicker),
			m.keybinds.GetBindingString(ctx, keybinds.ActionGenerate),
			m.keybinds.GetBindingString(ctx, keybinds.ActionSwitchFocus),
			m.keybinds.GetBindingString(keybinds.ContextDisplay, keybinds.ActionOpenHelp),
		)))
	}
	return strings.Join(parts, styleSubtle.Render(" | "))
}

// renderDisplay renders the display tree of the current state
func (m Model) renderDisplay(width int) string {
	state := m.coord.State()
	tree := m.renderer.State(state)

	var b strings.Builder
	for i, node := range tree.Children {
		if i > 0 {
			b.WriteString("\n")
		}
		m.writeNode(&b, node, width)
	}
	return b.String()
}

func (m Model) writeNode(b *strings.Builder, n *render.Node, width int) {
	wrap := lipgloss.NewStyle().Width(max(width, 1))

	switch n.Kind {
	case render.NodePlaceholder:
		b.WriteString(styleSubtle.Render(n.Text))
		b.WriteString("\n")
	case render.NodeStatus:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(styleWarning.Render(n.Text))
		b.WriteString("\n")
	case render.NodeError:
		b.WriteString(styleError.Render(wrap.Render("Error: " + n.Text)))
		b.WriteString("\n")
	case render.NodeProfile:
		b.WriteString(styleTitle.Render(n.Title))
		b.WriteString("\n")
		b.WriteString(highlight(n.Text, string(m.renderer.Format)))
		b.WriteString("\n")
	case render.NodeForm:
		b.WriteString(styleTitle.Render(n.Title))
		b.WriteString("\n")
		for _, child := range n.Children {
			m.writeNode(b, child, width)
		}
	case render.NodeAnswerList:
		if len(n.Children) == 0 {
			b.WriteString(styleSubtle.Render("  (no answers)"))
			b.WriteString("\n")
		}
		for _, child := range n.Children {
			m.writeNode(b, child, width)
		}
	case render.NodeAnswer:
		line := "  - " + n.Text
		if n.Note != "" {
			line += " " + styleSubtle.Render("("+n.Note+")")
		}
		b.WriteString(wrap.Render(line))
		b.WriteString("\n")
	}
}

// renderModal centers a bordered box on screen
func (m Model) renderModal(title, body string) string {
	modalWidth := m.width * ModalWidthPercent / 100

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCyan).
		Padding(0, 1).
		Width(modalWidth).
		Render(styleTitle.Render(title) + "\n\n" + body)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderPicker() string {
	var b strings.Builder
	b.WriteString(m.pickerInput.View())
	b.WriteString("\n\n")

	if len(m.files) == 0 {
		b.WriteString(styleSubtle.Render(msgNoDocuments))
	} else {
		start := 0
		if m.fileIndex >= PickerVisibleRows {
			start = m.fileIndex - PickerVisibleRows + 1
		}
		end := min(start+PickerVisibleRows, len(m.files))

		for i := start; i < end; i++ {
			file := m.files[i]
			line := fmt.Sprintf("%-40s %8s", file.Name, client.FormatSize(int(file.Size)))
			if i == m.fileIndex {
				b.WriteString(styleSelected.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString(styleSubtle.Render(fmt.Sprintf("\n%d/%d documents", len(m.files), len(m.allFiles))))
	}

	b.WriteString("\n")
	b.WriteString(styleSubtle.Render(fmt.Sprintf("%s process | %s close | %s rescan",
		m.keybinds.GetBindingString(keybinds.ContextPicker, keybinds.ActionProcess),
		m.keybinds.GetBindingString(keybinds.ContextPicker, keybinds.ActionCloseModal),
		m.keybinds.GetBindingString(keybinds.ContextPicker, keybinds.ActionRefreshPicker),
	)))

	return m.renderModal("Open Document", b.String())
}

func (m Model) renderHistory() string {
	var b strings.Builder

	if len(m.historyEntries) == 0 {
		b.WriteString(styleSubtle.Render("No history entries"))
	}

	for i, entry := range m.historyEntries {
		status := styleSuccess.Render(fmt.Sprintf("%3d", entry.Status))
		if !client.IsSuccessStatus(entry.Status) {
			status = styleError.Render(fmt.Sprintf("%3d", entry.Status))
		}
		line := fmt.Sprintf("%s  %-8s %s  %-30s %8s %8s",
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Operation,
			status,
			entry.Source,
			client.FormatDuration(entry.Duration),
			client.FormatSize(entry.ResponseSize),
		)
		if i == m.historyIndex {
			b.WriteString(styleSelected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.historyIndex < len(m.historyEntries) {
		selected := m.historyEntries[m.historyIndex]
		b.WriteString("\n")
		if selected.Error != "" {
			b.WriteString(styleError.Render("Error: " + selected.Error))
			b.WriteString("\n")
		}
		b.WriteString(styleSubtle.Render(preview(selected.ResponseBody, 8)))
		b.WriteString("\n")
	}

	if m.errorMsg != "" {
		b.WriteString("\n" + styleError.Render(m.errorMsg))
	}

	return m.renderModal(fmt.Sprintf("History (%d)", len(m.historyEntries)), b.String())
}

func (m Model) renderConfirm(question string) string {
	return m.renderModal("Confirm", styleWarning.Render(question))
}

func (m Model) renderHelp() string {
	return m.renderModal("Keybindings", m.helpView.View())
}

// helpContent lists the bindings of every context
func (m Model) helpContent() string {
	sections := []struct {
		title   string
		context keybinds.Context
	}{
		{"Global", keybinds.ContextGlobal},
		{"Result panel", keybinds.ContextDisplay},
		{"Text buffer", keybinds.ContextEditor},
		{"Document picker", keybinds.ContextPicker},
		{"History", keybinds.ContextHistory},
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Race policy: %s\n\n", m.coord.Policy()))
	for _, section := range sections {
		b.WriteString(styleTitle.Render(section.title))
		b.WriteString("\n")
		for _, binding := range m.keybinds.ListBindings(section.context) {
			if binding.Action == keybinds.ActionGoToTopPrep {
				continue
			}
			b.WriteString(fmt.Sprintf("  %-10s %s\n", binding.Key, binding.Action))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// preview returns at most n lines of text
func preview(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= n {
		return text
	}
	return strings.Join(lines[:n], "\n") + "\n..."
}

// isProcessing reports whether a spinner should be shown
func isProcessing(state workflow.State) bool {
	return state.Phase == workflow.PhaseProcessing
}
