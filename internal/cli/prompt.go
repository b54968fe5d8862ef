package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/kycfill/internal/client"
	"github.com/studiowebux/kycfill/internal/types"
)

// ErrSelectionCancelled is returned when the user leaves the document prompt
var ErrSelectionCancelled = errors.New("selection cancelled")

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1).MarginLeft(2)
)

type documentItem struct {
	file types.FileInfo
}

func (i documentItem) FilterValue() string { return i.file.Name }

type selectorModel struct {
	list     list.Model
	choice   string
	quitting bool
}

func (m selectorModel) Init() tea.Cmd {
	return nil
}

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		// Let the list handle keys while the filter is being typed
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			m.choice = ""
			return m, tea.Quit

		case "enter":
			if i, ok := m.list.SelectedItem().(documentItem); ok {
				m.choice = i.file.Path
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectorModel) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("↑/↓: navigate • /: filter • enter: select • q: cancel")
	return fmt.Sprintf("%s\n\n%s", m.list.View(), help)
}

// documentDelegate renders one document per line
type documentDelegate struct{}

func (d documentDelegate) Height() int                             { return 1 }
func (d documentDelegate) Spacing() int                            { return 0 }
func (d documentDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d documentDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(documentItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%-40s %8s", i.file.Name, client.FormatSize(int(i.file.Size)))

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

func newDocumentList(files []types.FileInfo) list.Model {
	items := make([]list.Item, 0, len(files))
	for _, file := range files {
		items = append(items, documentItem{file: file})
	}

	const defaultWidth = 80
	const listHeight = 14

	l := list.New(items, documentDelegate{}, defaultWidth, listHeight)
	l.Title = "Select a document"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	return l
}

// PromptForDocument shows an interactive list of files and returns the chosen path
func PromptForDocument(files []types.FileInfo) (string, error) {
	if len(files) == 0 {
		return "", errors.New("no documents found")
	}

	p := tea.NewProgram(selectorModel{list: newDocumentList(files)})
	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("error running selector: %w", err)
	}

	result := finalModel.(selectorModel)
	if result.choice == "" {
		return "", ErrSelectionCancelled
	}
	return result.choice, nil
}

// IsInteractive reports whether stdin is a terminal (not piped)
func IsInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
