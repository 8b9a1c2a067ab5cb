package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const pickerMaxVisible = 12

var (
	pickerTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	pickerCursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	pickerItemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	pickerSelectedStyle = lipgloss.NewStyle().PaddingLeft(0).Foreground(lipgloss.Color("212"))
	pickerHelpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

// pickerModel is a filterable list: type to narrow, arrows to move, enter
// to choose.
type pickerModel struct {
	input    textinput.Model
	items    []string
	filtered []string
	cursor   int
	choice   string
	quitting bool
}

func newPickerModel(items []string) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Focus()
	ti.Prompt = "> "

	return pickerModel{
		input:    ti,
		items:    items,
		filtered: items,
	}
}

func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			if m.cursor < len(m.filtered) {
				m.choice = m.filtered[m.cursor]
			}
			m.quitting = true
			return m, tea.Quit

		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case tea.KeyDown:
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.filtered = filterItems(m.items, m.input.Value())
	if m.cursor >= len(m.filtered) {
		m.cursor = 0
	}
	return m, cmd
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render("Bookmarks"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	visible := m.filtered
	if len(visible) > pickerMaxVisible {
		visible = visible[:pickerMaxVisible]
	}

	if len(visible) == 0 {
		b.WriteString(pickerItemStyle.Render("(no matches)"))
		b.WriteString("\n")
	}
	for i, item := range visible {
		if i == m.cursor {
			b.WriteString(pickerSelectedStyle.Render(pickerCursorStyle.Render("> ") + item))
		} else {
			b.WriteString(pickerItemStyle.Render(item))
		}
		b.WriteString("\n")
	}

	b.WriteString(pickerHelpStyle.Render("enter: open • esc: cancel"))
	return b.String()
}

// filterItems keeps items containing every whitespace-separated term,
// case-insensitively.
func filterItems(items []string, query string) []string {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return items
	}

	terms := strings.Fields(query)
	filtered := make([]string, 0, len(items))
	for _, item := range items {
		lower := strings.ToLower(item)
		match := true
		for _, term := range terms {
			if !strings.Contains(lower, term) {
				match = false
				break
			}
		}
		if match {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// runPicker runs the interactive picker and returns the chosen item, or
// "" when cancelled.
func runPicker(items []string) (string, error) {
	program := tea.NewProgram(newPickerModel(items))
	finalModel, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("picker failed: %w", err)
	}

	m, ok := finalModel.(pickerModel)
	if !ok {
		return "", nil
	}
	return m.choice, nil
}
