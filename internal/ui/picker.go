// Package ui provides the interactive terminal prompts.
package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wikiparity/wikiparity/pkg/core"
)

var listTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))

// suggestionItem adapts core.Suggestion to list.Item.
type suggestionItem struct {
	suggestion core.Suggestion
}

func (i suggestionItem) Title() string {
	return fmt.Sprintf("%s (%s)", i.suggestion.Label, i.suggestion.ID)
}

func (i suggestionItem) Description() string {
	if i.suggestion.Description == "" {
		return "no description"
	}
	return i.suggestion.Description
}

func (i suggestionItem) FilterValue() string {
	return i.suggestion.ID + " " + i.suggestion.Label + " " + i.suggestion.Description
}

// pickerModel drives one selection from a suggestion list.
type pickerModel struct {
	list     list.Model
	selected *core.Suggestion
}

func newPickerModel(title string, suggestions []core.Suggestion) pickerModel {
	items := make([]list.Item, 0, len(suggestions))
	for _, suggestion := range suggestions {
		items = append(items, suggestionItem{suggestion: suggestion})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = listTitleStyle

	return pickerModel{list: l}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		// While filtering, every key belongs to the filter input.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(suggestionItem); ok {
				selected := item.suggestion
				m.selected = &selected
			}
			return m, tea.Quit
		case "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return m.list.View()
}

// PickSuggestion interactively selects one search suggestion. ok is false
// when the user cancelled.
func PickSuggestion(title string, suggestions []core.Suggestion) (core.Suggestion, bool, error) {
	final, err := tea.NewProgram(newPickerModel(title, suggestions)).Run()
	if err != nil {
		return core.Suggestion{}, false, fmt.Errorf("failed to run picker: %w", err)
	}

	model := final.(pickerModel)
	if model.selected == nil {
		return core.Suggestion{}, false, nil
	}
	return *model.selected, true, nil
}
