package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var promptHelpStyle = lipgloss.NewStyle().Faint(true)

// promptModel drives one line of free text input. value stays empty when
// the user cancels.
type promptModel struct {
	title string
	input textinput.Model
	value string
}

func newPromptModel(title, placeholder string) promptModel {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = 120
	input.Width = 48
	input.Focus()

	return promptModel{title: title, input: input}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			// Empty input keeps the prompt open.
			if value := strings.TrimSpace(m.input.Value()); value != "" {
				m.value = value
				return m, tea.Quit
			}
			return m, nil
		case "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	return fmt.Sprintf("%s\n\n%s\n\n%s\n",
		listTitleStyle.Render(m.title),
		m.input.View(),
		promptHelpStyle.Render("enter confirm • esc cancel"))
}

// PromptText asks for one line of text. ok is false when the user
// cancelled.
func PromptText(title, placeholder string) (string, bool, error) {
	final, err := tea.NewProgram(newPromptModel(title, placeholder)).Run()
	if err != nil {
		return "", false, fmt.Errorf("failed to run prompt: %w", err)
	}

	model := final.(promptModel)
	if model.value == "" {
		return "", false, nil
	}
	return model.value, true, nil
}
