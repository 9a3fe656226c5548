package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikiparity/wikiparity/pkg/core"
)

func testSuggestions() []core.Suggestion {
	return []core.Suggestion{
		{ID: "Q42", Label: "Douglas Adams", Description: "English author and humorist"},
		{ID: "Q46248", Label: "Terry Pratchett", Description: "English fantasy author"},
	}
}

func TestSuggestionItem(t *testing.T) {
	item := suggestionItem{suggestion: testSuggestions()[0]}
	assert.Equal(t, "Douglas Adams (Q42)", item.Title())
	assert.Equal(t, "English author and humorist", item.Description())
	assert.Contains(t, item.FilterValue(), "Q42")

	blank := suggestionItem{suggestion: core.Suggestion{ID: "Q1", Label: "universe"}}
	assert.Equal(t, "no description", blank.Description())
}

func TestPickerSelect(t *testing.T) {
	m := newPickerModel("first entity", testSuggestions())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(pickerModel)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(pickerModel)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(pickerModel)

	require.NotNil(t, m.selected)
	assert.Equal(t, "Q46248", m.selected.ID)
	assert.NotNil(t, cmd)
}

func TestPickerCancel(t *testing.T) {
	m := newPickerModel("first entity", testSuggestions())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(pickerModel)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(pickerModel)

	assert.Nil(t, m.selected)
	assert.NotNil(t, cmd)
}

func TestPickerView(t *testing.T) {
	m := newPickerModel("first entity", testSuggestions())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(pickerModel)

	view := m.View()
	assert.Contains(t, view, "Douglas Adams (Q42)")
	assert.Contains(t, view, "first entity")
}

func TestSelectModel(t *testing.T) {
	entries := []menuEntry{
		{"Compare two entities", "Search Wikidata and pick both sides"},
		{"Showcases", "Run a preset comparison"},
		{"Quit", "Exit the program"},
	}

	m := newSelectModel("wikiparity", entries)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(selectModel)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(selectModel)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(selectModel)

	assert.Equal(t, 1, m.selected)
	assert.Equal(t, ChoiceShowcases, Choice(m.selected))
}

func TestSelectModelCancel(t *testing.T) {
	m := newSelectModel("wikiparity", []menuEntry{{"Quit", "Exit the program"}})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(selectModel)

	assert.Equal(t, -1, m.selected)
}

func TestPromptSubmit(t *testing.T) {
	m := newPromptModel("First entity", "name or Q-id")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Q42")})
	m = updated.(promptModel)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(promptModel)

	assert.Equal(t, "Q42", m.value)
	assert.NotNil(t, cmd)
}

func TestPromptEmptySubmitKeepsPrompting(t *testing.T) {
	m := newPromptModel("First entity", "name or Q-id")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(promptModel)

	assert.Empty(t, m.value)
	assert.Nil(t, cmd)
}

func TestPromptCancel(t *testing.T) {
	m := newPromptModel("First entity", "name or Q-id")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Doug")})
	m = updated.(promptModel)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(promptModel)

	assert.Empty(t, m.value)
	assert.NotNil(t, cmd)
}

func TestPromptView(t *testing.T) {
	m := newPromptModel("First entity", "name or Q-id")

	view := m.View()
	assert.Contains(t, view, "First entity")
	assert.Contains(t, view, "esc cancel")
}
