package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wikiparity/wikiparity/config"
)

// Choice identifies a main menu action.
type Choice int

const (
	ChoiceCompare Choice = iota
	ChoiceShowcases
	ChoiceQuit
)

// menuEntry is a static list entry.
type menuEntry struct {
	title       string
	description string
}

func (e menuEntry) Title() string       { return e.title }
func (e menuEntry) Description() string { return e.description }
func (e menuEntry) FilterValue() string { return e.title }

// selectModel drives one pick from a static entry list. selected stays -1
// when the user cancels.
type selectModel struct {
	list     list.Model
	selected int
}

func newSelectModel(title string, entries []menuEntry) selectModel {
	items := make([]list.Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, entry)
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(true)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	l.Styles.Title = listTitleStyle

	return selectModel{list: l, selected: -1}
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			m.selected = m.list.Index()
			return m, tea.Quit
		case "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectModel) View() string {
	return m.list.View()
}

func runSelect(title string, entries []menuEntry) (int, error) {
	final, err := tea.NewProgram(newSelectModel(title, entries)).Run()
	if err != nil {
		return -1, fmt.Errorf("failed to run menu: %w", err)
	}
	return final.(selectModel).selected, nil
}

// MainMenu runs the top-level menu. ok is false when the user quit or
// cancelled.
func MainMenu() (Choice, bool, error) {
	entries := []menuEntry{
		{"Compare two entities", "Search Wikidata and pick both sides"},
		{"Showcases", "Run a preset comparison"},
		{"Quit", "Exit the program"},
	}

	index, err := runSelect("wikiparity", entries)
	if err != nil || index < 0 {
		return ChoiceQuit, false, err
	}
	return Choice(index), true, nil
}

// PickShowcase selects one preset comparison. ok is false when the user
// cancelled.
func PickShowcase(showcases []config.Showcase) (config.Showcase, bool, error) {
	entries := make([]menuEntry, 0, len(showcases))
	for _, showcase := range showcases {
		entries = append(entries, menuEntry{showcase.Name, showcase.Source + " vs " + showcase.Target})
	}

	index, err := runSelect("Showcases", entries)
	if err != nil || index < 0 {
		return config.Showcase{}, false, err
	}
	return showcases[index], true, nil
}
