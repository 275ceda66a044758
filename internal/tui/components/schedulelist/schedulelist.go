package schedulelist

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/sundown/internal/constants"
	"github.com/julianstephens/sundown/internal/models"
	"github.com/julianstephens/sundown/internal/schedule"
)

type AddScheduleMsg struct{}

type CancelScheduleMsg struct {
	ID string
}

type Item struct {
	Entry schedule.Entry
	Now   time.Time
}

func (i Item) Title() string {
	return i.Entry.Schedule.Label(i.Now)
}

func (i Item) Description() string {
	at := i.Entry.Schedule.At
	desc := fmt.Sprintf("#%d | %s", i.Entry.Index, at.Format("Mon Jan 2 "+constants.TimeFormat))
	switch {
	case i.Entry.Schedule.FiveMinWarned:
		desc += " | 5 minute warning shown"
	case i.Entry.Schedule.TenMinWarned:
		desc += " | 10 minute warning shown"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Entry.Schedule.At.Format(constants.TimeFormat) }

type KeyMap struct {
	Add    key.Binding
	Cancel key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("c", "d"),
			key.WithHelp("c", "cancel shutdown"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(entries []schedule.Entry, now time.Time, width, height int) Model {
	l := list.New(toItems(entries, now), list.NewDefaultDelegate(), width, height)
	l.Title = "Upcoming shutdowns"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Cancel}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Cancel}
	}

	return Model{list: l, keys: keys}
}

func toItems(entries []schedule.Entry, now time.Time) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Entry: e, Now: now}
	}
	return items
}

// SetEntries replaces the rows, keeping the cursor where it was
func (m *Model) SetEntries(entries []schedule.Entry, now time.Time) {
	m.list.SetItems(toItems(entries, now))
}

func (m Model) Len() int {
	return len(m.list.Items())
}

// Selected returns the highlighted schedule
func (m Model) Selected() (models.Schedule, bool) {
	if i, ok := m.list.SelectedItem().(Item); ok {
		return i.Entry.Schedule, true
	}
	return models.Schedule{}, false
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddScheduleMsg{} }
		case key.Matches(msg, m.keys.Cancel):
			if s, ok := m.Selected(); ok {
				return m, func() tea.Msg { return CancelScheduleMsg{ID: s.ID} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No upcoming shutdowns\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
