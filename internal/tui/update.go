package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/sundown/internal/constants"
	"github.com/julianstephens/sundown/internal/errors"
	"github.com/julianstephens/sundown/internal/logger"
	"github.com/julianstephens/sundown/internal/tui/components/schedulelist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.scheduleList.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tickMsg:
		cmds = append(cmds, m.handleTick(msg))
		cmds = append(cmds, m.showNextPopup())
		return m, tea.Batch(cmds...)

	case popupExpiredMsg:
		// A dismissed popup's expiry arrives late and is ignored
		if m.popup != nil && m.popup.id == msg.ID {
			m.popup = nil
		}
		return m, m.showNextPopup()

	case StoreChangedMsg:
		return m, m.reloadStore()

	case schedulelist.AddScheduleMsg:
		return m, m.openAddForm()

	case schedulelist.CancelScheduleMsg:
		m.cancelSchedule(msg.ID)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.popup != nil {
			if key.Matches(msg, m.keys.Dismiss) {
				m.popup = nil
				return m, m.showNextPopup()
			}
			return m, nil
		}
		if m.state == constants.StateAdd {
			return m, m.updateAddForm(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			return m, m.openAddForm()
		}
	}

	if m.state == constants.StateAdd && m.form != nil {
		return m, m.updateAddForm(msg)
	}

	var cmd tea.Cmd
	m.scheduleList, cmd = m.scheduleList.Update(msg)
	return m, cmd
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	_, ok := m.engine.Tick(m.ctx, msg.ID, msg.Token, msg.Time)
	m.refreshList(msg.Time)
	if !ok {
		return nil
	}
	return tickCmd(msg.ID, msg.Token)
}

// reloadStore applies an external edit of the store: removed schedules stop
// counting down and new ones start their own tick chain
func (m *Model) reloadStore() tea.Cmd {
	added, removed, err := m.set.Reload()
	if err != nil {
		logger.Error("Failed to reload schedules", "error", err)
		m.statusError = errors.Format(err)
		return nil
	}

	for _, s := range removed {
		m.engine.Cancel(s.ID)
	}
	now := m.clock.Now()
	var cmds []tea.Cmd
	for _, s := range added {
		if s.IsPast(now) {
			continue
		}
		cmds = append(cmds, tickCmd(s.ID, m.engine.Track(s)))
	}
	m.refreshList(now)
	return tea.Batch(cmds...)
}

func (m *Model) refreshList(now time.Time) {
	m.scheduleList.SetEntries(m.set.Upcoming(now), now)
}

// showNextPopup moves queued popups into view one at a time
func (m *Model) showNextPopup() tea.Cmd {
	m.pending = append(m.pending, m.popups.Drain()...)
	if m.popup != nil || len(m.pending) == 0 {
		return nil
	}

	next := m.pending[0]
	m.pending = m.pending[1:]
	m.lastPopupID++
	m.popup = &activePopup{id: m.lastPopupID, Popup: next}
	return popupExpireCmd(m.popup.id, next.Timeout)
}

func (m *Model) openAddForm() tea.Cmd {
	m.addForm = &AddFormModel{}
	m.form = NewAddForm(m.addForm)
	m.formError = ""
	m.state = constants.StateAdd
	return m.form.Init()
}

func (m *Model) updateAddForm(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back) {
		m.state = constants.StateSchedules
		m.formError = ""
		return nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return tea.Batch(cmd, m.submitAddForm())
	case huh.StateAborted:
		m.state = constants.StateSchedules
		m.formError = ""
	}
	return cmd
}

func (m *Model) submitAddForm() tea.Cmd {
	hour, minute, err := m.addForm.clock()
	var tick tea.Cmd
	if err == nil {
		tick, err = m.addSchedule(hour, minute)
	}
	if err != nil {
		m.formError = errors.Format(err)
		// Keep the user in the form with their input intact
		m.form = NewAddForm(m.addForm)
		return tea.Batch(tick, m.form.Init())
	}

	m.popups.Show(constants.TitleSuccess, fmt.Sprintf("Shutdown scheduled for %02d:%02d", hour, minute), m.popupTimeout)
	return tea.Batch(tick, m.openAddForm(), m.showNextPopup())
}

// addSchedule schedules the shutdown and starts its tick chain. A failed
// save still leaves the schedule counting down in memory.
func (m *Model) addSchedule(hour, minute int) (tea.Cmd, error) {
	now := m.clock.Now()
	s, err := m.set.AddClock(hour, minute, now)
	if s.ID == "" {
		return nil, err
	}

	tick := tickCmd(s.ID, m.engine.Track(s))
	m.refreshList(now)
	return tick, err
}

func (m *Model) cancelSchedule(id string) {
	m.engine.Cancel(id)
	if _, err := m.set.RemoveByID(id); err != nil {
		logger.Error("Failed to cancel schedule", "id", id, "error", err)
		m.statusError = errors.Format(err)
	} else {
		m.statusError = ""
	}
	m.refreshList(m.clock.Now())
}
