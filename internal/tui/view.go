package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/sundown/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.popup != nil {
		return m.viewPopup()
	}

	var content string
	switch m.state {
	case constants.StateAdd:
		content = m.viewAdd()
	default:
		content = m.viewSchedules()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Schedules", "Add"} {
		if m.state == constants.SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewSchedules() string {
	content := m.scheduleList.View()
	if m.notice != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", hintStyle.Render(m.notice))
	}
	if m.statusError != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", dangerStyle.Render(m.statusError))
	}
	return docStyle.Render(content)
}

func (m Model) viewAdd() string {
	if m.form == nil {
		return ""
	}
	content := m.form.View()
	if m.formError != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, dangerStyle.Render(m.formError))
	}
	return docStyle.Render(content)
}

// viewPopup centers the active popup on screen
func (m Model) viewPopup() string {
	box := popupStyle.Render(lipgloss.JoinVertical(
		lipgloss.Center,
		popupTitleStyle.Render(m.popup.Title),
		"",
		m.popup.Message,
		"",
		hintStyle.Render("[enter] OK"),
	))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
