package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateDay:
		content = docStyle.Render(m.dayList.View())
	case StateUpcoming:
		content = docStyle.Render(m.upcoming.View())
	case StateAddTodo:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewHeading(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Day", "Upcoming"} {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewHeading() string {
	if m.state == StateUpcoming {
		return headingStyle.Render(fmt.Sprintf("Next %d days", upcomingDays))
	}
	heading := m.date.In(time.UTC).Format("Monday, Jan 2 2006")
	if m.date == m.svc.Clock().Today() {
		heading += " (today)"
	}
	return headingStyle.Render(heading)
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return statusStyle.Render(dangerStyle.Render("Error: " + m.err.Error()))
	}
	return statusStyle.Render(m.status)
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, max(m.height-chromeHeight, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Delete this todo?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
