package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.dayList.SetSize(msg.Width-h, msg.Height-v-chromeHeight)
		m.upcoming.SetSize(msg.Width-h, msg.Height-v-chromeHeight)
		return m, nil

	case dayLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.list.Date == m.date {
			m.dayList.SetDay(msg.list)
		}
		return m, nil

	case upcomingLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.upcoming.SetUpcoming(msg.items)
		return m, nil

	case savedMsg:
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.status = msg.status
		return m, tea.Batch(m.loadDay(), m.loadUpcoming())
	}

	switch m.state {
	case StateAddTodo:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok && !m.dayList.Filtering() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.PrevDay):
			return m.goTo(m.date.AddDays(-1))
		case key.Matches(msg, m.keys.NextDay):
			return m.goTo(m.date.AddDays(1))
		case key.Matches(msg, m.keys.Today):
			return m.goTo(m.svc.Clock().Today())
		case key.Matches(msg, m.keys.Add):
			m.newTodoForm()
			m.state = StateAddTodo
			return m, m.form.Init()
		}

		if m.state == StateDay {
			switch {
			case key.Matches(msg, m.keys.Done):
				return m, m.setStatus(constants.StatusDone)
			case key.Matches(msg, m.keys.Skip):
				return m, m.setStatus(constants.StatusSkipped)
			case key.Matches(msg, m.keys.Reset):
				return m, m.setStatus(constants.StatusPending)
			case key.Matches(msg, m.keys.Delete):
				if item, ok := m.dayList.Selected(); ok && item.Kind == constants.KindTodo {
					m.todoToDeleteID = item.TodoID
					m.state = StateConfirmDelete
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateDay:
		m.dayList, cmd = m.dayList.Update(msg)
	case StateUpcoming:
		m.upcoming, cmd = m.upcoming.Update(msg)
	}
	return m, cmd
}

func (m Model) goTo(date calendar.Date) (tea.Model, tea.Cmd) {
	m.date = date
	m.state = StateDay
	m.status = ""
	return m, m.loadDay()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.state = StateDay
		f := m.todoForm
		m.form, m.todoForm = nil, nil
		return m, m.addTodo(f.Title, f.Due)
	case huh.StateAborted:
		m.state = StateDay
		m.form, m.todoForm = nil, nil
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		id := m.todoToDeleteID
		m.todoToDeleteID = ""
		m.state = StateDay
		return m, m.deleteTodo(id)
	case key.Matches(keyMsg, m.keys.Cancel):
		m.todoToDeleteID = ""
		m.state = StateDay
	}
	return m, nil
}
