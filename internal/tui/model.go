package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/daybook/internal/agenda"
	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/models"
	"github.com/julianstephens/daybook/internal/tui/components/daylist"
	"github.com/julianstephens/daybook/internal/tui/components/upcoming"
)

type SessionState int

const (
	StateDay SessionState = iota
	StateUpcoming
	StateAddTodo
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab.
const tabCount = 2

const upcomingDays = 14

type TodoFormModel struct {
	Title string
	Due   string
}

type (
	dayLoadedMsg struct {
		list models.DailyList
		err  error
	}
	upcomingLoadedMsg struct {
		items []models.Upcoming
		err   error
	}
	// savedMsg reports the outcome of a mutation; the views reload after it.
	savedMsg struct {
		status string
		err    error
	}
)

var errCannotSkipTodo = errors.New("todos cannot be skipped")

type Model struct {
	svc            *agenda.Service
	state          SessionState
	keys           KeyMap
	help           help.Model
	date           calendar.Date
	dayList        daylist.Model
	upcoming       upcoming.Model
	form           *huh.Form
	todoForm       *TodoFormModel
	todoToDeleteID string
	status         string
	err            error
	quitting       bool
	width          int
	height         int
}

func NewModel(svc *agenda.Service, date calendar.Date) Model {
	if date.IsZero() {
		date = svc.Clock().Today()
	}
	return Model{
		svc:      svc,
		state:    StateDay,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		date:     date,
		dayList:  daylist.New(0, 0),
		upcoming: upcoming.New(0, 0),
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.PrevDay, m.keys.NextDay}
	if m.state == StateDay {
		keys = append(keys, m.keys.Done, m.keys.Skip, m.keys.Add)
	}
	return append(keys, m.keys.Quit, m.keys.Help)
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := append([]key.Binding{m.keys.PrevDay, m.keys.NextDay, m.keys.Today}, m.dayList.ShortHelp()...)
	actions := []key.Binding{m.keys.Done, m.keys.Skip, m.keys.Reset, m.keys.Add, m.keys.Delete}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadDay(), m.loadUpcoming())
}

func (m Model) loadDay() tea.Cmd {
	svc, date := m.svc, m.date
	return func() tea.Msg {
		list, err := svc.DailyList(context.Background(), date)
		return dayLoadedMsg{list: list, err: err}
	}
}

func (m Model) loadUpcoming() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		items, err := svc.Upcoming(context.Background(), svc.Clock().Today(), upcomingDays)
		return upcomingLoadedMsg{items: items, err: err}
	}
}

// setStatus marks the selected entry. Occurrences take any status; todos
// only toggle between pending and done.
func (m Model) setStatus(status constants.OccurrenceStatus) tea.Cmd {
	item, ok := m.dayList.Selected()
	if !ok {
		return nil
	}
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		switch item.Kind {
		case constants.KindTodo:
			switch status {
			case constants.StatusSkipped:
				err = errCannotSkipTodo
			case constants.StatusDone:
				_, err = svc.SetTodoStatus(ctx, item.TodoID, constants.TodoDone)
			default:
				_, err = svc.SetTodoStatus(ctx, item.TodoID, constants.TodoPending)
			}
		default:
			_, err = svc.SetOccurrenceStatus(ctx, item.TemplateID, item.Date, status)
		}
		return savedMsg{status: fmt.Sprintf("%s → %s", item.Title, status), err: err}
	}
}

func (m Model) addTodo(title, due string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		date, err := cli.ParseDate(svc.Clock(), strings.TrimSpace(due))
		if err != nil {
			return savedMsg{err: err}
		}
		todo, err := svc.CreateTodo(context.Background(), title, date)
		if err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{status: fmt.Sprintf("Added %q for %s", todo.Title, todo.DueDate)}
	}
}

func (m Model) deleteTodo(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.DeleteTodo(context.Background(), id); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{status: "Todo deleted"}
	}
}

func (m *Model) newTodoForm() {
	m.todoForm = &TodoFormModel{Due: m.date.String()}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Todo").
				Value(&m.todoForm.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Due").
				Description("YYYY-MM-DD, today, tomorrow or +N").
				Value(&m.todoForm.Due),
		),
	).WithShowHelp(true)
}
