package upcoming

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/daybook/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type Model struct {
	viewport viewport.Model
	items    []models.Upcoming
	loaded   bool
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.loaded {
		return "Loading upcoming dates..."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) SetUpcoming(items []models.Upcoming) {
	m.items = items
	m.loaded = true
	m.Render()
}

func (m *Model) Render() {
	if len(m.items) == 0 {
		m.viewport.SetContent(emptyStyle.Render("Nothing coming up."))
		return
	}

	var b strings.Builder
	for _, u := range m.items {
		b.WriteString(titleStyle.Render(u.Template.Title))
		b.WriteString("\n")
		if len(u.Dates) == 0 {
			b.WriteString(emptyStyle.Render("  nothing in range"))
			b.WriteString("\n")
			continue
		}
		dates := make([]string, len(u.Dates))
		for i, d := range u.Dates {
			dates[i] = d.In(time.UTC).Format("Mon Jan 2")
		}
		fmt.Fprintf(&b, "  %s\n", dateStyle.Render(strings.Join(dates, ", ")))
	}
	m.viewport.SetContent(b.String())
}
