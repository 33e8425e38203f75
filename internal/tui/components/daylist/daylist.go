package daylist

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/models"
)

type Item struct {
	Entry models.DailyItem
}

func (i Item) Title() string {
	title := i.Entry.Title
	switch i.Entry.Status {
	case string(constants.StatusDone):
		title = cli.DoneStyle.Render(title)
	case string(constants.StatusSkipped):
		title = cli.SkippedStyle.Render(title)
	}
	return cli.StatusIcon(i.Entry.Status) + " " + title
}

func (i Item) Description() string {
	var tags []string
	if i.Entry.DueTime != "" {
		tags = append(tags, "due "+i.Entry.DueTime)
	}
	tags = append(tags, string(i.Entry.Kind))
	if i.Entry.Retired {
		tags = append(tags, "retired")
	}
	desc := strings.Join(tags, " · ")
	if i.Entry.Overdue {
		desc += " · " + cli.OverdueStyle.Render("overdue")
	}
	return desc
}

func (i Item) FilterValue() string { return i.Entry.Title }

type Model struct {
	list list.Model
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false) // help is rendered by the parent model
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()
	return Model{list: l}
}

// SetDay replaces the items with the entries of a daily list, keeping the
// cursor where it was when possible.
func (m *Model) SetDay(day models.DailyList) {
	items := make([]list.Item, len(day.Items))
	for i, e := range day.Items {
		items[i] = Item{Entry: e}
	}
	m.list.SetItems(items)
}

// Selected returns the highlighted entry.
func (m Model) Selected() (models.DailyItem, bool) {
	i, ok := m.list.SelectedItem().(Item)
	if !ok {
		return models.DailyItem{}, false
	}
	return i.Entry, true
}

func (m Model) Len() int {
	return len(m.list.Items())
}

// Filtering reports whether keystrokes belong to the filter input.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ShortHelp exposes the list navigation bindings to the parent help view.
func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.list.KeyMap.CursorUp, m.list.KeyMap.CursorDown, m.list.KeyMap.Filter}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Len() == 0 && !m.Filtering() {
		return "\n  Nothing scheduled.\n  Press 'a' to add a todo."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
