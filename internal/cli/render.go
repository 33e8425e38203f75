package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/models"
	"github.com/julianstephens/daybook/internal/recurrence"
)

var (
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	DoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	SkippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	OverdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	TodayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// StatusIcon returns the checkbox glyph for an item status.
func StatusIcon(status string) string {
	switch status {
	case string(constants.StatusDone):
		return "✓"
	case string(constants.StatusSkipped):
		return "–"
	default:
		return "○"
	}
}

// FormatItem renders one daily list line without the trailing newline.
func FormatItem(item models.DailyItem) string {
	title := item.Title
	switch item.Status {
	case string(constants.StatusDone):
		title = DoneStyle.Render(title)
	case string(constants.StatusSkipped):
		title = SkippedStyle.Render(title)
	}

	var tags []string
	if item.DueTime != "" {
		tags = append(tags, item.DueTime)
	}
	if item.Kind == constants.KindTodo {
		tags = append(tags, "todo")
	}
	if item.Retired {
		tags = append(tags, "retired")
	}
	line := fmt.Sprintf("%s %s", StatusIcon(item.Status), title)
	if len(tags) > 0 {
		line += "  " + MutedStyle.Render(strings.Join(tags, " · "))
	}
	if item.Overdue {
		line += "  " + OverdueStyle.Render("overdue")
	}
	return line
}

// RenderDay renders a daily list with a heading.
func RenderDay(list models.DailyList, today calendar.Date) string {
	var b strings.Builder
	heading := list.Date.In(time.UTC).Format("Monday, Jan 2 2006")
	if list.Date == today {
		heading += " (today)"
	}
	b.WriteString(HeaderStyle.Render(heading))
	b.WriteString("\n")
	if len(list.Items) == 0 {
		b.WriteString(MutedStyle.Render("  Nothing scheduled."))
		b.WriteString("\n")
		return b.String()
	}
	for _, item := range list.Items {
		b.WriteString("  ")
		b.WriteString(FormatItem(item))
		b.WriteString("\n")
	}
	return b.String()
}

// monthCell renders a day number with its done/total counts.
func monthCell(d calendar.Date, s models.DaySummary) string {
	cell := strconv.Itoa(d.Day)
	if total := s.Total(); total > 0 {
		cell += fmt.Sprintf(" %d/%d", s.Done+s.TodoDone, total)
	}
	return cell
}

// RenderMonth lays out a Monday-first month grid. Each cell shows the day
// and completed/total items.
func RenderMonth(year int, month time.Month, summary map[calendar.Date]models.DaySummary, today calendar.Date) string {
	first := calendar.FirstOfMonth(year, month)
	lead := (int(first.Weekday()) + 6) % 7

	var rows [][]string
	week := make([]string, 7)
	col := lead
	todayCell := [2]int{-1, -1}
	for d := first; d.Month == month; d = d.AddDays(1) {
		week[col] = monthCell(d, summary[d])
		if d == today {
			todayCell = [2]int{len(rows), col}
		}
		col++
		if col == 7 {
			rows = append(rows, week)
			week = make([]string, 7)
			col = 0
		}
	}
	if col > 0 {
		rows = append(rows, week)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1).Width(9)
			switch {
			case row == table.HeaderRow:
				return base.Bold(true)
			case row == todayCell[0] && col == todayCell[1]:
				return base.Inherit(TodayStyle)
			}
			return base
		})

	title := HeaderStyle.Render(fmt.Sprintf("%s %d", month, year))
	return title + "\n" + t.String() + "\n"
}

// RenderTemplates renders templates as a table.
func RenderTemplates(templates []models.Template, showIDs bool) string {
	headers := []string{"Title", "Pattern", "Anchor", "Due", "Status"}
	if showIDs {
		headers = append([]string{"ID"}, headers...)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, tpl := range templates {
		status := "active"
		if tpl.Retired() {
			status = "retired"
		}
		row := []string{tpl.Title, recurrence.Summary(tpl), tpl.AnchorDate.String(), tpl.DueTime, status}
		if showIDs {
			row = append([]string{tpl.ID}, row...)
		}
		t.Row(row...)
	}
	return t.String() + "\n"
}
