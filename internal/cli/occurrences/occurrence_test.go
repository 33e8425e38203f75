package occurrences

import (
	"strings"
	"testing"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/cli/clitest"
	"github.com/julianstephens/daybook/internal/constants"
	apperrors "github.com/julianstephens/daybook/internal/errors"
	"github.com/julianstephens/daybook/internal/models"
)

// setupTemplate adds an every-other-day template anchored on 2026-01-10.
func setupTemplate(t *testing.T) (*clitest.Env, string) {
	t.Helper()
	env := clitest.New(t)
	id, err := env.Ctx.Agenda.CreateTemplate(t.Context(), models.TemplateInput{
		Title:   "Run",
		Pattern: models.Pattern{Kind: constants.PatternEveryNDays, Interval: 2},
	})
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}
	return env, id
}

func statusOn(t *testing.T, env *clitest.Env, date string) string {
	t.Helper()
	d, err := env.Ctx.Agenda.GetDay(t.Context(), mustDate(t, env, date))
	if err != nil {
		t.Fatalf("GetDay failed: %v", err)
	}
	if len(d.Items) != 1 {
		t.Fatalf("expected one item on %s, got %d", date, len(d.Items))
	}
	return d.Items[0].Status
}

func TestOccurrenceStatusCommands(t *testing.T) {
	env, id := setupTemplate(t)

	out := env.Run(t, &OccurrenceDoneCmd{Target{ID: id}})
	if !strings.Contains(out, "✓ Run on 2026-01-10: done") {
		t.Errorf("unexpected done output: %q", out)
	}
	if got := statusOn(t, env, "2026-01-10"); got != "done" {
		t.Errorf("status = %s, want done", got)
	}

	env.Run(t, &OccurrenceSkipCmd{Target{ID: id, Date: "+2"}})
	if got := statusOn(t, env, "2026-01-12"); got != "skipped" {
		t.Errorf("status = %s, want skipped", got)
	}

	env.Run(t, &OccurrenceResetCmd{Target{ID: id}})
	if got := statusOn(t, env, "2026-01-10"); got != "pending" {
		t.Errorf("status = %s, want pending", got)
	}
}

func TestOccurrenceOffPatternRejected(t *testing.T) {
	env, id := setupTemplate(t)

	err := (&OccurrenceDoneCmd{Target{ID: id, Date: "tomorrow"}}).Run(env.Ctx)
	if !apperrors.Is(err, apperrors.ErrNotAnOccurrence) {
		t.Errorf("expected ErrNotAnOccurrence, got %v", err)
	}
}

func TestOccurrenceRename(t *testing.T) {
	env, id := setupTemplate(t)

	out := env.Run(t, &OccurrenceRenameCmd{ID: id, Date: "2026-01-12", Title: "Long run"})
	if !strings.Contains(out, `renamed to "Long run"`) {
		t.Errorf("unexpected rename output: %q", out)
	}
	d, err := env.Ctx.Agenda.GetDay(t.Context(), mustDate(t, env, "2026-01-12"))
	if err != nil {
		t.Fatalf("GetDay failed: %v", err)
	}
	if d.Items[0].Title != "Long run" {
		t.Errorf("title = %q, want override", d.Items[0].Title)
	}

	out = env.Run(t, &OccurrenceRenameCmd{ID: id, Date: "2026-01-12"})
	if !strings.Contains(out, "uses the template title again") {
		t.Errorf("unexpected reset output: %q", out)
	}
}

func mustDate(t *testing.T, env *clitest.Env, s string) calendar.Date {
	t.Helper()
	d, err := cli.ParseDate(env.Ctx.Clock, s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}
