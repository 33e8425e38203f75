package system

import (
	"bytes"
	"testing"

	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/cli/clitest"
)

// setupTestContext returns a context over a SQLite file in a temp dir.
// The store is initialized only when initialized is true.
func setupTestContext(t *testing.T, initialized bool) (*cli.Context, *bytes.Buffer, string) {
	t.Helper()
	var env *clitest.Env
	if initialized {
		env = clitest.New(t)
	} else {
		env = clitest.NewUninitialized(t)
	}
	return env.Ctx, env.Out, env.DBPath
}
