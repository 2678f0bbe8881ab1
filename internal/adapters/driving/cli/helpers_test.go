package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wordcheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/wordcheck/internal/adapters/driven/tabular"
	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
	"github.com/custodia-labs/wordcheck/internal/core/services"
	"github.com/custodia-labs/wordcheck/internal/normalisers"
)

// testServices holds the stores behind the services wired by
// setupTestServices.
type testServices struct {
	snapshots *memory.RuleSnapshotStore
}

// setupTestServices wires in-memory services seeded with rules and
// returns a cleanup that restores the previous wiring and flag values.
func setupTestServices(t *testing.T, rules ...domain.Rule) (*testServices, func()) {
	t.Helper()

	snapshots := memory.NewRuleSnapshotStore()
	if len(rules) > 0 {
		require.NoError(t, snapshots.Save(context.Background(), domain.DefaultRuleTableName, domain.NewRuleTable(rules...)))
	}

	prevSessions, prevSettings, prevWatcher := sessionManager, settingsService, newWatcher
	SetServices(
		services.NewSessionManager(services.SessionDeps{
			Registry:  services.NewNormaliserRegistry(normalisers.All()...),
			Snapshots: snapshots,
			Reader:    tabular.NewReader(),
			TableName: domain.DefaultRuleTableName,
		}),
		services.NewSettingsService(memory.NewConfigStore()),
	)

	return &testServices{snapshots: snapshots}, func() {
		sessionManager, settingsService, newWatcher = prevSessions, prevSettings, prevWatcher
		resetFlags()
	}
}

func resetFlags() {
	checkInput = inputFlags{}
	checkJSON = false
	checkWatch = false
	rulesJSON = false
	rulesOutput = ""
	documentInput = inputFlags{}
	documentCSV = false
}

func sampleRules() []domain.Rule {
	return []domain.Rule{
		{Pattern: "子供", Replacement: "子ども"},
		{Pattern: "出来る", Replacement: "できる"},
	}
}

// run executes the root command with args and returns stdout and stderr.
func run(stdin string, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	var in io.Reader = strings.NewReader(stdin)
	rootCmd.SetIn(in)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags()
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// fakeWatcher rewrites the watched file once and reports the change.
type fakeWatcher struct {
	content string
	stopped bool
}

var _ driven.FileWatcher = (*fakeWatcher)(nil)

func (w *fakeWatcher) Watch(_ context.Context, path string) (<-chan string, error) {
	if err := os.WriteFile(path, []byte(w.content), 0o600); err != nil {
		return nil, err
	}
	out := make(chan string, 1)
	out <- path
	close(out)
	return out, nil
}

func (w *fakeWatcher) Stop() error {
	w.stopped = true
	return nil
}
