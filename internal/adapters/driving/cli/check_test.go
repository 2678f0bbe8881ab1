package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wordcheck/internal/adapters/driven/fetcher"
	"github.com/custodia-labs/wordcheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/wordcheck/internal/adapters/driven/tabular"
	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
	"github.com/custodia-labs/wordcheck/internal/core/services"
	"github.com/custodia-labs/wordcheck/internal/normalisers"
)

func TestCheckCmd_Registered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"check"})
	require.NoError(t, err)
	assert.Equal(t, "check [file]", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("url"))
	assert.NotNil(t, cmd.Flags().Lookup("text"))
	assert.NotNil(t, cmd.Flags().Lookup("watch"))
}

func TestCheckCmd_Text(t *testing.T) {
	_, cleanup := setupTestServices(t, sampleRules()...)
	defer cleanup()

	out, _, err := run("", "check", "--text", "子供が出来る")

	require.NoError(t, err)
	assert.Equal(t, "子供 → 子ども\n出来る → できる\n", out)
}

func TestCheckCmd_NoFindings(t *testing.T) {
	_, cleanup := setupTestServices(t, sampleRules()...)
	defer cleanup()

	out, _, err := run("", "check", "--text", "問題ありません")

	require.NoError(t, err)
	assert.Equal(t, "No findings.\n", out)
}

func TestCheckCmd_File(t *testing.T) {
	_, cleanup := setupTestServices(t, sampleRules()...)
	defer cleanup()

	path := filepath.Join(t.TempDir(), "notice.csv")
	require.NoError(t, os.WriteFile(path, []byte("件名,本文\n遠足,子供の弁当\n"), 0o600))

	out, _, err := run("", "check", path)

	require.NoError(t, err)
	assert.Equal(t, "子供 → 子ども\n", out)
}

func TestCheckCmd_Stdin(t *testing.T) {
	_, cleanup := setupTestServices(t, sampleRules()...)
	defer cleanup()

	out, _, err := run("出来るだけ早く", "check", "--name", "memo.txt")

	require.NoError(t, err)
	assert.Equal(t, "出来る → できる\n", out)
}

func TestCheckCmd_NoInput(t *testing.T) {
	_, cleanup := setupTestServices(t, sampleRules()...)
	defer cleanup()

	_, _, err := run("", "check")

	assert.ErrorIs(t, err, errNoInput)
}

func TestCheckCmd_MissingFile(t *testing.T) {
	_, cleanup := setupTestServices(t, sampleRules()...)
	defer cleanup()

	_, _, err := run("", "check", filepath.Join(t.TempDir(), "missing.txt"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckCmd_NoRules(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	_, _, err := run("", "check", "--text", "子供")

	require.ErrorIs(t, err, domain.ErrNoRulesLoaded)
	assert.Contains(t, err.Error(), "wordcheck rules import")
}

func TestCheckCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices(t, sampleRules()...)
	defer cleanup()

	out, _, err := run("", "check", "--json", "--text", "子供")
	require.NoError(t, err)

	var report checkReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "text", report.Source)
	assert.Equal(t, 1, report.Count)
	assert.Equal(t, []domain.Finding{{Pattern: "子供", Replacement: "子ども"}}, report.Findings)
}

func TestCheckCmd_URL(t *testing.T) {
	_, cleanup := setupTestServices(t, sampleRules()...)
	defer cleanup()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><p>子供会のお知らせ</p></body></html>"))
	}))
	defer srv.Close()

	snapshots := memory.NewRuleSnapshotStore()
	require.NoError(t, snapshots.Save(t.Context(), domain.DefaultRuleTableName, domain.NewRuleTable(sampleRules()...)))
	SetServices(services.NewSessionManager(services.SessionDeps{
		Registry:  services.NewNormaliserRegistry(normalisers.All()...),
		Fetcher:   fetcher.New(fetcher.Config{RatePerSecond: -1}),
		Snapshots: snapshots,
		Reader:    tabular.NewReader(),
	}), settingsService)

	out, _, err := run("", "check", "--url", srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "子供 → 子ども\n", out)
}

func TestCheckCmd_URLWithoutFetcher(t *testing.T) {
	_, cleanup := setupTestServices(t, sampleRules()...)
	defer cleanup()

	_, _, err := run("", "check", "--url", "https://example.com/notice.pdf")

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestCheckCmd_WatchNeedsFile(t *testing.T) {
	_, cleanup := setupTestServices(t, sampleRules()...)
	defer cleanup()

	_, _, err := run("", "check", "--watch", "--text", "子供")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch needs a file")
}

func TestCheckCmd_Watch(t *testing.T) {
	_, cleanup := setupTestServices(t, sampleRules()...)
	defer cleanup()

	path := filepath.Join(t.TempDir(), "draft.txt")
	require.NoError(t, os.WriteFile(path, []byte("子供"), 0o600))

	watcher := &fakeWatcher{content: "出来る"}
	newWatcher = func() (driven.FileWatcher, error) { return watcher, nil }

	out, errOut, err := run("", "check", "--watch", path)

	require.NoError(t, err)
	assert.True(t, watcher.stopped)
	assert.Contains(t, errOut, "Watching "+path)
	assert.Contains(t, out, "子供 → 子ども\n")
	assert.Contains(t, out, "---")
	assert.Contains(t, out, "出来る → できる\n")
}

func TestCheckCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()
	sessionManager = nil

	_, _, err := run("", "check", "--text", "子供")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "session manager not configured")
}
