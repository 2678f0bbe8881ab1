package document

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wordcheck/internal/adapters/driven/fetcher"
	"github.com/custodia-labs/wordcheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/wordcheck/internal/adapters/driven/tabular"
	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
	"github.com/custodia-labs/wordcheck/internal/core/services"
	"github.com/custodia-labs/wordcheck/internal/normalisers"
)

func newSession(t *testing.T) driving.Session {
	t.Helper()

	snapshots := memory.NewRuleSnapshotStore()
	require.NoError(t, snapshots.Save(context.Background(), domain.DefaultRuleTableName,
		domain.NewRuleTable(domain.Rule{Pattern: "子供", Replacement: "子ども"})))

	manager := services.NewSessionManager(services.SessionDeps{
		Registry:  services.NewNormaliserRegistry(normalisers.All()...),
		Fetcher:   fetcher.New(fetcher.Config{RatePerSecond: -1}),
		Snapshots: snapshots,
		Reader:    tabular.NewReader(),
	})
	session, err := manager.Create(context.Background())
	require.NoError(t, err)
	return session
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

// submit enters target and runs the load and analyse commands.
func submit(t *testing.T, view *View, target string) *View {
	t.Helper()

	view.field.SetValue(target)
	view, cmd := view.Update(enter())
	require.NotNil(t, cmd)

	loaded := cmd()
	view, cmd = view.Update(loaded)
	if cmd != nil {
		view, _ = view.Update(cmd())
	}
	return view
}

func TestView_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notice.txt")
	require.NoError(t, os.WriteFile(path, []byte("遠足のお知らせ\n子供の弁当\n"), 0o600))

	view := submit(t, NewView(nil, nil, newSession(t)), path)

	assert.Equal(t, []string{"遠足のお知らせ", "子供の弁当"}, view.Lines())
	assert.Equal(t, []domain.Finding{{Pattern: "子供", Replacement: "子ども"}}, view.Findings())
	assert.Contains(t, view.View(), "1 finding")
}

func TestView_LoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("大人と子供"))
	}))
	defer srv.Close()

	view := submit(t, NewView(nil, nil, newSession(t)), srv.URL+"/notice.txt")

	assert.Equal(t, []string{"大人と子供"}, view.Lines())
	assert.Len(t, view.Findings(), 1)
}

func TestView_MissingFile(t *testing.T) {
	view := NewView(nil, nil, newSession(t))
	view.field.SetValue(filepath.Join(t.TempDir(), "missing.txt"))

	view, cmd := view.Update(enter())
	msg := cmd()

	loaded, ok := msg.(messages.DocumentLoaded)
	require.True(t, ok)
	assert.ErrorIs(t, loaded.Err, domain.ErrInvalidInput)

	view, cmd = view.Update(msg)
	assert.Nil(t, cmd)
	assert.Empty(t, view.Lines())
}

func TestView_NoSession(t *testing.T) {
	view := NewView(nil, nil, nil)
	view.field.SetValue("notice.txt")

	_, cmd := view.Update(enter())
	loaded, ok := cmd().(messages.DocumentLoaded)

	require.True(t, ok)
	assert.ErrorIs(t, loaded.Err, ErrNoSession)
}

func TestView_EmptyTargetDoesNothing(t *testing.T) {
	view := NewView(nil, nil, newSession(t))

	_, cmd := view.Update(enter())

	assert.Nil(t, cmd)
}

func TestView_EscReturnsToMenu(t *testing.T) {
	view := NewView(nil, nil, newSession(t))

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_TabTogglesFocus(t *testing.T) {
	view := NewView(nil, nil, newSession(t))
	require.True(t, view.field.Focused())

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, view.field.Focused())

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, view.field.Focused())
}

func TestView_Reset(t *testing.T) {
	view := NewView(nil, nil, newSession(t))
	view, _ = view.Update(messages.DocumentLoaded{Source: "a.txt", Format: domain.FormatText, Lines: []string{"a"}})

	view.Reset()

	assert.Empty(t, view.Lines())
	assert.Empty(t, view.Findings())
	assert.Empty(t, view.field.Value())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "notes.txt"), expandHome("~/notes.txt"))
	assert.Equal(t, "/tmp/notes.txt", expandHome("/tmp/notes.txt"))
}
