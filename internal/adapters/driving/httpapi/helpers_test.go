package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wordcheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/wordcheck/internal/adapters/driven/tabular"
	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
	"github.com/custodia-labs/wordcheck/internal/core/services"
	"github.com/custodia-labs/wordcheck/internal/normalisers"
)

type testEnv struct {
	server    *Server
	sessions  *services.SessionManager
	snapshots *memory.RuleSnapshotStore
}

func newTestEnv(t *testing.T, seed *domain.RuleTable, fetcher driven.DocumentFetcher, cfg Config) *testEnv {
	t.Helper()

	snapshots := memory.NewRuleSnapshotStore()
	if seed != nil {
		require.NoError(t, snapshots.Save(context.Background(), domain.DefaultRuleTableName, seed))
	}

	sessions := services.NewSessionManager(services.SessionDeps{
		Registry:  services.NewNormaliserRegistry(normalisers.All()...),
		Fetcher:   fetcher,
		Snapshots: snapshots,
		Reader:    tabular.NewReader(),
	})

	return &testEnv{server: New(sessions, cfg), sessions: sessions, snapshots: snapshots}
}

func (e *testEnv) do(t *testing.T, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path string, v any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(v)
	require.NoError(t, err)
	return e.do(t, method, path, "application/json", body)
}

// createSession opens a session and returns its id.
func (e *testEnv) createSession(t *testing.T) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/sessions", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func sampleRules() *domain.RuleTable {
	return &domain.RuleTable{
		Columns: []string{domain.PatternColumn, domain.ReplacementColumn},
		Rules: []domain.Rule{
			{Pattern: "子供", Replacement: "子ども"},
			{Pattern: "出来る", Replacement: "できる"},
		},
	}
}
