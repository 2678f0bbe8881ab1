package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wordcheck/internal/adapters/driven/fetcher"
	"github.com/custodia-labs/wordcheck/internal/core/domain"
)

func TestCreateAndCloseSession(t *testing.T) {
	env := newTestEnv(t, sampleRules(), nil, Config{})

	rec := env.do(t, http.MethodPost, "/sessions", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[sessionResponse](t, rec)
	assert.Equal(t, 2, resp.Rules)
	assert.Equal(t, "/sessions/"+resp.ID, rec.Header().Get("Location"))

	rec = env.do(t, http.MethodDelete, "/sessions/"+resp.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, env.sessions.Count())

	rec = env.do(t, http.MethodDelete, "/sessions/"+resp.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownSession(t *testing.T) {
	env := newTestEnv(t, nil, nil, Config{})

	rec := env.do(t, http.MethodPost, "/sessions/missing/analysis", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoadTextAndAnalyse(t *testing.T) {
	env := newTestEnv(t, sampleRules(), nil, Config{})
	id := env.createSession(t)

	rec := env.doJSON(t, http.MethodPut, "/sessions/"+id+"/document", documentRequest{Text: "子供が出来る\n二行目"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	doc := decode[documentResponse](t, rec)
	assert.Equal(t, "paste", doc.URI)
	assert.Equal(t, string(domain.FormatText), doc.Format)
	assert.Equal(t, 2, doc.Count)
	assert.Empty(t, doc.Lines)

	rec = env.do(t, http.MethodPost, "/sessions/"+id+"/analysis", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[analysisResponse](t, rec)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, []domain.Finding{
		{Pattern: "子供", Replacement: "子ども"},
		{Pattern: "出来る", Replacement: "できる"},
	}, resp.Findings)
	assert.Equal(t, "子供 → 子ども\n出来る → できる", resp.Report)
}

func TestAnalyse_NoMatches(t *testing.T) {
	env := newTestEnv(t, sampleRules(), nil, Config{})
	id := env.createSession(t)

	env.doJSON(t, http.MethodPut, "/sessions/"+id+"/document", documentRequest{Text: "問題なし"})
	rec := env.do(t, http.MethodPost, "/sessions/"+id+"/analysis", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[analysisResponse](t, rec)
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Findings)
}

func TestAnalyse_Preconditions(t *testing.T) {
	env := newTestEnv(t, nil, nil, Config{})
	id := env.createSession(t)

	rec := env.do(t, http.MethodPost, "/sessions/"+id+"/analysis", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.doJSON(t, http.MethodPut, "/sessions/"+id+"/document", documentRequest{Text: "子供"})
	rec = env.do(t, http.MethodPost, "/sessions/"+id+"/analysis", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, domain.ErrNoRulesLoaded.Error())
}

func TestLoadDocument_InvalidJSON(t *testing.T) {
	env := newTestEnv(t, nil, nil, Config{})
	id := env.createSession(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", "{"},
		{"both", `{"text":"a","url":"http://x"}`},
		{"empty", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPut, "/sessions/"+id+"/document", "application/json", []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoadDocument_RawUpload(t *testing.T) {
	env := newTestEnv(t, sampleRules(), nil, Config{})
	id := env.createSession(t)

	rec := env.do(t, http.MethodPut, "/sessions/"+id+"/document?name=notice.csv", "text/csv", []byte("件名,本文\n遠足,子供の弁当\n"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	doc := decode[documentResponse](t, rec)
	assert.Equal(t, "notice.csv", doc.Name)
	assert.Equal(t, string(domain.FormatCSV), doc.Format)

	rec = env.do(t, http.MethodGet, "/sessions/"+id+"/document", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"件名 本文", "遠足 子供の弁当"}, decode[documentResponse](t, rec).Lines)
}

func TestLoadDocument_Unreadable(t *testing.T) {
	env := newTestEnv(t, nil, nil, Config{})
	id := env.createSession(t)

	rec := env.do(t, http.MethodPut, "/sessions/"+id+"/document?name=broken.pdf", "application/pdf", []byte("not a pdf"))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[errorResponse](t, rec)
	require.Len(t, resp.Attempts, 1)
	assert.Equal(t, string(domain.FormatPDF), resp.Attempts[0].Format)
	assert.False(t, resp.Attempts[0].OK)
}

func TestLoadDocument_TooLarge(t *testing.T) {
	env := newTestEnv(t, nil, nil, Config{MaxBodyBytes: 8})
	id := env.createSession(t)

	rec := env.do(t, http.MethodPut, "/sessions/"+id+"/document?name=a.txt", "text/plain", []byte(strings.Repeat("x", 64)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestLoadDocument_URL(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("出来る限り")) //nolint:errcheck
	}))
	defer remote.Close()

	env := newTestEnv(t, sampleRules(), fetcher.New(fetcher.Config{RatePerSecond: -1}), Config{})
	id := env.createSession(t)

	rec := env.doJSON(t, http.MethodPut, "/sessions/"+id+"/document", documentRequest{URL: remote.URL + "/notice.txt"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, remote.URL+"/notice.txt", decode[documentResponse](t, rec).URI)

	rec = env.do(t, http.MethodPost, "/sessions/"+id+"/analysis", "", nil)
	assert.Equal(t, "出来る → できる", decode[analysisResponse](t, rec).Report)
}

func TestLoadDocument_URLUpstreamError(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer remote.Close()

	env := newTestEnv(t, nil, fetcher.New(fetcher.Config{RatePerSecond: -1}), Config{})
	id := env.createSession(t)

	rec := env.doJSON(t, http.MethodPut, "/sessions/"+id+"/document", documentRequest{URL: remote.URL})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetDocument_CSVAndClear(t *testing.T) {
	env := newTestEnv(t, nil, nil, Config{})
	id := env.createSession(t)

	rec := env.do(t, http.MethodGet, "/sessions/"+id+"/document", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.doJSON(t, http.MethodPut, "/sessions/"+id+"/document", documentRequest{Text: "一行目\n二行目"})

	rec = env.do(t, http.MethodGet, "/sessions/"+id+"/document?format=csv", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "document.csv")
	assert.Contains(t, rec.Body.String(), "一行目")

	rec = env.do(t, http.MethodDelete, "/sessions/"+id+"/document", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/sessions/"+id+"/document?format=csv", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRules_ImportAndExport(t *testing.T) {
	env := newTestEnv(t, nil, nil, Config{})
	id := env.createSession(t)

	rec := env.do(t, http.MethodPut, "/sessions/"+id+"/rules?name=rules.csv", "text/csv", []byte("誤表記,正表記\n子供,子ども\n"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rules := decode[rulesResponse](t, rec)
	assert.Equal(t, 1, rules.Count)
	assert.False(t, rules.Dirty)

	saved, err := env.snapshots.Load(context.Background(), domain.DefaultRuleTableName)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Len())

	rec = env.do(t, http.MethodGet, "/sessions/"+id+"/rules/export", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "誤表記,正表記\n子供,子ども\n", rec.Body.String())
}

func TestRules_ImportMissingColumn(t *testing.T) {
	env := newTestEnv(t, sampleRules(), nil, Config{})
	id := env.createSession(t)

	rec := env.do(t, http.MethodPut, "/sessions/"+id+"/rules?name=rules.csv", "text/csv", []byte("誤表記,備考\n子供,x\n"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/sessions/"+id+"/rules", "", nil)
	assert.Equal(t, 2, decode[rulesResponse](t, rec).Count)
}

func TestRules_EditCommitRevert(t *testing.T) {
	env := newTestEnv(t, sampleRules(), nil, Config{})
	id := env.createSession(t)
	base := "/sessions/" + id + "/rules"

	rec := env.doJSON(t, http.MethodPost, base+"/items", ruleJSON{Pattern: "下さい", Replacement: "ください"})
	require.Equal(t, http.StatusOK, rec.Code)
	rules := decode[rulesResponse](t, rec)
	assert.Equal(t, 3, rules.Count)
	assert.True(t, rules.Dirty)

	rec = env.doJSON(t, http.MethodPut, base+"/items/0", ruleJSON{Pattern: "子供達", Replacement: "子どもたち"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "子供達", decode[rulesResponse](t, rec).Rules[0].Pattern)

	rec = env.do(t, http.MethodDelete, base+"/items/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[rulesResponse](t, rec).Count)

	rec = env.do(t, http.MethodPost, base+"/revert", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rules = decode[rulesResponse](t, rec)
	assert.Equal(t, "子供", rules.Rules[0].Pattern)
	assert.False(t, rules.Dirty)

	env.doJSON(t, http.MethodPost, base+"/items", ruleJSON{Pattern: "下さい", Replacement: "ください"})
	rec = env.do(t, http.MethodPost, base+"/commit", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[rulesResponse](t, rec).Dirty)

	saved, err := env.snapshots.Load(context.Background(), domain.DefaultRuleTableName)
	require.NoError(t, err)
	assert.Equal(t, 3, saved.Len())
}

func TestRules_IndexOutOfRange(t *testing.T) {
	env := newTestEnv(t, sampleRules(), nil, Config{})
	id := env.createSession(t)

	rec := env.do(t, http.MethodDelete, "/sessions/"+id+"/rules/items/9", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(t, http.MethodPut, "/sessions/"+id+"/rules/items/99999999999999999999", ruleJSON{Pattern: "a"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRules_Delete(t *testing.T) {
	env := newTestEnv(t, sampleRules(), nil, Config{})
	id := env.createSession(t)

	rec := env.do(t, http.MethodDelete, "/sessions/"+id+"/rules", "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err := env.snapshots.Load(context.Background(), domain.DefaultRuleTableName)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rec = env.do(t, http.MethodGet, "/sessions/"+id+"/rules/export", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/sessions/"+id+"/rules/commit", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSessions_AreIsolated(t *testing.T) {
	env := newTestEnv(t, sampleRules(), nil, Config{})
	a := env.createSession(t)
	b := env.createSession(t)

	env.doJSON(t, http.MethodPut, "/sessions/"+a+"/document", documentRequest{Text: "子供"})
	env.doJSON(t, http.MethodPost, "/sessions/"+a+"/rules/items", ruleJSON{Pattern: "x", Replacement: "y"})

	rec := env.do(t, http.MethodPost, "/sessions/"+b+"/analysis", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/sessions/"+b+"/rules", "", nil)
	assert.Equal(t, 2, decode[rulesResponse](t, rec).Count)
}
