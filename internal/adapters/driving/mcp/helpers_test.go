package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wordcheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/wordcheck/internal/adapters/driven/tabular"
	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
	"github.com/custodia-labs/wordcheck/internal/core/services"
	"github.com/custodia-labs/wordcheck/internal/normalisers"
)

// newTestServer wires a server over real services. When seed is non-nil
// it is saved as the default rule table.
func newTestServer(t *testing.T, seed *domain.RuleTable, fetcher driven.DocumentFetcher) *Server {
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

	server, err := NewServer(&Ports{Sessions: sessions})
	require.NoError(t, err)
	return server
}

func sampleRules() *domain.RuleTable {
	return &domain.RuleTable{
		Columns: []string{domain.PatternColumn, domain.ReplacementColumn, "備考"},
		Rules: []domain.Rule{
			{Pattern: "子供", Replacement: "子ども", Extra: map[string]string{"備考": "常用"}},
			{Pattern: "出来る", Replacement: "できる", Extra: map[string]string{"備考": ""}},
		},
	}
}
