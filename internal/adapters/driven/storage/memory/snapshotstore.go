package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
)

// Ensure RuleSnapshotStore implements the interface.
var _ driven.RuleSnapshotStore = (*RuleSnapshotStore)(nil)

// RuleSnapshotStore is an in-memory implementation of driven.RuleSnapshotStore.
// Tables are cloned on the way in and out so callers cannot alias stored state.
type RuleSnapshotStore struct {
	mu     sync.RWMutex
	tables map[string]*domain.RuleTable
}

// NewRuleSnapshotStore creates a new in-memory snapshot store.
func NewRuleSnapshotStore() *RuleSnapshotStore {
	return &RuleSnapshotStore{
		tables: make(map[string]*domain.RuleTable),
	}
}

// Save stores or replaces a snapshot.
func (s *RuleSnapshotStore) Save(_ context.Context, name string, table *domain.RuleTable) error {
	if table == nil {
		table = domain.NewRuleTable()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[name] = table.Clone()
	return nil
}

// Load retrieves a snapshot by name.
func (s *RuleSnapshotStore) Load(_ context.Context, name string) (*domain.RuleTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.tables[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return table.Clone(), nil
}

// Delete removes a snapshot.
func (s *RuleSnapshotStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, name)
	return nil
}

// List returns snapshot names in lexical order.
func (s *RuleSnapshotStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
