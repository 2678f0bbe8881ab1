package services

import (
	"sync/atomic"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
)

// RuleStore holds the current rule table of one session.
// Replace swaps the whole table at once; readers see either the old or
// the new table, never a mix.
type RuleStore struct {
	table atomic.Pointer[domain.RuleTable]
}

// NewRuleStore creates an empty store.
func NewRuleStore() *RuleStore {
	return &RuleStore{}
}

// Load parses tabular rows and replaces the held table.
// The held table is unchanged on error.
func (s *RuleStore) Load(rows [][]string) (*domain.RuleTable, error) {
	table, err := domain.LoadRuleTable(rows)
	if err != nil {
		return nil, err
	}
	s.Replace(table)
	return table, nil
}

// Replace swaps the held table. A nil table clears the store.
func (s *RuleStore) Replace(table *domain.RuleTable) {
	s.table.Store(table)
}

// Current returns the held table, or nil if none has been loaded.
// Callers must not modify the returned table; clone it first.
func (s *RuleStore) Current() *domain.RuleTable {
	return s.table.Load()
}

// Loaded returns true if a table is held.
func (s *RuleStore) Loaded() bool {
	return s.table.Load() != nil
}
