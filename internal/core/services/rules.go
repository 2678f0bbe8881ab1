package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
	"github.com/custodia-labs/wordcheck/internal/logger"
)

// Ensure RuleService implements the interface.
var _ driving.RuleService = (*RuleService)(nil)

// RuleService manages the working copy and saved snapshot of one
// session's rule table.
type RuleService struct {
	store     *RuleStore
	snapshots driven.RuleSnapshotStore
	reader    driven.TableReader
	tableName string

	mu    sync.Mutex
	saved *domain.RuleTable
}

// NewRuleService creates a rule service persisting under tableName.
// An empty tableName uses domain.DefaultRuleTableName.
func NewRuleService(
	snapshots driven.RuleSnapshotStore,
	reader driven.TableReader,
	tableName string,
) *RuleService {
	if tableName == "" {
		tableName = domain.DefaultRuleTableName
	}
	return &RuleService{
		store:     NewRuleStore(),
		snapshots: snapshots,
		reader:    reader,
		tableName: tableName,
	}
}

// TableName returns the snapshot name this service persists under.
func (s *RuleService) TableName() string {
	return s.tableName
}

// Restore loads the saved snapshot into the working copy.
func (s *RuleService) Restore(ctx context.Context) (*domain.RuleTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.saved = table
	s.store.Replace(table.Clone())
	logger.Debug("restored rule table %q (%d rules)", s.tableName, table.Len())
	return s.store.Current(), nil
}

// Import parses a tabular rule source and persists it as the new working
// copy. Nothing changes if parsing or saving fails.
func (s *RuleService) Import(ctx context.Context, name string, content []byte) (*domain.RuleTable, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("%w: no table reader configured", domain.ErrUnsupportedType)
	}

	rows, err := s.reader.ReadTable(ctx, name, content)
	if err != nil {
		return nil, &domain.RuleLoadError{Source: name, Err: err}
	}

	table, err := domain.LoadRuleTable(rows)
	if err != nil {
		var rle *domain.RuleLoadError
		if errors.As(err, &rle) && rle.Source == "" {
			rle.Source = name
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(ctx, table); err != nil {
		return nil, err
	}
	s.saved = table.Clone()
	s.store.Replace(table)
	logger.Debug("imported %d rules from %q", table.Len(), name)
	return table, nil
}

// Current returns the working copy, or nil if none is loaded.
func (s *RuleService) Current() *domain.RuleTable {
	return s.store.Current()
}

// Replace swaps the working copy without persisting.
func (s *RuleService) Replace(table *domain.RuleTable) {
	s.store.Replace(table)
}

// AddRule appends a rule to the working copy, creating an empty table
// with the two required columns if none is loaded.
func (s *RuleService) AddRule(rule domain.Rule) *domain.RuleTable {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.working()
	table.Rules = append(table.Rules, rule)
	s.store.Replace(table)
	return table
}

// UpdateRule replaces the rule at index in the working copy.
func (s *RuleService) UpdateRule(index int, rule domain.Rule) (*domain.RuleTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.working()
	if index < 0 || index >= table.Len() {
		return nil, fmt.Errorf("%w: rule index %d out of range", domain.ErrInvalidInput, index)
	}
	table.Rules[index] = rule
	s.store.Replace(table)
	return table, nil
}

// RemoveRule deletes the rule at index from the working copy.
func (s *RuleService) RemoveRule(index int) (*domain.RuleTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.working()
	if index < 0 || index >= table.Len() {
		return nil, fmt.Errorf("%w: rule index %d out of range", domain.ErrInvalidInput, index)
	}
	table.Rules = append(table.Rules[:index], table.Rules[index+1:]...)
	s.store.Replace(table)
	return table, nil
}

// Commit persists the working copy.
func (s *RuleService) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.store.Current()
	if current == nil {
		return domain.ErrNoRulesLoaded
	}
	if err := s.save(ctx, current); err != nil {
		return err
	}
	s.saved = current.Clone()
	return nil
}

// Revert discards edits by reloading the saved snapshot. With nothing
// saved the working copy is cleared and (nil, nil) is returned.
func (s *RuleService) Revert(ctx context.Context) (*domain.RuleTable, error) {
	table, err := s.Restore(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.saved = nil
		s.store.Replace(nil)
		logger.Debug("reverted rule table %q to empty", s.tableName)
		return nil, nil
	}
	return table, err
}

// Delete removes the saved snapshot and clears the working copy.
func (s *RuleService) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.snapshots.Delete(ctx, s.tableName); err != nil {
		return &domain.PersistenceError{Op: "delete", Err: err}
	}
	s.saved = nil
	s.store.Replace(nil)
	return nil
}

// Dirty returns true if the working copy differs from the saved snapshot.
func (s *RuleService) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.store.Current()
	if (current == nil) != (s.saved == nil) {
		return true
	}
	return !current.Equal(s.saved)
}

// Export writes the working copy as CSV with its column headers.
func (s *RuleService) Export(w io.Writer) error {
	current := s.store.Current()
	if current == nil {
		return domain.ErrNoRulesLoaded
	}
	return writeCSV(w, current.Rows())
}

// working returns an editable copy of the working table (caller holds lock).
func (s *RuleService) working() *domain.RuleTable {
	if current := s.store.Current(); current != nil {
		return current.Clone()
	}
	return domain.NewRuleTable()
}

func (s *RuleService) load(ctx context.Context) (*domain.RuleTable, error) {
	table, err := s.snapshots.Load(ctx, s.tableName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, &domain.PersistenceError{Op: "load", Err: err}
	}
	return table, nil
}

func (s *RuleService) save(ctx context.Context, table *domain.RuleTable) error {
	if err := s.snapshots.Save(ctx, s.tableName, table); err != nil {
		return &domain.PersistenceError{Op: "save", Err: err}
	}
	return nil
}
