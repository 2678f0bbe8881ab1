package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
)

// RuleService manages the rule table of one session.
//
// The service keeps a working copy (what the matcher uses) and the last
// saved snapshot. Edits change the working copy only; Commit persists it
// and Revert discards edits.
type RuleService interface {
	// Restore loads the saved snapshot into the working copy.
	// Returns domain.ErrNotFound when nothing has been saved yet.
	Restore(ctx context.Context) (*domain.RuleTable, error)

	// Import parses a tabular rule source, replaces the working copy and
	// persists it.
	Import(ctx context.Context, name string, content []byte) (*domain.RuleTable, error)

	// Current returns the working copy, or nil if none is loaded.
	Current() *domain.RuleTable

	// Replace swaps the working copy for table without persisting.
	Replace(table *domain.RuleTable)

	// AddRule appends a rule to the working copy.
	AddRule(rule domain.Rule) *domain.RuleTable

	// UpdateRule replaces the rule at index in the working copy.
	UpdateRule(index int, rule domain.Rule) (*domain.RuleTable, error)

	// RemoveRule deletes the rule at index from the working copy.
	RemoveRule(index int) (*domain.RuleTable, error)

	// Commit persists the working copy.
	Commit(ctx context.Context) error

	// Revert replaces the working copy with the saved snapshot, or clears it
	// when nothing is saved.
	Revert(ctx context.Context) (*domain.RuleTable, error)

	// Delete removes the saved snapshot and clears the working copy.
	Delete(ctx context.Context) error

	// Dirty returns true if the working copy differs from the saved snapshot.
	Dirty() bool

	// Export writes the working copy as CSV.
	Export(w io.Writer) error
}
