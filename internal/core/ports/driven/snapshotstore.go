package driven

import (
	"context"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
)

// RuleSnapshotStore persists rule tables by name.
// Load(Save(x)) must return a table equal to x, order included.
type RuleSnapshotStore interface {
	// Save stores or replaces the named snapshot.
	Save(ctx context.Context, name string, table *domain.RuleTable) error

	// Load retrieves the named snapshot.
	// Returns domain.ErrNotFound if none has been saved.
	Load(ctx context.Context, name string) (*domain.RuleTable, error)

	// Delete removes the named snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored snapshots.
	List(ctx context.Context) ([]string, error)
}
