package driven

import (
	"context"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
)

// DocumentFetcher retrieves remote documents.
type DocumentFetcher interface {
	// Fetch performs a single GET of rawURL. The returned document carries
	// the declared content type and a filename derived from the URL path.
	Fetch(ctx context.Context, rawURL string) (*domain.Document, error)
}
