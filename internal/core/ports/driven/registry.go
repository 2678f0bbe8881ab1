package driven

import (
	"context"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a document.
// A filename extension or declared MIME type selects a normaliser directly;
// otherwise registered normalisers are tried in priority order until one
// produces non-empty text.
type NormaliserRegistry interface {
	// Normalise transforms a document into searchable text.
	// Returns *domain.UnreadableDocumentError when every attempt fails.
	Normalise(ctx context.Context, doc *domain.Document) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// FallbackOrder returns the formats tried when no hint applies, in order.
	FallbackOrder() []domain.Format
}
