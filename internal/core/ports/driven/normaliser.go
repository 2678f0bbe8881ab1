package driven

import (
	"context"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
)

// Normaliser extracts searchable text from documents of one format.
type Normaliser interface {
	// Format returns the document format this normaliser handles.
	Format() domain.Format

	// Extensions returns filename extensions (lower case, with dot) that
	// strongly indicate this format.
	Extensions() []string

	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the position in the fallback order used when no
	// hint resolves the format (higher = tried first).
	// Zero means the normaliser is only used when hinted.
	Priority() int

	// Normalise extracts text from the document. Implementations may return
	// empty text; the registry treats empty output as a failed attempt.
	Normalise(ctx context.Context, doc *domain.Document) (*domain.NormalisedText, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Text is the searchable text.
	Text *domain.NormalisedText

	// Format is the format of the normaliser that succeeded.
	Format domain.Format

	// Attempts lists every parser tried, in order, including the successful one.
	Attempts []domain.ParseAttempt
}
