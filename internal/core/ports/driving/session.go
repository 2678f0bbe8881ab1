package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
)

// Session holds the current document and rule table of one user.
// Sessions never share state with each other.
type Session interface {
	// ID returns the session identifier.
	ID() string

	// Rules returns the session's rule service.
	Rules() RuleService

	// LoadFile normalises an uploaded or local file and makes it current.
	LoadFile(ctx context.Context, name string, content []byte) (*domain.NormalisedText, error)

	// LoadURL fetches a remote document, normalises it and makes it current.
	LoadURL(ctx context.Context, rawURL string) (*domain.NormalisedText, error)

	// LoadText makes pasted text the current document.
	LoadText(ctx context.Context, text string) (*domain.NormalisedText, error)

	// Document returns the current document, or nil.
	Document() *domain.Document

	// Text returns the normalised text of the current document, or nil.
	Text() *domain.NormalisedText

	// Clear discards the current document.
	Clear()

	// Analyse matches the current document against the current rules.
	// Each call returns a fresh sequence of findings.
	Analyse(ctx context.Context) ([]domain.Finding, error)

	// ExportText writes the current document's lines as CSV.
	ExportText(w io.Writer) error
}

// SessionManager creates and tracks isolated sessions.
type SessionManager interface {
	// Create starts a new session seeded with the saved rule snapshot.
	Create(ctx context.Context) (Session, error)

	// Get returns an existing session.
	// Returns domain.ErrSessionNotFound for unknown ids.
	Get(id string) (Session, error)

	// Close discards a session.
	Close(id string) error

	// Count returns the number of open sessions.
	Count() int
}
