// Package csv normalises comma-separated files: one line per non-blank
// row, cells joined by a single space.
package csv

import (
	"context"

	"github.com/custodia-labs/wordcheck/internal/adapters/driven/tabular"
	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles CSV documents.
type Normaliser struct{}

// New creates a new CSV normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Format returns domain.FormatCSV.
func (n *Normaliser) Format() domain.Format {
	return domain.FormatCSV
}

// Extensions returns the filename extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".csv"}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/csv", "application/csv"}
}

// Priority returns 0. Nearly any text parses as CSV, so it is only
// used when hinted.
func (n *Normaliser) Priority() int {
	return 0
}

// Normalise parses the document as CSV.
func (n *Normaliser) Normalise(_ context.Context, doc *domain.Document) (*domain.NormalisedText, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	rows, err := tabular.ReadCSV(doc.Content)
	if err != nil {
		return nil, err
	}
	return domain.NewNormalisedTextFromLines(tabular.Lines(rows)), nil
}
