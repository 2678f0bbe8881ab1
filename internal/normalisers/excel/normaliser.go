// Package excel normalises spreadsheet workbooks. Every sheet is read in
// workbook order and each non-blank row becomes one line.
package excel

import (
	"context"

	"github.com/custodia-labs/wordcheck/internal/adapters/driven/tabular"
	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles .xlsx and .xls workbooks.
type Normaliser struct{}

// New creates a new Excel normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Format returns domain.FormatExcel.
func (n *Normaliser) Format() domain.Format {
	return domain.FormatExcel
}

// Extensions returns the filename extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".xlsx", ".xlsm", ".xls"}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-excel.sheet.macroEnabled.12",
		"application/vnd.ms-excel",
	}
}

// Priority returns the fallback priority.
func (n *Normaliser) Priority() int {
	return 40 // Tried first
}

// Normalise reads every sheet of the workbook.
func (n *Normaliser) Normalise(ctx context.Context, doc *domain.Document) (*domain.NormalisedText, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	sheets, err := tabular.ReadWorkbook(doc.Content)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines = append(lines, tabular.Lines(sheet.Rows)...)
	}
	return domain.NewNormalisedTextFromLines(lines), nil
}
