// Package pdf extracts the text layer of PDF documents. Scanned pages
// without a text layer yield nothing; OCR is not attempted.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
	"github.com/custodia-labs/wordcheck/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrNoText is returned when no page produced any text.
var ErrNoText = errors.New("no extractable text")

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Format returns domain.FormatPDF.
func (n *Normaliser) Format() domain.Format {
	return domain.FormatPDF
}

// Extensions returns the filename extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".pdf"}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the fallback priority.
func (n *Normaliser) Priority() int {
	return 20
}

// Normalise joins the text of each page with "\n" in page order.
// Pages that fail to decode or carry no text are skipped.
func (n *Normaliser) Normalise(ctx context.Context, doc *domain.Document) (*domain.NormalisedText, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := open(doc.Content)
	if err != nil {
		return nil, err
	}

	var pages []string
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := pageText(reader, i)
		if err != nil {
			logger.Debug("pdf: skipping page %d of %d: %v", i, total, err)
			continue
		}
		text = strings.TrimRight(text, "\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, text)
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("%w in %d page(s)", ErrNoText, total)
	}
	return domain.NewNormalisedText(strings.Join(pages, "\n")), nil
}

// open parses the cross-reference table. The decoder panics on some
// malformed input, so panics are reported as errors.
func open(content []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("open pdf: %v", rec)
		}
	}()

	r, err = pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return r, nil
}

func pageText(r *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("page %d: %v", num, rec)
		}
	}()

	page := r.Page(num)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d: missing", num)
	}
	return page.GetPlainText(nil)
}
