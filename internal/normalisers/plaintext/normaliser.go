// Package plaintext decodes raw bytes as text. It is the last parser in
// the fallback order and never fails on non-empty input.
package plaintext

import (
	"bytes"
	"context"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Format returns domain.FormatText.
func (n *Normaliser) Format() domain.Format {
	return domain.FormatText
}

// Extensions returns the filename extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".txt", ".text", ".md"}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/x-markdown",
		"application/json",
		"application/xml",
		"text/xml",
	}
}

// Priority returns the fallback priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise decodes the document content. Output may be empty; the
// registry treats empty output as a failed attempt.
func (n *Normaliser) Normalise(_ context.Context, doc *domain.Document) (*domain.NormalisedText, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	return domain.NewNormalisedText(Decode(doc.Content)), nil
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts b to a string. A byte order mark selects UTF-8 or
// UTF-16 and is removed. Without one, valid UTF-8 is used as is and
// anything else is mapped byte for byte as ISO-8859-1, so decoding
// never fails.
func Decode(b []byte) string {
	if bytes.HasPrefix(b, bomUTF8) || bytes.HasPrefix(b, bomUTF16LE) || bytes.HasPrefix(b, bomUTF16BE) {
		out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), b)
		if err == nil {
			return string(out)
		}
	}
	if utf8.Valid(b) {
		return string(b)
	}
	// Every byte has an ISO-8859-1 mapping.
	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return string(out)
}
