package domain

import (
	"fmt"
	"strings"
	"time"
)

// Format identifies how a document's bytes are structured.
type Format string

// Known document formats.
const (
	// FormatText is plain text in any encoding.
	FormatText Format = "text"

	// FormatCSV is comma-separated tabular text.
	FormatCSV Format = "csv"

	// FormatExcel is a spreadsheet workbook (.xlsx or legacy .xls).
	FormatExcel Format = "excel"

	// FormatWord is a word-processor document (.docx).
	FormatWord Format = "word"

	// FormatPDF is a PDF with a text layer.
	FormatPDF Format = "pdf"

	// FormatHTML is a web page; only its visible text is searched.
	FormatHTML Format = "html"

	// FormatUnknown is a binary document whose format has not been resolved.
	FormatUnknown Format = "unknown-binary"
)

// IsValid returns true if the format is recognised.
func (f Format) IsValid() bool {
	switch f {
	case FormatText, FormatCSV, FormatExcel, FormatWord, FormatPDF, FormatHTML, FormatUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f Format) String() string {
	return string(f)
}

// Document represents a submitted document before normalisation.
// A Document is never mutated once created; replacing the current
// document of a session means creating a new one.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the filename hint (e.g. "notice.docx"). May be empty.
	Name string

	// URI is the original location (file path, URL, "paste").
	URI string

	// MIMEType is the declared content type, for remote sources.
	MIMEType string

	// Format is the declared or resolved format.
	Format Format

	// Content is the raw bytes.
	Content []byte

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// WithFormat returns a copy of the document carrying the given format.
func (d Document) WithFormat(f Format) Document {
	d.Format = f
	return d
}

// NormalisedText is the searchable form of a document.
// It is derived and read-only.
type NormalisedText struct {
	// FullText is the haystack searched by the matcher.
	FullText string

	// Lines is the line-indexed view of FullText.
	Lines []string
}

// NewNormalisedText builds a NormalisedText from full text, splitting it
// on line boundaries ("\n", "\r\n" and "\r").
func NewNormalisedText(full string) *NormalisedText {
	return &NormalisedText{
		FullText: full,
		Lines:    SplitLines(full),
	}
}

// NewNormalisedTextFromLines builds a NormalisedText whose FullText is the
// given lines joined with "\n".
func NewNormalisedTextFromLines(lines []string) *NormalisedText {
	copied := make([]string, len(lines))
	copy(copied, lines)
	return &NormalisedText{
		FullText: strings.Join(copied, "\n"),
		Lines:    copied,
	}
}

// IsEmpty returns true if the text has no non-whitespace content.
// A nil NormalisedText is empty.
func (t *NormalisedText) IsEmpty() bool {
	return t == nil || strings.TrimSpace(t.FullText) == ""
}

// SplitLines splits text on "\n", "\r\n" and "\r". A trailing line
// terminator does not produce a trailing empty line.
func SplitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// ParseAttempt records the outcome of one parser in the normalisation
// priority order.
type ParseAttempt struct {
	// Format is the format the parser handles.
	Format Format

	// OK is true if the parser produced non-empty content.
	OK bool

	// Err is the failure reason when OK is false.
	Err error
}

// String returns a compact description such as "pdf: no text layer".
func (a ParseAttempt) String() string {
	if a.OK {
		return fmt.Sprintf("%s: ok", a.Format)
	}
	if a.Err == nil {
		return fmt.Sprintf("%s: empty", a.Format)
	}
	return fmt.Sprintf("%s: %v", a.Format, a.Err)
}
