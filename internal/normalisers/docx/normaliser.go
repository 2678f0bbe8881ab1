// Package docx extracts paragraph text from Word (.docx) documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	wordNamespace          = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	compatibilityNamespace = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Format returns domain.FormatWord.
func (n *Normaliser) Format() domain.Format {
	return domain.FormatWord
}

// Extensions returns the filename extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".docx"}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
}

// Priority returns the fallback priority.
func (n *Normaliser) Priority() int {
	return 30 // After spreadsheets, before PDF
}

// Normalise joins the document's body paragraphs with newlines.
func (n *Normaliser) Normalise(_ context.Context, doc *domain.Document) (*domain.NormalisedText, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(doc.Content), int64(len(doc.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive", domain.ErrUnsupportedType)
	}

	paragraphs, err := extractParagraphs(reader)
	if err != nil {
		return nil, err
	}
	return domain.NewNormalisedText(strings.Join(paragraphs, "\n")), nil
}

// extractParagraphs reads word/document.xml.
func extractParagraphs(reader *zip.Reader) ([]string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()

		return parseParagraphs(rc)
	}
	return nil, fmt.Errorf("%w: word/document.xml missing", domain.ErrUnsupportedType)
}

// parseParagraphs walks the document XML and returns the text of each
// paragraph that is a direct child of the body, in order. Paragraphs
// inside tables and text boxes are not included, and the fallback branch
// of mc:AlternateContent is skipped. Within a run, tabs become "\t" and
// line breaks become "\n".
func parseParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		stack      []string
		current    *strings.Builder
		paraDepth  int
		skipDepth  int
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			local := ""
			if t.Name.Space == wordNamespace {
				local = t.Name.Local
			}
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}

			skipped := current != nil && skipDepth == 0 &&
				(local == "txbxContent" || (t.Name.Space == compatibilityNamespace && t.Name.Local == "Fallback"))

			switch {
			case skipped:
				skipDepth = len(stack) + 1
			case skipDepth > 0:
			case local == "p" && parent == "body" && current == nil:
				current = &strings.Builder{}
				paraDepth = len(stack) + 1
			case current != nil && local == "t" && parent == "r":
				inText = true
			case current != nil && local == "tab" && parent == "r":
				current.WriteString("\t")
			case current != nil && (local == "br" || local == "cr") && parent == "r":
				current.WriteString("\n")
			}
			stack = append(stack, local)

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			local := stack[len(stack)-1]
			if local == "t" {
				inText = false
			}
			if skipDepth > 0 && len(stack) == skipDepth {
				skipDepth = 0
			}
			if local == "p" && current != nil && len(stack) == paraDepth {
				paragraphs = append(paragraphs, current.String())
				current = nil
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if inText && current != nil {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
