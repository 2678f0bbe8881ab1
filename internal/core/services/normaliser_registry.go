package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
	"github.com/custodia-labs/wordcheck/internal/logger"
)

// Ensure NormaliserRegistry implements the interface.
var _ driven.NormaliserRegistry = (*NormaliserRegistry)(nil)

// NormaliserRegistry dispatches documents to format normalisers.
//
// Resolution order:
//  1. a declared document format, filename extension or MIME type that
//     maps to a registered normaliser selects it directly;
//  2. content starting with the PDF magic selects the PDF normaliser;
//  3. otherwise every normaliser with a positive priority is tried,
//     highest first, until one produces non-empty text.
type NormaliserRegistry struct {
	mu          sync.RWMutex
	byFormat    map[domain.Format]driven.Normaliser
	byExtension map[string]driven.Normaliser
	byMIME      map[string]driven.Normaliser
	fallback    []driven.Normaliser
}

// NewNormaliserRegistry creates a registry holding the given normalisers.
func NewNormaliserRegistry(normalisers ...driven.Normaliser) *NormaliserRegistry {
	r := &NormaliserRegistry{
		byFormat:    make(map[domain.Format]driven.Normaliser),
		byExtension: make(map[string]driven.Normaliser),
		byMIME:      make(map[string]driven.Normaliser),
	}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser. A later registration for the same format,
// extension or MIME type replaces the earlier one, and a replaced format
// loses every hint its previous normaliser claimed.
func (r *NormaliserRegistry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byFormat[n.Format()]; ok {
		r.fallback = removeNormaliser(r.fallback, prev)
		for ext, owner := range r.byExtension {
			if owner == prev {
				delete(r.byExtension, ext)
			}
		}
		for mt, owner := range r.byMIME {
			if owner == prev {
				delete(r.byMIME, mt)
			}
		}
	}
	r.byFormat[n.Format()] = n
	for _, ext := range n.Extensions() {
		r.byExtension[strings.ToLower(ext)] = n
	}
	for _, mt := range n.SupportedMIMETypes() {
		r.byMIME[strings.ToLower(mt)] = n
	}

	if n.Priority() > 0 {
		r.fallback = append(r.fallback, n)
		sort.SliceStable(r.fallback, func(i, j int) bool {
			return r.fallback[i].Priority() > r.fallback[j].Priority()
		})
	}
}

// FallbackOrder returns the formats tried when no hint applies.
func (r *NormaliserRegistry) FallbackOrder() []domain.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order := make([]domain.Format, len(r.fallback))
	for i, n := range r.fallback {
		order[i] = n.Format()
	}
	return order
}

// Normalise extracts searchable text from doc.
func (r *NormaliserRegistry) Normalise(ctx context.Context, doc *domain.Document) (*driven.NormaliseResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", domain.ErrInvalidInput)
	}

	candidates := r.candidates(doc)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no normalisers registered", domain.ErrUnsupportedType)
	}

	attempts := make([]domain.ParseAttempt, 0, len(candidates))
	for _, n := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := n.Normalise(ctx, doc)
		attempt := domain.ParseAttempt{Format: n.Format(), Err: err}
		if err == nil && !text.IsEmpty() {
			attempt.OK = true
			attempts = append(attempts, attempt)
			logger.Debugw("normalised document", "name", doc.Name, "format", n.Format(), "lines", len(text.Lines))
			return &driven.NormaliseResult{
				Text:     text,
				Format:   n.Format(),
				Attempts: attempts,
			}, nil
		}

		attempts = append(attempts, attempt)
		logger.Debugw("parser attempt failed", "name", doc.Name, "format", n.Format(), "error", err)
	}

	name := doc.Name
	if name == "" {
		name = doc.URI
	}
	return nil, &domain.UnreadableDocumentError{Name: name, Attempts: attempts}
}

// candidates returns the normalisers to try for doc, in order.
func (r *NormaliserRegistry) candidates(doc *domain.Document) []driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if doc.Format != "" && doc.Format != domain.FormatUnknown {
		if n, ok := r.byFormat[doc.Format]; ok {
			return []driven.Normaliser{n}
		}
	}

	if ext := strings.ToLower(filepath.Ext(doc.Name)); ext != "" {
		if n, ok := r.byExtension[ext]; ok {
			return []driven.Normaliser{n}
		}
	}

	if doc.MIMEType != "" {
		mediaType, _, err := mime.ParseMediaType(doc.MIMEType)
		if err == nil {
			if n, ok := r.byMIME[strings.ToLower(mediaType)]; ok {
				return []driven.Normaliser{n}
			}
		}
	}

	if bytes.HasPrefix(doc.Content, pdfMagic) {
		if n, ok := r.byFormat[domain.FormatPDF]; ok {
			return []driven.Normaliser{n}
		}
	}

	return append([]driven.Normaliser(nil), r.fallback...)
}

var pdfMagic = []byte("%PDF-")

func removeNormaliser(list []driven.Normaliser, n driven.Normaliser) []driven.Normaliser {
	out := list[:0]
	for _, item := range list {
		if item != n {
			out = append(out, item)
		}
	}
	return out
}
