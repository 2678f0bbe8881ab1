package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
	"github.com/custodia-labs/wordcheck/internal/logger"
)

// Ensure Session and SessionManager implement the interfaces.
var (
	_ driving.Session        = (*Session)(nil)
	_ driving.SessionManager = (*SessionManager)(nil)
)

// SessionDeps are the collaborators shared by every session.
type SessionDeps struct {
	Registry  driven.NormaliserRegistry
	Fetcher   driven.DocumentFetcher
	Snapshots driven.RuleSnapshotStore
	Reader    driven.TableReader

	// TableName is the rule snapshot each session restores.
	TableName string

	// MaxBytes caps accepted document size. Zero means no limit.
	MaxBytes int64
}

// Session owns the current document and rule table of one user.
type Session struct {
	id       string
	rules    *RuleService
	registry driven.NormaliserRegistry
	fetcher  driven.DocumentFetcher
	maxBytes int64

	mu   sync.RWMutex
	doc  *domain.Document
	text *domain.NormalisedText
}

// NewSession creates an empty session. Rules are not restored; call
// Rules().Restore or use SessionManager.Create.
func NewSession(id string, deps SessionDeps) *Session {
	return &Session{
		id:       id,
		rules:    NewRuleService(deps.Snapshots, deps.Reader, deps.TableName),
		registry: deps.Registry,
		fetcher:  deps.Fetcher,
		maxBytes: deps.MaxBytes,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Rules returns the session's rule service.
func (s *Session) Rules() driving.RuleService {
	return s.rules
}

// LoadFile normalises content and makes it the current document.
// The current document is unchanged on error.
func (s *Session) LoadFile(ctx context.Context, name string, content []byte) (*domain.NormalisedText, error) {
	if err := s.checkSize(int64(len(content))); err != nil {
		return nil, err
	}
	doc := &domain.Document{
		ID:        uuid.NewString(),
		URI:       name,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if name != "" {
		doc.Name = filepath.Base(name)
	}
	return s.ingest(ctx, doc)
}

// LoadURL fetches rawURL, normalises it and makes it the current document.
func (s *Session) LoadURL(ctx context.Context, rawURL string) (*domain.NormalisedText, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("%w: remote documents are not enabled", domain.ErrUnsupportedType)
	}
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("%w: empty URL", domain.ErrInvalidInput)
	}

	doc, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if err := s.checkSize(int64(len(doc.Content))); err != nil {
		return nil, err
	}
	return s.ingest(ctx, doc)
}

// LoadText makes pasted text the current document. Whitespace-only text
// is rejected.
func (s *Session) LoadText(_ context.Context, text string) (*domain.NormalisedText, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", domain.ErrInvalidInput)
	}
	if err := s.checkSize(int64(len(text))); err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:        uuid.NewString(),
		URI:       "paste",
		Format:    domain.FormatText,
		Content:   []byte(text),
		CreatedAt: time.Now(),
	}
	normalised := domain.NewNormalisedText(text)
	s.set(doc, normalised)
	return normalised, nil
}

// Document returns the current document, or nil.
func (s *Session) Document() *domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Text returns the current normalised text, or nil.
func (s *Session) Text() *domain.NormalisedText {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// Clear discards the current document.
func (s *Session) Clear() {
	s.set(nil, nil)
}

// Analyse matches the current document against the current rules.
func (s *Session) Analyse(_ context.Context) ([]domain.Finding, error) {
	text := s.Text()
	if text == nil {
		return nil, domain.ErrNoDocumentLoaded
	}
	table := s.rules.Current()
	if table == nil {
		return nil, domain.ErrNoRulesLoaded
	}

	findings, err := Match(text, table)
	if err != nil {
		return nil, err
	}
	logger.Debug("session %s: %d of %d rules matched", s.id, len(findings), table.Len())
	return findings, nil
}

// ExportText writes the current document as CSV with a "text" header and
// one row per line.
func (s *Session) ExportText(w io.Writer) error {
	text := s.Text()
	if text == nil {
		return domain.ErrNoDocumentLoaded
	}
	rows := make([][]string, 0, len(text.Lines)+1)
	rows = append(rows, []string{"text"})
	for _, line := range text.Lines {
		rows = append(rows, []string{line})
	}
	return writeCSV(w, rows)
}

func (s *Session) ingest(ctx context.Context, doc *domain.Document) (*domain.NormalisedText, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("%w: no normalisers configured", domain.ErrUnsupportedType)
	}
	result, err := s.registry.Normalise(ctx, doc)
	if err != nil {
		return nil, err
	}
	resolved := doc.WithFormat(result.Format)
	s.set(&resolved, result.Text)
	return result.Text, nil
}

func (s *Session) set(doc *domain.Document, text *domain.NormalisedText) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.text = text
}

func (s *Session) checkSize(n int64) error {
	if s.maxBytes > 0 && n > s.maxBytes {
		return fmt.Errorf("%w: document is %d bytes, limit is %d", domain.ErrInvalidInput, n, s.maxBytes)
	}
	return nil
}

// SessionManager creates and tracks isolated sessions.
type SessionManager struct {
	deps SessionDeps

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a session manager.
func NewSessionManager(deps SessionDeps) *SessionManager {
	return &SessionManager{
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

// Create starts a session seeded with the saved rule snapshot, if any.
func (m *SessionManager) Create(ctx context.Context) (driving.Session, error) {
	session := NewSession(uuid.NewString(), m.deps)
	if _, err := session.rules.Restore(ctx); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[session.id] = session
	m.mu.Unlock()

	logger.Debug("session %s created", session.id)
	return session, nil
}

// Get returns an existing session.
func (m *SessionManager) Get(id string) (driving.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Close discards a session.
func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Count returns the number of open sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
