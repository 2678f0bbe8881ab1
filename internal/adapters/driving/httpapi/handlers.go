package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
)

type healthResponse struct {
	Status    string `json:"status"`
	Sessions  int    `json:"sessions"`
	Timestamp string `json:"timestamp"`
}

type sessionResponse struct {
	ID    string `json:"id"`
	Rules int    `json:"rules"`
}

// documentRequest is the JSON form of PUT /document. Exactly one of
// Text and URL must be set.
type documentRequest struct {
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
}

type documentResponse struct {
	Name   string   `json:"name,omitempty"`
	URI    string   `json:"uri"`
	Format string   `json:"format"`
	Count  int      `json:"line_count"`
	Lines  []string `json:"lines,omitempty"`
}

type analysisResponse struct {
	Findings []domain.Finding `json:"findings"`
	Count    int              `json:"count"`
	Report   string           `json:"report"`
}

type ruleJSON struct {
	Pattern     string            `json:"pattern"`
	Replacement string            `json:"replacement"`
	Extra       map[string]string `json:"extra,omitempty"`
}

type rulesResponse struct {
	Columns []string   `json:"columns"`
	Rules   []ruleJSON `json:"rules"`
	Count   int        `json:"count"`
	Dirty   bool       `json:"dirty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Sessions:  s.sessions.Count(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Create(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+session.ID())
	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:    session.ID(),
		Rules: session.Rules().Current().Len(),
	})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLoadDocument accepts either JSON {"text"} / {"url"} or a raw
// upload whose filename is given by ?name=.
func (s *Server) handleLoadDocument(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	body, err := s.readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var text *domain.NormalisedText
	if isJSON(r) {
		var req documentRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
			return
		}
		switch {
		case req.URL != "" && req.Text != "":
			err = fmt.Errorf("%w: give either text or url, not both", domain.ErrInvalidInput)
		case req.URL != "":
			text, err = session.LoadURL(r.Context(), req.URL)
		default:
			text, err = session.LoadText(r.Context(), req.Text)
		}
	} else {
		text, err = session.LoadFile(r.Context(), r.URL.Query().Get("name"), body)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newDocumentResponse(session.Document(), text, false))
}

// handleGetDocument returns the normalised lines, or CSV with ?format=csv.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, r, "document.csv", session.ExportText)
		return
	}

	text := session.Text()
	if text == nil {
		writeError(w, r, domain.ErrNoDocumentLoaded)
		return
	}
	writeJSON(w, http.StatusOK, newDocumentResponse(session.Document(), text, true))
}

func (s *Server) handleClearDocument(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	session.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnalyse(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	findings, err := session.Analyse(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysisResponse{
		Findings: findings,
		Count:    len(findings),
		Report:   domain.FormatFindings(findings),
	})
}

func (s *Server) handleGetRules(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	writeRules(w, session.Rules())
}

// handleImportRules replaces and persists the rule table from an
// uploaded spreadsheet or CSV named by ?name=.
func (s *Server) handleImportRules(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	body, err := s.readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := session.Rules().Import(r.Context(), r.URL.Query().Get("name"), body); err != nil {
		writeError(w, r, err)
		return
	}
	writeRules(w, session.Rules())
}

func (s *Server) handleDeleteRules(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := session.Rules().Delete(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddRule(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	rule, err := s.decodeRule(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	session.Rules().AddRule(rule)
	writeRules(w, session.Rules())
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	rule, err := s.decodeRule(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := session.Rules().UpdateRule(ruleIndex(r), rule); err != nil {
		writeError(w, r, err)
		return
	}
	writeRules(w, session.Rules())
}

func (s *Server) handleRemoveRule(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	if _, err := session.Rules().RemoveRule(ruleIndex(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeRules(w, session.Rules())
}

func (s *Server) handleCommitRules(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := session.Rules().Commit(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeRules(w, session.Rules())
}

func (s *Server) handleRevertRules(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	if _, err := session.Rules().Revert(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeRules(w, session.Rules())
}

func (s *Server) handleExportRules(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	writeCSV(w, r, "rules.csv", session.Rules().Export)
}

// session resolves {id}, writing a 404 when unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (driving.Session, bool) {
	session, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return session, true
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *Server) decodeRule(w http.ResponseWriter, r *http.Request) (domain.Rule, error) {
	body, err := s.readBody(w, r)
	if err != nil {
		return domain.Rule{}, err
	}
	var req ruleJSON
	if err := json.Unmarshal(body, &req); err != nil {
		return domain.Rule{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return domain.Rule{Pattern: req.Pattern, Replacement: req.Replacement, Extra: req.Extra}, nil
}

func ruleIndex(r *http.Request) int {
	// The route pattern guarantees digits; overflow maps to an invalid index.
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		return -1
	}
	return index
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func newDocumentResponse(doc *domain.Document, text *domain.NormalisedText, withLines bool) documentResponse {
	resp := documentResponse{Count: len(text.Lines)}
	if doc != nil {
		resp.Name = doc.Name
		resp.URI = doc.URI
		resp.Format = string(doc.Format)
	}
	if withLines {
		resp.Lines = text.Lines
	}
	return resp
}

func writeRules(w http.ResponseWriter, rules driving.RuleService) {
	table := rules.Current()
	resp := rulesResponse{
		Columns: []string{domain.PatternColumn, domain.ReplacementColumn},
		Rules:   make([]ruleJSON, 0, table.Len()),
		Count:   table.Len(),
		Dirty:   rules.Dirty(),
	}
	if table != nil {
		resp.Columns = table.Columns
		for _, rule := range table.Rules {
			resp.Rules = append(resp.Rules, ruleJSON{Pattern: rule.Pattern, Replacement: rule.Replacement, Extra: rule.Extra})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeCSV buffers export so a failure can still be reported as JSON.
func writeCSV(w http.ResponseWriter, r *http.Request, filename string, export func(io.Writer) error) {
	var buf bytes.Buffer
	if err := export(&buf); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}
