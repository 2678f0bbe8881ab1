package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/wordcheck/internal/adapters/driven/fetcher"
	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/logger"
)

type errorResponse struct {
	Error     string            `json:"error"`
	Attempts  []attemptResponse `json:"attempts,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

type attemptResponse struct {
	Format string `json:"format"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// statusFor maps a service error to an HTTP status code.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	var httpErr *fetcher.HTTPError

	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &maxBytes), errors.Is(err, fetcher.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrRuleLoad),
		errors.Is(err, domain.ErrMissingColumn):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnreadableDocument), errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoDocumentLoaded), errors.Is(err, domain.ErrNoRulesLoaded):
		return http.StatusConflict
	case errors.As(err, &httpErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as a JSON error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var unreadable *domain.UnreadableDocumentError
	if errors.As(err, &unreadable) {
		for _, a := range unreadable.Attempts {
			ar := attemptResponse{Format: string(a.Format), OK: a.OK}
			if a.Err != nil {
				ar.Error = a.Err.Error()
			}
			resp.Attempts = append(resp.Attempts, ar)
		}
	}

	if status >= http.StatusInternalServerError {
		resp.RequestID = requestID(r.Context())
		logger.Warn("request %s failed: %v", resp.RequestID, err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
