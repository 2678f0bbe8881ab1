// Package httpapi exposes wordcheck sessions over a JSON HTTP API.
//
// Each client creates a session, uploads or points at a document, and asks
// for an analysis against the session's rule table. Sessions never share
// documents or working copies of the rules.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
	"github.com/custodia-labs/wordcheck/internal/logger"
)

// DefaultMaxBodyBytes caps request bodies when Config.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 32 << 20

// Config controls the HTTP server.
type Config struct {
	// Port to listen on.
	Port int

	// MaxBodyBytes caps uploaded documents and rule tables.
	MaxBodyBytes int64
}

// Server is the HTTP API server.
type Server struct {
	sessions driving.SessionManager
	router   *mux.Router
	server   *http.Server
	maxBody  int64
}

// New creates a server over the given session manager.
func New(sessions driving.SessionManager, cfg Config) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		sessions: sessions,
		router:   mux.NewRouter(),
		maxBody:  cfg.MaxBodyBytes,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Use(recoverMiddleware, loggingMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.router.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)

	sessions := s.router.PathPrefix("/sessions/{id}").Subrouter()
	sessions.HandleFunc("", s.handleCloseSession).Methods(http.MethodDelete)

	sessions.HandleFunc("/document", s.handleLoadDocument).Methods(http.MethodPut)
	sessions.HandleFunc("/document", s.handleGetDocument).Methods(http.MethodGet)
	sessions.HandleFunc("/document", s.handleClearDocument).Methods(http.MethodDelete)
	sessions.HandleFunc("/analysis", s.handleAnalyse).Methods(http.MethodPost)

	sessions.HandleFunc("/rules", s.handleGetRules).Methods(http.MethodGet)
	sessions.HandleFunc("/rules", s.handleImportRules).Methods(http.MethodPut)
	sessions.HandleFunc("/rules", s.handleDeleteRules).Methods(http.MethodDelete)
	sessions.HandleFunc("/rules/items", s.handleAddRule).Methods(http.MethodPost)
	sessions.HandleFunc("/rules/items/{index:[0-9]+}", s.handleUpdateRule).Methods(http.MethodPut)
	sessions.HandleFunc("/rules/items/{index:[0-9]+}", s.handleRemoveRule).Methods(http.MethodDelete)
	sessions.HandleFunc("/rules/commit", s.handleCommitRules).Methods(http.MethodPost)
	sessions.HandleFunc("/rules/revert", s.handleRevertRules).Methods(http.MethodPost)
	sessions.HandleFunc("/rules/export", s.handleExportRules).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	logger.Info("HTTP API listening on %s", s.server.Addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
