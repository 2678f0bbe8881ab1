package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wordcheck/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/wordcheck/internal/core/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start a JSON HTTP API. Each client creates a session with
POST /sessions, uploads a document and requests an analysis:

  POST   /sessions
  PUT    /sessions/{id}/document      raw upload (?name=) or {"text"} / {"url"}
  POST   /sessions/{id}/analysis
  GET    /sessions/{id}/rules
  PUT    /sessions/{id}/rules         import a rule table (?name=)
  POST   /sessions/{id}/rules/commit
  POST   /sessions/{id}/rules/revert
  GET    /sessions/{id}/rules/export
  DELETE /sessions/{id}

The port defaults to the server.port setting.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use the server.port setting)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	cfg := httpapi.Config{Port: port, MaxBodyBytes: domain.DefaultMaxDocumentBytes}
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			if cfg.Port == 0 {
				cfg.Port = settings.Server.Port
			}
			cfg.MaxBodyBytes = settings.Fetch.MaxBytes
		}
	}
	if cfg.Port == 0 {
		cfg.Port = domain.DefaultServerPort
	}

	server := httpapi.New(sessionManager, cfg)
	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on http://localhost%s\n", server.Addr())
	return server.Run(cmd.Context())
}
