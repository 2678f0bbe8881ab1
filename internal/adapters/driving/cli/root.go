// Package cli implements the wordcheck command line.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wordcheck/internal/adapters/driven/filewatcher"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
	"github.com/custodia-labs/wordcheck/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var (
	sessionManager  driving.SessionManager
	settingsService driving.SettingsService

	// newWatcher is replaced in tests.
	newWatcher = func() (driven.FileWatcher, error) { return filewatcher.New(0) }
)

// verbose enables debug logging for every command.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "wordcheck",
	Short: "Check documents against wording rules",
	Long: `wordcheck reports which wording rules a document breaks.

Rules come from a spreadsheet or CSV whose header row has the columns
誤表記 (incorrect form) and 正表記 (correct form). Documents can be text,
CSV, Excel, Word, PDF or a remote URL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// SetServices wires the core services used by commands.
func SetServices(sessions driving.SessionManager, settings driving.SettingsService) {
	sessionManager = sessions
	settingsService = settings
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openSession starts a session seeded with the saved rule table. The
// caller closes it.
func openSession(ctx context.Context) (driving.Session, func(), error) {
	if sessionManager == nil {
		return nil, nil, errors.New("session manager not configured")
	}
	session, err := sessionManager.Create(ctx)
	if err != nil {
		return nil, nil, err
	}
	return session, func() { sessionManager.Close(session.ID()) }, nil //nolint:errcheck
}
