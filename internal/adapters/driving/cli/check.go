package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Check a document against the saved rules",
	Long: `Check a document against the saved rule table and print one line per
rule whose incorrect form appears in it:

  子供 → 子ども

The document can be a file, a URL (--url), literal text (--text) or data
piped on stdin. Use --watch to re-check a file every time it is saved.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

var (
	checkInput inputFlags
	checkJSON  bool
	checkWatch bool
)

// checkReport is the --json output.
type checkReport struct {
	Source   string           `json:"source"`
	Findings []domain.Finding `json:"findings"`
	Count    int              `json:"count"`
}

func init() {
	checkInput.register(checkCmd)
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output as JSON")
	checkCmd.Flags().BoolVarP(&checkWatch, "watch", "w", false, "Re-check the file whenever it changes")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if checkWatch && (len(args) == 0 || args[0] == "-") {
		return errors.New("--watch needs a file argument")
	}

	session, closeSession, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession()

	source, err := checkInput.load(cmd, session, args)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	if err := printCheck(cmd, session, source); err != nil {
		return err
	}

	if !checkWatch {
		return nil
	}
	return watchCheck(cmd, session, args[0])
}

// watchCheck re-runs the check until the command context is cancelled.
// Failures while the file is being rewritten are reported, not fatal.
func watchCheck(cmd *cobra.Command, session driving.Session, path string) error {
	watcher, err := newWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Stop() //nolint:errcheck

	changes, err := watcher.Watch(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	cmd.PrintErrf("Watching %s (Ctrl+C to stop)\n", path)

	for range changes {
		if !checkJSON {
			fmt.Fprintf(cmd.OutOrStdout(), "\n--- %s ---\n", time.Now().Format("15:04:05"))
		}
		if err := loadPath(cmd, session, path); err != nil {
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}
		if err := printCheck(cmd, session, path); err != nil {
			cmd.PrintErrf("Error: %v\n", err)
		}
	}
	return nil
}

func printCheck(cmd *cobra.Command, session driving.Session, source string) error {
	findings, err := session.Analyse(cmd.Context())
	if errors.Is(err, domain.ErrNoRulesLoaded) {
		return fmt.Errorf("%w: run 'wordcheck rules import <file>' first", err)
	}
	if err != nil {
		return err
	}

	if checkJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		return enc.Encode(checkReport{Source: source, Findings: findings, Count: len(findings)})
	}

	out := cmd.OutOrStdout()
	if len(findings) == 0 {
		fmt.Fprintln(out, "No findings.")
		return nil
	}
	fmt.Fprintln(out, domain.FormatFindings(findings))
	return nil
}
