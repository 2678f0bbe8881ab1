package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

The TUI lets you paste text or load a file or URL and see the matching
rules as you go, and edit the rule table with save and revert.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Select
  Ctrl+S   - Check pasted text
  Esc      - Back
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

// runProgram is replaced in tests.
var runProgram = func(app *tui.App) error {
	return app.Run()
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	session, closeSession, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession()

	app, err := tui.NewApp(tui.NewPorts(session, settingsService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
