package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in ~/.wordcheck/config.toml.

Keys:
  fetch.timeout_seconds  Remote fetch timeout
  fetch.rate_per_second  Remote fetch rate limit
  fetch.max_bytes        Largest accepted document
  rules.table            Name of the saved rule table
  storage.data_dir       Directory holding rules.db
  server.port            HTTP API port

Changes take effect the next time wordcheck starts.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Fetch]")
	cmd.Printf("  Timeout: %s\n", settings.Fetch.Timeout)
	cmd.Printf("  Rate: %g/s\n", settings.Fetch.RatePerSecond)
	cmd.Printf("  Max bytes: %d\n", settings.Fetch.MaxBytes)
	cmd.Println()

	cmd.Println("[Rules]")
	cmd.Printf("  Table: %s\n", settings.Rules.TableName)
	cmd.Println()

	cmd.Println("[Storage]")
	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = "~/.wordcheck/data (default)"
	}
	cmd.Printf("  Data dir: %s\n", dataDir)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Port: %d\n", settings.Server.Port)
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	value, err := settingsService.Value(args[0])
	if err != nil {
		return err
	}
	cmd.Println(value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}
