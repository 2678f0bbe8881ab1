package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage the saved rule table",
	Long: `Import, view, edit and export the saved rule table.

A rule table is a spreadsheet (.xlsx, .xls) or CSV file whose header row
contains the columns 誤表記 and 正表記. Other columns are kept as-is.
Edits made here are saved immediately.`,
	RunE: runRulesList,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules",
	RunE:  runRulesList,
}

var rulesImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the saved rules with a spreadsheet or CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesImport,
}

var rulesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the rules as CSV",
	RunE:  runRulesExport,
}

var rulesAddCmd = &cobra.Command{
	Use:   "add [pattern] [replacement]",
	Short: "Append a rule",
	Args:  cobra.ExactArgs(2),
	RunE:  runRulesAdd,
}

var rulesUpdateCmd = &cobra.Command{
	Use:   "update [number] [pattern] [replacement]",
	Short: "Change the rule with the given list number",
	Args:  cobra.ExactArgs(3),
	RunE:  runRulesUpdate,
}

var rulesRemoveCmd = &cobra.Command{
	Use:   "remove [number]",
	Short: "Remove the rule with the given list number",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesRemove,
}

var rulesDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the saved rule table",
	RunE:  runRulesDelete,
}

var (
	rulesJSON   bool
	rulesOutput string
)

func init() {
	rulesListCmd.Flags().BoolVar(&rulesJSON, "json", false, "Output as JSON")
	rulesExportCmd.Flags().StringVarP(&rulesOutput, "output", "o", "", "Write to file instead of stdout")

	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesImportCmd)
	rulesCmd.AddCommand(rulesExportCmd)
	rulesCmd.AddCommand(rulesAddCmd)
	rulesCmd.AddCommand(rulesUpdateCmd)
	rulesCmd.AddCommand(rulesRemoveCmd)
	rulesCmd.AddCommand(rulesDeleteCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	session, closeSession, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession()

	table := session.Rules().Current()

	if rulesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		rules := []domain.Rule{}
		if table != nil {
			rules = table.Rules
		}
		return enc.Encode(rules)
	}

	if table.Len() == 0 {
		cmd.Println("No rules saved. Import a table with: wordcheck rules import <file>")
		return nil
	}

	extra := extraColumns(table.Columns)
	for i, rule := range table.Rules {
		line := fmt.Sprintf("%4d. %s → %s", i+1, rule.Pattern, rule.Replacement)
		if !rule.IsEligible() {
			line += "  (skipped: empty pattern)"
		}
		var notes []string
		for _, col := range extra {
			if v := rule.Value(col); v != "" {
				notes = append(notes, col+"="+v)
			}
		}
		if len(notes) > 0 {
			line += "  [" + strings.Join(notes, ", ") + "]"
		}
		cmd.Println(line)
	}
	cmd.Printf("\nTotal: %d rules\n", table.Len())
	return nil
}

func runRulesImport(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read rules: %w", err)
	}

	session, closeSession, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession()

	table, err := session.Rules().Import(cmd.Context(), filepath.Base(args[0]), content)
	if err != nil {
		return fmt.Errorf("failed to import rules: %w", err)
	}
	cmd.Printf("Imported %d rules from %s\n", table.Len(), args[0])
	return nil
}

func runRulesExport(cmd *cobra.Command, _ []string) error {
	session, closeSession, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession()

	if rulesOutput == "" {
		return session.Rules().Export(cmd.OutOrStdout())
	}

	f, err := os.Create(rulesOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", rulesOutput, err)
	}
	if err := session.Rules().Export(f); err != nil {
		f.Close()
		os.Remove(rulesOutput) //nolint:errcheck
		return fmt.Errorf("failed to export rules: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	cmd.Printf("Exported %d rules to %s\n", session.Rules().Current().Len(), rulesOutput)
	return nil
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	return editRules(cmd, func(rules driving.RuleService) error {
		rules.AddRule(domain.Rule{Pattern: args[0], Replacement: args[1]})
		cmd.Printf("Added: %s → %s\n", args[0], args[1])
		return nil
	})
}

func runRulesUpdate(cmd *cobra.Command, args []string) error {
	index, err := parseRuleNumber(args[0])
	if err != nil {
		return err
	}
	return editRules(cmd, func(rules driving.RuleService) error {
		if _, err := rules.UpdateRule(index, domain.Rule{Pattern: args[1], Replacement: args[2]}); err != nil {
			return err
		}
		cmd.Printf("Updated rule %d: %s → %s\n", index+1, args[1], args[2])
		return nil
	})
}

func runRulesRemove(cmd *cobra.Command, args []string) error {
	index, err := parseRuleNumber(args[0])
	if err != nil {
		return err
	}
	return editRules(cmd, func(rules driving.RuleService) error {
		before := rules.Current()
		if _, err := rules.RemoveRule(index); err != nil {
			return err
		}
		removed := before.Rules[index]
		cmd.Printf("Removed: %s → %s\n", removed.Pattern, removed.Replacement)
		return nil
	})
}

func runRulesDelete(cmd *cobra.Command, _ []string) error {
	session, closeSession, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession()

	if err := session.Rules().Delete(cmd.Context()); err != nil {
		return fmt.Errorf("failed to delete rules: %w", err)
	}
	cmd.Println("Rule table deleted.")
	return nil
}

// editRules applies edit to the working copy and saves it. Each CLI run
// is its own session, so an edit is committed straight away.
func editRules(cmd *cobra.Command, edit func(driving.RuleService) error) error {
	session, closeSession, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession()

	rules := session.Rules()
	if err := edit(rules); err != nil {
		return err
	}
	if err := rules.Commit(cmd.Context()); err != nil {
		return fmt.Errorf("failed to save rules: %w", err)
	}
	return nil
}

// parseRuleNumber converts a 1-based list number to an index.
func parseRuleNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: rule number must be a positive integer, got %q", domain.ErrInvalidInput, s)
	}
	return n - 1, nil
}

func extraColumns(columns []string) []string {
	var extra []string
	for _, col := range columns {
		if col != domain.PatternColumn && col != domain.ReplacementColumn {
			extra = append(extra, col)
		}
	}
	return extra
}
