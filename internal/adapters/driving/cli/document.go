package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Inspect how documents are read",
	Long:  `Show the searchable text wordcheck extracts from a document.`,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print the normalised text of a document",
	Long: `Print the lines wordcheck searches, in order, with the format that
was used to read them. Use --csv to export the lines as a one-column CSV.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocumentShow,
}

var (
	documentInput inputFlags
	documentCSV   bool
)

func init() {
	documentInput.register(documentShowCmd)
	documentShowCmd.Flags().BoolVar(&documentCSV, "csv", false, "Export lines as CSV")

	documentCmd.AddCommand(documentShowCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	session, closeSession, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession()

	source, err := documentInput.load(cmd, session, args)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	if documentCSV {
		return session.ExportText(cmd.OutOrStdout())
	}

	doc := session.Document()
	text := session.Text()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Document: %s\n", source)
	fmt.Fprintf(out, "  Format: %s\n", doc.Format)
	fmt.Fprintf(out, "  Lines:  %d\n\n", len(text.Lines))
	for i, line := range text.Lines {
		fmt.Fprintf(out, "%5d  %s\n", i+1, line)
	}
	return nil
}
