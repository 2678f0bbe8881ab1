package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driving"
)

// errNoInput is returned when a command has nothing to load.
var errNoInput = errors.New("nothing to check: give a file, --url, --text or pipe a document on stdin")

// inputFlags selects where a document comes from.
type inputFlags struct {
	url  string
	text string
	name string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.url, "url", "u", "", "Fetch the document from a URL")
	cmd.Flags().StringVarP(&f.text, "text", "t", "", "Check the given text")
	cmd.Flags().StringVar(&f.name, "name", "", "Filename hint for stdin input (e.g. notice.docx)")
}

// load makes the selected input the session's current document and
// returns a label describing where it came from.
func (f *inputFlags) load(cmd *cobra.Command, session driving.Session, args []string) (string, error) {
	ctx := cmd.Context()

	switch {
	case f.url != "":
		_, err := session.LoadURL(ctx, f.url)
		return f.url, err
	case f.text != "":
		_, err := session.LoadText(ctx, f.text)
		return "text", err
	case len(args) > 0 && args[0] != "-":
		return args[0], loadPath(cmd, session, args[0])
	}

	if len(args) == 0 && isTerminal(cmd.InOrStdin()) {
		return "", errNoInput
	}
	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(content) == 0 {
		return "", errNoInput
	}
	_, err = session.LoadFile(ctx, f.name, content)
	return "stdin", err
}

func loadPath(cmd *cobra.Command, session driving.Session, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	_, err = session.LoadFile(cmd.Context(), filepath.Base(path), content)
	return err
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
