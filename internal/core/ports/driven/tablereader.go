package driven

import "context"

// TableReader reads a tabular source (spreadsheet or CSV) into rows of
// cell strings. Only the first sheet of a workbook is read.
type TableReader interface {
	// ReadTable parses content. name is a filename hint used to pick the
	// format; content sniffing is used when the hint is absent.
	ReadTable(ctx context.Context, name string, content []byte) ([][]string, error)
}
