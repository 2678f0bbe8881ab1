// Package tabular reads spreadsheets and CSV files into rows of cells.
// Workbooks are detected by their magic bytes: .xlsx via excelize,
// legacy .xls via extrame/xls.
package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.TableReader = (*Reader)(nil)

// Kind identifies a tabular container format.
type Kind string

// Supported kinds.
const (
	KindUnknown Kind = ""
	KindCSV     Kind = "csv"
	KindXLSX    Kind = "xlsx"
	KindXLS     Kind = "xls"
)

var (
	magicZip = []byte("PK\x03\x04")
	magicOLE = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// ErrNotTabular is returned when content is not a recognised table.
var ErrNotTabular = errors.New("not a spreadsheet or csv file")

// Sheet is one worksheet of a workbook.
type Sheet struct {
	Name string
	Rows [][]string
}

// Reader implements driven.TableReader.
type Reader struct{}

// NewReader creates a table reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadTable reads the first sheet of a workbook, or a CSV file.
// The filename extension wins over content sniffing.
func (r *Reader) ReadTable(ctx context.Context, name string, content []byte) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kind := KindFromName(name)
	if kind == KindUnknown {
		kind = Sniff(content)
	}

	switch kind {
	case KindCSV:
		return ReadCSV(content)
	case KindXLSX, KindXLS:
		sheets, err := readWorkbook(kind, content, 1)
		if err != nil {
			return nil, err
		}
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrInvalidInput)
		}
		return sheets[0].Rows, nil
	default:
		return nil, ErrNotTabular
	}
}

// KindFromName maps a filename extension to a kind.
func KindFromName(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return KindCSV
	case ".xlsx", ".xlsm":
		return KindXLSX
	case ".xls":
		return KindXLS
	default:
		return KindUnknown
	}
}

// Sniff detects the kind from magic bytes. Content that is valid UTF-8
// text is treated as CSV.
func Sniff(content []byte) Kind {
	switch {
	case bytes.HasPrefix(content, magicZip):
		return KindXLSX
	case bytes.HasPrefix(content, magicOLE):
		return KindXLS
	case len(content) > 0 && utf8.Valid(content):
		return KindCSV
	default:
		return KindUnknown
	}
}

// ReadWorkbook reads every sheet of an .xlsx or .xls workbook in
// workbook order. The container is detected from magic bytes.
func ReadWorkbook(content []byte) ([]Sheet, error) {
	kind := Sniff(content)
	if kind != KindXLSX && kind != KindXLS {
		return nil, ErrNotTabular
	}
	return readWorkbook(kind, content, 0)
}

// readWorkbook reads up to limit sheets (0 = all).
func readWorkbook(kind Kind, content []byte, limit int) ([]Sheet, error) {
	if kind == KindXLS {
		return readXLS(content, limit)
	}
	return readXLSX(content, limit)
}

func readXLSX(content []byte, limit int) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}

	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

func readXLS(content []byte, limit int) (sheets []Sheet, err error) {
	// The xls decoder panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			sheets, err = nil, fmt.Errorf("open xls: malformed workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}

	n := wb.NumSheets()
	if limit > 0 && n > limit {
		n = limit
	}

	sheets = make([]Sheet, 0, n)
	for i := 0; i < n; i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		sheet := Sheet{Name: ws.Name}
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				sheet.Rows = append(sheet.Rows, nil)
				continue
			}
			cells := make([]string, 0, row.LastCol()+1)
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			sheet.Rows = append(sheet.Rows, cells)
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

// ReadCSV parses comma-separated content. A UTF-8 or UTF-16 byte order
// mark is honoured; without one, content that is not valid UTF-8 is read
// as ISO-8859-1. Rows may have differing field counts and stray quotes
// are tolerated.
func ReadCSV(content []byte) ([][]string, error) {
	var fallback transform.Transformer = transform.Nop
	if !utf8.Valid(content) {
		fallback = charmap.ISO8859_1.NewDecoder()
	}
	decoded := transform.NewReader(bytes.NewReader(content), unicode.BOMOverride(fallback))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// Lines renders rows as text lines: cells joined by a single space in
// column order. Rows whose cells are all blank are skipped.
func Lines(rows [][]string) []string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		blank := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}
		lines = append(lines, strings.Join(row, " "))
	}
	return lines
}
