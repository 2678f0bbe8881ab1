package services

import (
	"encoding/csv"
	"io"
)

// writeCSV writes rows as UTF-8 CSV.
func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
