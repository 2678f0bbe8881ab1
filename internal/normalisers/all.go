package normalisers

import (
	"github.com/custodia-labs/wordcheck/internal/core/ports/driven"
	"github.com/custodia-labs/wordcheck/internal/normalisers/csv"
	"github.com/custodia-labs/wordcheck/internal/normalisers/docx"
	"github.com/custodia-labs/wordcheck/internal/normalisers/excel"
	"github.com/custodia-labs/wordcheck/internal/normalisers/html"
	"github.com/custodia-labs/wordcheck/internal/normalisers/pdf"
	"github.com/custodia-labs/wordcheck/internal/normalisers/plaintext"
)

// All returns one instance of every built-in normaliser.
func All() []driven.Normaliser {
	return []driven.Normaliser{
		excel.New(),
		docx.New(),
		pdf.New(),
		plaintext.New(),
		csv.New(),
		html.New(),
	}
}
