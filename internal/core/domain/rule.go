package domain

import (
	"fmt"
	"strings"
)

// Header names of the two required rule columns.
const (
	// PatternColumn holds the incorrect form searched for ("誤表記").
	PatternColumn = "誤表記"

	// ReplacementColumn holds the suggested correct form ("正表記").
	ReplacementColumn = "正表記"
)

// Rule is one wording rule.
type Rule struct {
	// Pattern is the incorrect phrase. Empty patterns never match.
	Pattern string `json:"pattern"`

	// Replacement is the suggested correct phrase.
	Replacement string `json:"replacement"`

	// Extra holds values of any additional columns, keyed by header.
	// Preserved for export and persistence, ignored by the matcher.
	Extra map[string]string `json:"extra,omitempty"`
}

// IsEligible returns true if the rule can produce a finding.
func (r Rule) IsEligible() bool {
	return strings.TrimSpace(r.Pattern) != ""
}

// Value returns the rule's value for the given column header.
func (r Rule) Value(column string) string {
	switch column {
	case PatternColumn:
		return r.Pattern
	case ReplacementColumn:
		return r.Replacement
	default:
		return r.Extra[column]
	}
}

// Equal reports whether two rules hold the same values.
func (r Rule) Equal(o Rule) bool {
	if r.Pattern != o.Pattern || r.Replacement != o.Replacement {
		return false
	}
	if len(r.Extra) != len(o.Extra) {
		return false
	}
	for k, v := range r.Extra {
		if ov, ok := o.Extra[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// RuleTable is an ordered collection of rules plus the header row of the
// source they were loaded from. Row order determines report order.
//
// Methods are nil-safe: a nil *RuleTable behaves as an empty table.
type RuleTable struct {
	// Columns is the header row, including extra columns, in source order.
	Columns []string

	// Rules are the rows, in source order.
	Rules []Rule
}

// NewRuleTable creates a table with the two required columns.
func NewRuleTable(rules ...Rule) *RuleTable {
	return &RuleTable{
		Columns: []string{PatternColumn, ReplacementColumn},
		Rules:   rules,
	}
}

// Len returns the number of rules.
func (t *RuleTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rules)
}

// Clone returns a deep copy, safe to edit without affecting t.
func (t *RuleTable) Clone() *RuleTable {
	if t == nil {
		return nil
	}
	out := &RuleTable{
		Columns: append([]string(nil), t.Columns...),
		Rules:   make([]Rule, len(t.Rules)),
	}
	for i, r := range t.Rules {
		out.Rules[i] = Rule{Pattern: r.Pattern, Replacement: r.Replacement}
		if r.Extra != nil {
			out.Rules[i].Extra = make(map[string]string, len(r.Extra))
			for k, v := range r.Extra {
				out.Rules[i].Extra[k] = v
			}
		}
	}
	return out
}

// Equal reports whether two tables have the same columns and rules in the
// same order.
func (t *RuleTable) Equal(o *RuleTable) bool {
	if t.Len() != o.Len() {
		return false
	}
	if t == nil || o == nil {
		// Both empty at this point.
		return true
	}
	if len(t.Columns) != len(o.Columns) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for i := range t.Rules {
		if !t.Rules[i].Equal(o.Rules[i]) {
			return false
		}
	}
	return true
}

// Rows renders the table as a header row followed by one row per rule,
// aligned to Columns.
func (t *RuleTable) Rows() [][]string {
	if t == nil {
		return [][]string{{PatternColumn, ReplacementColumn}}
	}
	rows := make([][]string, 0, len(t.Rules)+1)
	rows = append(rows, append([]string(nil), t.Columns...))
	for _, r := range t.Rules {
		row := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			row[i] = r.Value(col)
		}
		rows = append(rows, row)
	}
	return rows
}

// LoadRuleTable parses tabular rows into a RuleTable. The first row is the
// header and must contain PatternColumn and ReplacementColumn; other
// columns are kept in Rule.Extra. Rows whose cells are all blank are
// dropped. Cell values are kept verbatim.
func LoadRuleTable(rows [][]string) (*RuleTable, error) {
	if len(rows) == 0 {
		return nil, &RuleLoadError{Err: fmt.Errorf("%w: no header row", ErrInvalidInput)}
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	patternIdx, replacementIdx := -1, -1
	for i, h := range header {
		switch {
		case h == PatternColumn && patternIdx < 0:
			patternIdx = i
		case h == ReplacementColumn && replacementIdx < 0:
			replacementIdx = i
		}
	}
	if patternIdx < 0 {
		return nil, &RuleLoadError{Err: &MissingColumnError{Column: PatternColumn}}
	}
	if replacementIdx < 0 {
		return nil, &RuleLoadError{Err: &MissingColumnError{Column: ReplacementColumn}}
	}

	table := &RuleTable{
		Columns: header,
		Rules:   make([]Rule, 0, len(rows)-1),
	}
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rule := Rule{
			Pattern:     cell(row, patternIdx),
			Replacement: cell(row, replacementIdx),
		}
		for i, col := range header {
			if i == patternIdx || i == replacementIdx {
				continue
			}
			if rule.Extra == nil {
				rule.Extra = make(map[string]string)
			}
			rule.Extra[col] = cell(row, i)
		}
		table.Rules = append(table.Rules, rule)
	}
	return table, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
