package domain

import "strings"

// Finding is one rule whose pattern was found in a document.
// It is emitted once per rule, not once per occurrence.
type Finding struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
}

// String renders the finding as "pattern → replacement".
func (f Finding) String() string {
	return f.Pattern + " → " + f.Replacement
}

// FormatFindings renders findings one per line, in order.
func FormatFindings(findings []Finding) string {
	lines := make([]string, len(findings))
	for i, f := range findings {
		lines[i] = f.String()
	}
	return strings.Join(lines, "\n")
}
