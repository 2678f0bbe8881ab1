package services

import (
	"strings"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
)

// Match returns one finding per eligible rule whose pattern occurs in the
// text, in rule-table order. Matching is a literal, case-sensitive
// substring test against the full text, so patterns never match across
// a line break the text does not contain.
//
// A nil table yields no findings. A nil text is an error: it means no
// document has been loaded, which is not the same as finding nothing.
func Match(text *domain.NormalisedText, table *domain.RuleTable) ([]domain.Finding, error) {
	if text == nil {
		return nil, domain.ErrNoDocumentLoaded
	}

	findings := make([]domain.Finding, 0)
	if table == nil {
		return findings, nil
	}

	for _, rule := range table.Rules {
		if !rule.IsEligible() {
			continue
		}
		if strings.Contains(text.FullText, rule.Pattern) {
			findings = append(findings, domain.Finding{
				Pattern:     rule.Pattern,
				Replacement: rule.Replacement,
			})
		}
	}
	return findings, nil
}
