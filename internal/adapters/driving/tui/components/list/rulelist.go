// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/wordcheck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/wordcheck/internal/core/domain"
)

// RuleList displays a rule table in a navigable list.
type RuleList struct {
	rules    []domain.Rule
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewRuleList creates a new rule list component.
func NewRuleList(s *styles.Styles) *RuleList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &RuleList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Update handles list navigation messages.
func (r *RuleList) Update(msg tea.Msg) (*RuleList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		case "home", "g":
			r.selected = 0
		case "end", "G":
			if len(r.rules) > 0 {
				r.selected = len(r.rules) - 1
			}
		}
	}
	return r, nil
}

// View renders the visible window of rules around the selection.
func (r *RuleList) View() string {
	if len(r.rules) == 0 {
		return r.styles.Muted.Render("No rules. Press a to add one or i to import a table.")
	}

	visible := r.height
	if visible < 1 {
		visible = 1
	}
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := start + visible
	if end > len(r.rules) {
		end = len(r.rules)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, r.renderRule(i, r.rules[i]))
	}
	return strings.Join(lines, "\n")
}

func (r *RuleList) renderRule(index int, rule domain.Rule) string {
	number := fmt.Sprintf("%4d. ", index+1)
	if index == r.selected {
		return r.styles.Selected.Render(fmt.Sprintf("%s%s → %s", number, rule.Pattern, rule.Replacement))
	}

	line := r.styles.Muted.Render(number) +
		r.styles.Normal.Render(rule.Pattern) +
		r.styles.Muted.Render(" → ") +
		r.styles.Replacement.Render(rule.Replacement)
	if !rule.IsEligible() {
		line += r.styles.Warning.Render("  (empty pattern, skipped)")
	}
	return line
}

// SetRules replaces the list, keeping the selection in range.
func (r *RuleList) SetRules(rules []domain.Rule) {
	r.rules = rules
	if r.selected >= len(rules) {
		r.selected = len(rules) - 1
	}
	if r.selected < 0 {
		r.selected = 0
	}
}

// Selected returns the index of the selected rule.
func (r *RuleList) Selected() int {
	return r.selected
}

// SelectedRule returns the currently selected rule, or nil if none.
func (r *RuleList) SelectedRule() *domain.Rule {
	if r.selected < 0 || r.selected >= len(r.rules) {
		return nil
	}
	return &r.rules[r.selected]
}

// MoveUp moves selection up.
func (r *RuleList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *RuleList) MoveDown() {
	if r.selected < len(r.rules)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions; height is in rows.
func (r *RuleList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of rules.
func (r *RuleList) Count() int {
	return len(r.rules)
}
