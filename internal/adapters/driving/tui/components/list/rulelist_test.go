package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wordcheck/internal/core/domain"
)

func sampleRules() []domain.Rule {
	return []domain.Rule{
		{Pattern: "子供", Replacement: "子ども"},
		{Pattern: "出来る", Replacement: "できる"},
		{Pattern: "", Replacement: "空"},
	}
}

func TestRuleList_Empty(t *testing.T) {
	l := NewRuleList(nil)

	assert.Contains(t, l.View(), "No rules")
	assert.Nil(t, l.SelectedRule())
}

func TestRuleList_Navigation(t *testing.T) {
	l := NewRuleList(nil)
	l.SetRules(sampleRules())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 2, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	assert.Equal(t, 0, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	assert.Equal(t, 2, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyUp})
	require.NotNil(t, l.SelectedRule())
	assert.Equal(t, "出来る", l.SelectedRule().Pattern)
}

func TestRuleList_View(t *testing.T) {
	l := NewRuleList(nil)
	l.SetRules(sampleRules())

	view := l.View()

	assert.Contains(t, view, "子供 → 子ども")
	assert.Contains(t, view, "出来る")
	assert.Contains(t, view, "empty pattern")
}

func TestRuleList_ScrollsToSelection(t *testing.T) {
	l := NewRuleList(nil)
	l.SetDimensions(80, 1)
	l.SetRules(sampleRules())

	l.MoveDown()

	assert.NotContains(t, l.View(), "子供")
	assert.Contains(t, l.View(), "出来る")
}

func TestRuleList_SetRulesClampsSelection(t *testing.T) {
	l := NewRuleList(nil)
	l.SetRules(sampleRules())
	l.MoveDown()
	l.MoveDown()

	l.SetRules(sampleRules()[:1])
	assert.Equal(t, 0, l.Selected())

	l.SetRules(nil)
	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, 0, l.Count())
}
