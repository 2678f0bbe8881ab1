package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRuleTable_Basic(t *testing.T) {
	rows := [][]string{
		{"誤表記", "正表記"},
		{"子供", "子ども"},
		{"出来る", "できる"},
	}

	table, err := LoadRuleTable(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{PatternColumn, ReplacementColumn}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, Rule{Pattern: "子供", Replacement: "子ども"}, table.Rules[0])
	assert.Equal(t, Rule{Pattern: "出来る", Replacement: "できる"}, table.Rules[1])
}

func TestLoadRuleTable_ExtraColumnsPreserved(t *testing.T) {
	rows := [][]string{
		{"No", "正表記", "備考", "誤表記"},
		{"1", "子ども", "常用", "子供"},
		{"2", "できる", "", "出来る"},
	}

	table, err := LoadRuleTable(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"No", "正表記", "備考", "誤表記"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "子供", table.Rules[0].Pattern)
	assert.Equal(t, "子ども", table.Rules[0].Replacement)
	assert.Equal(t, map[string]string{"No": "1", "備考": "常用"}, table.Rules[0].Extra)
	assert.Equal(t, "", table.Rules[1].Extra["備考"])

	assert.Equal(t, rows, table.Rows(), "rows must render back in column order")
}

func TestLoadRuleTable_MissingColumns(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		missing string
	}{
		{"no pattern", []string{"正表記", "備考"}, PatternColumn},
		{"no replacement", []string{"誤表記", "備考"}, ReplacementColumn},
		{"neither", []string{"incorrect", "correct"}, PatternColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRuleTable([][]string{tt.header, {"a", "b"}})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRuleLoad))
			assert.True(t, errors.Is(err, ErrMissingColumn))

			var mc *MissingColumnError
			require.True(t, errors.As(err, &mc))
			assert.Equal(t, tt.missing, mc.Column)
		})
	}
}

func TestLoadRuleTable_NoRows(t *testing.T) {
	_, err := LoadRuleTable(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRuleLoad))
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestLoadRuleTable_HeaderWhitespaceTrimmed(t *testing.T) {
	table, err := LoadRuleTable([][]string{{" 誤表記 ", "正表記\n"}, {"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "a", table.Rules[0].Pattern)
}

func TestLoadRuleTable_BlankRowsDroppedShortRowsPadded(t *testing.T) {
	rows := [][]string{
		{"誤表記", "正表記", "備考"},
		{"", " ", ""},
		{"foo"},
		{},
		{"", "baz"},
	}

	table, err := LoadRuleTable(rows)
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, "foo", table.Rules[0].Pattern)
	assert.Equal(t, "", table.Rules[0].Replacement)
	assert.Equal(t, "", table.Rules[1].Pattern, "empty patterns are kept, the matcher skips them")
	assert.Equal(t, "baz", table.Rules[1].Replacement)
}

func TestLoadRuleTable_DuplicatePatternsKept(t *testing.T) {
	table, err := LoadRuleTable([][]string{{"誤表記", "正表記"}, {"a", "x"}, {"a", "y"}})
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}

func TestRule_IsEligible(t *testing.T) {
	assert.True(t, Rule{Pattern: "foo"}.IsEligible())
	assert.False(t, Rule{Pattern: ""}.IsEligible())
	assert.False(t, Rule{Pattern: " \t　"}.IsEligible())
}

func TestRuleTable_NilSafe(t *testing.T) {
	var table *RuleTable

	assert.Equal(t, 0, table.Len())
	assert.Nil(t, table.Clone())
	assert.Equal(t, [][]string{{PatternColumn, ReplacementColumn}}, table.Rows())
	assert.True(t, table.Equal(NewRuleTable()))
}

func TestRuleTable_Clone(t *testing.T) {
	original := &RuleTable{
		Columns: []string{PatternColumn, ReplacementColumn, "備考"},
		Rules: []Rule{
			{Pattern: "a", Replacement: "b", Extra: map[string]string{"備考": "x"}},
		},
	}

	clone := original.Clone()
	require.True(t, original.Equal(clone))

	clone.Rules[0].Extra["備考"] = "changed"
	clone.Columns[2] = "changed"
	clone.Rules[0].Pattern = "changed"

	assert.Equal(t, "x", original.Rules[0].Extra["備考"])
	assert.Equal(t, "備考", original.Columns[2])
	assert.Equal(t, "a", original.Rules[0].Pattern)
}

func TestRuleTable_Equal(t *testing.T) {
	a := NewRuleTable(Rule{Pattern: "a", Replacement: "b"}, Rule{Pattern: "c", Replacement: "d"})
	reordered := NewRuleTable(Rule{Pattern: "c", Replacement: "d"}, Rule{Pattern: "a", Replacement: "b"})
	withEmptyExtra := NewRuleTable(
		Rule{Pattern: "a", Replacement: "b", Extra: map[string]string{}},
		Rule{Pattern: "c", Replacement: "d"},
	)

	assert.True(t, a.Equal(a.Clone()))
	assert.False(t, a.Equal(reordered), "order matters")
	assert.True(t, a.Equal(withEmptyExtra), "nil and empty extras are equal")
}
