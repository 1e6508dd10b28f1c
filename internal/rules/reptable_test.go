package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDropsIncompleteAndDuplicateRows(t *testing.T) {
	rt := RepresentationTable{
		SourceColumns: []string{"sex"},
		TargetColumn:  "SEX",
		Rows: []RepRow{
			{Sources: []string{"M"}, Target: "M"},
			{Sources: []string{""}, Target: "Z"},  // missing source
			{Sources: []string{"F"}, Target: ""},  // missing target
			{Sources: []string{"M"}, Target: "M"}, // duplicate
			{Sources: []string{"F"}, Target: "F"},
		},
	}

	norm := rt.Normalize()
	require.Len(t, norm.Rows, 2)
	assert.Equal(t, "M", norm.Rows[0].Sources[0])
	assert.Equal(t, "F", norm.Rows[1].Sources[0])
}

func TestNormalizeKeepsRowsDifferingOnlyInValidity(t *testing.T) {
	rt := RepresentationTable{
		SourceColumns: []string{"sex"},
		TargetColumn:  "SEX",
		Rows: []RepRow{
			{Sources: []string{"M"}, Target: "M"},
			{Sources: []string{"M"}, Target: "M", ValidFrom: "2020-01-01"},
		},
	}
	assert.Len(t, rt.Normalize().Rows, 2)
}

func TestRuleSingleSourceBecomesValueLookup(t *testing.T) {
	rt := RepresentationTable{
		SourceColumns: []string{"sex"},
		TargetColumn:  "SEX",
		Rows: []RepRow{
			{Sources: []string{"M"}, Target: "M"},
			{Sources: []string{"regex:[Ff].*"}, Target: "F"},
		},
	}

	rule, err := rt.Rule()
	require.NoError(t, err)

	lookup, ok := rule.(ValueLookup)
	require.True(t, ok)
	assert.Equal(t, "sex", lookup.Source)
	assert.Equal(t, "SEX", lookup.Target())
	require.Len(t, lookup.Pairs, 2)
	assert.True(t, lookup.Pairs[1].Pattern.Regex())
}

func TestRuleMultiSourceBecomesMultiValueLookup(t *testing.T) {
	rt := RepresentationTable{
		SourceColumns: []string{"unit", "base"},
		TargetColumn:  "UNIT_MEASURE",
		Rows: []RepRow{
			{Sources: []string{"USD", "2020"}, Target: "USD_2020"},
		},
	}

	rule, err := rt.Rule()
	require.NoError(t, err)

	multi, ok := rule.(MultiValueLookup)
	require.True(t, ok)
	assert.Equal(t, []string{"unit", "base"}, multi.Sources)
	require.Len(t, multi.Entries, 1)
	assert.Len(t, multi.Entries[0].Patterns, 2)
}

func TestRuleFailsWithoutUsableRows(t *testing.T) {
	rt := RepresentationTable{
		SourceColumns: []string{"sex"},
		TargetColumn:  "SEX",
		Rows: []RepRow{
			{Sources: []string{""}, Target: "M"},
		},
	}
	_, err := rt.Rule()
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestTableFromRuleRoundTrip(t *testing.T) {
	rt := RepresentationTable{
		SourceColumns: []string{"unit", "base"},
		TargetColumn:  "UNIT_MEASURE",
		Rows: []RepRow{
			{Sources: []string{"USD", "2020"}, Target: "USD_2020", ValidFrom: "2020-01-01"},
			{Sources: []string{"regex:EUR.*", "2020"}, Target: "EUR_2020"},
		},
	}

	rule, err := rt.Rule()
	require.NoError(t, err)

	back, ok := TableFromRule(rule)
	require.True(t, ok)
	assert.Equal(t, rt, back)
}

func TestTableFromRuleRejectsNonLookupRules(t *testing.T) {
	fixed, err := NewFixed("FREQ", "A", "")
	require.NoError(t, err)
	_, ok := TableFromRule(fixed)
	assert.False(t, ok)

	implicit, err := NewImplicit("a", "B")
	require.NoError(t, err)
	_, ok = TableFromRule(implicit)
	assert.False(t, ok)
}
