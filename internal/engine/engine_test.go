package engine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sdmx-mapper/internal/rules"
	"github.com/ginjaninja78/sdmx-mapper/internal/tabular"
)

func mustFixed(t *testing.T, target, value string) rules.Fixed {
	t.Helper()
	r, err := rules.NewFixed(target, value, "")
	require.NoError(t, err)
	return r
}

func mustImplicit(t *testing.T, source, target string) rules.Implicit {
	t.Helper()
	r, err := rules.NewImplicit(source, target)
	require.NoError(t, err)
	return r
}

func mustLookup(t *testing.T, source, target string, pairs ...[2]string) rules.ValueLookup {
	t.Helper()
	entries := make([]rules.ValueEntry, len(pairs))
	for i, p := range pairs {
		entries[i] = rules.ValueEntry{Pattern: rules.MustPattern(p[0]), Replacement: p[1]}
	}
	r, err := rules.NewValueLookup(source, target, entries)
	require.NoError(t, err)
	return r
}

func column(t *testing.T, tb *tabular.Table, name string) []string {
	t.Helper()
	cells, ok := tb.Column(name)
	require.True(t, ok, "column %q", name)
	out := make([]string, len(cells))
	for i, c := range cells {
		if c.Null {
			out[i] = "<null>"
			continue
		}
		out[i] = c.Value
	}
	return out
}

func sampleTable(t *testing.T) *tabular.Table {
	t.Helper()
	tb := tabular.MustNew("Indicator Code", "sex", "unit", "base")
	require.NoError(t, tb.AppendRow([]tabular.Cell{
		tabular.V("NY.GDP"), tabular.V("M"), tabular.V("USD"), tabular.V("2020"),
	}))
	require.NoError(t, tb.AppendRow([]tabular.Cell{
		tabular.V("NY.GDP"), tabular.V("F"), tabular.V("EUR2015"), tabular.V("2015"),
	}))
	require.NoError(t, tb.AppendRow([]tabular.Cell{
		tabular.V("SP.POP"), tabular.V("UNKNOWN"), tabular.V("XDR"), tabular.V("2020"),
	}))
	return tb
}

func TestApplyFixedBroadcasts(t *testing.T) {
	tb := sampleTable(t)
	sm := &rules.StructureMap{Rules: []rules.Rule{mustFixed(t, "FREQ", "A")}}

	out, err := New().Apply(tb, sm)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "A", "A"}, column(t, out, "FREQ"))
}

func TestApplyFixedIsIdempotent(t *testing.T) {
	tb := sampleTable(t)
	sm := &rules.StructureMap{Rules: []rules.Rule{mustFixed(t, "FREQ", "A")}}

	once, err := New().Apply(tb, sm)
	require.NoError(t, err)

	twice, err := New().Apply(once, sm)
	require.NoError(t, err)
	assert.True(t, once.Equal(twice))
}

func TestApplyImplicitCopies(t *testing.T) {
	tb := sampleTable(t)
	sm := &rules.StructureMap{Rules: []rules.Rule{
		mustImplicit(t, "Indicator Code", "INDICATOR"),
	}}

	out, err := New().Apply(tb, sm)
	require.NoError(t, err)
	assert.Equal(t, []string{"NY.GDP", "NY.GDP", "SP.POP"}, column(t, out, "INDICATOR"))
	// The source column stays in place.
	assert.True(t, out.HasColumn("Indicator Code"))
}

func TestApplyValueLookupUnmatchedRowsAreNull(t *testing.T) {
	tb := sampleTable(t)
	sm := &rules.StructureMap{Rules: []rules.Rule{
		mustLookup(t, "sex", "SEX", [2]string{"M", "M"}, [2]string{"F", "F"}),
	}}

	out, err := New().Apply(tb, sm)
	require.NoError(t, err)
	assert.Equal(t, []string{"M", "F", "<null>"}, column(t, out, "SEX"))
}

func TestApplyValueLookupFirstMatchWins(t *testing.T) {
	tb := tabular.MustNew("sex")
	require.NoError(t, tb.AppendRow([]tabular.Cell{tabular.V("A")}))

	sm := &rules.StructureMap{Rules: []rules.Rule{
		mustLookup(t, "sex", "SEX", [2]string{"A", "X"}, [2]string{"A", "Y"}),
	}}

	out, err := New().Apply(tb, sm)
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, column(t, out, "SEX"))
}

func TestApplyValueLookupRegexPatterns(t *testing.T) {
	tb := sampleTable(t)
	sm := &rules.StructureMap{Rules: []rules.Rule{
		mustLookup(t, "unit", "UNIT",
			[2]string{"regex:EUR.*", "EUR"},
			[2]string{"regex:USD|XDR", "HARD"},
		),
	}}

	out, err := New().Apply(tb, sm)
	require.NoError(t, err)
	assert.Equal(t, []string{"HARD", "EUR", "HARD"}, column(t, out, "UNIT"))
}

func TestApplyMultiValueLookupMatchesAllColumns(t *testing.T) {
	tb := sampleTable(t)
	entries := []rules.MultiValueEntry{
		{
			Patterns:    []rules.Pattern{rules.MustPattern("USD"), rules.MustPattern("2020")},
			Replacement: "USD_2020",
		},
		{
			Patterns:    []rules.Pattern{rules.MustPattern("regex:.*"), rules.MustPattern("2020")},
			Replacement: "OTHER_2020",
		},
	}
	multi, err := rules.NewMultiValueLookup([]string{"unit", "base"}, "UNIT_MEASURE", entries)
	require.NoError(t, err)

	out, err := New().Apply(tb, &rules.StructureMap{Rules: []rules.Rule{multi}})
	require.NoError(t, err)
	// Row 1: both patterns of entry 1 match. Row 2: base is 2015, no entry
	// matches. Row 3: only the catch-all entry matches fully.
	assert.Equal(t, []string{"USD_2020", "<null>", "OTHER_2020"}, column(t, out, "UNIT_MEASURE"))
}

func TestApplyCategoryOrderBeatsDeclarationOrder(t *testing.T) {
	tb := tabular.MustNew("x")
	require.NoError(t, tb.AppendRow([]tabular.Cell{tabular.V("1")}))

	// The lookup reads STAGED, which only exists once the fixed rule ran.
	// Declared lookup-first, it still works because fixed rules apply first.
	sm := &rules.StructureMap{Rules: []rules.Rule{
		mustLookup(t, "STAGED", "STATUS", [2]string{"A", "OK"}),
		mustFixed(t, "STAGED", "A"),
	}}

	out, err := New().Apply(tb, sm)
	require.NoError(t, err)
	assert.Equal(t, []string{"OK"}, column(t, out, "STATUS"))
}

func TestApplyNeverMutatesInput(t *testing.T) {
	tb := sampleTable(t)
	snapshot := tb.Clone()

	sm := &rules.StructureMap{Rules: []rules.Rule{
		mustFixed(t, "FREQ", "A"),
		mustImplicit(t, "Indicator Code", "INDICATOR"),
		mustLookup(t, "sex", "SEX", [2]string{"M", "M"}),
	}}

	_, err := New().Apply(tb, sm)
	require.NoError(t, err)
	assert.True(t, tb.Equal(snapshot))
}

func TestApplyMissingSourceColumn(t *testing.T) {
	tb := sampleTable(t)

	_, err := New().Apply(tb, &rules.StructureMap{Rules: []rules.Rule{
		mustImplicit(t, "NO_SUCH", "TARGET"),
	}})
	assert.ErrorIs(t, err, ErrMissingSourceColumn)

	_, err = New().Apply(tb, &rules.StructureMap{Rules: []rules.Rule{
		mustLookup(t, "NO_SUCH", "TARGET", [2]string{"A", "B"}),
	}})
	assert.ErrorIs(t, err, ErrMissingSourceColumn)
}

func TestApplyMissingMultiSourceColumnsListsAll(t *testing.T) {
	tb := sampleTable(t)
	multi, err := rules.NewMultiValueLookup([]string{"unit", "missing1", "missing2"}, "T",
		[]rules.MultiValueEntry{{
			Patterns: []rules.Pattern{
				rules.MustPattern("a"), rules.MustPattern("b"), rules.MustPattern("c"),
			},
			Replacement: "x",
		}})
	require.NoError(t, err)

	_, err = New().Apply(tb, &rules.StructureMap{Rules: []rules.Rule{multi}})
	require.ErrorIs(t, err, ErrMissingSourceColumns)
	assert.Contains(t, err.Error(), "missing1")
	assert.Contains(t, err.Error(), "missing2")
}

func TestVerboseNoticesGoToLog(t *testing.T) {
	tb := sampleTable(t)
	var buf bytes.Buffer
	eng := &Engine{Verbose: true, Log: &buf}

	_, err := eng.Apply(tb, &rules.StructureMap{Rules: []rules.Rule{
		mustLookup(t, "sex", "SEX", [2]string{"M", "M"}),
	}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "SEX")
	assert.Contains(t, buf.String(), "no matching pattern")
}
