package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sdmx-mapper/internal/rules"
)

func TestRenderTemplateEmptyMap(t *testing.T) {
	_, err := RenderTemplate(nil)
	assert.ErrorIs(t, err, ErrEmptyStructureMap)

	_, err = RenderTemplate(&rules.StructureMap{})
	assert.ErrorIs(t, err, ErrEmptyStructureMap)
}

func TestRenderTemplateLayout(t *testing.T) {
	sm, err := ParseStructureMap(fullWorkbook(), testDefaults)
	require.NoError(t, err)

	sheets, err := RenderTemplate(sm)
	require.NoError(t, err)

	comp, ok := sheets[CompMappingSheet]
	require.True(t, ok)
	assert.Equal(t, []string{"SOURCE", "TARGET", "MAPPING_RULES"}, comp[0])
	// One header plus one row per rule.
	assert.Len(t, comp, 1+len(sm.Rules))

	// Single-source lookup renders the literal layout.
	sex, ok := sheets["SEX"]
	require.True(t, ok)
	assert.Equal(t, []string{"source", "target", "valid_from", "valid_to"}, sex[0])

	// Multi-source lookup renders the prefixed layout.
	unit, ok := sheets["UNIT_MEASURE"]
	require.True(t, ok)
	assert.Equal(t, []string{"S:unit", "S:base", "T:UNIT_MEASURE", "valid_from", "valid_to"}, unit[0])

	assert.Equal(t,
		[]string{CompMappingSheet, "SEX", "UNIT_MEASURE"},
		SheetOrder(sm))
}

func TestRenderTemplateDuplicateLookupTargets(t *testing.T) {
	lookup := func() rules.Rule {
		r, err := rules.NewValueLookup("sex", "SEX", []rules.ValueEntry{
			{Pattern: rules.MustPattern("M"), Replacement: "M"},
		})
		require.NoError(t, err)
		return r
	}
	_, err := RenderTemplate(&rules.StructureMap{Rules: []rules.Rule{lookup(), lookup()}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate representation sheet")
}

// TestRoundTrip checks the law parse(render(m)) == m for a map already in
// normal form (no duplicate or incomplete representation rows).
func TestRoundTrip(t *testing.T) {
	sm, err := ParseStructureMap(fullWorkbook(), testDefaults)
	require.NoError(t, err)

	rendered, err := RenderTemplate(sm)
	require.NoError(t, err)

	back, err := ParseStructureMap(rendered, Defaults{Agency: sm.Agency, Version: sm.Version})
	require.NoError(t, err)

	require.Len(t, back.Rules, len(sm.Rules))
	for i, want := range sm.Rules {
		got := back.Rules[i]
		assert.Equal(t, want.Kind(), got.Kind(), "rule %d kind", i)
		assert.Equal(t, want.Target(), got.Target(), "rule %d target", i)
		assert.Equal(t, rules.SourceString(want), rules.SourceString(got), "rule %d source", i)
		assert.Equal(t, rules.RuleString(want), rules.RuleString(got), "rule %d rule string", i)

		wantTable, wantOK := rules.TableFromRule(want)
		gotTable, gotOK := rules.TableFromRule(got)
		require.Equal(t, wantOK, gotOK, "rule %d tabular form", i)
		if wantOK {
			assert.Equal(t, wantTable, gotTable, "rule %d representation rows", i)
		}
	}
}
