package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sdmx-mapper/internal/rules"
	"github.com/ginjaninja78/sdmx-mapper/internal/workbook"
)

var testDefaults = Defaults{Agency: "SDMX", Version: "1.0"}

// fullWorkbook covers every rule kind plus skipped rows.
func fullWorkbook() workbook.Sheets {
	return workbook.Sheets{
		"INFO": workbook.Grid{
			{"dataflow", "WB:WDI(1.0)"},
		},
		"COMP_MAPPING": workbook.Grid{
			{"SOURCE", "TARGET", "MAPPING_RULES"},
			{"", "FREQ", "fixed:A"},
			{"Indicator Code", "INDICATOR", "implicit"},
			{"sex", "SEX", "SEX"},
			{"unit, base", "UNIT_MEASURE", "UNIT_MEASURE"},
			{"ignored", "", "implicit"},   // no target: skipped
			{"ignored", "SKIPPED", "nan"}, // nan rule: skipped
			{"ignored", "SKIPPED", ""},    // empty rule: skipped
		},
		"SEX": workbook.Grid{
			{"source", "target", "valid_from", "valid_to"},
			{"M", "M", "", ""},
			{"F", "F", "", ""},
			{"M", "M", "", ""}, // duplicate: dropped
			{"", "X", "", ""},  // incomplete: dropped
		},
		"UNIT_MEASURE": workbook.Grid{
			{"S:unit", "S:base", "T:UNIT_MEASURE", "valid_from", "valid_to"},
			{"USD", "2020", "USD_2020", "", ""},
			{"regex:EUR.*", "2020", "EUR_2020", "", ""},
		},
	}
}

func TestParseStructureMapFullWorkbook(t *testing.T) {
	sm, err := ParseStructureMap(fullWorkbook(), testDefaults)
	require.NoError(t, err)

	assert.Equal(t, "WB", sm.Agency)
	assert.Equal(t, "1.0", sm.Version)
	assert.Equal(t, "WB:WDI(1.0)", sm.TargetRef)
	assert.Contains(t, sm.Name, "WB:WDI(1.0)")

	require.Len(t, sm.Rules, 4)

	fixed, ok := sm.Rules[0].(rules.Fixed)
	require.True(t, ok)
	assert.Equal(t, "FREQ", fixed.Target())
	assert.Equal(t, "A", fixed.Value)

	implicit, ok := sm.Rules[1].(rules.Implicit)
	require.True(t, ok)
	assert.Equal(t, "Indicator Code", implicit.Source)
	assert.Equal(t, "INDICATOR", implicit.Target())

	lookup, ok := sm.Rules[2].(rules.ValueLookup)
	require.True(t, ok)
	assert.Equal(t, "sex", lookup.Source)
	assert.Len(t, lookup.Pairs, 2)

	multi, ok := sm.Rules[3].(rules.MultiValueLookup)
	require.True(t, ok)
	assert.Equal(t, []string{"unit", "base"}, multi.Sources)
	require.Len(t, multi.Entries, 2)
	assert.True(t, multi.Entries[1].Patterns[0].Regex())
}

func TestParseStructureMapCaseInsensitiveSheetAndHeaders(t *testing.T) {
	sheets := workbook.Sheets{
		"comp_mapping": workbook.Grid{
			{"source", "Target", "Mapping_Rules"},
			{"", "FREQ", "FIXED:A"},
		},
	}
	sm, err := ParseStructureMap(sheets, testDefaults)
	require.NoError(t, err)
	require.Len(t, sm.Rules, 1)
	assert.Equal(t, rules.KindFixed, sm.Rules[0].Kind())
}

func TestParseStructureMapMissingMappingSheet(t *testing.T) {
	_, err := ParseStructureMap(workbook.Sheets{"INFO": {}}, testDefaults)
	assert.ErrorIs(t, err, ErrMissingMappingSheet)
}

func TestParseStructureMapMissingHeaderColumns(t *testing.T) {
	sheets := workbook.Sheets{
		"COMP_MAPPING": workbook.Grid{
			{"SOURCE", "MAPPING_RULES"},
		},
	}
	_, err := ParseStructureMap(sheets, testDefaults)
	require.ErrorIs(t, err, ErrMissingMappingSheet)
	assert.Contains(t, err.Error(), "TARGET")
}

func TestParseStructureMapFixedWithoutValue(t *testing.T) {
	sheets := workbook.Sheets{
		"COMP_MAPPING": workbook.Grid{
			{"SOURCE", "TARGET", "MAPPING_RULES"},
			{"", "FREQ", "fixed:"},
		},
	}
	_, err := ParseStructureMap(sheets, testDefaults)
	assert.ErrorIs(t, err, ErrInvalidRuleFormat)
}

func TestParseStructureMapImplicitWithoutSource(t *testing.T) {
	sheets := workbook.Sheets{
		"COMP_MAPPING": workbook.Grid{
			{"SOURCE", "TARGET", "MAPPING_RULES"},
			{"", "INDICATOR", "implicit"},
		},
	}
	_, err := ParseStructureMap(sheets, testDefaults)
	assert.ErrorIs(t, err, ErrMissingSource)
}

func TestParseStructureMapSeparatorOnlySourceIsMissing(t *testing.T) {
	// A SOURCE cell of commas and spaces declares no column at all.
	sheets := workbook.Sheets{
		"COMP_MAPPING": workbook.Grid{
			{"SOURCE", "TARGET", "MAPPING_RULES"},
			{", ,", "SEX", "SEX"},
		},
		"SEX": workbook.Grid{
			{"source", "target"},
			{"M", "M"},
		},
	}
	_, err := ParseStructureMap(sheets, testDefaults)
	assert.ErrorIs(t, err, ErrMissingSource)
}

func TestParseStructureMapUnknownRule(t *testing.T) {
	sheets := workbook.Sheets{
		"COMP_MAPPING": workbook.Grid{
			{"SOURCE", "TARGET", "MAPPING_RULES"},
			{"sex", "SEX", "wat"},
		},
	}
	_, err := ParseStructureMap(sheets, testDefaults)
	require.ErrorIs(t, err, ErrUnknownMappingRule)
	assert.Contains(t, err.Error(), `target "SEX"`)
}

func TestParseStructureMapMissingRepresentationSheet(t *testing.T) {
	sheets := workbook.Sheets{
		"COMP_MAPPING": workbook.Grid{
			{"SOURCE", "TARGET", "MAPPING_RULES"},
			{"sex", "SEX", "SEX"},
		},
	}
	_, err := ParseStructureMap(sheets, testDefaults)
	assert.ErrorIs(t, err, ErrMissingRepresentationSheet)
}

func TestParseStructureMapFallsBackToSharedRepSheet(t *testing.T) {
	sheets := workbook.Sheets{
		"COMP_MAPPING": workbook.Grid{
			{"SOURCE", "TARGET", "MAPPING_RULES"},
			{"sex", "SEX", "SEX"},
		},
		"REP_MAPPING": workbook.Grid{
			{"source", "target"},
			{"M", "M"},
		},
	}
	sm, err := ParseStructureMap(sheets, testDefaults)
	require.NoError(t, err)
	require.Len(t, sm.Rules, 1)
	assert.Equal(t, rules.KindValueLookup, sm.Rules[0].Kind())
}

func TestParseStructureMapEmptyRepresentationMapping(t *testing.T) {
	sheets := workbook.Sheets{
		"COMP_MAPPING": workbook.Grid{
			{"SOURCE", "TARGET", "MAPPING_RULES"},
			{"sex", "SEX", "SEX"},
		},
		"SEX": workbook.Grid{
			{"source", "target"},
			{"", "M"},
			{"F", ""},
		},
	}
	_, err := ParseStructureMap(sheets, testDefaults)
	assert.ErrorIs(t, err, ErrEmptyRepresentationMapping)
}

func TestParseStructureMapBadRepresentationSheet(t *testing.T) {
	sheets := workbook.Sheets{
		"COMP_MAPPING": workbook.Grid{
			{"SOURCE", "TARGET", "MAPPING_RULES"},
			{"sex", "SEX", "SEX"},
		},
		"SEX": workbook.Grid{
			{"notes", "remarks"},
			{"a", "b"},
		},
	}
	_, err := ParseStructureMap(sheets, testDefaults)
	assert.ErrorIs(t, err, ErrBadRepresentationSheet)
}

func TestParseStructureMapResolvesRepSheetColumnsFuzzily(t *testing.T) {
	sheets := workbook.Sheets{
		"COMP_MAPPING": workbook.Grid{
			{"SOURCE", "TARGET", "MAPPING_RULES"},
			{"unit, base", "UNIT_MEASURE", "UNIT_MEASURE"},
		},
		"UNIT_MEASURE": workbook.Grid{
			// Headers differ from the declared names in case and spacing.
			{"S:Unit Code", "S:BASE_YEAR", "T:UNIT_MEASURE"},
			{"USD", "2020", "USD_2020"},
		},
	}
	sm, err := ParseStructureMap(sheets, testDefaults)
	require.NoError(t, err)

	multi, ok := sm.Rules[0].(rules.MultiValueLookup)
	require.True(t, ok)
	// The rule keeps the declared component names, not the sheet headers.
	assert.Equal(t, []string{"unit", "base"}, multi.Sources)
	assert.Equal(t, "USD_2020", multi.Entries[0].Replacement)
}
