// =============================================================================
// SDMX Table Mapper - Spreadsheet Mapping Parser
// =============================================================================
//
// This module turns a mapping workbook into a typed StructureMap. The
// workbook layout is the one bit-relevant external contract of the mapper:
//
//   COMP_MAPPING   mandatory; columns SOURCE, TARGET, MAPPING_RULES
//                  (sheet and header lookup are case-insensitive)
//   INFO           optional Key/Value metadata (agency, version, artefact)
//   <TARGET>       one representation sheet per lookup rule, keyed by the
//   REP_MAPPING    rule's target, or the shared REP_MAPPING sheet
//
// Row classification in COMP_MAPPING, first applicable wins:
//
//   1. "fixed:<value>"           -> Fixed
//   2. "implicit"                -> Implicit (requires SOURCE)
//   3. rule string == TARGET id  -> ValueLookup / MultiValueLookup
//   4. anything else             -> error
//
// Rows with an empty TARGET, or an empty/"nan"/whitespace rule cell, are
// skipped without emitting a rule. Every other violation aborts the whole
// parse: there is no partial structure map.
//
// =============================================================================

package template

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/sdmx-mapper/internal/rules"
	"github.com/ginjaninja78/sdmx-mapper/internal/workbook"
)

// CompMappingSheet is the canonical name of the component-mapping sheet.
const CompMappingSheet = "COMP_MAPPING"

// RepMappingSheet is the shared representation sheet consulted when no sheet
// is named after a rule's target.
const RepMappingSheet = "REP_MAPPING"

// fixedRulePrefix introduces a fixed-value rule string.
const fixedRulePrefix = "fixed:"

// Defaults supplies identity metadata used when the INFO sheet does not
// carry a resolvable artefact reference.
type Defaults struct {
	Agency  string
	Version string
	MapID   string
}

// ParseStructureMap reads a mapping workbook into an ordered StructureMap.
func ParseStructureMap(sheets workbook.Sheets, defaults Defaults) (*rules.StructureMap, error) {
	meta := parseInfo(sheets, defaults)

	_, grid, ok := sheets.Lookup(CompMappingSheet)
	if !ok {
		return nil, fmt.Errorf("%w: no sheet named %q", ErrMissingMappingSheet, CompMappingSheet)
	}
	cols, err := locateMappingColumns(grid)
	if err != nil {
		return nil, err
	}

	var parsed []rules.Rule
	for r := 1; r < len(grid); r++ {
		source := grid.Cell(r, cols.source)
		target := grid.Cell(r, cols.target)
		rule := grid.Cell(r, cols.rule)

		// Row-level skip: no target, or no usable rule string.
		if target == "" || rule == "" || strings.EqualFold(rule, "nan") {
			continue
		}

		built, err := classifyRule(sheets, source, target, rule)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", target, err)
		}
		parsed = append(parsed, built)
	}

	mapID := defaults.MapID
	if mapID == "" {
		mapID = "STRUCTURE_MAP"
	}
	name := "Structure map"
	if meta.Ref != "" {
		name = "Structure map for " + meta.Ref
	}
	return &rules.StructureMap{
		ID:        mapID,
		Agency:    meta.Agency,
		Version:   meta.Version,
		Name:      name,
		TargetRef: meta.Ref,
		Rules:     parsed,
	}, nil
}

// =============================================================================
// ROW CLASSIFICATION
// =============================================================================

// classifyRule dispatches one component-mapping row to a rule constructor.
func classifyRule(sheets workbook.Sheets, source, target, rule string) (rules.Rule, error) {
	switch {
	case strings.HasPrefix(strings.ToLower(rule), fixedRulePrefix):
		value := strings.TrimSpace(rule[len(fixedRulePrefix):])
		if value == "" {
			return nil, fmt.Errorf("%w: %q has no value after the colon", ErrInvalidRuleFormat, rule)
		}
		return rules.NewFixed(target, value, rules.LocatedInTarget)

	case strings.EqualFold(rule, "implicit"):
		if source == "" {
			return nil, fmt.Errorf("%w: implicit rule needs a SOURCE cell", ErrMissingSource)
		}
		return rules.NewImplicit(source, target)

	case rule == target:
		return parseRepresentationRule(sheets, source, target)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMappingRule, rule)
	}
}

// parseRepresentationRule resolves a lookup rule against its representation
// sheet: the sheet named after the target, or the shared REP_MAPPING sheet.
func parseRepresentationRule(sheets workbook.Sheets, source, target string) (rules.Rule, error) {
	declared := splitSources(source)
	if len(declared) == 0 {
		return nil, fmt.Errorf("%w: representation rule needs a SOURCE cell", ErrMissingSource)
	}

	_, grid, ok := sheets.Lookup(target)
	if !ok {
		_, grid, ok = sheets.Lookup(RepMappingSheet)
	}
	if !ok {
		return nil, fmt.Errorf("%w: no sheet named %q (and no %q sheet)",
			ErrMissingRepresentationSheet, target, RepMappingSheet)
	}

	table, err := parseRepresentationSheet(grid, declared, target)
	if err != nil {
		return nil, err
	}
	norm := table.Normalize()
	if len(norm.Rows) == 0 {
		return nil, fmt.Errorf("%w: between %q and %q", ErrEmptyRepresentationMapping,
			strings.Join(declared, ","), target)
	}
	return norm.Rule()
}

// splitSources parses the SOURCE cell of a representation rule. Several
// comma-separated column names declare a multi-column lookup.
func splitSources(source string) []string {
	parts := strings.Split(source, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// COMPONENT MAPPING HEADER
// =============================================================================

type mappingColumns struct {
	source, target, rule int
}

// locateMappingColumns finds the SOURCE/TARGET/MAPPING_RULES header cells,
// matching case-insensitively.
func locateMappingColumns(grid workbook.Grid) (mappingColumns, error) {
	if len(grid) == 0 {
		return mappingColumns{}, fmt.Errorf("%w: sheet is empty", ErrMissingMappingSheet)
	}
	cols := mappingColumns{source: -1, target: -1, rule: -1}
	for i, header := range grid[0] {
		switch strings.ToUpper(strings.TrimSpace(header)) {
		case "SOURCE":
			cols.source = i
		case "TARGET":
			cols.target = i
		case "MAPPING_RULES":
			cols.rule = i
		}
	}
	var missing []string
	if cols.source < 0 {
		missing = append(missing, "SOURCE")
	}
	if cols.target < 0 {
		missing = append(missing, "TARGET")
	}
	if cols.rule < 0 {
		missing = append(missing, "MAPPING_RULES")
	}
	if len(missing) > 0 {
		return mappingColumns{}, fmt.Errorf("%w: missing required columns [%s]",
			ErrMissingMappingSheet, strings.Join(missing, ", "))
	}
	return cols, nil
}
