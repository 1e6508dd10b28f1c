// =============================================================================
// SDMX Table Mapper - Representation Sheet Layout
// =============================================================================
//
// Representation sheets come in two layouts:
//
//   literal   headers "source" and "target" (case-insensitive), one source
//             column only
//   prefixed  headers "S:<name>" / "T:<name>", any number of source columns
//
// Validity columns "valid_from"/"valid_to" are optional in both layouts.
// Declared component names from COMP_MAPPING rarely match sheet headers
// verbatim, so they are resolved with the fuzzy column resolver.
//
// =============================================================================

package template

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/sdmx-mapper/internal/rules"
	"github.com/ginjaninja78/sdmx-mapper/internal/workbook"
)

const (
	sourcePrefix = "S:"
	targetPrefix = "T:"
)

// repLayout is the classified header row of a representation sheet.
type repLayout struct {
	sourceNames []string // stripped names, for resolution
	sourceIdx   []int
	targetNames []string
	targetIdx   []int
	validFrom   int // -1 when absent
	validTo     int
}

// parseRepresentationSheet reads a representation grid into a
// RepresentationTable for the declared source components and target.
func parseRepresentationSheet(grid workbook.Grid, declared []string, target string) (rules.RepresentationTable, error) {
	layout, err := classifyRepHeaders(grid)
	if err != nil {
		return rules.RepresentationTable{}, err
	}

	// Pick one sheet column per declared source component.
	srcIdx := make([]int, len(declared))
	if len(layout.sourceNames) == 1 && len(declared) == 1 {
		srcIdx[0] = layout.sourceIdx[0]
	} else {
		for i, name := range declared {
			resolved, err := rules.ResolveColumn(name, layout.sourceNames)
			if err != nil {
				return rules.RepresentationTable{}, err
			}
			srcIdx[i] = layout.sourceIdx[indexOf(layout.sourceNames, resolved)]
		}
	}

	// And the target column.
	tgtIdx := layout.targetIdx[0]
	if len(layout.targetNames) > 1 {
		resolved, err := rules.ResolveColumn(target, layout.targetNames)
		if err != nil {
			return rules.RepresentationTable{}, err
		}
		tgtIdx = layout.targetIdx[indexOf(layout.targetNames, resolved)]
	}

	table := rules.RepresentationTable{
		SourceColumns: append([]string(nil), declared...),
		TargetColumn:  target,
	}
	for r := 1; r < len(grid); r++ {
		row := rules.RepRow{
			Sources: make([]string, len(srcIdx)),
			Target:  grid.Cell(r, tgtIdx),
		}
		for i, c := range srcIdx {
			row.Sources[i] = grid.Cell(r, c)
		}
		if layout.validFrom >= 0 {
			row.ValidFrom = grid.Cell(r, layout.validFrom)
		}
		if layout.validTo >= 0 {
			row.ValidTo = grid.Cell(r, layout.validTo)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// classifyRepHeaders splits a representation sheet's header row into source
// side, target side, and validity columns.
func classifyRepHeaders(grid workbook.Grid) (repLayout, error) {
	if len(grid) == 0 {
		return repLayout{}, fmt.Errorf("%w: sheet is empty", ErrBadRepresentationSheet)
	}

	layout := repLayout{validFrom: -1, validTo: -1}
	for i := range grid[0] {
		header := grid.Cell(0, i)
		switch {
		case strings.HasPrefix(header, sourcePrefix):
			layout.sourceNames = append(layout.sourceNames, strings.TrimSpace(header[len(sourcePrefix):]))
			layout.sourceIdx = append(layout.sourceIdx, i)
		case strings.HasPrefix(header, targetPrefix):
			layout.targetNames = append(layout.targetNames, strings.TrimSpace(header[len(targetPrefix):]))
			layout.targetIdx = append(layout.targetIdx, i)
		case strings.EqualFold(header, "source"):
			layout.sourceNames = append(layout.sourceNames, header)
			layout.sourceIdx = append(layout.sourceIdx, i)
		case strings.EqualFold(header, "target"):
			layout.targetNames = append(layout.targetNames, header)
			layout.targetIdx = append(layout.targetIdx, i)
		case strings.EqualFold(header, "valid_from"):
			layout.validFrom = i
		case strings.EqualFold(header, "valid_to"):
			layout.validTo = i
		}
		// Unprefixed, unrecognized columns (notes etc.) are ignored.
	}

	if len(layout.sourceIdx) == 0 {
		return repLayout{}, fmt.Errorf("%w: no source columns (literal \"source\" or \"S:\" prefix)", ErrBadRepresentationSheet)
	}
	if len(layout.targetIdx) == 0 {
		return repLayout{}, fmt.Errorf("%w: no target columns (literal \"target\" or \"T:\" prefix)", ErrBadRepresentationSheet)
	}
	return layout, nil
}

func indexOf(list []string, value string) int {
	for i, v := range list {
		if v == value {
			return i
		}
	}
	return -1
}
