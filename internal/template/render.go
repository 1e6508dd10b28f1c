// =============================================================================
// SDMX Table Mapper - Template Renderer
// =============================================================================
//
// The inverse of the parser: given a resolved StructureMap, regenerate a
// spreadsheet mapping template that ParseStructureMap accepts back. One
// COMP_MAPPING sheet summarizes every rule; each lookup rule additionally
// gets a representation sheet named after its target. Single-source lookups
// use the literal source/target layout, multi-source lookups the S:/T:
// prefix layout, so the round trip reconstructs the same rule shape.
//
// =============================================================================

package template

import (
	"fmt"

	"github.com/ginjaninja78/sdmx-mapper/internal/rules"
	"github.com/ginjaninja78/sdmx-mapper/internal/workbook"
)

// RenderTemplate serializes a structure map into mapping-template sheets.
// Fails with ErrEmptyStructureMap when the map carries no rules.
func RenderTemplate(sm *rules.StructureMap) (workbook.Sheets, error) {
	if sm == nil || len(sm.Rules) == 0 {
		return nil, ErrEmptyStructureMap
	}

	sheets := make(workbook.Sheets)
	comp := workbook.Grid{{"SOURCE", "TARGET", "MAPPING_RULES"}}

	for _, rule := range sm.Rules {
		comp = append(comp, []string{
			rules.SourceString(rule),
			rule.Target(),
			rules.RuleString(rule),
		})

		table, ok := rules.TableFromRule(rule)
		if !ok {
			continue
		}
		if _, exists := sheets[rule.Target()]; exists {
			return nil, fmt.Errorf("duplicate representation sheet %q: two lookup rules share a target", rule.Target())
		}
		sheets[rule.Target()] = renderRepresentation(table)
	}

	sheets[CompMappingSheet] = comp
	return sheets, nil
}

// SheetOrder returns the natural sheet order for saving a rendered
// template: COMP_MAPPING first, then representation sheets in rule order.
func SheetOrder(sm *rules.StructureMap) []string {
	order := []string{CompMappingSheet}
	for _, rule := range sm.Rules {
		if _, ok := rules.TableFromRule(rule); ok {
			order = append(order, rule.Target())
		}
	}
	return order
}

// renderRepresentation lays out one lookup rule's rows as a grid.
func renderRepresentation(table rules.RepresentationTable) workbook.Grid {
	multi := len(table.SourceColumns) > 1

	header := make([]string, 0, len(table.SourceColumns)+3)
	if multi {
		for _, src := range table.SourceColumns {
			header = append(header, sourcePrefix+src)
		}
		header = append(header, targetPrefix+table.TargetColumn)
	} else {
		header = append(header, "source", "target")
	}
	header = append(header, "valid_from", "valid_to")

	grid := workbook.Grid{header}
	for _, row := range table.Rows {
		record := make([]string, 0, len(header))
		record = append(record, row.Sources...)
		record = append(record, row.Target, row.ValidFrom, row.ValidTo)
		grid = append(grid, record)
	}
	return grid
}
