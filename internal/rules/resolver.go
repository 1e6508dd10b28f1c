// =============================================================================
// SDMX Table Mapper - Column Resolver
// =============================================================================
//
// Mapping sheets refer to columns by business names that rarely match the
// actual headers exactly ("Series code" vs "Series"). ResolveColumn bridges
// the gap: exact match first, then a normalized comparison that ignores
// spaces, underscores and case, and accepts substring containment in either
// direction. Iteration order of the candidates decides ties: the FIRST
// structural match wins, not the best one.
//
// =============================================================================

package rules

import (
	"fmt"
	"strings"
)

// ResolveColumn matches a requested column name against the actual headers
// of a table or sheet. The requested name is trimmed before comparison.
// Fails with ErrColumnNotFound listing all candidates when nothing matches.
func ResolveColumn(requested string, available []string) (string, error) {
	requested = strings.TrimSpace(requested)

	// 1. Exact, case-sensitive match.
	for _, col := range available {
		if col == requested {
			return col, nil
		}
	}

	// 2. Normalized equality or containment, first candidate wins.
	normRequested := normalizeColumn(requested)
	if normRequested != "" {
		for _, col := range available {
			normCol := normalizeColumn(col)
			if normCol == "" {
				continue
			}
			if normCol == normRequested ||
				strings.Contains(normCol, normRequested) ||
				strings.Contains(normRequested, normCol) {
				return col, nil
			}
		}
	}

	return "", fmt.Errorf("%w: no column matching %q, available: [%s]",
		ErrColumnNotFound, requested, strings.Join(available, ", "))
}

// normalizeColumn strips spaces and underscores and lower-cases the name.
func normalizeColumn(name string) string {
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ReplaceAll(name, "_", "")
	return strings.ToLower(name)
}
