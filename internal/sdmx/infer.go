// =============================================================================
// SDMX Table Mapper - Schema Inference
// =============================================================================
//
// Heuristics for deriving a Schema from a plain table when no structure has
// been declared: dimension detection via minimal unique keys, role and data
// type guessing, and local codelist extraction for low-cardinality string
// dimensions.
//
// =============================================================================

package sdmx

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ginjaninja78/sdmx-mapper/internal/tabular"
)

// maxInferredCodes caps the size of generated local codelists; columns with
// more distinct values than this are left uncoded.
const maxInferredCodes = 500

// periodPattern recognizes common SDMX reporting periods (2023, 2023-Q1,
// 2023-05, 2023-05-01, 2023-S1, 2023-W12).
var periodPattern = regexp.MustCompile(`^\d{4}(-(Q[1-4]|S[12]|W\d{1,2}|\d{2}(-\d{2})?))?$`)

// =============================================================================
// DIMENSION DETECTION
// =============================================================================

// InferDimensions finds the smallest combinations of columns that uniquely
// identify each row's observation value. Single-column keys are preferred;
// larger combinations are only examined when no smaller key exists. The
// result lists every minimal key of the winning size, each key's columns
// sorted, and the keys themselves sorted for deterministic output.
func InferDimensions(t *tabular.Table, valueCol string) ([][]string, error) {
	if !t.HasColumn(valueCol) {
		return nil, fmt.Errorf("observation column %q not found in table", valueCol)
	}

	var candidates []string
	for _, col := range t.Columns() {
		if col != valueCol {
			candidates = append(candidates, col)
		}
	}

	// Skip rows where every candidate cell is null; they cannot be keyed.
	var rows []int
	for r := 0; r < t.NumRows(); r++ {
		allNull := true
		for _, col := range candidates {
			if cell, _ := t.Cell(col, r); !cell.Null {
				allNull = false
				break
			}
		}
		if !allNull {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	for size := 1; size <= len(candidates); size++ {
		var found [][]string
		forEachCombination(candidates, size, func(combo []string) {
			if uniqueKey(t, rows, combo) {
				key := append([]string(nil), combo...)
				sort.Strings(key)
				found = append(found, key)
			}
		})
		if len(found) > 0 {
			sort.Slice(found, func(i, j int) bool {
				return strings.Join(found[i], "\x00") < strings.Join(found[j], "\x00")
			})
			return found, nil
		}
	}
	return nil, nil
}

// forEachCombination visits every k-subset of items in lexicographic index
// order.
func forEachCombination(items []string, k int, visit func([]string)) {
	combo := make([]string, k)
	var recurse func(start, depth int)
	recurse = func(start, depth int) {
		if depth == k {
			visit(combo)
			return
		}
		for i := start; i <= len(items)-(k-depth); i++ {
			combo[depth] = items[i]
			recurse(i+1, depth+1)
		}
	}
	recurse(0, 0)
}

// uniqueKey reports whether the given columns have no duplicate value tuples
// across the selected rows.
func uniqueKey(t *tabular.Table, rows []int, cols []string) bool {
	seen := make(map[string]bool, len(rows))
	var sb strings.Builder
	for _, r := range rows {
		sb.Reset()
		for _, col := range cols {
			cell, _ := t.Cell(col, r)
			sb.WriteString(cell.String())
			sb.WriteByte('\x00')
		}
		key := sb.String()
		if seen[key] {
			return false
		}
		seen[key] = true
	}
	return true
}

// =============================================================================
// ROLE AND TYPE GUESSING
// =============================================================================

// InferDataType guesses the SDMX data type of a column from its values.
func InferDataType(cells []tabular.Cell) DataType {
	numeric, period, present := true, true, 0
	for _, c := range cells {
		if c.Null {
			continue
		}
		present++
		if _, err := strconv.ParseFloat(c.Value, 64); err != nil {
			numeric = false
		}
		if !periodPattern.MatchString(c.Value) {
			period = false
		}
	}
	switch {
	case present == 0:
		return TypeString
	case numeric && !period:
		return TypeFloat
	case period:
		return TypePeriod
	default:
		return TypeString
	}
}

// InferRole guesses the role of a column: detected dimensions stay
// dimensions, numeric columns become measures, and the rest is decided on
// cardinality (mostly-repeating columns look dimensional).
func InferRole(name string, cells []tabular.Cell, dimensions map[string]bool) Role {
	if dimensions[name] {
		return RoleDimension
	}
	if InferDataType(cells) == TypeFloat {
		return RoleMeasure
	}
	distinct := make(map[string]bool)
	present := 0
	for _, c := range cells {
		if c.Null {
			continue
		}
		present++
		distinct[c.Value] = true
	}
	if present == 0 {
		return RoleAttribute
	}
	if float64(len(distinct))/float64(present) < 0.5 {
		return RoleDimension
	}
	return RoleAttribute
}

// =============================================================================
// SCHEMA INFERENCE
// =============================================================================

// InferSchema derives a Schema from a table. valueCol names the observation
// column; the minimal unique key of that column becomes the dimension set.
// String dimensions with few distinct values get a local codelist.
func InferSchema(t *tabular.Table, agency, id, valueCol string) (*Schema, error) {
	keys, err := InferDimensions(t, valueCol)
	if err != nil {
		return nil, err
	}

	dimCols := make(map[string]bool)
	if len(keys) > 0 {
		for _, col := range keys[0] {
			dimCols[col] = true
		}
	}

	var components []Component
	for _, col := range t.Columns() {
		cells, _ := t.Column(col)
		role := InferRole(col, cells, dimCols)
		dtype := InferDataType(cells)

		var codes *Codelist
		if role == RoleDimension && dtype == TypeString {
			codes = inferCodelist(col, cells, agency)
		}

		components = append(components, Component{
			ID:         col,
			Required:   role != RoleAttribute,
			Role:       role,
			Concept:    Concept{ID: col, Name: titleCase(col), Type: dtype},
			LocalType:  dtype,
			LocalCodes: codes,
		})
	}

	return &Schema{
		Context:    ContextDataStructure,
		Agency:     agency,
		ID:         id,
		Version:    "1.0",
		Components: NewComponents(components...),
	}, nil
}

// inferCodelist builds a codelist from the distinct present values of a
// column, or nil when the column is too wide to enumerate.
func inferCodelist(col string, cells []tabular.Cell, agency string) *Codelist {
	distinct := make(map[string]bool)
	for _, c := range cells {
		if !c.Null {
			distinct[c.Value] = true
		}
	}
	if len(distinct) == 0 || len(distinct) > maxInferredCodes {
		return nil
	}
	values := make([]string, 0, len(distinct))
	for v := range distinct {
		values = append(values, v)
	}
	sort.Strings(values)

	items := make([]Code, len(values))
	for i, v := range values {
		items[i] = Code{ID: v, Name: v}
	}
	return &Codelist{
		ID:     "CL_" + col,
		Name:   col + " Codes",
		Agency: agency,
		Items:  items,
	}
}

// titleCase renders a component id as a human-readable name.
func titleCase(id string) string {
	words := strings.FieldsFunc(strings.ToLower(id), func(r rune) bool {
		return r == '_' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
