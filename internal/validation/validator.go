// =============================================================================
// SDMX Table Mapper - Schema Validation
// =============================================================================
//
// This module validates mapped tables against a resolved SDMX schema. It
// extracts the validation-relevant facts from the schema (which components
// exist, which are mandatory, which carry codelists) and filters table rows
// whose coded values fall outside their codelist.
//
// FILTERING STRATEGY:
//   Filtering is permissive on missing data. A null cell never disqualifies
//   a row on its own; only a present value that is not in the component's
//   codelist does. Columns absent from the table are skipped rather than
//   treated as violations - structural completeness is reported separately
//   through the schema Info.
//
// ERROR HANDLING:
//   Filtering never fails; it partitions rows. Callers that need to treat
//   dropped rows as fatal inspect the Report.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/sdmx-mapper/internal/sdmx"
	"github.com/ginjaninja78/sdmx-mapper/internal/tabular"
)

// =============================================================================
// SCHEMA INFO EXTRACTION
// =============================================================================

// Info is the validation-relevant summary of a schema.
type Info struct {
	// Valid lists every component id, in schema order.
	Valid []string

	// Mandatory lists the components that must carry a value on every row.
	Mandatory []string

	// Coded lists the components constrained by a codelist.
	Coded []string

	// Dimensions lists the components with the dimension role.
	Dimensions []string

	// Codelists maps each coded component to its permitted code ids.
	Codelists map[string][]string
}

// ExtractInfo summarizes a schema for validation.
func ExtractInfo(schema *sdmx.Schema) Info {
	info := Info{Codelists: make(map[string][]string)}
	for _, c := range schema.Components.List() {
		info.Valid = append(info.Valid, c.ID)
		if c.Required {
			info.Mandatory = append(info.Mandatory, c.ID)
		}
		if c.Role == sdmx.RoleDimension {
			info.Dimensions = append(info.Dimensions, c.ID)
		}
		if c.Coded() {
			info.Coded = append(info.Coded, c.ID)
			info.Codelists[c.ID] = c.LocalCodes.IDs()
		}
	}
	return info
}

// =============================================================================
// NULL POLICY
// =============================================================================

// NullPolicy controls how null cells in coded columns are treated.
type NullPolicy int

const (
	// KeepNull keeps rows whose coded cells are null. This is the default:
	// missing data is not a codelist violation.
	KeepNull NullPolicy = iota

	// DropNull drops rows with a null cell in any coded column.
	DropNull
)

// =============================================================================
// ROW FILTERING
// =============================================================================

// Report describes the outcome of a filtering pass.
type Report struct {
	// RowsIn is the number of rows in the input table.
	RowsIn int

	// RowsKept is the number of rows surviving the filter.
	RowsKept int

	// DroppedByColumn counts dropped rows per offending column. A row
	// violating several columns is counted once per column.
	DroppedByColumn map[string]int

	// MissingColumns lists coded components absent from the table; those
	// constraints were skipped.
	MissingColumns []string
}

// Dropped returns the number of removed rows.
func (r Report) Dropped() int {
	return r.RowsIn - r.RowsKept
}

// String renders a one-line summary suitable for logs.
func (r Report) String() string {
	s := fmt.Sprintf("kept %d of %d row(s)", r.RowsKept, r.RowsIn)
	if len(r.MissingColumns) > 0 {
		s += fmt.Sprintf("; skipped absent column(s): %s", strings.Join(r.MissingColumns, ", "))
	}
	return s
}

// FilterRows removes rows whose value in a coded column is not in that
// column's codelist. The input table is never mutated. Columns named in
// codelists but absent from the table are skipped.
func FilterRows(t *tabular.Table, codelists map[string][]string, policy NullPolicy) (*tabular.Table, Report) {
	report := Report{
		RowsIn:          t.NumRows(),
		DroppedByColumn: make(map[string]int),
	}
	if len(codelists) == 0 {
		report.RowsKept = t.NumRows()
		return t.Clone(), report
	}

	drop := make([]bool, t.NumRows())
	for col, allowed := range codelists {
		cells, ok := t.Column(col)
		if !ok {
			report.MissingColumns = append(report.MissingColumns, col)
			continue
		}
		allowedSet := make(map[string]bool, len(allowed))
		for _, code := range allowed {
			allowedSet[code] = true
		}
		for r, cell := range cells {
			if cell.Null {
				if policy == DropNull {
					drop[r] = true
					report.DroppedByColumn[col]++
				}
				continue
			}
			if !allowedSet[cell.Value] {
				drop[r] = true
				report.DroppedByColumn[col]++
			}
		}
	}

	keep := make([]int, 0, t.NumRows())
	for r, dropped := range drop {
		if !dropped {
			keep = append(keep, r)
		}
	}
	report.RowsKept = len(keep)
	return t.SelectRows(keep), report
}

// FilterRaw validates a table against a full schema: it extracts the coded
// constraints and filters rows with the default null policy.
func FilterRaw(t *tabular.Table, schema *sdmx.Schema) (*tabular.Table, Report) {
	info := ExtractInfo(schema)
	return FilterRows(t, info.Codelists, KeepNull)
}

// MissingMandatory returns the mandatory components with no column in the
// table, in schema order.
func MissingMandatory(t *tabular.Table, info Info) []string {
	var missing []string
	for _, id := range info.Mandatory {
		if !t.HasColumn(id) {
			missing = append(missing, id)
		}
	}
	return missing
}
