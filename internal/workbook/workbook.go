// =============================================================================
// SDMX Table Mapper - Workbook I/O
// =============================================================================
//
// This package is the single place where spreadsheet mechanics live. A
// workbook is surfaced to the rest of the code as an explicit value type,
// Sheets (sheet name -> Grid), so sheet existence and column conventions are
// checked once at this boundary instead of ad hoc throughout the parser.
//
// Cell values are surfaced as strings the way excelize renders them; the
// empty string is the missing-cell marker.
//
// =============================================================================

package workbook

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Grid is a rectangular sequence of rows of cell values.
type Grid [][]string

// Sheets maps sheet names to their grids.
type Sheets map[string]Grid

// Lookup finds a sheet by name: an exact match first, then case-insensitive
// candidates in sorted name order, so workbooks with sheets differing only
// in case resolve the same way every run. The actual sheet name is returned
// so callers can report it in errors.
func (s Sheets) Lookup(name string) (string, Grid, bool) {
	if grid, ok := s[name]; ok {
		return name, grid, true
	}
	names := make([]string, 0, len(s))
	for actual := range s {
		names = append(names, actual)
	}
	sort.Strings(names)
	for _, actual := range names {
		if strings.EqualFold(actual, name) {
			return actual, s[actual], true
		}
	}
	return "", nil, false
}

// Cell safely reads one cell of a grid; out-of-range coordinates and
// missing cells both read as the empty string.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Empty reports whether every cell of a row is missing.
func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads every sheet of an XLSX workbook into memory. Trailing
// fully-empty rows are trimmed per sheet; interior empty rows are kept so
// row-level skip semantics stay visible to the parser.
func Load(path string) (Sheets, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := make(Sheets)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		// Trim trailing empty rows.
		end := len(rows)
		for end > 0 && rowEmpty(rows[end-1]) {
			end--
		}
		grid := make(Grid, 0, end)
		for _, row := range rows[:end] {
			grid = append(grid, append([]string(nil), row...))
		}
		sheets[name] = grid
	}
	return sheets, nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the sheets to an XLSX workbook at path, replacing any existing
// file. Sheet order follows the order map iteration yields after sorting is
// not guaranteed, so callers needing a fixed order should use SaveOrdered.
func Save(sheets Sheets, path string) error {
	order := make([]string, 0, len(sheets))
	for name := range sheets {
		order = append(order, name)
	}
	return SaveOrdered(sheets, order, path)
}

// SaveOrdered writes the named sheets in the given order.
func SaveOrdered(sheets Sheets, order []string, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		grid, ok := sheets[name]
		if !ok {
			return fmt.Errorf("sheet %q not present in workbook", name)
		}
		if i == 0 {
			// Reuse the default sheet excelize creates.
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("failed to create sheet %q: %w", name, err)
			}
		}
		for r, row := range grid {
			cellRef, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(name, cellRef, &values); err != nil {
				return fmt.Errorf("failed to write row %d of sheet %q: %w", r+1, name, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
