// =============================================================================
// SDMX Table Mapper - CSV Reader/Writer
// =============================================================================
//
// CSV is the interchange format for raw datasets entering the mapper and for
// mapped datasets leaving it. The first row is always the header row; empty
// cells load as null so downstream codelist checks can tell "absent" apart
// from "empty string".
//
// =============================================================================

package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSVOptions controls CSV parsing.
type CSVOptions struct {
	// Delimiter is the field separator. Zero means comma.
	Delimiter rune

	// TrimHeaders removes surrounding whitespace from header cells.
	TrimHeaders bool
}

// ReadCSV parses a table from r. The first record is the header row.
func ReadCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV input has no header row")
	}

	headers := records[0]
	if opts.TrimHeaders {
		for i, h := range headers {
			headers[i] = strings.TrimSpace(h)
		}
	}

	table, err := New(headers...)
	if err != nil {
		return nil, err
	}

	for _, record := range records[1:] {
		row := make([]Cell, len(headers))
		for i := range headers {
			if i >= len(record) || record[i] == "" {
				row[i] = Null
				continue
			}
			row[i] = V(record[i])
		}
		if err := table.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// ReadCSVFile parses a table from a file on disk.
func ReadCSVFile(path string, opts CSVOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, opts)
}

// WriteCSV serializes the table to w. Null cells render as empty fields.
func WriteCSV(t *Table, w io.Writer, opts CSVOptions) error {
	writer := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		writer.Comma = opts.Delimiter
	}

	columns := t.Columns()
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(columns))
	for r := 0; r < t.NumRows(); r++ {
		for i, col := range columns {
			cell, _ := t.Cell(col, r)
			record[i] = cell.String()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile serializes the table to a file, creating or truncating it.
func WriteCSVFile(t *Table, path string, opts CSVOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()
	return WriteCSV(t, f, opts)
}
