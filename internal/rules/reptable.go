// =============================================================================
// SDMX Table Mapper - Representation Tables
// =============================================================================
//
// A RepresentationTable is the tabular form of a lookup rule: one row per
// (patterns..., replacement) tuple, plus optional validity columns. It is
// the meeting point of the spreadsheet parser (rows in, rule out) and the
// template renderer (rule in, rows out).
//
// Round-trip invariant: converting a rule to a table and back yields an
// equivalent rule, modulo dropped fully-empty rows and de-duplicated
// identical rows.
//
// =============================================================================

package rules

import (
	"fmt"
	"strings"
)

// RepRow is one pattern-to-replacement row. Empty strings mark missing
// cells; validity fields are optional and carried through untouched.
type RepRow struct {
	Sources   []string
	Target    string
	ValidFrom string
	ValidTo   string
}

// RepresentationTable is the tabular encoding of a ValueLookup or
// MultiValueLookup rule. SourceColumns and TargetColumn are the resolved
// component ids the rows map between.
type RepresentationTable struct {
	SourceColumns []string
	TargetColumn  string
	Rows          []RepRow
}

// Normalize drops rows where any source cell or the target cell is missing
// and removes duplicate rows, keeping first occurrences in order.
func (rt RepresentationTable) Normalize() RepresentationTable {
	out := RepresentationTable{
		SourceColumns: append([]string(nil), rt.SourceColumns...),
		TargetColumn:  rt.TargetColumn,
	}
	seen := make(map[string]bool, len(rt.Rows))
rowLoop:
	for _, row := range rt.Rows {
		if row.Target == "" || len(row.Sources) != len(rt.SourceColumns) {
			continue
		}
		for _, s := range row.Sources {
			if s == "" {
				continue rowLoop
			}
		}
		key := strings.Join(row.Sources, "\x00") + "\x00=\x00" + row.Target +
			"\x00" + row.ValidFrom + "\x00" + row.ValidTo
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Rule converts the table into a typed lookup rule after normalization: a
// ValueLookup for a single source column, a MultiValueLookup otherwise.
func (rt RepresentationTable) Rule() (Rule, error) {
	norm := rt.Normalize()
	if len(norm.Rows) == 0 {
		return nil, fmt.Errorf("%w: representation table for %q has no usable rows", ErrInvalidRule, rt.TargetColumn)
	}

	if len(norm.SourceColumns) == 1 {
		pairs := make([]ValueEntry, 0, len(norm.Rows))
		for _, row := range norm.Rows {
			p, err := NewPattern(row.Sources[0])
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, ValueEntry{
				Pattern:     p,
				Replacement: row.Target,
				ValidFrom:   row.ValidFrom,
				ValidTo:     row.ValidTo,
			})
		}
		return NewValueLookup(norm.SourceColumns[0], norm.TargetColumn, pairs)
	}

	entries := make([]MultiValueEntry, 0, len(norm.Rows))
	for _, row := range norm.Rows {
		patterns := make([]Pattern, len(row.Sources))
		for i, raw := range row.Sources {
			p, err := NewPattern(raw)
			if err != nil {
				return nil, err
			}
			patterns[i] = p
		}
		entries = append(entries, MultiValueEntry{
			Patterns:    patterns,
			Replacement: row.Target,
			ValidFrom:   row.ValidFrom,
			ValidTo:     row.ValidTo,
		})
	}
	return NewMultiValueLookup(norm.SourceColumns, norm.TargetColumn, entries)
}

// TableFromRule is the inverse of Rule for the two lookup kinds. The second
// return value is false for Fixed and Implicit rules, which have no tabular
// form.
func TableFromRule(r Rule) (RepresentationTable, bool) {
	switch rule := r.(type) {
	case ValueLookup:
		rt := RepresentationTable{
			SourceColumns: []string{rule.Source},
			TargetColumn:  rule.Target(),
		}
		for _, pair := range rule.Pairs {
			rt.Rows = append(rt.Rows, RepRow{
				Sources:   []string{pair.Pattern.Raw()},
				Target:    pair.Replacement,
				ValidFrom: pair.ValidFrom,
				ValidTo:   pair.ValidTo,
			})
		}
		return rt, true
	case MultiValueLookup:
		rt := RepresentationTable{
			SourceColumns: append([]string(nil), rule.Sources...),
			TargetColumn:  rule.Target(),
		}
		for _, entry := range rule.Entries {
			raw := make([]string, len(entry.Patterns))
			for i, p := range entry.Patterns {
				raw[i] = p.Raw()
			}
			rt.Rows = append(rt.Rows, RepRow{
				Sources:   raw,
				Target:    entry.Replacement,
				ValidFrom: entry.ValidFrom,
				ValidTo:   entry.ValidTo,
			})
		}
		return rt, true
	default:
		return RepresentationTable{}, false
	}
}
