// =============================================================================
// SDMX Table Mapper - Rule Application Engine
// =============================================================================
//
// Applies a structure map to a table. The input table is never mutated; the
// engine works on a clone and returns it. Rules are bucketed by kind and
// applied in a fixed category order regardless of declaration order:
//
//   Fixed -> Implicit -> ValueLookups -> MultiValueLookups
//
// Later categories may consume columns produced by earlier ones. Declaration
// order only matters inside the two lookup categories, where it drives the
// first-match-wins pattern precedence.
//
// Matching always compares the string representation of a cell, so numeric
// source columns behave like their rendered text. A lookup row with no
// matching pattern gets a null target cell; that is a defined outcome, not
// an error. A missing source column, by contrast, aborts the whole apply.
//
// =============================================================================

package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/sdmx-mapper/internal/rules"
	"github.com/ginjaninja78/sdmx-mapper/internal/tabular"
)

var (
	// ErrMissingSourceColumn reports a rule whose source column is absent
	// from the table.
	ErrMissingSourceColumn = errors.New("source column not found in table")

	// ErrMissingSourceColumns reports a multi-column rule with one or more
	// absent source columns; the message lists every absent column.
	ErrMissingSourceColumns = errors.New("source columns not found in table")
)

// Engine applies structure maps to tables.
type Engine struct {
	// Verbose enables human-readable progress notices. Notices never change
	// the returned data.
	Verbose bool

	// Log receives verbose notices; defaults to stdout.
	Log io.Writer
}

// New creates an engine with default settings.
func New() *Engine {
	return &Engine{}
}

// Apply runs every rule of the structure map against the table and returns
// the transformed copy. The input table is left untouched.
func (e *Engine) Apply(t *tabular.Table, sm *rules.StructureMap) (*tabular.Table, error) {
	result := t.Clone()

	// Bucket rules by kind; the type switch is exhaustive over the closed
	// rule union.
	var fixed []rules.Fixed
	var implicit []rules.Implicit
	var lookups []rules.ValueLookup
	var multi []rules.MultiValueLookup
	for _, r := range sm.Rules {
		switch rule := r.(type) {
		case rules.Fixed:
			fixed = append(fixed, rule)
		case rules.Implicit:
			implicit = append(implicit, rule)
		case rules.ValueLookup:
			lookups = append(lookups, rule)
		case rules.MultiValueLookup:
			multi = append(multi, rule)
		default:
			return nil, fmt.Errorf("unknown rule kind %q", r.Kind())
		}
	}

	for _, rule := range fixed {
		e.applyFixed(result, rule)
	}
	for _, rule := range implicit {
		if err := e.applyImplicit(result, rule); err != nil {
			return nil, err
		}
	}
	for _, rule := range lookups {
		if err := e.applyValueLookup(result, rule); err != nil {
			return nil, err
		}
	}
	for _, rule := range multi {
		if err := e.applyMultiValueLookup(result, rule); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// =============================================================================
// RULE APPLICATION
// =============================================================================

// applyFixed broadcasts the fixed value over the target column.
func (e *Engine) applyFixed(t *tabular.Table, rule rules.Fixed) {
	existed := t.HasColumn(rule.Target())
	t.Broadcast(rule.Target(), rule.Value)
	e.noticef("fixed: %s column %q = %q", addedOrOverwritten(existed), rule.Target(), rule.Value)
}

// applyImplicit copies the source column into the target column.
func (e *Engine) applyImplicit(t *tabular.Table, rule rules.Implicit) error {
	cells, ok := t.Column(rule.Source)
	if !ok {
		return fmt.Errorf("%w: implicit rule for %q needs column %q", ErrMissingSourceColumn, rule.Target(), rule.Source)
	}
	existed := t.HasColumn(rule.Target())
	if err := t.SetColumn(rule.Target(), cells); err != nil {
		return err
	}
	e.noticef("implicit: %s column %q from %q", addedOrOverwritten(existed), rule.Target(), rule.Source)
	return nil
}

// applyValueLookup maps one source column through ordered pattern pairs.
func (e *Engine) applyValueLookup(t *tabular.Table, rule rules.ValueLookup) error {
	source, ok := t.Column(rule.Source)
	if !ok {
		return fmt.Errorf("%w: value lookup for %q needs column %q", ErrMissingSourceColumn, rule.Target(), rule.Source)
	}

	out := make([]tabular.Cell, len(source))
	unmapped := 0
	for r, cell := range source {
		out[r] = tabular.Null
		matched := false
		for _, pair := range rule.Pairs {
			if pair.Pattern.Match(cell.String()) {
				out[r] = tabular.V(pair.Replacement)
				matched = true
				break
			}
		}
		if !matched {
			unmapped++
		}
	}
	if err := t.SetColumn(rule.Target(), out); err != nil {
		return err
	}

	e.noticef("lookup: mapped %q -> %q through %d pair(s)", rule.Source, rule.Target(), len(rule.Pairs))
	if unmapped > 0 {
		e.noticef("lookup: %d row(s) of %q had no matching pattern (set to missing)", unmapped, rule.Target())
	}
	return nil
}

// applyMultiValueLookup matches several source columns jointly, row-wise.
func (e *Engine) applyMultiValueLookup(t *tabular.Table, rule rules.MultiValueLookup) error {
	columns := make([][]tabular.Cell, len(rule.Sources))
	var missing []string
	for i, src := range rule.Sources {
		cells, ok := t.Column(src)
		if !ok {
			missing = append(missing, src)
			continue
		}
		columns[i] = cells
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: multi value lookup for %q needs [%s]",
			ErrMissingSourceColumns, rule.Target(), strings.Join(missing, ", "))
	}

	out := make([]tabular.Cell, t.NumRows())
	unmapped := 0
	for r := range out {
		out[r] = tabular.Null
		matched := false
		for _, entry := range rule.Entries {
			if matchesEntry(columns, r, entry) {
				out[r] = tabular.V(entry.Replacement)
				matched = true
				break
			}
		}
		if !matched {
			unmapped++
		}
	}
	if err := t.SetColumn(rule.Target(), out); err != nil {
		return err
	}

	e.noticef("lookup: mapped [%s] -> %q through %d ordered entr(ies)",
		strings.Join(rule.Sources, ", "), rule.Target(), len(rule.Entries))
	if unmapped > 0 {
		e.noticef("lookup: %d row(s) of %q had no matching entry (set to missing)", unmapped, rule.Target())
	}
	return nil
}

// matchesEntry reports whether every source value of a row matches its
// corresponding pattern position.
func matchesEntry(columns [][]tabular.Cell, row int, entry rules.MultiValueEntry) bool {
	for i, pattern := range entry.Patterns {
		if !pattern.Match(columns[i][row].String()) {
			return false
		}
	}
	return true
}

// =============================================================================
// NOTICES
// =============================================================================

func (e *Engine) noticef(format string, args ...interface{}) {
	if !e.Verbose {
		return
	}
	w := e.Log
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func addedOrOverwritten(existed bool) string {
	if existed {
		return "overwrote"
	}
	return "added"
}
