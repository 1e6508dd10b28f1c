// =============================================================================
// SDMX Table Mapper - Mapping Rule Model
// =============================================================================
//
// This package defines the typed vocabulary of mapping rules that translate a
// source table into a target SDMX structure:
//
//   - Fixed:            target column is unconditionally set to a value
//   - Implicit:         target column becomes a copy of a source column
//   - ValueLookup:      one source column mapped through ordered
//                       (pattern, replacement) pairs
//   - MultiValueLookup: several source columns jointly matched against
//                       ordered pattern tuples, first full match wins
//
// Rules form a closed union discriminated by Kind(); the application engine
// switches over the four kinds exhaustively. Rules are validated at
// construction and immutable afterwards. Ordering inside lookup rules is
// semantically significant: the first matching pattern always wins.
//
// =============================================================================

package rules

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidRule reports a rule that violates a construction invariant.
	ErrInvalidRule = errors.New("invalid mapping rule")

	// ErrColumnNotFound reports a failed fuzzy column resolution.
	ErrColumnNotFound = errors.New("column not found")
)

// =============================================================================
// RULE UNION
// =============================================================================

// Kind discriminates the rule union.
type Kind string

const (
	KindFixed            Kind = "fixed"
	KindImplicit         Kind = "implicit"
	KindValueLookup      Kind = "value_lookup"
	KindMultiValueLookup Kind = "multi_value_lookup"
)

// Rule is one mapping rule. The four implementations in this package are the
// only ones; consumers dispatch with a type switch.
type Rule interface {
	// Kind identifies the variant.
	Kind() Kind

	// Target is the output column the rule writes. Always non-empty.
	Target() string
}

// Location states which side of the mapping a fixed value belongs to.
type Location string

const (
	LocatedInSource Location = "source"
	LocatedInTarget Location = "target"
)

// =============================================================================
// FIXED
// =============================================================================

// Fixed unconditionally sets the target column to Value for every row.
type Fixed struct {
	target    string
	Value     string
	LocatedIn Location
}

// NewFixed validates and builds a Fixed rule. located defaults to the target
// side when empty.
func NewFixed(target, value string, located Location) (Fixed, error) {
	if target == "" {
		return Fixed{}, fmt.Errorf("%w: fixed rule requires a non-empty target", ErrInvalidRule)
	}
	if value == "" {
		return Fixed{}, fmt.Errorf("%w: fixed value for %q cannot be empty", ErrInvalidRule, target)
	}
	if located == "" {
		located = LocatedInTarget
	}
	if located != LocatedInSource && located != LocatedInTarget {
		return Fixed{}, fmt.Errorf("%w: located_in must be source or target, got %q", ErrInvalidRule, located)
	}
	return Fixed{target: target, Value: value, LocatedIn: located}, nil
}

func (f Fixed) Kind() Kind     { return KindFixed }
func (f Fixed) Target() string { return f.target }

// =============================================================================
// IMPLICIT
// =============================================================================

// Implicit copies the source column into the target column, overwriting the
// target if it already exists.
type Implicit struct {
	Source string
	target string
}

// NewImplicit validates and builds an Implicit rule.
func NewImplicit(source, target string) (Implicit, error) {
	if source == "" {
		return Implicit{}, fmt.Errorf("%w: implicit rule requires a non-empty source", ErrInvalidRule)
	}
	if target == "" {
		return Implicit{}, fmt.Errorf("%w: implicit rule requires a non-empty target", ErrInvalidRule)
	}
	return Implicit{Source: source, target: target}, nil
}

func (i Implicit) Kind() Kind     { return KindImplicit }
func (i Implicit) Target() string { return i.target }

// =============================================================================
// VALUE LOOKUP
// =============================================================================

// ValueEntry is one ordered (pattern, replacement) pair of a ValueLookup,
// with an optional validity window carried through untouched.
type ValueEntry struct {
	Pattern     Pattern
	Replacement string
	ValidFrom   string
	ValidTo     string
}

// ValueLookup maps a single source column through ordered pattern pairs.
// The first matching pair wins; unmatched rows get a null target.
type ValueLookup struct {
	Source string
	target string
	Pairs  []ValueEntry
}

// NewValueLookup validates and builds a ValueLookup rule.
func NewValueLookup(source, target string, pairs []ValueEntry) (ValueLookup, error) {
	if source == "" {
		return ValueLookup{}, fmt.Errorf("%w: value lookup for %q requires a non-empty source", ErrInvalidRule, target)
	}
	if target == "" {
		return ValueLookup{}, fmt.Errorf("%w: value lookup requires a non-empty target", ErrInvalidRule)
	}
	if len(pairs) == 0 {
		return ValueLookup{}, fmt.Errorf("%w: value lookup for %q has no pattern pairs", ErrInvalidRule, target)
	}
	return ValueLookup{Source: source, target: target, Pairs: append([]ValueEntry(nil), pairs...)}, nil
}

func (v ValueLookup) Kind() Kind     { return KindValueLookup }
func (v ValueLookup) Target() string { return v.target }

// =============================================================================
// MULTI VALUE LOOKUP
// =============================================================================

// MultiValueEntry is one ordered rule of a MultiValueLookup: a pattern per
// source column, all of which must match for the replacement to apply.
type MultiValueEntry struct {
	Patterns    []Pattern
	Replacement string
	ValidFrom   string
	ValidTo     string
}

// MultiValueLookup matches several source columns jointly, row-wise, against
// same-length pattern tuples. Entries are evaluated in declaration order and
// the first fully matching tuple wins.
type MultiValueLookup struct {
	Sources []string
	target  string
	Entries []MultiValueEntry
}

// NewMultiValueLookup validates and builds a MultiValueLookup rule. Every
// entry must carry exactly one pattern per source column.
func NewMultiValueLookup(sources []string, target string, entries []MultiValueEntry) (MultiValueLookup, error) {
	if target == "" {
		return MultiValueLookup{}, fmt.Errorf("%w: multi value lookup requires a non-empty target", ErrInvalidRule)
	}
	if len(sources) == 0 {
		return MultiValueLookup{}, fmt.Errorf("%w: multi value lookup for %q requires at least one source", ErrInvalidRule, target)
	}
	for i, s := range sources {
		if s == "" {
			return MultiValueLookup{}, fmt.Errorf("%w: multi value lookup for %q has an empty source at position %d", ErrInvalidRule, target, i+1)
		}
	}
	if len(entries) == 0 {
		return MultiValueLookup{}, fmt.Errorf("%w: multi value lookup for %q has no entries", ErrInvalidRule, target)
	}
	for i, e := range entries {
		if len(e.Patterns) != len(sources) {
			return MultiValueLookup{}, fmt.Errorf(
				"%w: multi value lookup for %q: entry %d has %d patterns for %d sources",
				ErrInvalidRule, target, i+1, len(e.Patterns), len(sources))
		}
	}
	return MultiValueLookup{
		Sources: append([]string(nil), sources...),
		target:  target,
		Entries: append([]MultiValueEntry(nil), entries...),
	}, nil
}

func (m MultiValueLookup) Kind() Kind     { return KindMultiValueLookup }
func (m MultiValueLookup) Target() string { return m.target }

// =============================================================================
// STRUCTURE MAP
// =============================================================================

// StructureMap is an ordered collection of mapping rules, each independently
// applicable. Rules may overlap on a target; the application engine's
// category ordering decides which write lands last.
type StructureMap struct {
	ID      string
	Agency  string
	Version string
	Name    string

	// TargetRef is the artefact reference ("AGENCY:ID(VERSION)") of the
	// structure this map produces data for, when the template declares one.
	TargetRef string

	Rules []Rule
}

// RuleString renders a rule the way a component-mapping sheet declares it.
func RuleString(r Rule) string {
	switch rule := r.(type) {
	case Fixed:
		return "fixed:" + rule.Value
	case Implicit:
		return "implicit"
	case ValueLookup, MultiValueLookup:
		return r.Target()
	default:
		return string(r.Kind())
	}
}

// SourceString renders a rule's source declaration for a component-mapping
// sheet; fixed rules have none.
func SourceString(r Rule) string {
	switch rule := r.(type) {
	case Implicit:
		return rule.Source
	case ValueLookup:
		return rule.Source
	case MultiValueLookup:
		return strings.Join(rule.Sources, ",")
	default:
		return ""
	}
}
