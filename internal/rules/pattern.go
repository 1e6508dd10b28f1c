// =============================================================================
// SDMX Table Mapper - Lookup Patterns
// =============================================================================
//
// A lookup pattern is either a literal value compared for equality or, when
// the raw text carries the "regex:" prefix, a regular expression matched
// against the entire source value. Matching always compares the string
// representation of the cell, so numeric columns behave like their rendered
// text.
//
// =============================================================================

package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// RegexPrefix marks a pattern as a regular expression.
const RegexPrefix = "regex:"

// Pattern is one side of a lookup pair: an exact literal or a compiled
// full-string regular expression.
type Pattern struct {
	raw string
	re  *regexp.Regexp
}

// NewPattern parses a raw pattern string, compiling it when it carries the
// regex prefix. Compilation failures surface as ErrInvalidRule.
func NewPattern(raw string) (Pattern, error) {
	if !strings.HasPrefix(raw, RegexPrefix) {
		return Pattern{raw: raw}, nil
	}
	expr := strings.TrimPrefix(raw, RegexPrefix)
	// Anchor both ends: lookup regexes match the full value, never a substring.
	re, err := regexp.Compile(`\A(?:` + expr + `)\z`)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: bad regex pattern %q: %v", ErrInvalidRule, raw, err)
	}
	return Pattern{raw: raw, re: re}, nil
}

// MustPattern is NewPattern for statically known patterns, mostly in tests.
func MustPattern(raw string) Pattern {
	p, err := NewPattern(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// Regex reports whether the pattern is a regular expression.
func (p Pattern) Regex() bool {
	return p.re != nil
}

// Raw returns the pattern as declared, prefix included.
func (p Pattern) Raw() string {
	return p.raw
}

// Match reports whether the pattern accepts the given value: full regex
// match for regex patterns, string equality otherwise.
func (p Pattern) Match(value string) bool {
	if p.re != nil {
		return p.re.MatchString(value)
	}
	return p.raw == value
}
