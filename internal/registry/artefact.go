// =============================================================================
// SDMX Table Mapper - Artefact Identifiers
// =============================================================================
//
// Versioned SDMX artefacts are addressed with the mini-grammar
// "AGENCY:ID(VERSION)". The parser is strict: the colon and the parenthesis
// pair must be present, and only one colon may appear outside the
// parentheses.
//
// =============================================================================

package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArtefactID reports a reference that does not follow the
// AGENCY:ID(VERSION) grammar.
var ErrInvalidArtefactID = errors.New("invalid artefact id, expected format: AGENCY:ID(VERSION)")

// Ref identifies one versioned SDMX artefact.
type Ref struct {
	Agency  string
	ID      string
	Version string
}

// String renders the reference back into the AGENCY:ID(VERSION) form.
func (r Ref) String() string {
	return fmt.Sprintf("%s:%s(%s)", r.Agency, r.ID, r.Version)
}

// ParseArtefactID parses an "AGENCY:ID(VERSION)" reference.
func ParseArtefactID(s string) (Ref, error) {
	open := strings.Index(s, "(")
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidArtefactID, s)
	}
	head, version := s[:open], s[open+1:len(s)-1]

	parts := strings.Split(head, ":")
	if len(parts) != 2 {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidArtefactID, s)
	}

	ref := Ref{Agency: parts[0], ID: parts[1], Version: version}
	if ref.Agency == "" || ref.ID == "" || ref.Version == "" {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidArtefactID, s)
	}
	return ref, nil
}
