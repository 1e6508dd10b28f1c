// =============================================================================
// SDMX Table Mapper - Mapping Template Errors
// =============================================================================

package template

import "errors"

var (
	// ErrMissingMappingSheet reports a workbook without a component-mapping
	// sheet or without the mandatory SOURCE/TARGET/MAPPING_RULES columns.
	ErrMissingMappingSheet = errors.New("component mapping sheet missing or malformed")

	// ErrInvalidRuleFormat reports a syntactically broken rule string, such
	// as "fixed:" with no value.
	ErrInvalidRuleFormat = errors.New("invalid mapping rule format")

	// ErrMissingSource reports a rule that needs a source component but
	// whose SOURCE cell is empty.
	ErrMissingSource = errors.New("mapping rule requires a source component")

	// ErrMissingRepresentationSheet reports a representation rule whose
	// backing sheet does not exist in the workbook.
	ErrMissingRepresentationSheet = errors.New("representation sheet not found")

	// ErrBadRepresentationSheet reports a representation sheet that exists
	// but exposes no identifiable source-side or target-side columns.
	ErrBadRepresentationSheet = errors.New("representation sheet has no usable source/target columns")

	// ErrEmptyRepresentationMapping reports a representation sheet with no
	// surviving rows after dropping incomplete rows and duplicates.
	ErrEmptyRepresentationMapping = errors.New("representation mapping has no rows")

	// ErrUnknownMappingRule reports a rule string that matches no known
	// rule syntax.
	ErrUnknownMappingRule = errors.New("unknown mapping rule")

	// ErrEmptyStructureMap reports a template render request for a
	// structure map with zero rules.
	ErrEmptyStructureMap = errors.New("structure map has no rules")
)
