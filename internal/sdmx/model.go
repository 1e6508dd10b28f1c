// =============================================================================
// SDMX Table Mapper - SDMX Information Model
// =============================================================================
//
// This package contains the read-only subset of the SDMX information model
// that the mapper consumes: schemas, components, concepts, and codelists.
// The types here are plain values; they are produced by the registry client
// or by schema inference and are never mutated by the core.
//
// =============================================================================

package sdmx

import "fmt"

// =============================================================================
// ENUMERATIONS
// =============================================================================

// Role classifies a component within a data structure.
type Role string

const (
	RoleDimension Role = "dimension"
	RoleMeasure   Role = "measure"
	RoleAttribute Role = "attribute"
)

// DataType is the local representation type of a component.
type DataType string

const (
	TypeString  DataType = "string"
	TypeInteger DataType = "integer"
	TypeFloat   DataType = "float"
	TypePeriod  DataType = "period"
	TypeBoolean DataType = "boolean"
)

// Context identifies the kind of artefact a schema was resolved against.
type Context string

const (
	ContextDataflow           Context = "dataflow"
	ContextDataStructure      Context = "datastructure"
	ContextProvisionAgreement Context = "provisionagreement"
)

// ParseContext validates a context string coming from configuration or CLI
// flags.
func ParseContext(s string) (Context, error) {
	switch Context(s) {
	case ContextDataflow, ContextDataStructure, ContextProvisionAgreement:
		return Context(s), nil
	}
	return "", fmt.Errorf("unknown schema context %q (want dataflow, datastructure or provisionagreement)", s)
}

// =============================================================================
// CODELISTS AND CONCEPTS
// =============================================================================

// Code is a single permitted value within a codelist.
type Code struct {
	ID   string
	Name string
}

// Codelist is an enumerated set of permitted values for a coded component.
type Codelist struct {
	ID     string
	Name   string
	Agency string
	Items  []Code
}

// IDs returns the code identifiers in declaration order.
func (cl *Codelist) IDs() []string {
	ids := make([]string, len(cl.Items))
	for i, c := range cl.Items {
		ids[i] = c.ID
	}
	return ids
}

// Concept is the semantic definition behind a component.
type Concept struct {
	ID   string
	Name string
	Type DataType
	URN  string
}

// =============================================================================
// COMPONENTS
// =============================================================================

// Component is a named column slot in a schema, tagged with a role and an
// optional local codelist constraining its values.
type Component struct {
	ID          string
	Required    bool
	Role        Role
	Concept     Concept
	LocalType   DataType
	LocalCodes  *Codelist
	Description string
}

// Coded reports whether the component is constrained by a codelist.
func (c Component) Coded() bool {
	return c.LocalCodes != nil
}

// Components is an ordered, id-addressable collection of components.
type Components struct {
	list []Component
}

// NewComponents builds a collection preserving declaration order.
func NewComponents(list ...Component) Components {
	return Components{list: append([]Component(nil), list...)}
}

// List returns the components in declaration order.
func (cs Components) List() []Component {
	return cs.list
}

// Get returns the component with the given id, if present.
func (cs Components) Get(id string) (Component, bool) {
	for _, c := range cs.list {
		if c.ID == id {
			return c, true
		}
	}
	return Component{}, false
}

// Len returns the number of components.
func (cs Components) Len() int {
	return len(cs.list)
}

// =============================================================================
// SCHEMA
// =============================================================================

// Schema is a resolved data structure: the components of a dataflow or DSD
// together with the identity of the defining artefact.
type Schema struct {
	Context    Context
	Agency     string
	ID         string
	Version    string
	Components Components
}
