// =============================================================================
// SDMX Table Mapper - Registry Client
// =============================================================================
//
// A thin HTTP client for fetching resolved schemas from an SDMX registry
// (FMR-style schema endpoint). The client only ever reads; the response is
// decoded straight into the typed information model and handed to the core,
// which treats it as immutable. Network failures propagate to the caller
// untranslated.
//
// =============================================================================

package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ginjaninja78/sdmx-mapper/internal/sdmx"
)

// Client fetches schemas from an SDMX registry.
type Client struct {
	// BaseURL is the registry root, e.g. "https://registry.example.org/sdmx/v2".
	BaseURL string

	// HTTPClient is the transport; a default with a 30s timeout is used
	// when nil.
	HTTPClient *http.Client
}

// NewClient creates a registry client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchSchema retrieves the resolved schema of an artefact in the given
// context (dataflow, datastructure or provisionagreement).
func (c *Client) FetchSchema(ctx context.Context, sctx sdmx.Context, ref Ref) (*sdmx.Schema, error) {
	endpoint := fmt.Sprintf("%s/schema/%s/%s/%s/%s",
		strings.TrimRight(c.BaseURL, "/"),
		url.PathEscape(string(sctx)),
		url.PathEscape(ref.Agency),
		url.PathEscape(ref.ID),
		url.PathEscape(ref.Version),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned %s for %s", resp.Status, ref)
	}

	var doc schemaDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode schema response for %s: %w", ref, err)
	}
	return doc.toModel(sctx, ref)
}

// =============================================================================
// WIRE FORMAT
// =============================================================================

type schemaDocument struct {
	Agency     string              `json:"agency"`
	ID         string              `json:"id"`
	Version    string              `json:"version"`
	Components []componentDocument `json:"components"`
}

type componentDocument struct {
	ID       string        `json:"id"`
	Required bool          `json:"required"`
	Role     string        `json:"role"`
	Type     string        `json:"type"`
	Codelist *codelistWire `json:"codelist,omitempty"`
}

type codelistWire struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Agency string     `json:"agency"`
	Codes  []codeWire `json:"codes"`
}

type codeWire struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (d schemaDocument) toModel(sctx sdmx.Context, ref Ref) (*sdmx.Schema, error) {
	components := make([]sdmx.Component, 0, len(d.Components))
	for _, c := range d.Components {
		role, err := parseRole(c.Role)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", c.ID, err)
		}
		comp := sdmx.Component{
			ID:        c.ID,
			Required:  c.Required,
			Role:      role,
			Concept:   sdmx.Concept{ID: c.ID, Type: sdmx.DataType(c.Type)},
			LocalType: sdmx.DataType(c.Type),
		}
		if c.Codelist != nil {
			cl := &sdmx.Codelist{
				ID:     c.Codelist.ID,
				Name:   c.Codelist.Name,
				Agency: c.Codelist.Agency,
			}
			for _, code := range c.Codelist.Codes {
				cl.Items = append(cl.Items, sdmx.Code{ID: code.ID, Name: code.Name})
			}
			comp.LocalCodes = cl
		}
		components = append(components, comp)
	}

	schema := &sdmx.Schema{
		Context:    sctx,
		Agency:     d.Agency,
		ID:         d.ID,
		Version:    d.Version,
		Components: sdmx.NewComponents(components...),
	}
	if schema.Agency == "" {
		schema.Agency = ref.Agency
	}
	if schema.ID == "" {
		schema.ID = ref.ID
	}
	if schema.Version == "" {
		schema.Version = ref.Version
	}
	return schema, nil
}

func parseRole(s string) (sdmx.Role, error) {
	switch strings.ToLower(s) {
	case "dimension":
		return sdmx.RoleDimension, nil
	case "measure":
		return sdmx.RoleMeasure, nil
	case "attribute":
		return sdmx.RoleAttribute, nil
	}
	return "", fmt.Errorf("unknown component role %q", s)
}
