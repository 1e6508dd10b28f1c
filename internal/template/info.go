// =============================================================================
// SDMX Table Mapper - INFO Sheet Metadata
// =============================================================================
//
// The optional INFO sheet carries loose Key/Value metadata. A row counts as
// a key/value pair only when exactly one or exactly two non-missing cells
// are present; rows carrying the section-header sentinel are discarded.
// Artefact references are searched in preference order (dataflow, then
// datastructure, then the literal FMR_AGENCY key) and parsed with the
// AGENCY:ID(VERSION) grammar. Metadata extraction never fails a parse:
// anything unusable falls back to the caller's defaults.
//
// =============================================================================

package template

import (
	"strings"

	"github.com/ginjaninja78/sdmx-mapper/internal/registry"
	"github.com/ginjaninja78/sdmx-mapper/internal/workbook"
)

// InfoSheet is the canonical name of the metadata sheet.
const InfoSheet = "INFO"

// sectionSentinel marks decorative section-header rows in INFO sheets.
const sectionSentinel = "DATA CURATION PROCESS"

// artefactKeys lists the metadata keys that may carry an artefact
// reference, in preference order. "dsd" is the legacy spelling of
// "datastructure" still found in older templates.
var artefactKeys = []string{"dataflow", "datastructure", "dsd"}

// metadata is what the INFO sheet contributes to a parsed structure map.
type metadata struct {
	Agency  string
	Version string
	Ref     string
}

// parseInfo extracts agency/version metadata, falling back to defaults.
func parseInfo(sheets workbook.Sheets, defaults Defaults) metadata {
	meta := metadata{Agency: defaults.Agency, Version: defaults.Version}
	if meta.Version == "" {
		meta.Version = "1.0"
	}

	_, grid, ok := sheets.Lookup(InfoSheet)
	if !ok {
		return meta
	}
	pairs := infoPairs(grid)

	for _, key := range artefactKeys {
		ref, ok := lookupKey(pairs, key)
		if !ok || ref == "" {
			continue
		}
		parsed, err := registry.ParseArtefactID(ref)
		if err != nil {
			continue
		}
		meta.Agency = parsed.Agency
		meta.Version = parsed.Version
		meta.Ref = ref
		return meta
	}

	if agency, ok := lookupKey(pairs, "FMR_AGENCY"); ok && agency != "" {
		meta.Agency = agency
	}
	return meta
}

// kvPair is one accepted INFO row.
type kvPair struct {
	key, value string
}

// infoPairs filters a grid down to usable key/value rows. Every row,
// including the first, is treated as data: INFO sheets have no header row.
func infoPairs(grid workbook.Grid) []kvPair {
	var pairs []kvPair
	for r := range grid {
		var cells []string
		discard := false
		for c := range grid[r] {
			cell := grid.Cell(r, c)
			if cell == "" || strings.EqualFold(cell, "nan") {
				continue
			}
			if strings.Contains(strings.ToUpper(cell), sectionSentinel) {
				discard = true
				break
			}
			cells = append(cells, cell)
		}
		if discard {
			continue
		}
		switch len(cells) {
		case 1:
			pairs = append(pairs, kvPair{key: cells[0]})
		case 2:
			pairs = append(pairs, kvPair{key: cells[0], value: cells[1]})
		}
		// Rows with zero or three-plus usable cells carry no key/value pair.
	}
	return pairs
}

// lookupKey finds the first pair whose key matches case-insensitively.
func lookupKey(pairs []kvPair, key string) (string, bool) {
	for _, p := range pairs {
		if strings.EqualFold(p.key, key) {
			return p.value, true
		}
	}
	return "", false
}
