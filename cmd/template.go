// =============================================================================
// SDMX Table Mapper - Template Command
// =============================================================================
//
// This file defines the 'template' command, which parses a mapping template
// and re-renders it in the canonical layout. Parsing and rendering are
// inverses, so the output template declares the same structure map as the
// input with duplicate representation rows collapsed and incomplete rows
// dropped.
//
// COMMAND USAGE:
//   sdmx-mapper template --in map.xlsx --out normalized.xlsx
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/ginjaninja78/sdmx-mapper/internal/rules"
	"github.com/ginjaninja78/sdmx-mapper/internal/template"
	"github.com/ginjaninja78/sdmx-mapper/internal/workbook"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// templateIn is the template to normalize.
var templateIn string

// templateOut is where the normalized template is written.
var templateOut string

// =============================================================================
// TEMPLATE COMMAND DEFINITION
// =============================================================================

// templateCmd represents the 'template' command.
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Parse a mapping template and re-render it in canonical form",
	Long: `The template command round-trips a mapping template: it parses the
workbook into a structure map and renders the structure map back into a
fresh workbook.

The rendered template uses the canonical sheet layout: one COMP_MAPPING
sheet, one representation sheet per lookup rule named after its target
component, and explicit valid_from/valid_to columns. Duplicate and
incomplete representation rows do not survive the round trip.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runTemplate()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the template command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(templateCmd)

	templateCmd.Flags().StringVar(
		&templateIn,
		"in",
		"",
		"Path to the XLSX mapping template to normalize",
	)
	templateCmd.MarkFlagRequired("in")

	templateCmd.Flags().StringVar(
		&templateOut,
		"out",
		"",
		"Path for the normalized template",
	)
	templateCmd.MarkFlagRequired("out")
}

// =============================================================================
// NORMALIZATION
// =============================================================================

// runTemplate parses the input template and writes its canonical rendering.
func runTemplate() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sheets, err := workbook.Load(templateIn)
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	sm, err := template.ParseStructureMap(sheets, template.Defaults{
		Agency:  cfg.DefaultAgency,
		Version: cfg.DefaultVersion,
	})
	if err != nil {
		return fmt.Errorf("failed to parse structure map: %w", err)
	}

	rendered, err := template.RenderTemplate(sm)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	if err := workbook.SaveOrdered(rendered, template.SheetOrder(sm), templateOut); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}

	fmt.Printf("Normalized %s -> %s (%d rule(s), %d lookup sheet(s))\n",
		templateIn, templateOut, len(sm.Rules), countLookups(sm))
	return nil
}

// countLookups counts the rules that carry their own representation sheet.
func countLookups(sm *rules.StructureMap) int {
	n := 0
	for _, r := range sm.Rules {
		switch r.Kind() {
		case rules.KindValueLookup, rules.KindMultiValueLookup:
			n++
		}
	}
	return n
}
