// =============================================================================
// SDMX Table Mapper - Process Command
// =============================================================================
//
// This file defines the 'process' command, which applies a mapping template
// to one or more CSV datasets.
//
// COMMAND USAGE:
//   sdmx-mapper process --template map.xlsx [flags]
//
// FLAGS:
//   --template  : Path to the XLSX mapping template (required)
//   --input     : Path to a single CSV dataset; when omitted, every CSV in
//                 the configured input directory is processed
//   --output    : Explicit output path (single-input runs only)
//   --validate  : Fetch the target schema from the registry and drop rows
//                 violating codelists
//   --context   : Schema context for --validate (dataflow, datastructure,
//                 provisionagreement)
//   --dry-run   : Run the pipeline without writing output or archiving
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Load and parse the mapping template
//   3. For each input dataset:
//      a. Read the CSV into a table
//      b. Apply the structure map
//      c. Optionally filter rows against registry codelists
//      d. Write the mapped CSV to the output directory
//      e. Archive the input file
//   4. Print a summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/sdmx-mapper/internal/config"
	"github.com/ginjaninja78/sdmx-mapper/internal/engine"
	"github.com/ginjaninja78/sdmx-mapper/internal/registry"
	"github.com/ginjaninja78/sdmx-mapper/internal/rules"
	"github.com/ginjaninja78/sdmx-mapper/internal/sdmx"
	"github.com/ginjaninja78/sdmx-mapper/internal/tabular"
	"github.com/ginjaninja78/sdmx-mapper/internal/template"
	"github.com/ginjaninja78/sdmx-mapper/internal/validation"
	"github.com/ginjaninja78/sdmx-mapper/internal/workbook"
	"github.com/ginjaninja78/sdmx-mapper/pkg/utils"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// templatePath is the path to the XLSX mapping template.
var templatePath string

// inputPath is an explicit single dataset to process.
var inputPath string

// outputPath is an explicit output path, valid only with --input.
var outputPath string

// validateRows fetches the target schema and drops codelist violations.
var validateRows bool

// schemaContext overrides the configured schema context for --validate.
var schemaContext string

// dryRun runs the pipeline without writing output files.
var dryRun bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Apply a mapping template to CSV datasets",
	Long: `The process command loads an XLSX mapping template, parses its structure
map, and applies it to CSV datasets.

With --input, a single dataset is processed. Without it, every CSV in the
configured input directory is processed and archived on success.

On successful processing:
  - The mapped dataset is placed in the output directory
  - The original CSV is moved to the input archive
On error:
  - The original CSV remains in the input directory
  - Processing continues for other files`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the process command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(
		&templatePath,
		"template",
		"",
		"Path to the XLSX mapping template",
	)
	processCmd.MarkFlagRequired("template")

	processCmd.Flags().StringVar(
		&inputPath,
		"input",
		"",
		"Path to a single CSV dataset to process",
	)

	processCmd.Flags().StringVar(
		&outputPath,
		"output",
		"",
		"Output path for the mapped dataset (requires --input)",
	)

	processCmd.Flags().BoolVar(
		&validateRows,
		"validate",
		false,
		"Drop rows violating the target schema's codelists",
	)

	processCmd.Flags().StringVar(
		&schemaContext,
		"context",
		"",
		"Schema context for validation (dataflow, datastructure, provisionagreement)",
	)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Run the pipeline without writing output files",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess orchestrates the mapping pipeline.
func runProcess(ctx context.Context) error {
	startTime := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if outputPath != "" && inputPath == "" {
		return fmt.Errorf("--output requires --input")
	}

	// =========================================================================
	// STEP 1: PARSE THE MAPPING TEMPLATE
	// =========================================================================

	fmt.Println("=== SDMX Table Mapper ===")
	fmt.Printf("Loading mapping template %s...\n", templatePath)

	sheets, err := workbook.Load(templatePath)
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

	fmt.Printf("Parsed structure map %s:%s(%s) with %d rule(s)\n",
		sm.Agency, sm.ID, sm.Version, len(sm.Rules))

	// =========================================================================
	// STEP 2: RESOLVE THE TARGET SCHEMA (OPTIONAL)
	// =========================================================================

	var schema *sdmx.Schema
	if validateRows {
		schema, err = fetchTargetSchema(ctx, cfg, sm)
		if err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 3: DISCOVER INPUT DATASETS
	// =========================================================================

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir)
	fm.ArchiveOnSuccess = !dryRun && inputPath == ""

	var inputs []string
	if inputPath != "" {
		inputs = []string{inputPath}
	} else {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
		inputs, err = fm.DiscoverInputFiles("*.csv")
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			fmt.Println("No CSV files found in the input directory.")
			return nil
		}
	}

	fmt.Printf("Found %d dataset(s) to process\n", len(inputs))

	// =========================================================================
	// STEP 4: PROCESS DATASETS
	// =========================================================================

	eng := &engine.Engine{Verbose: cfg.Verbose}
	csvOpts := tabular.CSVOptions{Delimiter: rune(cfg.CSVDelimiter[0]), TrimHeaders: true}

	var successCount, errorCount int
	for _, input := range inputs {
		out, err := processDataset(input, sm, schema, eng, cfg, fm, csvOpts)
		if err != nil {
			errorCount++
			fmt.Printf("  x %s: %v\n", filepath.Base(input), err)
			continue
		}
		successCount++
		fmt.Printf("  + %s -> %s\n", filepath.Base(input), out)
	}

	// =========================================================================
	// STEP 5: PRINT SUMMARY
	// =========================================================================

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total datasets:  %d\n", len(inputs))
	fmt.Printf("Successful:      %d\n", successCount)
	fmt.Printf("Errors:          %d\n", errorCount)
	fmt.Printf("Time elapsed:    %s\n", time.Since(startTime))

	if errorCount > 0 {
		return fmt.Errorf("%d dataset(s) failed", errorCount)
	}
	return nil
}

// processDataset runs one dataset through the full pipeline and returns the
// output path.
func processDataset(
	input string,
	sm *rules.StructureMap,
	schema *sdmx.Schema,
	eng *engine.Engine,
	cfg *config.MainConfig,
	fm *utils.FileManager,
	csvOpts tabular.CSVOptions,
) (string, error) {
	t, err := tabular.ReadCSVFile(input, csvOpts)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}

	mapped, err := eng.Apply(t, sm)
	if err != nil {
		return "", fmt.Errorf("map: %w", err)
	}

	if schema != nil {
		policy := validation.KeepNull
		if cfg.DropNullCoded {
			policy = validation.DropNull
		}
		info := validation.ExtractInfo(schema)
		filtered, report := validation.FilterRows(mapped, info.Codelists, policy)
		if cfg.Verbose || report.Dropped() > 0 {
			fmt.Printf("  validation: %s\n", report)
		}
		mapped = filtered
	}

	out := outputPath
	if out == "" {
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		name := utils.GenerateOutputFileName("{original}_{date}_{uuid}.csv",
			map[string]string{"original": base})
		out = filepath.Join(cfg.OutputDir, name)
	}

	if dryRun {
		return out + " (dry run)", nil
	}

	if err := tabular.WriteCSVFile(mapped, out, csvOpts); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}

	if _, err := fm.ArchiveInputFile(input); err != nil && fm.ArchiveOnSuccess {
		return "", fmt.Errorf("archive: %w", err)
	}

	return out, nil
}

// fetchTargetSchema resolves the structure map's target artefact against the
// configured registry.
func fetchTargetSchema(ctx context.Context, cfg *config.MainConfig, sm *rules.StructureMap) (*sdmx.Schema, error) {
	base, err := cfg.RegistryURL(registryName)
	if err != nil {
		return nil, err
	}
	if base == "" {
		return nil, fmt.Errorf("--validate needs a registry: configure one or pass --registry")
	}

	sctxName := schemaContext
	if sctxName == "" {
		sctxName = cfg.SchemaContext
	}
	sctx, err := sdmx.ParseContext(sctxName)
	if err != nil {
		return nil, err
	}

	if sm.TargetRef == "" {
		return nil, fmt.Errorf("--validate needs a target artefact: the template's INFO sheet declares none")
	}
	ref, err := registry.ParseArtefactID(sm.TargetRef)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Fetching schema %s (%s)...\n", ref, sctx)

	client := registry.NewClient(base)
	schema, err := client.FetchSchema(ctx, sctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema: %w", err)
	}
	return schema, nil
}
