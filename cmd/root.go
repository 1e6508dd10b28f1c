// =============================================================================
// SDMX Table Mapper - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands ('process', 'template') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (sdmx-mapper)
//   ├── processCmd (sdmx-mapper process)
//   ├── templateCmd (sdmx-mapper template)
//   └── versionCmd (sdmx-mapper version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose, --registry)
//   2. Loading the YAML configuration for subcommands
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/ginjaninja78/sdmx-mapper/internal/config"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables per-rule progress notices when set to true.
var verbose bool

// registryName selects a registry profile from the configuration.
var registryName string

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "sdmx-mapper",

	Short: "SDMX Table Mapper - Apply spreadsheet mapping templates to tabular datasets",

	Long: `SDMX Table Mapper is a CLI tool that maps raw tabular datasets into
SDMX-shaped datasets using mapping rules declared in XLSX templates.

Key Features:
  - Declarative mapping rules in a COMP_MAPPING workbook sheet
  - Fixed, implicit, and pattern-based value lookup rules
  - Optional row validation against codelists from an SDMX registry
  - Template normalization via parse-and-render round trips
  - Automatic file archival on successful processing

Example Usage:
  sdmx-mapper process --template map.xlsx --input data.csv
  sdmx-mapper process --template map.xlsx         # process the input directory
  sdmx-mapper template --in map.xlsx --out normalized.xlsx`,

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags shared by every subcommand.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output",
	)

	rootCmd.PersistentFlags().StringVar(
		&registryName,
		"registry",
		"",
		"Registry profile to resolve schemas against (defaults to the configured default)",
	)
}

// loadConfig loads the main configuration, falling back to built-in defaults
// when the config file does not exist and the user did not ask for one
// explicitly.
func loadConfig() (*config.MainConfig, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || rootCmd.PersistentFlags().Changed("config") {
			return nil, err
		}
		cfg = config.Default()
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}
