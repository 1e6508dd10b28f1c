// =============================================================================
// SDMX Table Mapper - Main Entry Point
// =============================================================================
//
// This is the main entry point for the SDMX Table Mapper CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   sdmx-mapper process       - Apply a mapping template to CSV datasets
//   sdmx-mapper template      - Normalize a mapping template
//   sdmx-mapper version       - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//   - templates/     : Contains XLSX mapping templates
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sdmx-mapper/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
