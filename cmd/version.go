// =============================================================================
// SDMX Table Mapper - Version Command
// =============================================================================
//
// This file defines the 'version' command, which reports the mapper build a
// dataset was produced with. Mapped datasets are only reproducible against a
// known template and binary, so the build identity matters when tracing an
// output file back to its run.
//
// COMMAND USAGE:
//   sdmx-mapper version
//
// OUTPUT:
//   SDMX Table Mapper
//   Version:    1.0.0
//   Build Date: 2026-01-01
//   Go Version: go1.24.0
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "\
//     -X 'github.com/ginjaninja78/sdmx-mapper/cmd.Version=1.1.0' \
//     -X 'github.com/ginjaninja78/sdmx-mapper/cmd.BuildDate=2026-01-01'"

// Version is the mapper version.
// Set at build time using ldflags.
var Version = "1.0.0"

// BuildDate is the date the binary was built.
// Set at build time using ldflags.
var BuildDate = "unknown"

// =============================================================================
// VERSION COMMAND DEFINITION
// =============================================================================

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the mapper version",
	Long: `Display the mapper version, the date the binary was built, and the Go
runtime it was compiled with. Record this alongside mapped datasets when a
run needs to be reproduced against the same template.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("SDMX Table Mapper")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Build Date: %s\n", BuildDate)
		fmt.Printf("Go Version: %s\n", runtime.Version())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the version command with the root command.
func init() {
	rootCmd.AddCommand(versionCmd)
}
