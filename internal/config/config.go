// =============================================================================
// SDMX Table Mapper - Configuration Module
// =============================================================================
//
// This module loads and manages the application configuration. It handles
// the main YAML configuration plus optional registry environment profiles.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): directories, defaults, verbosity
//   2. Registry profiles (registries map): named SDMX registry endpoints
//
// ARCHITECTURE:
//   The configuration system is designed to be:
//   - Declarative: all behavior tunable from YAML, flags override
//   - Validated: directories are created on load, endpoints checked
//   - Environment-aware: one registry profile selected per run
//
// =============================================================================

package config

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for input CSV datasets.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory where mapped datasets are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir is where processed input files are moved after a
	// successful run.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// TemplatesDir is the directory containing XLSX mapping templates.
	// Default: "./templates"
	TemplatesDir string `yaml:"templates_dir"`

	// =========================================================================
	// REGISTRY SETTINGS
	// =========================================================================

	// Registries maps an environment name to an SDMX registry base URL.
	// Example:
	//   registries:
	//     prod: "https://registry.example.org/sdmx/v2"
	//     test: "https://test-registry.example.org/sdmx/v2"
	Registries map[string]string `yaml:"registries"`

	// DefaultRegistry is the registry profile used when no --registry flag
	// is given.
	DefaultRegistry string `yaml:"default_registry"`

	// =========================================================================
	// MAPPING DEFAULTS
	// =========================================================================

	// DefaultAgency is the agency assumed for templates whose INFO sheet
	// carries no agency.
	// Default: "SDMX"
	DefaultAgency string `yaml:"default_agency"`

	// DefaultVersion is the artefact version assumed when none is given.
	// Default: "1.0"
	DefaultVersion string `yaml:"default_version"`

	// SchemaContext is the artefact kind schemas are resolved against.
	// Valid values: "dataflow", "datastructure", "provisionagreement"
	// Default: "dataflow"
	SchemaContext string `yaml:"schema_context"`

	// CSVDelimiter is the field separator of input datasets.
	// Default: ","
	CSVDelimiter string `yaml:"csv_delimiter"`

	// DropNullCoded drops rows whose coded columns carry a null value
	// during validation. By default such rows are kept.
	DropNullCoded bool `yaml:"drop_null_coded"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// Verbose enables per-rule progress notices during mapping.
	// Default: false
	Verbose bool `yaml:"verbose"`
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// Default returns the built-in configuration used when no config file is
// present.
func Default() *MainConfig {
	cfg := &MainConfig{}
	applyDefaults(cfg)
	return cfg
}

// Load loads the main configuration from a YAML file, applies defaults and
// validates the result.
func Load(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg MainConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *MainConfig) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.InputArchiveDir == "" {
		cfg.InputArchiveDir = "./input_archive"
	}
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = "./templates"
	}
	if cfg.DefaultAgency == "" {
		cfg.DefaultAgency = "SDMX"
	}
	if cfg.DefaultVersion == "" {
		cfg.DefaultVersion = "1.0"
	}
	if cfg.SchemaContext == "" {
		cfg.SchemaContext = "dataflow"
	}
	if cfg.CSVDelimiter == "" {
		cfg.CSVDelimiter = ","
	}
}

// validate checks the loaded configuration.
func validate(cfg *MainConfig) error {
	for name, base := range cfg.Registries {
		u, err := url.Parse(base)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("registry %q has invalid base URL %q", name, base)
		}
	}

	if cfg.DefaultRegistry != "" {
		if _, ok := cfg.Registries[cfg.DefaultRegistry]; !ok {
			return fmt.Errorf("default registry %q is not defined in registries", cfg.DefaultRegistry)
		}
	}

	if len(cfg.CSVDelimiter) != 1 {
		return fmt.Errorf("csv_delimiter must be a single character, got %q", cfg.CSVDelimiter)
	}

	return nil
}

// RegistryURL resolves a registry profile name to its base URL. An empty
// name falls back to the configured default profile; having no profiles at
// all is an error only when a registry is actually needed, which is why this
// returns the empty string rather than failing when nothing is configured.
func (cfg *MainConfig) RegistryURL(name string) (string, error) {
	if name == "" {
		name = cfg.DefaultRegistry
	}
	if name == "" {
		return "", nil
	}
	base, ok := cfg.Registries[name]
	if !ok {
		return "", fmt.Errorf("unknown registry profile %q", name)
	}
	return base, nil
}
