// Package config provides CLI configuration management for the tmsledger
// command-line tool. It supports loading configuration from YAML files,
// environment variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/tmsledger/pkg/db"
	lerrors "github.com/otherjamesbrown/tmsledger/pkg/errors"
	"github.com/otherjamesbrown/tmsledger/pkg/ledger"
	"github.com/otherjamesbrown/tmsledger/pkg/registry"
	"github.com/otherjamesbrown/tmsledger/pkg/render"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultInput        = "meetings.txt"
	DefaultOutputFormat = OutputFormatText
	DefaultConfigDir    = ".tmsledger"
	DefaultConfigFile   = "config.yaml"
)

// EnvPrefix prefixes every configuration environment variable.
const EnvPrefix = "TMSLEDGER_"

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// Input is the ledger file path.
	Input string `yaml:"input"`

	// Exclude lists the flag characters of meetings left out of the
	// listing and statistics. Empty excludes nothing.
	Exclude string `yaml:"exclude"`

	// Anchor is the HTML heading anchor style, "id" or "name".
	Anchor string `yaml:"anchor"`

	// Encoding is the ledger file character set, "latin1" or "utf8".
	Encoding string `yaml:"encoding"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`

	// LogJSON writes logs as JSON lines instead of console text.
	LogJSON bool `yaml:"log_json,omitempty"`

	// MetricsFile, if set, receives the run's metrics in Prometheus text
	// format on exit.
	MetricsFile string `yaml:"metrics_file,omitempty"`

	// Database is used by "export db".
	Database db.Config `yaml:"database"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		Input:        DefaultInput,
		Exclude:      registry.DefaultExclude,
		Anchor:       string(render.AnchorID),
		Encoding:     string(ledger.DefaultEncoding),
		OutputFormat: DefaultOutputFormat,
		Database:     db.DefaultConfig(),
	}
}

// ConfigDir returns the configuration directory path.
// Uses $TMSLEDGER_CONFIG_DIR if set, otherwise ~/.tmsledger
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration from the default file location
// and environment variables. A missing file is not an error.
func LoadConfig() (*CLIConfig, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}
	return load(configPath, false)
}

// LoadConfigFrom is like LoadConfig but reads the given file, which must
// exist.
func LoadConfigFrom(path string) (*CLIConfig, error) {
	return load(path, true)
}

// load applies, in order: defaults, the config file, TMSLEDGER_*
// environment variables. Command-line flags are applied by the caller,
// which validates again afterwards.
func load(path string, required bool) (*CLIConfig, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil || required {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file. Keys that are absent
// keep their current value; an explicit empty exclude clears the set.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	type configFile struct {
		Input        string       `yaml:"input"`
		Exclude      *string      `yaml:"exclude"`
		Anchor       string       `yaml:"anchor"`
		Encoding     string       `yaml:"encoding"`
		OutputFormat OutputFormat `yaml:"output_format"`
		Debug        bool         `yaml:"debug"`
		LogJSON      bool         `yaml:"log_json"`
		MetricsFile  string       `yaml:"metrics_file"`
		Database     db.Config    `yaml:"database"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.Input != "" {
		cfg.Input = fileCfg.Input
	}
	if fileCfg.Exclude != nil {
		cfg.Exclude = *fileCfg.Exclude
	}
	if fileCfg.Anchor != "" {
		cfg.Anchor = fileCfg.Anchor
	}
	if fileCfg.Encoding != "" {
		cfg.Encoding = fileCfg.Encoding
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	if fileCfg.MetricsFile != "" {
		cfg.MetricsFile = fileCfg.MetricsFile
	}
	if fileCfg.Database != (db.Config{}) {
		// A DSN belongs to its driver, so the default DSN is not kept.
		if fileCfg.Database.Driver != "" {
			cfg.Database.Driver = fileCfg.Database.Driver
		}
		cfg.Database.DSN = fileCfg.Database.DSN
	}
	cfg.Debug = fileCfg.Debug
	cfg.LogJSON = fileCfg.LogJSON

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv(EnvPrefix + "INPUT"); v != "" {
		cfg.Input = v
	}

	if v, ok := os.LookupEnv(EnvPrefix + "EXCLUDE"); ok {
		cfg.Exclude = v
	}

	if v := os.Getenv(EnvPrefix + "ANCHOR"); v != "" {
		cfg.Anchor = v
	}

	if v := os.Getenv(EnvPrefix + "ENCODING"); v != "" {
		cfg.Encoding = v
	}

	if v := os.Getenv(EnvPrefix + "OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv(EnvPrefix + "DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}

	if v := os.Getenv(EnvPrefix + "LOG_JSON"); v == "true" || v == "1" {
		cfg.LogJSON = true
	}

	if v := os.Getenv(EnvPrefix + "METRICS_FILE"); v != "" {
		cfg.MetricsFile = v
	}

	cfg.Database = db.ConfigFromEnv(cfg.Database)
}

// Validate checks that the configuration is valid. Errors wrap
// ErrValidation.
func (c *CLIConfig) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return fmt.Errorf("%w: input is required", lerrors.ErrValidation)
	}

	if bad, ok := registry.InvalidFlag(c.Exclude); ok {
		return fmt.Errorf("%w: exclude: %q is not a meeting flag (want characters from %q)",
			lerrors.ErrValidation, bad, registry.FlagAlphabet)
	}

	if _, err := render.ParseAnchorStyle(c.Anchor); err != nil {
		return fmt.Errorf("%w: anchor: %v", lerrors.ErrValidation, err)
	}

	if _, err := ledger.ParseEncoding(c.Encoding); err != nil {
		return err
	}

	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("%w: invalid output_format: %q (must be text, json, or yaml)",
			lerrors.ErrValidation, c.OutputFormat)
	}

	return c.Database.Validate()
}

// AnchorStyle returns the validated anchor style.
func (c *CLIConfig) AnchorStyle() render.AnchorStyle {
	style, _ := render.ParseAnchorStyle(c.Anchor)
	return style
}

// LedgerEncoding returns the validated ledger encoding.
func (c *CLIConfig) LedgerEncoding() ledger.Encoding {
	enc, _ := ledger.ParseEncoding(c.Encoding)
	return enc
}

// Filter returns the meeting filter for the exclusion set.
func (c *CLIConfig) Filter() ledger.Filter {
	return ledger.Filter{Exclude: c.Exclude}
}

// InputPath returns Input with a leading ~ expanded.
func (c *CLIConfig) InputPath() (string, error) {
	return ExpandPath(c.Input)
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
