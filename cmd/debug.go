package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/tmsledger/config"
	"github.com/otherjamesbrown/tmsledger/pkg/db"
	"github.com/otherjamesbrown/tmsledger/pkg/export"
)

// ConfigInfo describes the resolved configuration.
type ConfigInfo struct {
	ConfigPath     string `json:"config_path" yaml:"config_path"`
	ConfigExists   bool   `json:"config_exists" yaml:"config_exists"`
	Input          string `json:"input" yaml:"input"`
	Exclude        string `json:"exclude" yaml:"exclude"`
	Anchor         string `json:"anchor" yaml:"anchor"`
	Encoding       string `json:"encoding" yaml:"encoding"`
	OutputFormat   string `json:"output_format" yaml:"output_format"`
	Debug          bool   `json:"debug" yaml:"debug"`
	LogJSON        bool   `json:"log_json" yaml:"log_json"`
	MetricsFile    string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
	DatabaseDriver string `json:"database_driver" yaml:"database_driver"`
	DatabaseDSN    string `json:"database_dsn,omitempty" yaml:"database_dsn,omitempty"`
}

// DebugCommandDeps holds the dependencies for debug commands.
type DebugCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	// ConfigFile is the --config path; empty means the default location.
	ConfigFile string
}

// DefaultDebugDeps returns the default dependencies for production use.
func DefaultDebugDeps() *DebugCommandDeps {
	return &DebugCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

// debugEnvVars are the environment variables read by the configuration.
var debugEnvVars = []string{
	config.EnvPrefix + "CONFIG_DIR",
	config.EnvPrefix + "INPUT",
	config.EnvPrefix + "EXCLUDE",
	config.EnvPrefix + "ANCHOR",
	config.EnvPrefix + "ENCODING",
	config.EnvPrefix + "OUTPUT_FORMAT",
	config.EnvPrefix + "DEBUG",
	config.EnvPrefix + "LOG_JSON",
	config.EnvPrefix + "METRICS_FILE",
	config.EnvPrefix + "DB_DRIVER",
	config.EnvPrefix + "DB_DSN",
}

// NewDebugCommand creates the debug command with subcommands.
func NewDebugCommand(deps *DebugCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultDebugDeps()
	}

	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Configuration diagnostics",
		Long: `Diagnostic utilities for troubleshooting tmsledger configuration.

Commands:
  config - Show the resolved configuration
  env    - Show TMSLEDGER_* environment variables

Examples:
  tmsledger debug config
  tmsledger debug config --output=json
  tmsledger debug env`,
	}

	cmd.AddCommand(newDebugConfigCommand(deps))
	cmd.AddCommand(newDebugEnvCommand())

	return cmd
}

// newDebugConfigCommand creates the 'debug config' subcommand.
func newDebugConfigCommand(deps *DebugCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long: `Show the configuration file path and the values in effect after the
file, TMSLEDGER_* environment variables and global flags are applied.

Examples:
  tmsledger debug config
  tmsledger debug config --output=yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			return runDebugConfig(cmd.OutOrStdout(), deps, config.OutputFormat(output))
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output format: text, json, yaml")

	return cmd
}

// newDebugEnvCommand creates the 'debug env' subcommand.
func newDebugEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show relevant environment variables",
		Long: `Show environment variables relevant to tmsledger configuration.

A PostgreSQL DSN may hold a password, so TMSLEDGER_DB_DSN is masked.

Examples:
  tmsledger debug env`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDebugEnv(cmd.OutOrStdout())
		},
	}
}

func runDebugConfig(w io.Writer, deps *DebugCommandDeps, format config.OutputFormat) error {
	cfg := deps.Config
	if cfg == nil {
		var err error
		cfg, err = deps.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
	}

	info, err := getConfigInfo(cfg, deps.ConfigFile)
	if err != nil {
		return err
	}

	if format == "" {
		format = cfg.OutputFormat
	}
	switch format {
	case config.OutputFormatJSON:
		return export.WriteJSON(w, info)
	case config.OutputFormatYAML:
		return export.WriteYAML(w, info)
	default:
		return outputConfigInfoText(w, info)
	}
}

func getConfigInfo(cfg *config.CLIConfig, configFile string) (ConfigInfo, error) {
	path := configFile
	if path == "" {
		var err error
		path, err = config.ConfigPath()
		if err != nil {
			return ConfigInfo{}, err
		}
	}
	_, statErr := os.Stat(path)

	info := ConfigInfo{
		ConfigPath:     path,
		ConfigExists:   statErr == nil,
		Input:          cfg.Input,
		Exclude:        cfg.Exclude,
		Anchor:         cfg.Anchor,
		Encoding:       cfg.Encoding,
		OutputFormat:   cfg.OutputFormat.String(),
		Debug:          cfg.Debug,
		LogJSON:        cfg.LogJSON,
		MetricsFile:    cfg.MetricsFile,
		DatabaseDriver: cfg.Database.Driver,
	}
	switch {
	case cfg.Database.DSN == "":
	case cfg.Database.Driver == db.DriverPostgres:
		info.DatabaseDSN = maskValue(cfg.Database.DSN)
	default:
		info.DatabaseDSN = cfg.Database.DSN
	}
	return info, nil
}

// outputConfigInfoText outputs config info in text format.
func outputConfigInfoText(w io.Writer, info ConfigInfo) error {
	fmt.Fprintln(w, "Configuration Details:")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Config File:     %s", info.ConfigPath)
	if info.ConfigExists {
		fmt.Fprintln(w, " (exists)")
	} else {
		fmt.Fprintln(w, " (not found - using defaults)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  Active Settings:")
	fmt.Fprintf(w, "    input:           %s\n", info.Input)
	fmt.Fprintf(w, "    exclude:         %q\n", info.Exclude)
	fmt.Fprintf(w, "    anchor:          %s\n", info.Anchor)
	fmt.Fprintf(w, "    encoding:        %s\n", info.Encoding)
	fmt.Fprintf(w, "    output_format:   %s\n", info.OutputFormat)
	fmt.Fprintf(w, "    debug:           %t\n", info.Debug)
	fmt.Fprintf(w, "    log_json:        %t\n", info.LogJSON)
	if info.MetricsFile != "" {
		fmt.Fprintf(w, "    metrics_file:    %s\n", info.MetricsFile)
	}
	fmt.Fprintf(w, "    database.driver: %s\n", info.DatabaseDriver)
	if info.DatabaseDSN != "" {
		fmt.Fprintf(w, "    database.dsn:    %s\n", info.DatabaseDSN)
	}

	return nil
}

func runDebugEnv(w io.Writer) error {
	fmt.Fprintln(w, "tmsledger Environment Variables:")
	fmt.Fprintln(w)

	found := false
	for _, key := range debugEnvVars {
		value, ok := os.LookupEnv(key)
		switch {
		case !ok:
			fmt.Fprintf(w, "  %s=(not set)\n", key)
			continue
		case value == "":
			value = `""`
		case key == config.EnvPrefix+"DB_DSN":
			value = maskValue(value)
		}
		found = true
		fmt.Fprintf(w, "  %s=%s\n", key, value)
	}

	if !found {
		fmt.Fprintf(w, "  (no %s* environment variables are set)\n", config.EnvPrefix)
	}

	return nil
}

// maskValue masks a sensitive value.
func maskValue(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "****" + value[len(value)-4:]
}
