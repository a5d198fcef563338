// Package main provides the tmsledger CLI entry point.
// tmsledger turns the society's fixed-column meetings ledger into the HTML
// meetings listing, speaker reports and exports.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/tmsledger/cmd"
	"github.com/otherjamesbrown/tmsledger/config"
	"github.com/otherjamesbrown/tmsledger/pkg/buildinfo"
	lerrors "github.com/otherjamesbrown/tmsledger/pkg/errors"
	"github.com/otherjamesbrown/tmsledger/pkg/logging"
	"github.com/otherjamesbrown/tmsledger/pkg/observability"
)

// Global flags and state.
var (
	cfgFile      string
	inputPath    string
	encodingName string
	debug        bool
	logJSON      bool
	metricsFile  string

	// cfg holds the loaded configuration.
	cfg *config.CLIConfig

	// metricsRegistry collects this run's metrics for --metrics-file.
	metricsRegistry *prometheus.Registry

	ledgerDeps = cmd.DefaultLedgerDeps()
	debugDeps  = cmd.DefaultDebugDeps()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tmsledger",
	Short: "Meetings ledger tools",
	Long: `tmsledger reads the society's meetings ledger, a fixed-column text file
with one line per talk, and produces the web listing and speaker reports.

COMMON WORKFLOWS:
  Check the ledger:   tmsledger check
  Web listing:        tmsledger html > meetings.html
  Speaker reports:    tmsledger counts  |  tmsledger ranges
  Export:             tmsledger export json|yaml|xml|text|db

CONFIGURATION:
  ~/.tmsledger/config.yaml, then TMSLEDGER_* environment variables, then
  flags. Run 'tmsledger debug config' to see the values in effect.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		// Skip initialization for commands that don't need it.
		if c.Name() == "version" || c.Name() == "help" || c.Name() == "completion" {
			return nil
		}
		// 'debug env' helps fix a configuration that does not load.
		if c.Name() == "env" && c.Parent() != nil && c.Parent().Name() == "debug" {
			return nil
		}
		return initialize()
	},
}

// initialize loads the configuration, applies the global flags and sets up
// logging and metrics for the commands.
func initialize() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadConfigFrom(cfgFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// Override with command-line flags.
	applyGlobalFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logCfg := logging.DefaultConfig()
	if cfg.Debug {
		logCfg.Level = logging.LevelDebug
	}
	logCfg.JSONFormat = cfg.LogJSON
	logger := logging.NewLogger(logCfg)
	logging.SetGlobal(logger)

	metricsRegistry = prometheus.NewRegistry()

	ledgerDeps.Config = cfg
	ledgerDeps.Logger = logger
	ledgerDeps.Metrics = observability.NewLedgerMetrics(metricsRegistry)
	ledgerDeps.Registry = metricsRegistry

	debugDeps.Config = cfg
	debugDeps.ConfigFile = cfgFile

	logger.Debug("Configuration loaded",
		logging.F("input", cfg.Input),
		logging.F("encoding", cfg.Encoding),
		logging.F("exclude", cfg.Exclude))
	return nil
}

func applyGlobalFlags(c *config.CLIConfig) {
	if inputPath != "" {
		c.Input = inputPath
	}
	if encodingName != "" {
		c.Encoding = encodingName
	}
	if debug {
		c.Debug = true
	}
	if logJSON {
		c.LogJSON = true
	}
	if metricsFile != "" {
		c.MetricsFile = metricsFile
	}
}

// Version command flags.
var versionOutputJSON bool

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the version, commit hash, and build time of tmsledger.

Examples:
  tmsledger version
  tmsledger version --output-json`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		return runVersion(c.OutOrStdout(), versionOutputJSON)
	},
}

func runVersion(w io.Writer, asJSON bool) error {
	info := buildinfo.Get()

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Fprintf(w, "%s version %s\n", info.Program, info.Version)
	fmt.Fprintf(w, "  commit:     %s\n", info.Commit)
	fmt.Fprintf(w, "  built:      %s\n", info.BuildTime)
	fmt.Fprintf(w, "  go:         %s %s\n", info.GoVersion, info.Platform)
	return nil
}

// completionCmd generates shell completion scripts.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for tmsledger.

To load completions:

Bash:
  $ source <(tmsledger completion bash)

Zsh:
  $ tmsledger completion zsh > "${fpath[1]}/_tmsledger"

Fish:
  $ tmsledger completion fish | source

PowerShell:
  PS> tmsledger completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(c *cobra.Command, args []string) error {
		out := c.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	// Global flags.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tmsledger/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "", "ledger file (default meetings.txt)")
	rootCmd.PersistentFlags().StringVar(&encodingName, "encoding", "", "ledger character set: latin1 or utf8")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	versionCmd.Flags().BoolVar(&versionOutputJSON, "output-json", false, "Output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "reports", Title: "Reports:"},
		&cobra.Group{ID: "data", Title: "Data:"},
		&cobra.Group{ID: "setup", Title: "Setup:"},
	)

	htmlCmd := cmd.NewHTMLCommand(ledgerDeps)
	htmlCmd.GroupID = "reports"
	countsCmd := cmd.NewCountsCommand(ledgerDeps)
	countsCmd.GroupID = "reports"
	rangesCmd := cmd.NewRangesCommand(ledgerDeps)
	rangesCmd.GroupID = "reports"

	checkCmd := cmd.NewCheckCommand(ledgerDeps)
	checkCmd.GroupID = "data"
	exportCmd := cmd.NewExportCommand(ledgerDeps)
	exportCmd.GroupID = "data"

	debugCmd := cmd.NewDebugCommand(debugDeps)
	debugCmd.GroupID = "setup"
	versionCmd.GroupID = "setup"
	completionCmd.GroupID = "setup"

	rootCmd.AddCommand(htmlCmd, countsCmd, rangesCmd, checkCmd, exportCmd, debugCmd, versionCmd, completionCmd)
}

func main() {
	// Set up signal handling; the running command stops at its next
	// cancellation check and reports the interruption.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	cmdErr := rootCmd.ExecuteContext(ctx)

	if err := writeMetrics(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: writing metrics: %v\n", err)
	}

	if cmdErr != nil {
		printError(os.Stderr, cmdErr)
		os.Exit(1)
	}
}

// writeMetrics writes the run's metrics when a metrics file is configured.
func writeMetrics() error {
	if cfg == nil || cfg.MetricsFile == "" || metricsRegistry == nil {
		return nil
	}
	path, err := config.ExpandPath(cfg.MetricsFile)
	if err != nil {
		return err
	}
	return observability.WriteTextfile(path, metricsRegistry)
}

// printError writes a fatal error and, for ledger errors, what to do
// about it.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if action := suggestedAction(err); action != "" {
		fmt.Fprintf(w, "  %s\n", action)
	}
}

func suggestedAction(err error) string {
	if lerrors.IsValidation(err) {
		return ""
	}
	code := lerrors.CodeOf(err)
	var le *lerrors.LedgerError
	if code == lerrors.CodeProcessing && !errors.As(err, &le) {
		return ""
	}
	return lerrors.GetSuggestedAction(code)
}
