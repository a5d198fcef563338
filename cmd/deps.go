// Package cmd provides CLI commands for the tmsledger tool.
package cmd

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/tmsledger/config"
	"github.com/otherjamesbrown/tmsledger/pkg/db"
	"github.com/otherjamesbrown/tmsledger/pkg/ledger"
	"github.com/otherjamesbrown/tmsledger/pkg/logging"
	"github.com/otherjamesbrown/tmsledger/pkg/observability"
)

// LedgerCommandDeps holds the dependencies shared by the ledger commands.
// The root command fills in Config, Logger, Metrics and Registry once the
// configuration is loaded; fields left nil fall back to defaults.
type LedgerCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	Logger     logging.Logger
	Metrics    *observability.LedgerMetrics
	Registry   prometheus.Registerer
	Tracer     *observability.Tracer
	OpenStore  func(ctx context.Context, cfg db.Config) (*db.Store, error)
}

// DefaultLedgerDeps returns the default dependencies for production use.
func DefaultLedgerDeps() *LedgerCommandDeps {
	return &LedgerCommandDeps{
		LoadConfig: config.LoadConfig,
		Tracer:     observability.NewTracer(),
		OpenStore: func(ctx context.Context, cfg db.Config) (*db.Store, error) {
			return db.Open(ctx, cfg)
		},
	}
}

func (d *LedgerCommandDeps) config() (*config.CLIConfig, error) {
	if d.Config != nil {
		return d.Config, nil
	}
	load := d.LoadConfig
	if load == nil {
		load = config.LoadConfig
	}
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	d.Config = cfg
	return cfg, nil
}

func (d *LedgerCommandDeps) logger() logging.Logger {
	if d.Logger == nil {
		return logging.MustGlobal()
	}
	return d.Logger
}

func (d *LedgerCommandDeps) tracer() *observability.Tracer {
	if d.Tracer == nil {
		d.Tracer = observability.NewTracer()
	}
	return d.Tracer
}

func (d *LedgerCommandDeps) openStore(ctx context.Context, cfg db.Config) (*db.Store, error) {
	if d.OpenStore != nil {
		return d.OpenStore(ctx, cfg)
	}
	return db.Open(ctx, cfg, db.WithLogger(d.logger()))
}

// commandConfig returns a copy of the loaded configuration with the
// command's own --exclude, --anchor and --output flags applied when they
// were given, validated again.
func (d *LedgerCommandDeps) commandConfig(cmd *cobra.Command) (*config.CLIConfig, error) {
	base, err := d.config()
	if err != nil {
		return nil, err
	}
	cfg := *base

	flags := cmd.Flags()
	if flags.Changed("exclude") {
		cfg.Exclude, _ = flags.GetString("exclude")
	}
	if flags.Changed("anchor") {
		cfg.Anchor, _ = flags.GetString("anchor")
	}
	if flags.Changed("output") {
		v, _ := flags.GetString("output")
		cfg.OutputFormat = config.OutputFormat(v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadLedger reads the configured input file inside a load span and feeds
// the line counts and ledger summary into the metrics.
func (d *LedgerCommandDeps) loadLedger(ctx context.Context, cfg *config.CLIConfig) ([]ledger.Meeting, error) {
	path, err := cfg.InputPath()
	if err != nil {
		return nil, err
	}
	enc := cfg.LedgerEncoding()

	ctx, span := d.tracer().StartLoadSpan(ctx, path, string(enc))
	defer span.End()

	log := d.logger().WithContext(ctx)
	opts := []ledger.Option{ledger.WithLogger(log)}
	if d.Metrics != nil {
		opts = append(opts, ledger.WithObserver(d.Metrics))
	}

	start := time.Now()
	meetings, err := ledger.Load(ctx, path, enc, opts...)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	observability.SetMeetings(span, len(meetings))

	summary := ledger.Summarize(meetings)
	if d.Metrics != nil {
		d.Metrics.RecordLoad(time.Since(start).Seconds())
		d.Metrics.RecordSummary(summary)
	}

	log.Debug("Ledger loaded",
		logging.F("path", path),
		logging.F("meetings", summary.Meetings),
		logging.F("talks", summary.Talks),
		logging.F("duration_ms", formatDurationMs(time.Since(start))))

	return meetings, nil
}

// render runs fn inside a render span and records its duration.
func (d *LedgerCommandDeps) render(ctx context.Context, report string, fn func() (string, error)) (string, error) {
	_, span := d.tracer().StartRenderSpan(ctx, report)
	defer span.End()

	start := time.Now()
	out, err := fn()
	if err != nil {
		observability.RecordError(span, err)
		return "", err
	}
	if d.Metrics != nil {
		d.Metrics.RecordRender(report, time.Since(start).Seconds())
	}
	return out, nil
}

// formatDurationMs formats a duration in milliseconds.
func formatDurationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
