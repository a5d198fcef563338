package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/otherjamesbrown/tmsledger/config"
	"github.com/otherjamesbrown/tmsledger/pkg/calendar"
	"github.com/otherjamesbrown/tmsledger/pkg/db"
	"github.com/otherjamesbrown/tmsledger/pkg/ledger"
	"github.com/otherjamesbrown/tmsledger/pkg/logging"
	"github.com/otherjamesbrown/tmsledger/pkg/observability"
)

func sampleMeetings() []ledger.Meeting {
	return []ledger.Meeting{
		{
			Number: "1", Date: calendar.MustParse("1919-11-04"), Venue: "JCR", Page: "1", Audience: "40",
			Talks: []ledger.Talk{{Title: `"Opening"`, Speakers: []string{"Prof. G.H. Hardy"}}},
		},
		{
			Number: "2", Date: calendar.MustParse("1920-01-20"), Flags: "f", JointCode: "Adams",
			Talks: []ledger.Talk{{Title: `"Motion"`, Speakers: []string{"J. Doe (prop)", "A. Roe (opp)"}}},
		},
		{
			Number: "3", Date: calendar.MustParse("1921-02-01"), Flags: "d",
			Talks: []ledger.Talk{{Title: `"Dinner"`, Speakers: []string{"J. Doe"}}},
		},
		{
			Number: "4", Date: calendar.MustParse("1921-03-01"),
			Talks: []ledger.Talk{{Title: "Business Meeting", Speakers: []string{""}}},
		},
		{
			Number: "5", Date: calendar.MustParse("1922-05-10"),
			Talks: []ledger.Talk{{Title: `"Again"`, Speakers: []string{"Dr. J. Doe"}}},
		},
	}
}

// writeLedger writes meetings to a Latin-1 ledger file and returns its path.
func writeLedger(t *testing.T, meetings []ledger.Meeting) string {
	t.Helper()

	var buf bytes.Buffer
	w := ledger.EncodingLatin1.NewWriter(&buf)
	require.NoError(t, ledger.Format(w, meetings))
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "meetings.txt")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// testConfig returns a default configuration reading input, with an
// SQLite database in a temporary directory.
func testConfig(t *testing.T, input string) *config.CLIConfig {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Input = input
	cfg.Database = db.Config{
		Driver: db.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "meetings.sqlite"),
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

// createTestDeps creates dependencies with metrics on a private registry
// and a no-op tracer.
func createTestDeps(cfg *config.CLIConfig) *LedgerCommandDeps {
	reg := prometheus.NewRegistry()
	logger := logging.NewNopLogger()
	return &LedgerCommandDeps{
		Config: cfg,
		LoadConfig: func() (*config.CLIConfig, error) {
			return cfg, nil
		},
		Logger:   logger,
		Metrics:  observability.NewLedgerMetrics(reg),
		Registry: reg,
		Tracer:   observability.NewTracerWithProvider(noop.NewTracerProvider()),
		OpenStore: func(ctx context.Context, c db.Config) (*db.Store, error) {
			return db.Open(ctx, c, db.WithLogger(logger))
		},
	}
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}
