package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/tmsledger/config"
	lerrors "github.com/otherjamesbrown/tmsledger/pkg/errors"
	"github.com/otherjamesbrown/tmsledger/pkg/logging"
	"github.com/otherjamesbrown/tmsledger/pkg/render"
	"github.com/otherjamesbrown/tmsledger/pkg/stats"
)

// ReportStyle selects the layout of the counts and ranges reports.
type ReportStyle string

const (
	// StylePlain is the fixed-width text layout.
	StylePlain ReportStyle = "plain"
	// StyleTable is a bordered terminal table.
	StyleTable ReportStyle = "table"
)

// ParseReportStyle validates a report style name. Empty means StylePlain.
func ParseReportStyle(s string) (ReportStyle, error) {
	switch ReportStyle(s) {
	case "", StylePlain:
		return StylePlain, nil
	case StyleTable:
		return StyleTable, nil
	}
	return "", fmt.Errorf("%w: unknown style %q (want plain or table)", lerrors.ErrValidation, s)
}

// Report names.
const (
	reportCounts = "counts"
	reportRanges = "ranges"
)

// NewCountsCommand creates the counts command.
func NewCountsCommand(deps *LedgerCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultLedgerDeps()
	}

	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Count talks per speaker",
		Long: `Count the talks given by each speaker, fewest first.

Only dated meetings that pass the exclusion filter are counted. Placeholder
speakers ("" and "unminuted") are ignored and speakers are merged on surname
and initials, so "Dr. A.B. Smith" and "A.B. Smith" count as one.

With --from-db the counts are read from an import saved by
'tmsledger export db' instead of the ledger file.

Examples:
  tmsledger counts
  tmsledger counts --style table
  tmsledger counts --exclude cd
  tmsledger counts --from-db
  tmsledger counts --from-db --import 6f1c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, deps, reportCounts)
		},
	}

	addReportFlags(cmd)
	cmd.Flags().Bool("from-db", false, "Read counts from the database instead of the ledger file")
	cmd.Flags().String("import", "", "Import id to read with --from-db (default latest)")

	return cmd
}

// NewRangesCommand creates the ranges command.
func NewRangesCommand(deps *LedgerCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultLedgerDeps()
	}

	cmd := &cobra.Command{
		Use:   "ranges",
		Short: "Show the span of days between each speaker's first and last talk",
		Long: `Show, for each speaker, the number of days between their first and last
talk and the two dates, shortest span first.

The ledger must be in date order: the first sighting of a speaker is taken
as the first date and the last sighting as the last date.

Examples:
  tmsledger ranges
  tmsledger ranges --style table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, deps, reportRanges)
		},
	}

	addReportFlags(cmd)

	return cmd
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().String("exclude", "", "Meeting flags to leave out (default from config, cdip)")
	cmd.Flags().String("style", string(StylePlain), "Report layout: plain or table")
}

func runReport(cmd *cobra.Command, deps *LedgerCommandDeps, report string) error {
	ctx := cmd.Context()

	cfg, err := deps.commandConfig(cmd)
	if err != nil {
		return err
	}

	styleName, _ := cmd.Flags().GetString("style")
	style, err := ParseReportStyle(styleName)
	if err != nil {
		return err
	}

	var table stats.Table
	if fromDB, _ := cmd.Flags().GetBool("from-db"); fromDB {
		importID, _ := cmd.Flags().GetString("import")
		table, err = storedCounts(ctx, deps, cfg, importID)
		if err != nil {
			return err
		}
	} else {
		meetings, err := deps.loadLedger(ctx, cfg)
		if err != nil {
			return err
		}
		table, err = stats.Aggregate(meetings, cfg.Filter())
		if err != nil {
			return err
		}
	}

	out, err := deps.render(ctx, report, func() (string, error) {
		return formatReport(table, report, style), nil
	})
	if err != nil {
		return err
	}

	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}

func formatReport(table stats.Table, report string, style ReportStyle) string {
	switch {
	case report == reportRanges && style == StyleTable:
		return render.RangesTable(table)
	case report == reportRanges:
		return render.Ranges(table)
	case style == StyleTable:
		return render.CountsTable(table)
	default:
		return render.Counts(table)
	}
}

// storedCounts answers the counts report from a saved import.
func storedCounts(ctx context.Context, deps *LedgerCommandDeps, cfg *config.CLIConfig, importID string) (stats.Table, error) {
	store, err := deps.openStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if importID == "" {
		importID, err = store.LatestImportID(ctx)
		if err != nil {
			return nil, err
		}
	}

	counts, err := store.SpeakerCounts(ctx, importID, cfg.Filter())
	if err != nil {
		return nil, err
	}

	deps.logger().Debug("Counts read from database",
		logging.F("import_id", importID),
		logging.F("speakers", len(counts)))

	table := make(stats.Table, len(counts))
	for _, c := range counts {
		table[c.Name] = &stats.Speaker{Name: c.Name, Talks: c.Talks}
	}
	return table, nil
}
