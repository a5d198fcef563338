package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/tmsledger/config"
	"github.com/otherjamesbrown/tmsledger/pkg/db"
	"github.com/otherjamesbrown/tmsledger/pkg/export"
	"github.com/otherjamesbrown/tmsledger/pkg/ledger"
	"github.com/otherjamesbrown/tmsledger/pkg/logging"
	"github.com/otherjamesbrown/tmsledger/pkg/observability"
)

// Export targets besides the document formats.
const (
	exportText = "text"
	exportDB   = "db"
)

// NewExportCommand creates the export command.
func NewExportCommand(deps *LedgerCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultLedgerDeps()
	}

	cmd := &cobra.Command{
		Use:   "export json|yaml|xml|text|db",
		Short: "Export the ledger as a document, as text or to a database",
		Long: `Export the parsed ledger.

Formats:
  json   Document model with decoded speakers, indented
  yaml   Same document as YAML
  xml    <meetings> document with one <meeting> element per meeting
  text   The fixed-column ledger layout, written in the configured encoding
  db     Save an import to the configured database and print its id

Documents and text go to standard output unless --out is given. The
database is set by database.driver and database.dsn in the config file or
TMSLEDGER_DB_DRIVER and TMSLEDGER_DB_DSN (default: SQLite meetings.sqlite).

Examples:
  tmsledger export json > meetings.json
  tmsledger export xml --out meetings.xml
  tmsledger --encoding utf8 export text --out meetings-utf8.txt
  tmsledger export db`,
		ValidArgs: []string{
			string(export.FormatJSON), string(export.FormatYAML), string(export.FormatXML),
			exportText, exportDB,
		},
		Args: cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, deps, args[0])
		},
	}

	cmd.Flags().String("out", "", "Write to this file instead of standard output")

	return cmd
}

func runExport(cmd *cobra.Command, deps *LedgerCommandDeps, format string) error {
	ctx := cmd.Context()

	cfg, err := deps.commandConfig(cmd)
	if err != nil {
		return err
	}

	meetings, err := deps.loadLedger(ctx, cfg)
	if err != nil {
		return err
	}

	ctx, span := deps.tracer().StartExportSpan(ctx, format)
	defer span.End()
	observability.SetMeetings(span, len(meetings))

	if format == exportDB {
		err = exportToDB(ctx, cmd.OutOrStdout(), deps, cfg, meetings)
	} else {
		outPath, _ := cmd.Flags().GetString("out")
		err = exportToFile(cmd.OutOrStdout(), outPath, func(w io.Writer) error {
			return writeExport(w, format, cfg, meetings)
		})
	}
	if err != nil {
		observability.RecordError(span, err)
		return err
	}

	deps.logger().WithContext(ctx).Debug("Export complete",
		logging.F("format", format),
		logging.F("meetings", len(meetings)))
	return nil
}

func writeExport(w io.Writer, format string, cfg *config.CLIConfig, meetings []ledger.Meeting) error {
	if format == exportText {
		enc := cfg.LedgerEncoding().NewWriter(w)
		if err := ledger.Format(enc, meetings); err != nil {
			return fmt.Errorf("writing ledger text: %w", err)
		}
		return enc.Close()
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	doc, err := export.Build(cfg.Input, meetings)
	if err != nil {
		return err
	}
	return export.Write(w, f, doc)
}

// exportToFile runs write against stdout, or against path when one is
// given. A failed write removes the partial file.
func exportToFile(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}

	expanded, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(expanded)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(expanded)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	return nil
}

func exportToDB(ctx context.Context, out io.Writer, deps *LedgerCommandDeps, cfg *config.CLIConfig, meetings []ledger.Meeting) error {
	store, err := deps.openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if deps.Registry != nil {
		if _, err := db.RegisterDBStatsCollector(store, observability.Namespace, deps.Registry); err != nil {
			deps.logger().Warn("Database metrics unavailable", logging.Err(err))
		}
	}

	id, err := store.SaveImport(ctx, cfg.Input, meetings)
	if err != nil {
		return err
	}

	deps.logger().Info("Import saved",
		logging.F("import_id", id),
		logging.F("driver", store.Driver()),
		logging.F("meetings", len(meetings)))

	_, err = fmt.Fprintln(out, id)
	return err
}
