package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/tmsledger/config"
	"github.com/otherjamesbrown/tmsledger/pkg/export"
	"github.com/otherjamesbrown/tmsledger/pkg/ledger"
	"github.com/otherjamesbrown/tmsledger/pkg/registry"
)

// CheckResult is the output of the check command.
type CheckResult struct {
	Input    string         `json:"input" yaml:"input"`
	Encoding string         `json:"encoding" yaml:"encoding"`
	Summary  ledger.Summary `json:"summary" yaml:"summary"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(deps *LedgerCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultLedgerDeps()
	}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the ledger and summarise it",
		Long: `Validate every line of the ledger and print a summary.

A meeting line carries a number, a YYYY-MM-DD date (or blanks), flag
characters, an optional joint society code, the first speaker and title,
venue, page and audience. Continuation lines add a talk or a speaker to the
meeting above. The first bad line stops the check with its line number.

Meeting flags:
` + flagHelp() + `
Joint society codes:
  ` + strings.Join(registry.JointCodes(), " ") + `

Examples:
  tmsledger check
  tmsledger check -o json
  tmsledger -i archive.txt --encoding utf8 check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, deps)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output format: text, json, yaml")

	return cmd
}

// flagHelp lists the flag alphabet, one flag per line.
func flagHelp() string {
	var b strings.Builder
	for _, c := range registry.FlagAlphabet {
		info, _ := registry.Flag(c)
		fmt.Fprintf(&b, "  %c  %-22s (%s)\n", c, info.Name, info.Kind)
	}
	return b.String()
}

func runCheck(cmd *cobra.Command, deps *LedgerCommandDeps) error {
	cfg, err := deps.commandConfig(cmd)
	if err != nil {
		return err
	}

	meetings, err := deps.loadLedger(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	result := CheckResult{
		Input:    cfg.Input,
		Encoding: string(cfg.LedgerEncoding()),
		Summary:  ledger.Summarize(meetings),
	}

	out := cmd.OutOrStdout()
	switch cfg.OutputFormat {
	case config.OutputFormatJSON:
		return export.WriteJSON(out, result)
	case config.OutputFormatYAML:
		return export.WriteYAML(out, result)
	default:
		return outputCheckText(out, result)
	}
}

func outputCheckText(w io.Writer, r CheckResult) error {
	s := r.Summary
	fmt.Fprintf(w, "Ledger OK: %s (%s)\n\n", r.Input, r.Encoding)
	fmt.Fprintf(w, "  Meetings:        %d", s.Meetings)
	if s.UnknownDates > 0 {
		fmt.Fprintf(w, " (%d with unknown date)", s.UnknownDates)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Joint meetings:  %d\n", s.JointMeetings)
	fmt.Fprintf(w, "  Talks:           %d\n", s.Talks)
	fmt.Fprintf(w, "  Speakers:        %d (%d distinct)\n", s.Speakers, s.Distinct)
	if s.First != "" {
		fmt.Fprintf(w, "  Dates:           %s to %s\n", s.First, s.Last)
	}
	return nil
}
