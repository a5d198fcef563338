package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/tmsledger/pkg/render"
)

// NewHTMLCommand creates the html command.
func NewHTMLCommand(deps *LedgerCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultLedgerDeps()
	}

	cmd := &cobra.Command{
		Use:   "html",
		Short: "Write the meetings listing as HTML",
		Long: `Write the meetings listing as an HTML fragment on standard output.

Meetings are grouped by academic year (October to September) under <h2>
headings, one <ul> per year. Meetings with an excluded flag and lone
business meetings are left out.

Examples:
  tmsledger html > meetings.html
  tmsledger html --exclude ""            Keep dinners, sports and photographs
  tmsledger html --anchor name           Legacy <a name> heading anchors
  tmsledger -i archive.txt html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHTML(cmd, deps)
		},
	}

	cmd.Flags().String("exclude", "", "Meeting flags to leave out (default from config, cdip)")
	cmd.Flags().String("anchor", "", "Year heading anchor style: id or name")

	return cmd
}

func runHTML(cmd *cobra.Command, deps *LedgerCommandDeps) error {
	ctx := cmd.Context()

	cfg, err := deps.commandConfig(cmd)
	if err != nil {
		return err
	}

	meetings, err := deps.loadLedger(ctx, cfg)
	if err != nil {
		return err
	}

	out, err := deps.render(ctx, "html", func() (string, error) {
		return render.HTML(meetings, render.HTMLOptions{
			Exclude: cfg.Exclude,
			Anchor:  cfg.AnchorStyle(),
		})
	})
	if err != nil {
		return err
	}

	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}
