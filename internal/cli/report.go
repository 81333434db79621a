// Package cli provides the command-line interface for clarifyflow.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/clarifyflow/internal/report"
	"github.com/mrz1836/clarifyflow/internal/tui"
)

// AddReportCommand adds the report command to the root command.
func AddReportCommand(root *cobra.Command, flags *GlobalFlags) {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "report <export.json>",
		Short: "Re-render a summary exported by 'clarifyflow run --export'",
		Long: `Read a summary JSON written by 'clarifyflow run --export' and print the
comparison table again, optionally with the full markdown report.

Examples:
  clarifyflow report out/report.json
  clarifyflow report out/report.json --markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), flags, args[0], markdown)
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "render the markdown report after the table")
	root.AddCommand(cmd)
}

// runReport executes the report command.
func runReport(ctx context.Context, w io.Writer, flags *GlobalFlags, path string, markdown bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	summary, err := report.ReadJSON(path)
	if err != nil {
		return err
	}
	logger := GetLogger()
	logger.Debug().Str("path", path).Int("runs", len(summary.Runs)).Msg("export loaded")

	out := tui.NewOutput(w, flags.Output)
	if flags.Output == OutputJSON {
		return out.JSON(summary)
	}
	return printSummary(w, out, summary, markdown)
}
