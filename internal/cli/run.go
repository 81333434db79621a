// Package cli provides the command-line interface for clarifyflow.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mrz1836/clarifyflow/internal/clarifier"
	"github.com/mrz1836/clarifyflow/internal/config"
	"github.com/mrz1836/clarifyflow/internal/domain"
	"github.com/mrz1836/clarifyflow/internal/errors"
	"github.com/mrz1836/clarifyflow/internal/metrics"
	"github.com/mrz1836/clarifyflow/internal/orchestrator"
	"github.com/mrz1836/clarifyflow/internal/registry"
	"github.com/mrz1836/clarifyflow/internal/report"
	"github.com/mrz1836/clarifyflow/internal/signal"
	"github.com/mrz1836/clarifyflow/internal/tui"
)

// defaultRenderWidth is used for markdown when stdout is not a terminal.
const defaultRenderWidth = 80

// runOptions holds the flags of the run command.
type runOptions struct {
	tasks           []string
	export          string
	openAIPlanner   bool
	geminiClarifier bool
	openAICoder     bool
	interactive     bool
	forceClarify    bool
	refresh         bool
	noKB            bool
	markdown        bool
	metricsFile     string
}

// AddRunCommand adds the run command to the root command.
func AddRunCommand(root *cobra.Command, flags *GlobalFlags) {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the baseline and clarify-first pipelines and compare them",
		Long: `Plan, clarify, generate and verify every selected task twice: once straight
from its description and once with clarification answers applied.

Examples:
  clarifyflow run                                # every registered task
  clarifyflow run --task factorial --task sum_list
  clarifyflow run --export out/report.json --markdown
  clarifyflow run --interactive --refresh        # answer the questions yourself
  clarifyflow run --output json                  # summary as JSON on stdout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd.Context(), cmd, cmd.OutOrStdout(), flags, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.tasks, "task", nil, "run only this task (repeatable, keeps order)")
	cmd.Flags().StringVar(&opts.export, "export", "", "write the summary JSON to this path")
	cmd.Flags().BoolVar(&opts.openAIPlanner, "openai-planner", false, "ask OpenAI to refine planner reasons")
	cmd.Flags().BoolVar(&opts.geminiClarifier, "gemini-clarifier", false, "ask Gemini for clarifying questions")
	cmd.Flags().BoolVar(&opts.openAICoder, "openai-coder", false, "generate code with OpenAI before falling back to templates")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "answer clarifying questions yourself")
	cmd.Flags().BoolVar(&opts.forceClarify, "force-clarify", false, "clarify tasks even when no ambiguity is detected")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached answers and ask again")
	cmd.Flags().BoolVar(&opts.noKB, "no-kb", false, "neither read nor write the knowledge base")
	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "render a markdown report after the table")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics in text format to this path")

	root.AddCommand(cmd)
}

// runRun executes the run command.
func runRun(ctx context.Context, cmd *cobra.Command, w io.Writer, flags *GlobalFlags, opts *runOptions) error {
	logger := GetLogger()

	cfg, err := loadConfig(logger.WithContext(ctx), flags)
	if err != nil {
		return err
	}
	features := resolveFeatures(cmd, cfg, opts)

	reg, err := registry.Default()
	if err != nil {
		return fmt.Errorf("failed to load task registry: %w", err)
	}
	tasks, err := reg.Select(opts.tasks)
	if err != nil {
		return errors.NewExitCode2Error(err)
	}

	// Progress lines go to stderr in JSON mode so stdout stays one document.
	out := tui.NewOutput(w, flags.Output)
	progress := out
	if flags.Output == OutputJSON {
		progress = tui.NewOutput(cmd.ErrOrStderr(), OutputJSON)
	}

	var (
		recorder metrics.Recorder = metrics.Nop{}
		prom     *metrics.Prometheus
	)
	if opts.metricsFile != "" {
		if prom, err = metrics.NewPrometheus(); err != nil {
			return fmt.Errorf("failed to create metrics: %w", err)
		}
		recorder = prom
	}

	var prompter clarifier.Prompter
	if features.InteractiveClarify {
		prompter = tui.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	}

	p, err := buildPipeline(pipelineDeps{
		cfg: cfg,
		opts: orchestrator.Options{
			Clarify: clarifier.Options{
				Force:       flagOrConfig(cmd, "force-clarify", opts.forceClarify, cfg.Features.ForceClarify),
				Interactive: features.InteractiveClarify,
				Refresh:     opts.refresh,
				NoKB:        opts.noKB,
			},
			Flags: features,
		},
		reporter: progress,
		metrics:  recorder,
		prompter: prompter,
		warn:     progress.Warning,
		logger:   logger,
	})
	if err != nil {
		return err
	}

	handler := signal.NewHandler(ctx)
	defer handler.Stop()

	summary, err := p.orchestrator.Run(handler.Context(), tasks)
	if err != nil {
		if handler.WasInterrupted() || stderrors.Is(err, context.Canceled) {
			return fmt.Errorf("run interrupted: %w", err)
		}
		return fmt.Errorf("run failed: %w", err)
	}

	if opts.export != "" {
		if err := report.WriteJSON(opts.export, summary); err != nil {
			return err
		}
		logger.Info().Str("path", opts.export).Msg("summary exported")
	}

	if prom != nil {
		if err := prom.WriteFile(opts.metricsFile); err != nil {
			return err
		}
		logger.Debug().Str("path", opts.metricsFile).Msg("metrics written")
	}

	if flags.Output == OutputJSON {
		return out.JSON(summary)
	}

	if err := printSummary(w, out, summary, opts.markdown); err != nil {
		return err
	}
	if opts.export != "" {
		out.Success("Exported report to " + opts.export)
	}
	return nil
}

// resolveFeatures merges feature flags over configuration.
func resolveFeatures(cmd *cobra.Command, cfg *config.Config, opts *runOptions) domain.FeatureFlags {
	return domain.FeatureFlags{
		OpenAIPlanner:      flagOrConfig(cmd, "openai-planner", opts.openAIPlanner, cfg.Features.OpenAIPlanner),
		GeminiClarifier:    flagOrConfig(cmd, "gemini-clarifier", opts.geminiClarifier, cfg.Features.GeminiClarifier),
		OpenAICoder:        flagOrConfig(cmd, "openai-coder", opts.openAICoder, cfg.Features.OpenAICoder),
		InteractiveClarify: flagOrConfig(cmd, "interactive", opts.interactive, cfg.Features.Interactive),
	}
}

// flagOrConfig returns flagValue when the flag was set on the command line.
func flagOrConfig(cmd *cobra.Command, name string, flagValue, configValue bool) bool {
	if cmd.Flags().Changed(name) {
		return flagValue
	}
	return configValue
}

// printSummary writes the comparison table, the totals line and, when
// requested, the rendered markdown report.
func printSummary(w io.Writer, out tui.Output, summary domain.Summary, markdown bool) error {
	_, _ = fmt.Fprintln(w)
	out.Table(report.TableHeaders, report.Rows(summary))

	baseline, clarified, total := report.Totals(summary)
	_, _ = fmt.Fprintf(w, "\nTotal: baseline %d/%d, clarify-first %d/%d (%+d)\n",
		baseline, total, clarified, total, clarified-baseline)

	if !markdown {
		return nil
	}
	rendered, err := report.Render(report.Markdown(summary), renderWidth(), tui.HasColorSupport())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(w, rendered)
	return nil
}

// renderWidth returns the stdout terminal width, or a default off a terminal.
func renderWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultRenderWidth
	}
	return width
}
