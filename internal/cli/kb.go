// Package cli provides the command-line interface for clarifyflow.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/clarifyflow/internal/domain"
	"github.com/mrz1836/clarifyflow/internal/errors"
	"github.com/mrz1836/clarifyflow/internal/kb"
	"github.com/mrz1836/clarifyflow/internal/tui"
)

// fingerprintDisplayLen is how many fingerprint characters the list table shows.
const fingerprintDisplayLen = 12

// terminalCheck reports whether prompts can be shown. Replaced in tests.
var terminalCheck = tui.IsInteractive //nolint:gochecknoglobals // test seam

// confirmClear asks before clearing entries. Replaced in tests.
var confirmClear = tui.Confirm //nolint:gochecknoglobals // test seam

// kbEntryJSON is the JSON shape of one knowledge base entry.
type kbEntryJSON struct {
	Key                string                `json:"key"`
	Task               string                `json:"task"`
	Fingerprint        string                `json:"fingerprint"`
	Provenance         domain.Provenance     `json:"provenance"`
	UpdatedAt          time.Time             `json:"updated_at"`
	DescriptionPreview string                `json:"description_preview"`
	QA                 domain.Clarifications `json:"q_and_a"`
}

// kbClearResult is the JSON response of kb clear.
type kbClearResult struct {
	Task    string `json:"task,omitempty"`
	Removed int    `json:"removed"`
}

// AddKBCommand adds the kb command group to the root command.
func AddKBCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Inspect or clear the clarification knowledge base",
		Long: `The knowledge base caches clarification answers per task description.
Answers are reused on later runs until the description changes or the
entry is cleared.`,
	}

	addKBListCmd(cmd, flags)
	addKBClearCmd(cmd, flags)

	root.AddCommand(cmd)
}

func addKBListCmd(parent *cobra.Command, flags *GlobalFlags) {
	var task string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached clarifications",
		Long: `Display every knowledge base entry with its provenance, answer count and
last update.

Examples:
  clarifyflow kb list
  clarifyflow kb list --task factorial --output json`,
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKBList(cmd.Context(), cmd.OutOrStdout(), flags, task)
		},
	}
	cmd.Flags().StringVar(&task, "task", "", "only list entries for this task")
	parent.AddCommand(cmd)
}

func addKBClearCmd(parent *cobra.Command, flags *GlobalFlags) {
	var (
		task string
		yes  bool
	)
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached clarifications",
		Long: `Remove every knowledge base entry, or only a task's entries with --task.
Asks for confirmation on a terminal unless --yes is given.

Examples:
  clarifyflow kb clear --task parse_csv_line
  clarifyflow kb clear --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKBClear(cmd.Context(), cmd.OutOrStdout(), flags, task, yes)
		},
	}
	cmd.Flags().StringVar(&task, "task", "", "only clear entries for this task")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	parent.AddCommand(cmd)
}

// runKBList executes kb list.
func runKBList(ctx context.Context, w io.Writer, flags *GlobalFlags, task string) error {
	logger := GetLogger()

	cfg, err := loadConfig(logger.WithContext(ctx), flags)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	entries, err := store.List(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to list knowledge base: %w", err)
	}

	out := tui.NewOutput(w, flags.Output)
	if flags.Output == OutputJSON {
		return out.JSON(toEntryJSON(entries))
	}

	if len(entries) == 0 {
		out.Info("Knowledge base is empty. Run 'clarifyflow run' to populate it.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		fp := e.Fingerprint
		if len(fp) > fingerprintDisplayLen {
			fp = fp[:fingerprintDisplayLen]
		}
		rows = append(rows, []string{
			e.Task,
			fp,
			string(e.Record.Provenance),
			strconv.Itoa(e.Record.QA.Len()),
			e.Record.UpdatedAt.Format(time.RFC3339),
			e.Record.DescriptionPreview,
		})
	}
	out.Table([]string{"TASK", "FINGERPRINT", "PROVENANCE", "ANSWERS", "UPDATED", "DESCRIPTION"}, rows)
	return nil
}

// runKBClear executes kb clear.
func runKBClear(ctx context.Context, w io.Writer, flags *GlobalFlags, task string, yes bool) error {
	logger := GetLogger()

	cfg, err := loadConfig(logger.WithContext(ctx), flags)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	if !yes {
		if !terminalCheck() {
			return errors.NewExitCode2Error(
				fmt.Errorf("use --yes to clear without a terminal: %w", errors.ErrInteractiveRequired))
		}
		scope := "all knowledge base entries"
		if task != "" {
			scope = "knowledge base entries for " + task
		}
		ok, err := confirmClear("Remove "+scope+"?", false)
		if err != nil {
			return err
		}
		if !ok {
			tui.NewOutput(w, flags.Output).Info("Nothing removed.")
			return nil
		}
	}

	removed, err := store.Clear(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to clear knowledge base: %w", err)
	}

	out := tui.NewOutput(w, flags.Output)
	if flags.Output == OutputJSON {
		return out.JSON(kbClearResult{Task: task, Removed: removed})
	}
	out.Success(fmt.Sprintf("Removed %d knowledge base %s from %s", removed, pluralize(removed, "entry", "entries"), store.Path()))
	return nil
}

func toEntryJSON(entries []kb.Entry) []kbEntryJSON {
	out := make([]kbEntryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, kbEntryJSON{
			Key:                e.Key,
			Task:               e.Task,
			Fingerprint:        e.Fingerprint,
			Provenance:         e.Record.Provenance,
			UpdatedAt:          e.Record.UpdatedAt,
			DescriptionPreview: e.Record.DescriptionPreview,
			QA:                 e.Record.QA,
		})
	}
	return out
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
