// Package cli provides the command-line interface for clarifyflow.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/clarifyflow/internal/planner"
	"github.com/mrz1836/clarifyflow/internal/registry"
	"github.com/mrz1836/clarifyflow/internal/tui"
)

// taskInfo is the JSON shape of one row of the tasks command.
type taskInfo struct {
	Name        string   `json:"name"`
	Function    string   `json:"function"`
	Description string   `json:"description"`
	Cases       int      `json:"cases"`
	Signals     []string `json:"signals"`
}

// AddTasksCommand adds the tasks command to the root command.
func AddTasksCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List registered tasks and the ambiguity each one shows",
		Long: `Display every registered task with its entry point, number of test cases
and the ambiguity signals the planner detects in its description.

Examples:
  clarifyflow tasks
  clarifyflow tasks --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTasks(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}
	root.AddCommand(cmd)
}

// runTasks executes the tasks command.
func runTasks(ctx context.Context, w io.Writer, flags *GlobalFlags) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	reg, err := registry.Default()
	if err != nil {
		return fmt.Errorf("failed to load task registry: %w", err)
	}

	infos := make([]taskInfo, 0, len(reg.All()))
	for _, task := range reg.All() {
		signals, _ := planner.Detect(task.Description)
		names := make([]string, 0, len(signals))
		for _, s := range signals {
			names = append(names, s.String())
		}
		infos = append(infos, taskInfo{
			Name:        task.Name,
			Function:    task.Function,
			Description: task.Description,
			Cases:       len(task.Cases),
			Signals:     names,
		})
	}

	out := tui.NewOutput(w, flags.Output)
	if flags.Output == OutputJSON {
		return out.JSON(infos)
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		signals := strings.Join(info.Signals, ", ")
		if signals == "" {
			signals = "-"
		}
		rows = append(rows, []string{info.Name, info.Function, strconv.Itoa(info.Cases), signals})
	}
	out.Table([]string{"TASK", "FUNCTION", "CASES", "SIGNALS"}, rows)
	return nil
}
