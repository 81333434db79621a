// Package report writes, reads and renders run summaries.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mrz1836/clarifyflow/internal/domain"
	"github.com/mrz1836/clarifyflow/internal/errors"
)

// TableHeaders are the column names used by Rows.
//
//nolint:gochecknoglobals // fixed column set
var TableHeaders = []string{"TASK", "CLARIFY", "BASELINE", "CLARIFIED", "IMPROVEMENT"}

// WriteJSON writes summary as indented JSON to path, creating parent
// directories as needed.
func WriteJSON(path string, summary domain.Summary) error {
	if path == "" {
		return errors.Wrap(errors.ErrEmptyValue, "export path")
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode summary")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.Wrapf(err, "failed to create export directory %s", dir)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return errors.Wrapf(err, "failed to write export %s", path)
	}
	return nil
}

// ReadJSON parses an export written by WriteJSON.
func ReadJSON(path string) (domain.Summary, error) {
	var summary domain.Summary
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return summary, errors.Wrapf(err, "failed to read export %s", path)
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		return summary, errors.Wrapf(err, "failed to parse export %s", path)
	}
	return summary, nil
}

// Rows returns one table row per run, matching TableHeaders.
func Rows(summary domain.Summary) [][]string {
	rows := make([][]string, 0, len(summary.Runs))
	for _, run := range summary.Runs {
		clarify := "no"
		if run.Decision.NeedsClarification {
			clarify = "yes"
		}
		rows = append(rows, []string{
			run.Task,
			clarify,
			ratio(run.Baseline),
			ratio(run.Clarified),
			signed(run.Improvement),
		})
	}
	return rows
}

// Totals sums passing cases across runs.
func Totals(summary domain.Summary) (baseline, clarified, total int) {
	for _, run := range summary.Runs {
		baseline += run.Baseline.Passed
		clarified += run.Clarified.Passed
		total += run.Baseline.Total
	}
	return baseline, clarified, total
}

// Markdown renders summary as a markdown document.
func Markdown(summary domain.Summary) string {
	var b strings.Builder

	b.WriteString("# ClarifyFlow report\n\n")
	fmt.Fprintf(&b, "Generated %s.\n\n", summary.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	var enabled []string
	for _, f := range []struct {
		name string
		on   bool
	}{
		{"openai planner", summary.OpenAIPlanner},
		{"gemini clarifier", summary.GeminiClarifier},
		{"openai coder", summary.OpenAICoder},
		{"interactive", summary.InteractiveClarify},
	} {
		if f.on {
			enabled = append(enabled, f.name)
		}
	}
	if len(enabled) > 0 {
		fmt.Fprintf(&b, "Enabled: %s.\n\n", strings.Join(enabled, ", "))
	}

	b.WriteString("| Task | Clarify | Baseline | Clarified | Improvement |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, row := range Rows(summary) {
		fmt.Fprintf(&b, "| %s |\n", strings.Join(row, " | "))
	}
	base, clar, total := Totals(summary)
	fmt.Fprintf(&b, "\n**Total:** baseline %d/%d, clarified %d/%d.\n", base, total, clar, total)

	for _, run := range summary.Runs {
		fmt.Fprintf(&b, "\n## %s\n\n", run.Task)
		if run.Decision.NeedsClarification {
			fmt.Fprintf(&b, "Clarification needed: %s\n\n", run.Decision.Reason)
		}
		for _, qa := range run.Clarifications {
			fmt.Fprintf(&b, "- **Q:** %s\n  **A:** %s\n", qa.Question, qa.Answer)
		}
		if failed := failures(run); len(failed) > 0 {
			b.WriteString("\nFailed cases:\n\n")
			for _, c := range failed {
				fmt.Fprintf(&b, "- `%s`\n", c)
			}
		}
	}
	return b.String()
}

// Render renders md for the terminal with glamour.
func Render(md string, width int, color bool) (string, error) {
	style := glamour.WithAutoStyle()
	if !color {
		style = glamour.WithStandardStyle("notty")
	}
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", errors.Wrap(err, "failed to create markdown renderer")
	}
	out, err := r.Render(md)
	if err != nil {
		return "", errors.Wrap(err, "failed to render markdown")
	}
	return out, nil
}

func failures(run domain.RunReport) []string {
	var out []string
	for _, res := range []struct {
		variant domain.Variant
		result  domain.TestRunResult
	}{
		{domain.VariantBaseline, run.Baseline},
		{domain.VariantClarified, run.Clarified},
	} {
		for _, c := range res.result.Results {
			if !c.Passed {
				out = append(out, fmt.Sprintf("[%s] %s", res.variant, c.Name))
			}
		}
	}
	return out
}

func ratio(r domain.TestRunResult) string {
	return fmt.Sprintf("%d/%d", r.Passed, r.Total)
}

func signed(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
