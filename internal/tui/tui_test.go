package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/clarifyflow/internal/domain"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

func TestNewOutput(t *testing.T) {
	assert.IsType(t, &JSONOutput{}, NewOutput(&bytes.Buffer{}, FormatJSON))
	assert.IsType(t, &TTYOutput{}, NewOutput(&bytes.Buffer{}, FormatText))
	assert.IsType(t, &TTYOutput{}, NewOutput(&bytes.Buffer{}, ""))
}

func TestTTYOutput_Messages(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	out.Success("done")
	out.Warning("careful")
	out.Info("note")
	out.Error(fmt.Errorf("select: %w", cferrors.ErrUnknownTask))

	text := buf.String()
	assert.Contains(t, text, "✓ done")
	assert.Contains(t, text, "⚠ careful")
	assert.Contains(t, text, "note")
	assert.Contains(t, text, "✗ select: unknown task")
	assert.Contains(t, text, "▸ Try: Run 'clarifyflow tasks'")
}

func TestTTYOutput_Case(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	out.Case("factorial", domain.VariantBaseline, domain.CaseResult{Name: "factorial::case_1", Passed: true})
	out.Case("factorial", domain.VariantClarified, domain.CaseResult{Name: "factorial::case_3", Detail: "exception: boom"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "PASS [baseline] factorial::case_1")
	assert.Contains(t, lines[1], "FAIL [clarified] factorial::case_3: exception: boom")
}

func TestTTYOutput_Table(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	NewTTYOutput(&buf).Table([]string{"TASK", "CASES"}, [][]string{{"factorial", "3"}, {"sum_list"}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "TASK       CASES", lines[0])
	assert.Equal(t, "factorial  3", lines[1])
	assert.Equal(t, "sum_list", lines[2])
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	out := NewJSONOutput(&buf)

	out.Info("hello")
	out.Case("csv", domain.VariantBaseline, domain.CaseResult{Name: "csv::case_1", Detail: "expected=1 got=2"})
	out.Error(fmt.Errorf("load: %w", cferrors.ErrKnowledgeBase))
	out.Table([]string{"A", "B"}, [][]string{{"1"}})

	dec := json.NewDecoder(&buf)

	var msg map[string]any
	require.NoError(t, dec.Decode(&msg))
	assert.Equal(t, "info", msg["type"])

	var c map[string]any
	require.NoError(t, dec.Decode(&c))
	assert.Equal(t, "case", c["type"])
	assert.Equal(t, "baseline", c["variant"])
	assert.Equal(t, false, c["passed"])
	assert.Equal(t, "expected=1 got=2", c["detail"])

	var e map[string]any
	require.NoError(t, dec.Decode(&e))
	assert.Equal(t, "error", e["type"])
	assert.Equal(t, "knowledge base unavailable", e["details"])
	assert.NotEmpty(t, e["suggestion"])

	var rows []map[string]string
	require.NoError(t, dec.Decode(&rows))
	assert.Equal(t, []map[string]string{{"A": "1", "B": ""}}, rows)
}

func TestLinePrompter(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("  first answer \n\nlast"), &out)
	ctx := context.Background()

	got, err := p.Ask(ctx, "Q1?")
	require.NoError(t, err)
	assert.Equal(t, "first answer", got)

	got, err = p.Ask(ctx, "Q2?")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = p.Ask(ctx, "Q3?")
	require.NoError(t, err)
	assert.Equal(t, "last", got)

	_, err = p.Ask(ctx, "Q4?")
	require.ErrorIs(t, err, cferrors.ErrMenuCanceled)

	assert.Contains(t, out.String(), "Q1?\n> ")

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = p.Ask(canceled, "Q5?")
	require.ErrorIs(t, err, context.Canceled)
}

func TestHasColorSupport(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.False(t, HasColorSupport())
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "abcdef", padRight("abcdef", 4))
	assert.Equal(t, "é ", padRight("é", 2))
}
