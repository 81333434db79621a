package coder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/clarifyflow/internal/domain"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
	"github.com/mrz1836/clarifyflow/internal/llm"
	"github.com/mrz1836/clarifyflow/internal/registry"
	"github.com/mrz1836/clarifyflow/internal/testutil"
)

type fakeRunner struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeRunner) Complete(_ context.Context, req *llm.Request) (*llm.Response, error) {
	f.prompts = append(f.prompts, req.Prompt)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Text: f.text}, nil
}

func mustTask(t *testing.T, name string) domain.Task {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	task, ok := reg.Get(name)
	require.True(t, ok, name)
	return task
}

func TestHasTemplates(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)
	for _, name := range reg.Names() {
		assert.True(t, HasTemplates(name), name)
	}
	assert.False(t, HasTemplates("does_not_exist"))
}

func TestGenerate_Baseline(t *testing.T) {
	art, err := New().Generate(context.Background(), mustTask(t, "factorial"), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.VariantBaseline, art.Variant)
	assert.Equal(t, domain.StrategyTemplate, art.Strategy)
	assert.Contains(t, art.Source, "// Code generated by clarifyflow for task factorial. DO NOT EDIT.")
	assert.Contains(t, art.Source, "// Mode: baseline")
	assert.NotContains(t, art.Source, "Clarifications applied")
	assert.Contains(t, art.Source, "package solution")
	assert.Contains(t, art.Source, "func Factorial(n int) (int, error)")
}

func TestGenerate_Clarified(t *testing.T) {
	var qa domain.Clarifications
	qa.Set("How should negative\ninputs be handled?", "Return -1.")

	art, err := New().Generate(context.Background(), mustTask(t, "factorial"), qa)
	require.NoError(t, err)

	assert.Equal(t, domain.VariantClarified, art.Variant)
	assert.Contains(t, art.Source, "// Mode: clarified")
	assert.Contains(t, art.Source, "// Clarifications applied:")
	assert.Contains(t, art.Source, "//   Q: How should negative inputs be handled?")
	assert.Contains(t, art.Source, "//   A: Return -1.")
	assert.Contains(t, art.Source, "return -1, nil")
}

func TestGenerate_UnknownTask(t *testing.T) {
	runner := &fakeRunner{text: "package solution"}
	c := New(WithStrategy(NewLLMStrategy(runner)))

	_, err := c.Generate(context.Background(), domain.Task{Name: "mystery", Description: "x"}, nil)
	require.ErrorIs(t, err, cferrors.ErrUnknownTask)
	assert.Empty(t, runner.prompts, "strategy is not consulted for unknown tasks")
}

func TestGenerate_StrategyOutputUsedVerbatim(t *testing.T) {
	runner := &fakeRunner{text: "```go\npackage solution\n\nfunc SumList(xs []int) (int, error) { return 0, nil }\n```"}
	c := New(WithStrategy(NewLLMStrategy(runner)))

	art, err := c.Generate(context.Background(), mustTask(t, "sum_list"), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyLLM, art.Strategy)
	assert.Equal(t, "package solution\n\nfunc SumList(xs []int) (int, error) { return 0, nil }\n", art.Source)
	require.Len(t, runner.prompts, 1)
	assert.Contains(t, runner.prompts[0], "SumList")
}

func TestGenerate_StrategyFallback(t *testing.T) {
	tests := []struct {
		name   string
		runner *fakeRunner
	}{
		{name: "runner error", runner: &fakeRunner{err: cferrors.ErrLLMUnavailable}},
		{name: "empty reply", runner: &fakeRunner{text: "```go\n```"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fallbacks []error
			c := New(
				WithStrategy(NewLLMStrategy(tt.runner)),
				WithFallbackHook(func(_ string, _ domain.Variant, err error) { fallbacks = append(fallbacks, err) }),
			)

			var qa domain.Clarifications
			qa.Set("q", "a")
			art, err := c.Generate(context.Background(), mustTask(t, "is_anagram"), qa)
			require.NoError(t, err)

			assert.Equal(t, domain.StrategyTemplate, art.Strategy)
			assert.Equal(t, domain.VariantClarified, art.Variant)
			require.Len(t, fallbacks, 1)
		})
	}
}

func TestLLMStrategy_PromptIncludesClarifications(t *testing.T) {
	runner := &fakeRunner{text: "package solution\n"}
	var qa domain.Clarifications
	qa.Set("Quoted commas?", "Keep them in the field.")

	_, err := NewLLMStrategy(runner).Generate(context.Background(), mustTask(t, "parse_csv_line"), qa)
	require.NoError(t, err)

	require.Len(t, runner.prompts, 1)
	assert.Contains(t, runner.prompts[0], "Q: Quoted commas?")
	assert.Contains(t, runner.prompts[0], "A: Keep them in the field.")
}

func TestRender_MissingVariant(t *testing.T) {
	_, err := Render("factorial", domain.Variant("other"), nil)
	require.ErrorIs(t, err, cferrors.ErrUnknownTask)
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no fence", in: "  package solution  ", want: "package solution\n"},
		{name: "go fence", in: "Here:\n```go\npackage solution\n```\nDone.", want: "package solution\n"},
		{name: "unterminated", in: "```\npackage solution\n", want: "package solution\n"},
		{name: "fence only", in: "```", want: "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.in))
		})
	}
}

func TestGenerate_StrategyErrorIsWrapped(t *testing.T) {
	boom := testutil.ErrMockProvider
	var got error
	c := New(
		WithStrategy(NewLLMStrategy(&fakeRunner{err: boom})),
		WithFallbackHook(func(_ string, _ domain.Variant, err error) { got = err }),
	)
	_, err := c.Generate(context.Background(), mustTask(t, "factorial"), nil)
	require.NoError(t, err)
	require.ErrorIs(t, got, boom)
}
