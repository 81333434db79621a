package planner

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

type advisorFunc func(ctx context.Context, task domain.Task, reason string) (string, error)

func (f advisorFunc) Advise(ctx context.Context, task domain.Task, reason string) (string, error) {
	return f(ctx, task, reason)
}

type runnerFunc func(ctx context.Context, req *llm.Request) (*llm.Response, error)

func (f runnerFunc) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	return f(ctx, req)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        []domain.Signal
		reasonHas   string
	}{
		{
			name:        "non-negative is a precondition not a rule",
			description: "Implement Factorial(n) returning n! for a non-negative integer n.",
			want:        []domain.Signal{domain.SignalNegativeInput},
			reasonHas:   "negative input",
		},
		{
			name:        "negative behavior stated",
			description: "Compute the factorial of an integer; return -1 for negative input.",
		},
		{
			name:        "out of range stated",
			description: "Return the count of items, erroring when out of range.",
		},
		{
			name:        "csv without quoting",
			description: "Implement ParseCSVLine(line) to split a CSV line into fields.",
			want:        []domain.Signal{domain.SignalQuoting},
			reasonHas:   "quoting",
		},
		{
			name:        "csv with quoting",
			description: "Split a comma-separated line; quoted fields may contain commas.",
		},
		{
			name:        "vague qualifier",
			description: "Check anagrams, handling case appropriately.",
			want:        []domain.Signal{domain.SignalVagueTerms},
			reasonHas:   "vague terms",
		},
		{
			name:        "multiple signals report the first",
			description: "Parse a CSV row of integers and handle errors as needed.",
			want:        []domain.Signal{domain.SignalNegativeInput, domain.SignalQuoting, domain.SignalVagueTerms},
			reasonHas:   "negative input",
		},
		{
			name:        "word boundaries",
			description: "Update the account balance.",
		},
		{
			name:        "unambiguous",
			description: "Reverse a string.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			signals, reason := Detect(tc.description)
			assert.Equal(t, tc.want, signals)
			if tc.want == nil {
				assert.Empty(t, reason)
			} else {
				assert.Contains(t, reason, tc.reasonHas)
			}
		})
	}
}

func TestPlanner_Decide(t *testing.T) {
	ctx := context.Background()
	reg, err := registry.Default()
	require.NoError(t, err)

	p := New()

	t.Run("built-in tasks", func(t *testing.T) {
		want := map[string]domain.Signal{
			"factorial":      domain.SignalNegativeInput,
			"parse_csv_line": domain.SignalQuoting,
			"is_anagram":     domain.SignalVagueTerms,
		}
		for _, task := range reg.All() {
			d, err := p.Decide(ctx, task)
			require.NoError(t, err)

			sig, flagged := want[task.Name]
			assert.Equal(t, flagged, d.NeedsClarification, task.Name)
			if flagged {
				assert.Equal(t, []domain.Signal{sig}, d.Signals, task.Name)
				assert.NotEmpty(t, d.Reason)
			} else {
				assert.Empty(t, d.Reason, task.Name)
				assert.Empty(t, d.Signals, task.Name)
			}
		}
	})

	t.Run("empty description", func(t *testing.T) {
		_, err := p.Decide(ctx, domain.Task{Name: "blank", Description: "   "})
		require.ErrorIs(t, err, cferrors.ErrInvalidTask)
	})

	t.Run("deterministic", func(t *testing.T) {
		task, _ := reg.Get("factorial")
		a, err := p.Decide(ctx, task)
		require.NoError(t, err)
		b, err := p.Decide(ctx, task)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestPlanner_Advisory(t *testing.T) {
	ctx := context.Background()
	flagged := domain.Task{Name: "factorial", Description: "Compute the factorial of n."}
	clean := domain.Task{Name: "rev", Description: "Reverse a string."}

	t.Run("appended to reason", func(t *testing.T) {
		p := New(WithAdvisor(advisorFunc(func(_ context.Context, _ domain.Task, reason string) (string, error) {
			assert.Contains(t, reason, "negative input")
			return "what n < 0 should return", nil
		})))
		d, err := p.Decide(ctx, flagged)
		require.NoError(t, err)
		assert.True(t, d.NeedsClarification)
		assert.Contains(t, d.Reason, "(advisory: what n < 0 should return)")
	})

	t.Run("failure keeps heuristic", func(t *testing.T) {
		p := New(WithAdvisor(advisorFunc(func(context.Context, domain.Task, string) (string, error) {
			return "", testutil.ErrMockNetwork
		})))
		d, err := p.Decide(ctx, flagged)
		require.NoError(t, err)
		assert.True(t, d.NeedsClarification)
		assert.NotContains(t, d.Reason, "advisory")
	})

	t.Run("not consulted for clean tasks", func(t *testing.T) {
		called := false
		p := New(WithAdvisor(advisorFunc(func(context.Context, domain.Task, string) (string, error) {
			called = true
			return "x", nil
		})))
		d, err := p.Decide(ctx, clean)
		require.NoError(t, err)
		assert.False(t, d.NeedsClarification)
		assert.False(t, called)
	})
}

func TestLLMAdvisor(t *testing.T) {
	task := domain.Task{Name: "factorial", Description: "Compute the factorial of n."}

	t.Run("first non-empty line", func(t *testing.T) {
		a := NewLLMAdvisor(runnerFunc(func(_ context.Context, req *llm.Request) (*llm.Response, error) {
			assert.Contains(t, req.Prompt, "Task: factorial")
			assert.Contains(t, req.Prompt, "reason-x")
			return &llm.Response{Text: "\n  Negative n is unspecified.  \nExtra"}, nil
		}))
		got, err := a.Advise(context.Background(), task, "reason-x")
		require.NoError(t, err)
		assert.Equal(t, "Negative n is unspecified.", got)
	})

	t.Run("propagates runner error", func(t *testing.T) {
		a := NewLLMAdvisor(runnerFunc(func(context.Context, *llm.Request) (*llm.Response, error) {
			return nil, cferrors.ErrLLMUnavailable
		}))
		_, err := a.Advise(context.Background(), task, "r")
		require.ErrorIs(t, err, cferrors.ErrLLMUnavailable)
	})
}
