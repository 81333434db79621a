package clarifier

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/clarifyflow/internal/constants"
	"github.com/mrz1836/clarifyflow/internal/domain"
	"github.com/mrz1836/clarifyflow/internal/llm"
	"github.com/mrz1836/clarifyflow/internal/prompts"
)

// GenericQuestion is asked when clarification is forced on a task with no
// detected ambiguity.
const GenericQuestion = "Are there any edge cases the implementation should handle?"

//nolint:gochecknoglobals // one canonical question per signal
var canonicalQuestions = map[domain.Signal]string{
	domain.SignalNegativeInput: "How should negative or out-of-range inputs be handled?",
	domain.SignalQuoting:       "How should quoted fields and separators inside quotes be handled?",
	domain.SignalVagueTerms:    "Which concrete rules should replace the vague wording in the description?",
}

// Questions is a proposed question set and where it came from.
type Questions struct {
	Items  []string
	Source domain.Provenance
}

// QuestionSource proposes clarification questions for a task.
type QuestionSource interface {
	ProposeQuestions(ctx context.Context, task domain.Task, signals []domain.Signal) (Questions, error)
}

// HeuristicQuestions asks exactly one canonical question per signal.
type HeuristicQuestions struct{}

// ProposeQuestions implements QuestionSource. It never fails.
func (HeuristicQuestions) ProposeQuestions(_ context.Context, _ domain.Task, signals []domain.Signal) (Questions, error) {
	q := Questions{Source: domain.ProvenanceMock}
	for _, s := range signals {
		if text, ok := canonicalQuestions[s]; ok {
			q.Items = append(q.Items, text)
		}
	}
	if len(q.Items) == 0 {
		q.Items = []string{GenericQuestion}
	}
	return q, nil
}

// LLMQuestions asks an LLM for questions and falls back to another
// source when the call fails or yields nothing usable.
type LLMQuestions struct {
	runner   llm.Runner
	fallback QuestionSource
	max      int
	opts     []llm.RequestOption
	logger   zerolog.Logger
}

// NewLLMQuestions creates an LLM-backed source with HeuristicQuestions as fallback.
func NewLLMQuestions(runner llm.Runner, logger zerolog.Logger, opts ...llm.RequestOption) *LLMQuestions {
	return &LLMQuestions{
		runner:   runner,
		fallback: HeuristicQuestions{},
		max:      constants.MaxLLMQuestions,
		opts:     opts,
		logger:   logger.With().Str("component", "clarifier").Logger(),
	}
}

// ProposeQuestions implements QuestionSource.
func (s *LLMQuestions) ProposeQuestions(ctx context.Context, task domain.Task, signals []domain.Signal) (Questions, error) {
	names := make([]string, len(signals))
	for i, sig := range signals {
		names[i] = sig.String()
	}

	prompt, err := prompts.Render(prompts.ClarifierQuestions, prompts.QuestionsData{
		TaskName:     task.Name,
		Description:  task.Description,
		Signals:      names,
		MaxQuestions: s.max,
	})
	if err != nil {
		return s.fallback.ProposeQuestions(ctx, task, signals)
	}

	resp, err := s.runner.Complete(ctx, llm.NewRequest(prompt, s.opts...))
	if err != nil {
		s.logger.Info().Err(err).Str("task", task.Name).Msg("question generation fell back to heuristics")
		return s.fallback.ProposeQuestions(ctx, task, signals)
	}

	items := ParseQuestions(resp.Text, s.max)
	if len(items) == 0 {
		s.logger.Info().Str("task", task.Name).Msg("llm proposed no questions, using heuristics")
		return s.fallback.ProposeQuestions(ctx, task, signals)
	}
	return Questions{Items: items, Source: domain.ProvenanceLLM}, nil
}

//nolint:gochecknoglobals // compiled once
var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)]|Q\d*[:.])\s*`)

// ParseQuestions splits model output into at most limit questions,
// dropping list markers, blank lines and case-insensitive duplicates.
func ParseQuestions(text string, limit int) []string {
	var (
		out  []string
		seen = map[string]bool{}
	)
	for _, line := range strings.Split(text, "\n") {
		q := strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if q == "" {
			continue
		}
		key := strings.ToLower(q)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
