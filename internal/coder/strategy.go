package coder

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrz1836/clarifyflow/internal/domain"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
	"github.com/mrz1836/clarifyflow/internal/llm"
	"github.com/mrz1836/clarifyflow/internal/prompts"
)

// LLMStrategy asks an LLM to write the solution.
type LLMStrategy struct {
	runner llm.Runner
	opts   []llm.RequestOption
}

// NewLLMStrategy creates a strategy backed by runner.
func NewLLMStrategy(runner llm.Runner, opts ...llm.RequestOption) *LLMStrategy {
	return &LLMStrategy{runner: runner, opts: opts}
}

// Generate implements Strategy. The reply is used as-is once markdown
// fences are removed.
func (s *LLMStrategy) Generate(ctx context.Context, task domain.Task, clarifications domain.Clarifications) (string, error) {
	pairs := make([]prompts.QAPair, 0, clarifications.Len())
	for _, qa := range clarifications {
		pairs = append(pairs, prompts.QAPair{Question: qa.Question, Answer: qa.Answer})
	}

	prompt, err := prompts.Render(prompts.CoderGenerate, prompts.GenerateData{
		TaskName:       task.Name,
		Description:    task.Description,
		Function:       task.Function,
		Signature:      task.Signature,
		Clarifications: pairs,
	})
	if err != nil {
		return "", err
	}

	resp, err := s.runner.Complete(ctx, llm.NewRequest(prompt, s.opts...))
	if err != nil {
		return "", err
	}

	src := StripCodeFences(resp.Text)
	if strings.TrimSpace(src) == "" {
		return "", fmt.Errorf("code for %s: %w", task.Name, cferrors.ErrLLMEmptyResponse)
	}
	return src, nil
}

// StripCodeFences returns the body of the first fenced block in text, or
// text unchanged when it has no fence.
func StripCodeFences(text string) string {
	start := strings.Index(text, "```")
	if start < 0 {
		return strings.TrimSpace(text) + "\n"
	}
	rest := text[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	} else {
		rest = ""
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest) + "\n"
}
