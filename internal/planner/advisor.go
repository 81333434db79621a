package planner

import (
	"context"
	"strings"

	"github.com/mrz1836/clarifyflow/internal/domain"
	"github.com/mrz1836/clarifyflow/internal/llm"
	"github.com/mrz1836/clarifyflow/internal/prompts"
)

// LLMAdvisor asks an LLM which detail the description leaves open.
type LLMAdvisor struct {
	runner llm.Runner
	opts   []llm.RequestOption
}

// NewLLMAdvisor creates an advisor backed by runner.
func NewLLMAdvisor(runner llm.Runner, opts ...llm.RequestOption) *LLMAdvisor {
	return &LLMAdvisor{runner: runner, opts: opts}
}

// Advise returns the first non-empty line of the model's answer.
func (a *LLMAdvisor) Advise(ctx context.Context, task domain.Task, reason string) (string, error) {
	prompt, err := prompts.Render(prompts.PlannerAdvisory, prompts.AdvisoryData{
		TaskName:    task.Name,
		Description: task.Description,
		Reason:      reason,
	})
	if err != nil {
		return "", err
	}

	resp, err := a.runner.Complete(ctx, llm.NewRequest(prompt, a.opts...))
	if err != nil {
		return "", err
	}

	for _, line := range strings.Split(resp.Text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", nil
}
