package domain

import "time"

// Variant distinguishes the two generated artifacts per task.
type Variant string

const (
	VariantBaseline  Variant = "baseline"
	VariantClarified Variant = "clarified"
)

// Strategy records which code generator produced an artifact.
type Strategy string

const (
	StrategyTemplate Strategy = "template"
	StrategyLLM      Strategy = "llm"
)

// GeneratedArtifact is Go source produced for a task. It lives only
// between generation and verification.
type GeneratedArtifact struct {
	Task     string
	Variant  Variant
	Source   string
	Strategy Strategy
}

// CaseResult is the outcome of one test case.
type CaseResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// TestRunResult aggregates the case results for one artifact.
type TestRunResult struct {
	Passed  int          `json:"passed"`
	Total   int          `json:"total"`
	Results []CaseResult `json:"results"`
}

// Add appends a case result and updates the counters.
func (r *TestRunResult) Add(c CaseResult) {
	r.Results = append(r.Results, c)
	r.Total++
	if c.Passed {
		r.Passed++
	}
}

// RunReport compares the baseline and clarify-first runs for one task.
type RunReport struct {
	Task           string          `json:"task"`
	Description    string          `json:"description"`
	Decision       PlannerDecision `json:"planner_decision"`
	Clarifications Clarifications  `json:"clarifications"`
	Baseline       TestRunResult   `json:"baseline"`
	Clarified      TestRunResult   `json:"clarifyflow"`
	Improvement    int             `json:"improvement"`
}

// FeatureFlags toggles the optional LLM strategies and interactive answering.
type FeatureFlags struct {
	OpenAIPlanner      bool `json:"openai_planner"`
	GeminiClarifier    bool `json:"gemini_clarifier"`
	OpenAICoder        bool `json:"openai_coder"`
	InteractiveClarify bool `json:"interactive_clarify"`
}

// Summary is the top-level export of an orchestrator run.
type Summary struct {
	GeneratedAt time.Time `json:"generated_at"`
	FeatureFlags
	Runs []RunReport `json:"runs"`
}
