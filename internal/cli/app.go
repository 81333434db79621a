// Package cli provides the command-line interface for clarifyflow.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrz1836/clarifyflow/internal/clarifier"
	"github.com/mrz1836/clarifyflow/internal/coder"
	"github.com/mrz1836/clarifyflow/internal/config"
	"github.com/mrz1836/clarifyflow/internal/domain"
	"github.com/mrz1836/clarifyflow/internal/kb"
	"github.com/mrz1836/clarifyflow/internal/llm"
	"github.com/mrz1836/clarifyflow/internal/metrics"
	"github.com/mrz1836/clarifyflow/internal/orchestrator"
	"github.com/mrz1836/clarifyflow/internal/planner"
	"github.com/mrz1836/clarifyflow/internal/verifier"
)

// loadConfig resolves configuration and applies the --kb override.
func loadConfig(ctx context.Context, flags *GlobalFlags) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if flags.KB != "" {
		cfg.KB.Path = flags.KB
	}
	return cfg, nil
}

// openStore opens the knowledge base selected by cfg.
func openStore(cfg *config.Config, logger zerolog.Logger) (*kb.Store, error) {
	path, err := config.KBPath(cfg)
	if err != nil {
		return nil, err
	}
	opts := []kb.Option{kb.WithLogger(logger)}
	if cfg.KB.LockTimeout > 0 {
		opts = append(opts, kb.WithLockTimeout(cfg.KB.LockTimeout))
	}
	return kb.NewStore(path, opts...), nil
}

// pipeline holds everything a run needs besides the task list.
type pipeline struct {
	store        *kb.Store
	orchestrator *orchestrator.Orchestrator
}

// pipelineDeps are the run-scoped inputs to buildPipeline.
type pipelineDeps struct {
	cfg      *config.Config
	opts     orchestrator.Options
	reporter orchestrator.Reporter
	metrics  metrics.Recorder
	prompter clarifier.Prompter
	warn     func(string)
	logger   zerolog.Logger
}

// buildPipeline wires the knowledge base, LLM strategies and pipeline stages
// from configuration. Enabled LLM strategies without an API key are still
// wired: their calls fail fast and the stage falls back to heuristics or
// templates.
func buildPipeline(d pipelineDeps) (*pipeline, error) {
	store, err := openStore(d.cfg, d.logger)
	if err != nil {
		return nil, err
	}

	features := d.opts.Flags

	plannerOpts := []planner.Option{planner.WithLogger(d.logger)}
	if features.OpenAIPlanner {
		runner, err := newRunner(llm.ProviderOpenAI, d.cfg.LLM.OpenAI, d)
		if err != nil {
			return nil, err
		}
		plannerOpts = append(plannerOpts, planner.WithAdvisor(planner.NewLLMAdvisor(runner)))
	}

	clarifierOpts := []clarifier.Option{clarifier.WithLogger(d.logger)}
	if features.GeminiClarifier {
		runner, err := newRunner(llm.ProviderGemini, d.cfg.LLM.Gemini, d)
		if err != nil {
			return nil, err
		}
		clarifierOpts = append(clarifierOpts, clarifier.WithQuestionSource(clarifier.NewLLMQuestions(runner, d.logger)))
	}
	if d.prompter != nil {
		clarifierOpts = append(clarifierOpts, clarifier.WithInteractiveAnswerer(clarifier.NewInteractiveAnswerer(d.prompter)))
	}

	rec := d.metrics
	coderOpts := []coder.Option{
		coder.WithLogger(d.logger),
		coder.WithFallbackHook(func(_ string, variant domain.Variant, _ error) {
			rec.RecordFallback(variant)
		}),
	}
	if features.OpenAICoder {
		runner, err := newRunner(llm.ProviderOpenAI, d.cfg.LLM.OpenAI, d)
		if err != nil {
			return nil, err
		}
		coderOpts = append(coderOpts, coder.WithStrategy(coder.NewLLMStrategy(runner)))
	}

	verifierOpts := []verifier.Option{verifier.WithLogger(d.logger)}
	if d.cfg.Verifier.CaseTimeout > 0 {
		verifierOpts = append(verifierOpts, verifier.WithCaseTimeout(d.cfg.Verifier.CaseTimeout))
	}

	orch := orchestrator.New(
		planner.New(plannerOpts...),
		clarifier.New(store, clarifierOpts...),
		coder.New(coderOpts...),
		verifier.New(verifierOpts...),
		orchestrator.WithReporter(d.reporter),
		orchestrator.WithMetrics(rec),
		orchestrator.WithLogger(d.logger),
		orchestrator.WithOptions(d.opts),
	)

	return &pipeline{store: store, orchestrator: orch}, nil
}

// newRunner builds an LLM client for provider and warns when its key is missing.
func newRunner(provider llm.Provider, pc config.ProviderConfig, d pipelineDeps) (llm.Runner, error) {
	key := pc.APIKey()
	if key == "" && d.warn != nil {
		d.warn(fmt.Sprintf("%s is enabled but %s is not set; falling back to the built-in strategy", provider, pc.APIKeyEnv))
	}
	return llm.New(provider, llm.ClientConfig{
		APIKey:  key,
		BaseURL: pc.BaseURL,
		Model:   pc.Model,
		Timeout: pc.Timeout,
	}, llm.WithLogger(d.logger))
}

