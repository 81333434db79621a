// Package orchestrator runs every selected task through planning,
// clarification, generation and verification, and compares the baseline
// result with the clarify-first result.
//
// Each task moves through
//
//	planned → clarified | skip_clarify → baseline_verified → clarified_verified → reported
//
// Failures are contained per task: an invalid or unknown task is reported
// and skipped, and a broken knowledge base degrades to running without it.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/clarifyflow/internal/clarifier"
	"github.com/mrz1836/clarifyflow/internal/clock"
	"github.com/mrz1836/clarifyflow/internal/domain"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
	"github.com/mrz1836/clarifyflow/internal/metrics"
)

// Planner decides whether a task needs clarification.
type Planner interface {
	Decide(ctx context.Context, task domain.Task) (domain.PlannerDecision, error)
}

// Clarifier resolves clarifications for a flagged task.
type Clarifier interface {
	Resolve(ctx context.Context, task domain.Task, decision domain.PlannerDecision, opts clarifier.Options) (domain.ClarificationRecord, error)
}

// Coder generates source for a task.
type Coder interface {
	Generate(ctx context.Context, task domain.Task, clarifications domain.Clarifications) (domain.GeneratedArtifact, error)
}

// Verifier runs a task's cases against an artifact.
type Verifier interface {
	Run(ctx context.Context, artifact domain.GeneratedArtifact, task domain.Task) domain.TestRunResult
}

// Reporter receives the human-readable side of a run. tui.Output satisfies it.
type Reporter interface {
	Info(msg string)
	Warning(msg string)
	Case(task string, variant domain.Variant, result domain.CaseResult)
}

// Options adjust a run.
type Options struct {
	// Clarify is passed to every resolution. NoKB is set per task on
	// knowledge base failure.
	Clarify clarifier.Options

	// Flags is copied into the summary.
	Flags domain.FeatureFlags
}

// Orchestrator wires the pipeline together.
type Orchestrator struct {
	planner   Planner
	clarifier Clarifier
	coder     Coder
	verifier  Verifier
	out       Reporter
	metrics   metrics.Recorder
	clock     clock.Clock
	logger    zerolog.Logger
	opts      Options
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithReporter sets where PASS/FAIL lines and warnings go.
func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) { o.out = r }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Recorder) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock sets the clock used for the summary timestamp.
func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithOptions sets the run options.
func WithOptions(opts Options) Option {
	return func(o *Orchestrator) { o.opts = opts }
}

// New creates an Orchestrator.
func New(p Planner, c Clarifier, cd Coder, v Verifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		planner:   p,
		clarifier: c,
		coder:     cd,
		verifier:  v,
		out:       nopReporter{},
		metrics:   metrics.Nop{},
		clock:     clock.RealClock{},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With().Str("component", "orchestrator").Logger()
	return o
}

// Run processes tasks in order and returns the summary. Per-task failures
// are reported and skipped; only context cancellation and internal
// lifecycle errors abort the run.
func (o *Orchestrator) Run(ctx context.Context, tasks []domain.Task) (domain.Summary, error) {
	runID := uuid.NewString()
	logger := o.logger.With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	logger.Info().Int("tasks", len(tasks)).Msg("run started")
	start := time.Now()

	summary := domain.Summary{
		GeneratedAt:  o.clock.Now(),
		FeatureFlags: o.opts.Flags,
		Runs:         make([]domain.RunReport, 0, len(tasks)),
	}

	for _, task := range tasks {
		report, err := o.runTask(ctx, task, logger)
		switch {
		case err == nil:
			summary.Runs = append(summary.Runs, report)
			o.metrics.RecordTask(task.Name, metrics.OutcomeReported)
		case errors.Is(err, cferrors.ErrInvalidTask), errors.Is(err, cferrors.ErrUnknownTask):
			logger.Warn().Err(err).Str("task", task.Name).Msg("task skipped")
			o.out.Warning(fmt.Sprintf("skipping %s: %v", task.Name, err))
			o.metrics.RecordTask(task.Name, metrics.OutcomeSkipped)
		default:
			return summary, fmt.Errorf("run %s: %w", task.Name, err)
		}
	}

	logger.Info().
		Int("reported", len(summary.Runs)).
		Dur("duration", time.Since(start)).
		Msg("run finished")
	return summary, nil
}

func (o *Orchestrator) runTask(ctx context.Context, task domain.Task, logger zerolog.Logger) (domain.RunReport, error) {
	run := newTaskRun(task, logger)

	decision, err := o.planner.Decide(ctx, task)
	if err != nil {
		return domain.RunReport{}, err
	}
	if err := run.advance(ctx, domain.RunStatePlanned, o.clock.Now(), decision.Reason); err != nil {
		return domain.RunReport{}, err
	}

	if decision.NeedsClarification {
		o.out.Info(fmt.Sprintf("%s: clarification needed (%s)", task.Name, decision.Reason))
	} else {
		o.out.Info(task.Name + ": no ambiguity detected")
	}

	rec, err := o.clarify(ctx, task, decision)
	if err != nil {
		return domain.RunReport{}, err
	}
	next, reason := domain.RunStateSkipClarify, "no clarifications"
	if !rec.IsEmpty() {
		next, reason = domain.RunStateClarified, string(rec.Provenance)
		o.metrics.RecordClarification(rec.Provenance)
	}
	if err := run.advance(ctx, next, o.clock.Now(), reason); err != nil {
		return domain.RunReport{}, err
	}

	baseline, err := o.generateAndVerify(ctx, task, domain.VariantBaseline, nil)
	if err != nil {
		return domain.RunReport{}, err
	}
	if err := run.advance(ctx, domain.RunStateBaselineVerified, o.clock.Now(), ratio(baseline)); err != nil {
		return domain.RunReport{}, err
	}

	clarified := baseline
	if !rec.IsEmpty() {
		clarified, err = o.generateAndVerify(ctx, task, domain.VariantClarified, rec.QA)
		if err != nil {
			return domain.RunReport{}, err
		}
	}
	if err := run.advance(ctx, domain.RunStateClarifiedVerified, o.clock.Now(), ratio(clarified)); err != nil {
		return domain.RunReport{}, err
	}

	report := domain.RunReport{
		Task:           task.Name,
		Description:    task.Description,
		Decision:       decision,
		Clarifications: rec.QA,
		Baseline:       baseline,
		Clarified:      clarified,
		Improvement:    clarified.Passed - baseline.Passed,
	}
	o.metrics.RecordImprovement(task.Name, report.Improvement)

	if err := run.advance(ctx, domain.RunStateReported, o.clock.Now(), ""); err != nil {
		return domain.RunReport{}, err
	}
	run.logger.Info().
		Int("baseline", baseline.Passed).
		Int("clarified", clarified.Passed).
		Int("total", baseline.Total).
		Int("improvement", report.Improvement).
		Msg("task reported")
	return report, nil
}

// clarify resolves clarifications, retrying without the knowledge base
// when it cannot be used.
func (o *Orchestrator) clarify(ctx context.Context, task domain.Task, decision domain.PlannerDecision) (domain.ClarificationRecord, error) {
	opts := o.opts.Clarify
	rec, err := o.clarifier.Resolve(ctx, task, decision, opts)
	if err == nil || !errors.Is(err, cferrors.ErrKnowledgeBase) || opts.NoKB {
		return rec, err
	}

	zerolog.Ctx(ctx).Warn().Err(err).Str("task", task.Name).Msg("knowledge base unavailable, retrying without it")
	o.out.Warning(fmt.Sprintf("%s: knowledge base unavailable, continuing without it: %v", task.Name, err))

	opts.NoKB = true
	return o.clarifier.Resolve(ctx, task, decision, opts)
}

func (o *Orchestrator) generateAndVerify(ctx context.Context, task domain.Task, variant domain.Variant, qa domain.Clarifications) (domain.TestRunResult, error) {
	artifact, err := o.coder.Generate(ctx, task, qa)
	if err != nil {
		return domain.TestRunResult{}, err
	}
	if artifact.Variant == "" {
		artifact.Variant = variant
	}

	start := time.Now()
	result := o.verifier.Run(ctx, artifact, task)
	o.metrics.RecordVerification(variant, result, time.Since(start))

	for _, c := range result.Results {
		o.out.Case(task.Name, variant, c)
	}
	return result, nil
}

func ratio(r domain.TestRunResult) string {
	return fmt.Sprintf("%d/%d passed", r.Passed, r.Total)
}

type nopReporter struct{}

func (nopReporter) Info(string) {}

func (nopReporter) Warning(string) {}

func (nopReporter) Case(string, domain.Variant, domain.CaseResult) {}
