// Package planner decides whether a task description is ambiguous enough
// to ask clarifying questions before generating code.
package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/clarifyflow/internal/domain"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

// Advisor is an optional second opinion consulted only for flagged tasks.
type Advisor interface {
	Advise(ctx context.Context, task domain.Task, reason string) (string, error)
}

// Planner runs the heuristic ambiguity check.
type Planner struct {
	advisor Advisor
	logger  zerolog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithAdvisor enables the planning advisory.
func WithAdvisor(a Advisor) Option {
	return func(p *Planner) { p.advisor = a }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Planner) { p.logger = l }
}

// New creates a Planner.
func New(opts ...Option) *Planner {
	p := &Planner{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With().Str("component", "planner").Logger()
	return p
}

// Decide flags the task when any ambiguity signal matches. The reason
// names the first matched signal. An advisory failure never changes the
// heuristic verdict.
func (p *Planner) Decide(ctx context.Context, task domain.Task) (domain.PlannerDecision, error) {
	if strings.TrimSpace(task.Description) == "" {
		return domain.PlannerDecision{}, fmt.Errorf("task %q has an empty description: %w", task.Name, cferrors.ErrInvalidTask)
	}

	signals, reason := Detect(task.Description)
	if len(signals) == 0 {
		p.logger.Debug().Str("task", task.Name).Msg("no ambiguity detected")
		return domain.PlannerDecision{}, nil
	}

	decision := domain.PlannerDecision{
		NeedsClarification: true,
		Reason:             reason,
		Signals:            signals,
	}

	if p.advisor != nil {
		advice, err := p.advisor.Advise(ctx, task, reason)
		switch {
		case err != nil:
			p.logger.Debug().Err(err).Str("task", task.Name).Msg("planning advisory unavailable")
		case advice != "":
			decision.Reason = fmt.Sprintf("%s (advisory: %s)", reason, advice)
		}
	}

	p.logger.Debug().
		Str("task", task.Name).
		Str("reason", decision.Reason).
		Int("signals", len(signals)).
		Msg("task needs clarification")
	return decision, nil
}
