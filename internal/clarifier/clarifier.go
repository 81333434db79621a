// Package clarifier resolves clarification answers for ambiguous tasks.
//
// Resolution stops at the first step that produces answers: the knowledge
// base cache, then a question source paired with an answerer. New answers
// are written to the knowledge base immediately.
package clarifier

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrz1836/clarifyflow/internal/clock"
	"github.com/mrz1836/clarifyflow/internal/domain"
	"github.com/mrz1836/clarifyflow/internal/kb"
)

// Store is the knowledge base surface the clarifier needs.
type Store interface {
	Get(ctx context.Context, task, description string) (domain.ClarificationRecord, bool, error)
	Put(ctx context.Context, task, description string, qa domain.Clarifications, provenance domain.Provenance) (domain.ClarificationRecord, error)
}

// Options adjust a single resolution.
type Options struct {
	// Force asks questions even when the planner did not flag the task.
	Force bool
	// Interactive collects answers from a person instead of simulating them.
	Interactive bool
	// Refresh skips the cache and merges new answers into the stored record.
	Refresh bool
	// NoKB neither reads nor writes the knowledge base.
	NoKB bool
}

// Clarifier runs the resolution pipeline.
type Clarifier struct {
	store       Store
	questions   QuestionSource
	simulated   Answerer
	interactive Answerer
	clock       clock.Clock
	logger      zerolog.Logger
}

// Option configures a Clarifier.
type Option func(*Clarifier)

// WithQuestionSource replaces HeuristicQuestions.
func WithQuestionSource(q QuestionSource) Option {
	return func(c *Clarifier) { c.questions = q }
}

// WithInteractiveAnswerer sets the answerer used when Options.Interactive is set.
func WithInteractiveAnswerer(a Answerer) Option {
	return func(c *Clarifier) { c.interactive = a }
}

// WithSimulatedAnswerer replaces SimulatedAnswerer.
func WithSimulatedAnswerer(a Answerer) Option {
	return func(c *Clarifier) { c.simulated = a }
}

// WithClock sets the clock stamped on records that are not persisted.
func WithClock(cl clock.Clock) Option {
	return func(c *Clarifier) { c.clock = cl }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Clarifier) { c.logger = l }
}

// New creates a Clarifier backed by store.
func New(store Store, opts ...Option) *Clarifier {
	c := &Clarifier{
		store:     store,
		questions: HeuristicQuestions{},
		simulated: SimulatedAnswerer{},
		clock:     clock.RealClock{},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "clarifier").Logger()
	return c
}

// Resolve returns the clarifications for task. Unflagged tasks get an
// empty record without touching the knowledge base unless opts.Force is
// set. Knowledge base failures are returned wrapping ErrKnowledgeBase so
// the caller can retry with opts.NoKB.
func (c *Clarifier) Resolve(ctx context.Context, task domain.Task, decision domain.PlannerDecision, opts Options) (domain.ClarificationRecord, error) {
	if !decision.NeedsClarification && !opts.Force {
		return domain.ClarificationRecord{}, nil
	}

	log := c.logger.With().Str("task", task.Name).Logger()

	if !opts.NoKB && !opts.Refresh {
		rec, ok, err := c.store.Get(ctx, task.Name, task.Description)
		if err != nil {
			return domain.ClarificationRecord{}, fmt.Errorf("clarify %s: %w", task.Name, err)
		}
		if ok && !rec.IsEmpty() {
			rec.Origin = rec.Provenance
			rec.Provenance = domain.ProvenanceCache
			log.Debug().Str("origin", string(rec.Origin)).Msg("reusing cached clarifications")
			return rec, nil
		}
	}

	questions, err := c.questions.ProposeQuestions(ctx, task, decision.Signals)
	if err != nil {
		log.Info().Err(err).Msg("question source failed, using heuristics")
		questions, _ = HeuristicQuestions{}.ProposeQuestions(ctx, task, decision.Signals)
	}

	answerer := c.simulated
	if opts.Interactive {
		if c.interactive != nil {
			answerer = c.interactive
		} else {
			log.Warn().Msg("interactive answers requested but no prompter is configured, simulating")
		}
	}

	qa, fromUser, err := c.collect(ctx, task, decision.Signals, questions.Items, answerer)
	if err != nil {
		return domain.ClarificationRecord{}, err
	}
	if qa.Len() == 0 {
		log.Info().Int("questions", len(questions.Items)).Msg("no clarification answers collected")
		return domain.ClarificationRecord{}, nil
	}

	provenance := questions.Source
	if fromUser {
		provenance = domain.ProvenanceUser
	}

	if opts.NoKB {
		return domain.ClarificationRecord{
			QA:                 qa,
			Provenance:         provenance,
			Origin:             provenance,
			UpdatedAt:          c.clock.Now(),
			DescriptionPreview: kb.Preview(task.Description),
		}, nil
	}

	rec, err := c.store.Put(ctx, task.Name, task.Description, qa, provenance)
	if err != nil {
		return domain.ClarificationRecord{}, fmt.Errorf("clarify %s: %w", task.Name, err)
	}
	rec.Origin = rec.Provenance

	log.Info().
		Str("provenance", string(provenance)).
		Int("answers", qa.Len()).
		Msg("clarifications resolved")
	return rec, nil
}

// collect asks every question in order. The i-th question is tied to the
// i-th signal; extra questions inherit the first signal.
func (c *Clarifier) collect(ctx context.Context, task domain.Task, signals []domain.Signal, questions []string, answerer Answerer) (domain.Clarifications, bool, error) {
	var (
		qa       domain.Clarifications
		fromUser bool
	)
	for i, q := range questions {
		var sig domain.Signal
		switch {
		case i < len(signals):
			sig = signals[i]
		case len(signals) > 0:
			sig = signals[0]
		}

		ans, err := answerer.Answer(ctx, task, AnswerRequest{Question: q, Signal: sig})
		if err != nil {
			if ctx.Err() != nil {
				return nil, false, ctx.Err()
			}
			c.logger.Warn().Err(err).Str("task", task.Name).Str("question", q).Msg("failed to collect answer")
			continue
		}
		if ans.Text == "" {
			continue
		}
		qa.Set(q, ans.Text)
		fromUser = fromUser || ans.FromUser
	}
	return qa, fromUser, nil
}
