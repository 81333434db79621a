package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/clarifyflow/internal/domain"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

// Transition is one recorded lifecycle step.
type Transition struct {
	From   domain.RunState
	To     domain.RunState
	At     time.Time
	Reason string
}

// taskRun tracks one task through the lifecycle.
type taskRun struct {
	task        domain.Task
	state       domain.RunState
	transitions []Transition
	logger      zerolog.Logger
}

func newTaskRun(task domain.Task, logger zerolog.Logger) *taskRun {
	return &taskRun{
		task:   task,
		state:  domain.RunStatePending,
		logger: logger.With().Str("task", task.Name).Logger(),
	}
}

// advance validates and applies a transition.
func (r *taskRun) advance(ctx context.Context, to domain.RunState, at time.Time, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.state.CanTransition(to) {
		return fmt.Errorf("%w: cannot transition %s from %s to %s",
			cferrors.ErrInvalidTransition, r.task.Name, r.state, to)
	}

	r.transitions = append(r.transitions, Transition{From: r.state, To: to, At: at, Reason: reason})
	r.logger.Debug().
		Str("from", string(r.state)).
		Str("to", string(to)).
		Str("reason", reason).
		Msg("state transition")
	r.state = to
	return nil
}
