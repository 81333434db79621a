package clarifier

import (
	"context"
	"errors"
	"strings"

	"github.com/mrz1836/clarifyflow/internal/domain"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

// DefaultAnswer is simulated when a task has no canned answer for a signal.
const DefaultAnswer = "Follow idiomatic Go conventions: return an error for invalid input."

// AnswerRequest is one question posed for a task.
type AnswerRequest struct {
	Question string
	// Signal is the ambiguity the question addresses, when known.
	Signal domain.Signal
}

// Answer is the reply to one question. An empty Text means unanswered.
type Answer struct {
	Text     string
	FromUser bool
}

// Answerer produces an answer for a question.
type Answerer interface {
	Answer(ctx context.Context, task domain.Task, req AnswerRequest) (Answer, error)
}

// SimulatedAnswerer replies with the task's canned resolution.
type SimulatedAnswerer struct{}

// Answer implements Answerer. It prefers the answer for the request's
// signal, then any canned answer the task carries, then DefaultAnswer.
func (SimulatedAnswerer) Answer(_ context.Context, task domain.Task, req AnswerRequest) (Answer, error) {
	if text := task.Answers[req.Signal]; text != "" {
		return Answer{Text: text}, nil
	}
	for _, sig := range []domain.Signal{domain.SignalNegativeInput, domain.SignalQuoting, domain.SignalVagueTerms} {
		if text := task.Answers[sig]; text != "" {
			return Answer{Text: text}, nil
		}
	}
	return Answer{Text: DefaultAnswer}, nil
}

// Prompter reads one free-text reply from a person.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
}

// InteractiveAnswerer asks a person through a Prompter.
type InteractiveAnswerer struct {
	prompter Prompter
}

// NewInteractiveAnswerer creates an answerer backed by p.
func NewInteractiveAnswerer(p Prompter) *InteractiveAnswerer {
	return &InteractiveAnswerer{prompter: p}
}

// Answer implements Answerer. Blank input leaves the question unanswered.
// A canceled prompt is reported as unanswered rather than as an error.
func (a *InteractiveAnswerer) Answer(ctx context.Context, task domain.Task, req AnswerRequest) (Answer, error) {
	text, err := a.prompter.Ask(ctx, "["+task.Name+"] "+req.Question)
	if errors.Is(err, cferrors.ErrMenuCanceled) {
		return Answer{}, nil
	}
	if err != nil {
		return Answer{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Answer{}, nil
	}
	return Answer{Text: text, FromUser: true}, nil
}
