package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

type testError struct {
	msg string
}

func (e testError) Error() string {
	return e.msg
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	all := []error{
		cferrors.ErrInvalidTask,
		cferrors.ErrUnknownTask,
		cferrors.ErrDuplicateTask,
		cferrors.ErrKnowledgeBase,
		cferrors.ErrGenerationFallback,
		cferrors.ErrVerificationFailure,
		cferrors.ErrInvalidTransition,
		cferrors.ErrLLMUnavailable,
		cferrors.ErrLLMRequest,
		cferrors.ErrLLMEmptyResponse,
		cferrors.ErrLockTimeout,
	}

	for i, a := range all {
		require.NotEmpty(t, a.Error())
		for j, b := range all {
			if i != j {
				assert.NotErrorIs(t, a, b, "%v should not match %v", a, b)
			}
		}
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, cferrors.Wrap(nil, "context"))
		assert.NoError(t, cferrors.Wrapf(nil, "context %d", 1))
	})

	t.Run("preserves chain", func(t *testing.T) {
		err := cferrors.Wrap(cferrors.ErrKnowledgeBase, "load kb")
		require.ErrorIs(t, err, cferrors.ErrKnowledgeBase)
		assert.Equal(t, "load kb: knowledge base unavailable", err.Error())
	})

	t.Run("formats context", func(t *testing.T) {
		err := cferrors.Wrapf(cferrors.ErrUnknownTask, "task %q", "nope")
		require.ErrorIs(t, err, cferrors.ErrUnknownTask)
		assert.Equal(t, `task "nope": unknown task`, err.Error())
	})
}

func TestExitCode2Error(t *testing.T) {
	inner := fmt.Errorf("select: %w", cferrors.ErrUnknownTask)
	err := cferrors.NewExitCode2Error(inner)

	assert.True(t, cferrors.IsExitCode2Error(err))
	assert.True(t, cferrors.IsExitCode2Error(fmt.Errorf("outer: %w", err)))
	assert.False(t, cferrors.IsExitCode2Error(inner))
	require.ErrorIs(t, err, cferrors.ErrUnknownTask)
	assert.Equal(t, inner.Error(), err.Error())

	var empty cferrors.ExitCode2Error
	assert.Equal(t, "invalid input", empty.Error())
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantMsg    string
		wantAction bool
	}{
		{"nil", nil, "", false},
		{"unknown task", cferrors.ErrUnknownTask, "The requested task is not registered.", true},
		{"wrapped kb", cferrors.Wrap(cferrors.ErrKnowledgeBase, "parse"), "The knowledge base file could not be used.", true},
		{"canceled has no action", cferrors.ErrMenuCanceled, "Prompt was canceled.", false},
		{"unrecognized", testError{msg: "boom"}, "boom", false},
		{"plain", errors.New("plain failure"), "plain failure", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantMsg, cferrors.UserMessage(tc.err))
			msg, action := cferrors.Actionable(tc.err)
			assert.Equal(t, tc.wantMsg, msg)
			assert.Equal(t, tc.wantAction, action != "")
		})
	}
}
