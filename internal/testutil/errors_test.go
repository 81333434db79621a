package testutil

import (
	"errors"
	"testing"
)

// errMockWrapped is a static error for testing that non-wrapped errors don't match sentinels.
var errMockWrapped = errors.New("wrapped: network error")

func TestMockErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrMockPrompt", ErrMockPrompt, "prompt failed"},
		{"ErrMockQuestionSource", ErrMockQuestionSource, "question source failed"},
		{"ErrMockProvider", ErrMockProvider, "provider error"},
		{"ErrMockNetwork", ErrMockNetwork, "network error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.want {
				t.Errorf("%s.Error() = %q, want %q", tt.name, tt.err.Error(), tt.want)
			}
		})
	}
}

func TestMockErrorsAreDistinct(t *testing.T) {
	if errors.Is(errMockWrapped, ErrMockNetwork) {
		t.Error("an error with the same text must not match the sentinel")
	}
	if errors.Is(ErrMockPrompt, ErrMockProvider) {
		t.Error("sentinels must be distinct")
	}
}
