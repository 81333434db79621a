// Package testutil provides testing utilities for clarifyflow.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockPrompt simulates a terminal prompt failing mid-answer.
	ErrMockPrompt = errors.New("prompt failed")

	// ErrMockQuestionSource simulates a question source that cannot propose questions.
	ErrMockQuestionSource = errors.New("question source failed")

	// ErrMockProvider simulates an LLM provider failure.
	ErrMockProvider = errors.New("provider error")

	// ErrMockNetwork indicates a mock network error occurred (used in tests).
	ErrMockNetwork = errors.New("network error")
)
