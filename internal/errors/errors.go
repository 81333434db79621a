// Package errors provides centralized error handling for clarifyflow.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrInvalidTask indicates a task definition cannot be planned,
	// typically because its description is empty.
	ErrInvalidTask = errors.New("invalid task")

	// ErrUnknownTask indicates a task name that is not present in the registry
	// or has no code template.
	ErrUnknownTask = errors.New("unknown task")

	// ErrDuplicateTask indicates two registry entries share a name.
	ErrDuplicateTask = errors.New("duplicate task")

	// ErrKnowledgeBase indicates the knowledge base file could not be read,
	// parsed or written.
	ErrKnowledgeBase = errors.New("knowledge base unavailable")

	// ErrGenerationFallback indicates the configured code generation strategy
	// failed and the deterministic template was used instead.
	ErrGenerationFallback = errors.New("generation fell back to template")

	// ErrVerificationFailure indicates a generated artifact could not be loaded
	// or its entry point could not be resolved.
	ErrVerificationFailure = errors.New("verification failure")

	// ErrInvalidTransition indicates a task run attempted an illegal lifecycle step.
	ErrInvalidTransition = errors.New("invalid run state transition")

	// ErrLLMUnavailable indicates an LLM strategy is enabled but has no API key.
	ErrLLMUnavailable = errors.New("llm provider unavailable")

	// ErrLLMRequest indicates the LLM HTTP request failed or returned a non-2xx status.
	ErrLLMRequest = errors.New("llm request failed")

	// ErrLLMEmptyResponse indicates the LLM returned no usable content.
	ErrLLMEmptyResponse = errors.New("llm returned empty response")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidLLM indicates an invalid LLM configuration value.
	ErrConfigInvalidLLM = errors.New("invalid LLM configuration")

	// ErrConfigInvalidKB indicates an invalid knowledge base configuration value.
	ErrConfigInvalidKB = errors.New("invalid knowledge base configuration")

	// ErrInvalidDuration indicates that a duration value is invalid.
	ErrInvalidDuration = errors.New("invalid duration format")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrLockTimeout indicates a file lock could not be acquired within the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrMenuCanceled indicates the user canceled an interactive prompt.
	ErrMenuCanceled = errors.New("prompt canceled by user")

	// ErrInteractiveRequired indicates an interactive terminal is needed.
	ErrInteractiveRequired = errors.New("interactive terminal required")

	// ErrJSONErrorOutput indicates that an error has already been output as JSON.
	// Commands should silence cobra's error printing when this is returned.
	ErrJSONErrorOutput = errors.New("error output as JSON")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
// Exit code 2 is reserved for invalid input such as unknown task names.
type ExitCode2Error struct {
	Err error
}

// Error returns the underlying error message.
func (e *ExitCode2Error) Error() string {
	if e.Err == nil {
		return "invalid input"
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// NewExitCode2Error wraps err so the CLI exits with status 2.
func NewExitCode2Error(err error) error {
	return &ExitCode2Error{Err: err}
}

// IsExitCode2Error reports whether err carries an ExitCode2Error.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
