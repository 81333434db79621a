// Package domain provides the shared types for the clarifyflow pipeline.
package domain

// CompareMode selects how a test case compares actual and expected output.
type CompareMode string

const (
	// CompareExact requires deep equality after JSON normalization.
	CompareExact CompareMode = "exact"

	// CompareUnordered treats top-level slices as multisets.
	CompareUnordered CompareMode = "unordered"
)

// IsValid reports whether m is a known comparison rule. The empty value means exact.
func (m CompareMode) IsValid() bool {
	switch m {
	case "", CompareExact, CompareUnordered:
		return true
	}
	return false
}

// Task is a registered programming task. Tasks are immutable once the
// registry has been built.
type Task struct {
	// Name identifies the task and prefixes its test case names.
	Name string `json:"name" yaml:"name"`

	// Description is the natural-language requirement the planner inspects.
	Description string `json:"description" yaml:"description"`

	// Function is the exported Go identifier a generated artifact must define.
	Function string `json:"function" yaml:"function"`

	// Signature is the Go function signature shown to code generators.
	Signature string `json:"signature" yaml:"signature"`

	// Cases are evaluated in order.
	Cases []TestCase `json:"cases" yaml:"cases"`

	// Answers holds the simulated clarification answer for each ambiguity signal.
	Answers map[Signal]string `json:"answers,omitempty" yaml:"answers"`
}

// TestCase is one input/expected pair for a task.
type TestCase struct {
	Name        string      `json:"name" yaml:"-"`
	Input       []any       `json:"input" yaml:"input"`
	Expected    any         `json:"expected,omitempty" yaml:"expected"`
	ExpectError bool        `json:"expect_error,omitempty" yaml:"expect_error"`
	Compare     CompareMode `json:"compare,omitempty" yaml:"compare"`
}
