// Package verifier runs a task's test cases against generated Go source.
//
// Each artifact is loaded into its own yaegi interpreter, so nothing one
// artifact defines is visible to another. Failures never abort a run: a
// case that panics, returns an error or produces the wrong value is
// recorded as failed and the next case runs.
package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/rs/zerolog"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/mrz1836/clarifyflow/internal/domain"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

// DefaultCaseTimeout bounds a single call into generated code.
const DefaultCaseTimeout = 5 * time.Second

//nolint:gochecknoglobals // reflect type constant
var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Verifier evaluates generated artifacts.
type Verifier struct {
	caseTimeout time.Duration
	logger      zerolog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithCaseTimeout overrides DefaultCaseTimeout.
func WithCaseTimeout(d time.Duration) Option {
	return func(v *Verifier) {
		if d > 0 {
			v.caseTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(v *Verifier) { v.logger = l }
}

// New creates a Verifier.
func New(opts ...Option) *Verifier {
	v := &Verifier{caseTimeout: DefaultCaseTimeout, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With().Str("component", "verifier").Logger()
	return v
}

// Run executes every case of task against artifact, in order.
func (v *Verifier) Run(ctx context.Context, artifact domain.GeneratedArtifact, task domain.Task) domain.TestRunResult {
	result := domain.TestRunResult{Results: make([]domain.CaseResult, 0, len(task.Cases))}

	fn, err := load(ctx, artifact.Source, task.Function)
	if err != nil {
		v.logger.Warn().Err(err).Str("task", task.Name).Str("variant", string(artifact.Variant)).Msg("artifact failed to load")
		detail := "load error: " + err.Error()
		for _, tc := range task.Cases {
			result.Add(domain.CaseResult{Name: tc.Name, Detail: detail})
		}
		return result
	}

	for _, tc := range task.Cases {
		cr := v.runCase(ctx, fn, tc)
		if !cr.Passed {
			v.logger.Debug().
				Err(fmt.Errorf("%s: %w", cr.Detail, cferrors.ErrVerificationFailure)).
				Str("case", tc.Name).
				Str("variant", string(artifact.Variant)).
				Msg("case failed")
		}
		result.Add(cr)
	}
	return result
}

// load interprets src in a fresh interpreter and returns the named function
// from package solution.
func load(ctx context.Context, src, function string) (fn reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("interpreter panic: %v", r)
		}
	}()

	i := interp.New(interp.Options{})
	if err = i.Use(stdlib.Symbols); err != nil {
		return reflect.Value{}, fmt.Errorf("load stdlib symbols: %w", err)
	}
	if _, err = i.EvalWithContext(ctx, src); err != nil {
		return reflect.Value{}, err
	}

	fn, err = i.EvalWithContext(ctx, "solution."+function)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("function %s not found: %w", function, err)
	}
	if fn.Kind() != reflect.Func {
		return reflect.Value{}, fmt.Errorf("solution.%s is a %s, not a function", function, fn.Kind())
	}
	return fn, nil
}

type outcome struct {
	value any
	err   error
}

func (v *Verifier) runCase(ctx context.Context, fn reflect.Value, tc domain.TestCase) domain.CaseResult {
	cr := domain.CaseResult{Name: tc.Name}

	args, err := convertArgs(fn.Type(), tc.Input)
	if err != nil {
		cr.Detail = "invalid input: " + err.Error()
		return cr
	}

	out := v.call(ctx, fn, args)
	switch {
	case tc.ExpectError && out.err != nil:
		cr.Passed = true
	case tc.ExpectError:
		cr.Detail = fmt.Sprintf("expected an error, got=%s args=%s", encode(out.value), encode(tc.Input))
	case out.err != nil:
		cr.Detail = "exception: " + out.err.Error()
	default:
		equal, cmpErr := compare(tc.Expected, out.value, tc.Compare)
		if cmpErr != nil {
			cr.Detail = "exception: " + cmpErr.Error()
			break
		}
		if !equal {
			cr.Detail = fmt.Sprintf("expected=%s got=%s args=%s", encode(tc.Expected), encode(out.value), encode(tc.Input))
			break
		}
		cr.Passed = true
	}
	return cr
}

// call invokes fn on its own goroutine so a runaway case can be abandoned
// once the timeout or ctx fires.
func (v *Verifier) call(ctx context.Context, fn reflect.Value, args []reflect.Value) outcome {
	ctx, cancel := context.WithTimeout(ctx, v.caseTimeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()

		var outs []reflect.Value
		if fn.Type().IsVariadic() {
			outs = fn.CallSlice(args)
		} else {
			outs = fn.Call(args)
		}
		done <- split(outs)
	}()

	select {
	case out := <-done:
		return out
	case <-ctx.Done():
		return outcome{err: fmt.Errorf("call abandoned: %w", ctx.Err())}
	}
}

// split separates a trailing error result from the value. Multiple
// non-error results are returned as a slice.
func split(outs []reflect.Value) outcome {
	if n := len(outs); n > 0 && outs[n-1].Type().Implements(errorType) {
		last := outs[n-1]
		outs = outs[:n-1]
		if !last.IsNil() {
			err, _ := last.Interface().(error)
			if err == nil {
				err = fmt.Errorf("%v", last.Interface())
			}
			return outcome{err: err}
		}
	}

	switch len(outs) {
	case 0:
		return outcome{}
	case 1:
		return outcome{value: outs[0].Interface()}
	default:
		values := make([]any, len(outs))
		for i, o := range outs {
			values[i] = o.Interface()
		}
		return outcome{value: values}
	}
}

// convertArgs maps registry values onto the parameter types of fnType by
// round-tripping each value through JSON.
func convertArgs(fnType reflect.Type, input []any) ([]reflect.Value, error) {
	if len(input) != fnType.NumIn() {
		return nil, fmt.Errorf("function takes %d arguments, case has %d", fnType.NumIn(), len(input))
	}

	args := make([]reflect.Value, len(input))
	for i, raw := range input {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		ptr := reflect.New(fnType.In(i))
		if err := json.Unmarshal(data, ptr.Interface()); err != nil {
			return nil, fmt.Errorf("argument %d as %s: %w", i, fnType.In(i), err)
		}
		args[i] = ptr.Elem()
	}
	return args, nil
}

func encode(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
