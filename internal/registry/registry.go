// Package registry holds the static set of clarifyflow tasks.
//
// The built-in tasks are embedded as YAML and parsed once at startup. A
// Registry is immutable after construction and is passed explicitly to
// the components that need it.
package registry

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/clarifyflow/internal/domain"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

//go:embed tasks.yaml
var builtinTasks []byte

type document struct {
	Tasks []domain.Task `yaml:"tasks"`
}

// Registry is an ordered, name-indexed set of tasks.
type Registry struct {
	tasks []domain.Task
	index map[string]int
}

// Default returns the registry of built-in tasks.
func Default() (*Registry, error) {
	return Load(builtinTasks)
}

// Load parses a YAML task document.
func Load(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse task registry: %w", err)
	}
	return New(doc.Tasks)
}

// New validates tasks and names their cases. Empty descriptions are
// accepted here; the planner rejects them per task.
func New(tasks []domain.Task) (*Registry, error) {
	r := &Registry{
		tasks: make([]domain.Task, 0, len(tasks)),
		index: make(map[string]int, len(tasks)),
	}

	for _, t := range tasks {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			return nil, fmt.Errorf("task without a name: %w", cferrors.ErrInvalidTask)
		}
		if _, exists := r.index[t.Name]; exists {
			return nil, fmt.Errorf("task %q: %w", t.Name, cferrors.ErrDuplicateTask)
		}
		if strings.TrimSpace(t.Function) == "" {
			return nil, fmt.Errorf("task %q has no function name: %w", t.Name, cferrors.ErrInvalidTask)
		}

		cases := make([]domain.TestCase, len(t.Cases))
		for i, c := range t.Cases {
			if !c.Compare.IsValid() {
				return nil, fmt.Errorf("task %q case %d: unknown compare mode %q: %w", t.Name, i+1, c.Compare, cferrors.ErrInvalidTask)
			}
			if c.Compare == "" {
				c.Compare = domain.CompareExact
			}
			c.Name = fmt.Sprintf("%s::case_%d", t.Name, i+1)
			cases[i] = c
		}
		t.Cases = cases

		r.index[t.Name] = len(r.tasks)
		r.tasks = append(r.tasks, t)
	}

	return r, nil
}

// All returns every task in registration order.
func (r *Registry) All() []domain.Task {
	out := make([]domain.Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// Names returns task names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.tasks))
	for i, t := range r.tasks {
		names[i] = t.Name
	}
	return names
}

// Get looks up a task by name.
func (r *Registry) Get(name string) (domain.Task, bool) {
	i, ok := r.index[name]
	if !ok {
		return domain.Task{}, false
	}
	return r.tasks[i], true
}

// Select resolves names in the requested order. No names selects every
// task. An unknown name fails the whole selection.
func (r *Registry) Select(names []string) ([]domain.Task, error) {
	if len(names) == 0 {
		return r.All(), nil
	}

	out := make([]domain.Task, 0, len(names))
	for _, name := range names {
		t, ok := r.Get(name)
		if !ok {
			return nil, fmt.Errorf("task %q (available: %s): %w", name, strings.Join(r.Names(), ", "), cferrors.ErrUnknownTask)
		}
		out = append(out, t)
	}
	return out, nil
}
