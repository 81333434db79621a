// Package coder turns a task and its clarifications into Go source.
//
// Every known task has a baseline and a clarified template. An optional
// Strategy, typically an LLM, is tried first; when it fails the template
// is used and the fallback is logged.
package coder

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/mrz1836/clarifyflow/internal/domain"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

//go:embed templates/*.go.tmpl
var templateFS embed.FS

//nolint:gochecknoglobals // parsed once from embedded files
var templates = template.Must(template.New("coder").Funcs(template.FuncMap{
	"oneline": func(s string) string { return strings.Join(strings.Fields(s), " ") },
}).ParseFS(templateFS, "templates/*.go.tmpl"))

// Strategy generates source for a task. Implementations return an error
// for anything they cannot produce so the caller can fall back.
type Strategy interface {
	Generate(ctx context.Context, task domain.Task, clarifications domain.Clarifications) (string, error)
}

// FallbackHook observes every strategy failure.
type FallbackHook func(task string, variant domain.Variant, err error)

// Coder generates artifacts.
type Coder struct {
	strategy   Strategy
	onFallback FallbackHook
	logger     zerolog.Logger
}

// Option configures a Coder.
type Option func(*Coder)

// WithStrategy enables a generation strategy tried before the templates.
func WithStrategy(s Strategy) Option {
	return func(c *Coder) { c.strategy = s }
}

// WithFallbackHook registers a callback for strategy failures.
func WithFallbackHook(h FallbackHook) Option {
	return func(c *Coder) { c.onFallback = h }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Coder) { c.logger = l }
}

// New creates a Coder.
func New(opts ...Option) *Coder {
	c := &Coder{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "coder").Logger()
	return c
}

// HasTemplates reports whether both template variants exist for task.
func HasTemplates(task string) bool {
	return templates.Lookup(templateName(task, domain.VariantBaseline)) != nil &&
		templates.Lookup(templateName(task, domain.VariantClarified)) != nil
}

// Generate returns the artifact for task. Non-empty clarifications select
// the clarified variant. Only an unknown task is an error.
func (c *Coder) Generate(ctx context.Context, task domain.Task, clarifications domain.Clarifications) (domain.GeneratedArtifact, error) {
	if !HasTemplates(task.Name) {
		return domain.GeneratedArtifact{}, fmt.Errorf("no code template for %q: %w", task.Name, cferrors.ErrUnknownTask)
	}

	variant := domain.VariantBaseline
	if clarifications.Len() > 0 {
		variant = domain.VariantClarified
	}

	if c.strategy != nil {
		src, err := c.strategy.Generate(ctx, task, clarifications)
		if err == nil {
			c.logger.Debug().Str("task", task.Name).Str("variant", string(variant)).Msg("generated with strategy")
			return domain.GeneratedArtifact{Task: task.Name, Variant: variant, Source: src, Strategy: domain.StrategyLLM}, nil
		}

		c.logger.Info().
			Err(fmt.Errorf("%w: %w", cferrors.ErrGenerationFallback, err)).
			Str("task", task.Name).
			Str("variant", string(variant)).
			Msg("code strategy failed, using template")
		if c.onFallback != nil {
			c.onFallback(task.Name, variant, err)
		}
	}

	src, err := Render(task.Name, variant, clarifications)
	if err != nil {
		return domain.GeneratedArtifact{}, err
	}
	return domain.GeneratedArtifact{Task: task.Name, Variant: variant, Source: src, Strategy: domain.StrategyTemplate}, nil
}

type headerData struct {
	Task           string
	Variant        domain.Variant
	Clarifications domain.Clarifications
}

// Render executes the header and the task template for variant.
func Render(task string, variant domain.Variant, clarifications domain.Clarifications) (string, error) {
	body := templates.Lookup(templateName(task, variant))
	if body == nil {
		return "", fmt.Errorf("no %s template for %q: %w", variant, task, cferrors.ErrUnknownTask)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "header.go.tmpl", headerData{Task: task, Variant: variant, Clarifications: clarifications}); err != nil {
		return "", fmt.Errorf("render header for %s: %w", task, err)
	}
	buf.WriteString("\n")
	if err := body.Execute(&buf, nil); err != nil {
		return "", fmt.Errorf("render %s template for %s: %w", variant, task, err)
	}
	return buf.String(), nil
}

func templateName(task string, variant domain.Variant) string {
	return fmt.Sprintf("%s_%s.go.tmpl", task, variant)
}
