// Package llm provides the optional LLM backends used by the planner,
// clarifier and coder strategies.
//
// Both providers are called over plain HTTP with a single attempt per
// request. Callers treat any error as a signal to fall back to their
// deterministic path.
//
// IMPORTANT: This package may import internal/constants, internal/errors
// and internal/logging. It MUST NOT import internal/planner,
// internal/clarifier, internal/coder or internal/cli.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/clarifyflow/internal/constants"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

// Provider names an LLM backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Runner completes a single prompt.
type Runner interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// Request is one completion call.
type Request struct {
	System      string
	Prompt      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Response is the text a provider returned.
type Response struct {
	Text       string
	Model      string
	DurationMs int64
}

// RequestOption configures a Request.
type RequestOption func(*Request)

// NewRequest builds a request with the default timeout.
//
//	req := llm.NewRequest(prompt,
//	    llm.WithSystem("You write Go."),
//	    llm.WithTemperature(0),
//	)
func NewRequest(prompt string, opts ...RequestOption) *Request {
	req := &Request{
		Prompt:  prompt,
		Timeout: constants.DefaultLLMTimeout,
	}
	for _, opt := range opts {
		opt(req)
	}
	return req
}

// WithSystem sets the system instruction.
func WithSystem(system string) RequestOption {
	return func(r *Request) { r.System = system }
}

// WithModel overrides the client's configured model.
func WithModel(model string) RequestOption {
	return func(r *Request) { r.Model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) RequestOption {
	return func(r *Request) { r.Temperature = t }
}

// WithTimeout bounds the HTTP call. Zero keeps the default.
func WithTimeout(d time.Duration) RequestOption {
	return func(r *Request) {
		if d > 0 {
			r.Timeout = d
		}
	}
}

// ClientConfig holds the connection settings shared by both providers.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ClientOption configures a provider client.
type ClientOption func(*clientBase)

// WithHTTPClient replaces the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(b *clientBase) { b.http = c }
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(b *clientBase) { b.logger = l }
}

type clientBase struct {
	cfg    ClientConfig
	http   *http.Client
	logger zerolog.Logger
}

func newClientBase(provider Provider, cfg ClientConfig, opts []ClientOption) clientBase {
	b := clientBase{
		cfg:    cfg,
		http:   &http.Client{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	b.logger = b.logger.With().Str("component", "llm").Str("provider", string(provider)).Logger()
	return b
}

// prepare applies client defaults to req and checks credentials.
func (b *clientBase) prepare(ctx context.Context, req *Request) (context.Context, context.CancelFunc, string, error) {
	if b.cfg.APIKey == "" {
		return nil, nil, "", fmt.Errorf("no API key configured: %w", cferrors.ErrLLMUnavailable)
	}
	if req == nil || req.Prompt == "" {
		return nil, nil, "", fmt.Errorf("empty prompt: %w", cferrors.ErrLLMRequest)
	}

	model := req.Model
	if model == "" {
		model = b.cfg.Model
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = b.cfg.Timeout
	}
	if timeout <= 0 {
		timeout = constants.DefaultLLMTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	return callCtx, cancel, model, nil
}

// New builds the runner for provider.
func New(provider Provider, cfg ClientConfig, opts ...ClientOption) (Runner, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, opts...), nil
	case ProviderGemini:
		return NewGeminiClient(cfg, opts...), nil
	default:
		return nil, fmt.Errorf("unknown provider %q: %w", provider, cferrors.ErrConfigInvalidLLM)
	}
}
