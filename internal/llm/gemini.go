package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mrz1836/clarifyflow/internal/constants"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	clientBase
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
}

type geminiError struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGeminiClient creates a client. Empty BaseURL and Model use the defaults.
func NewGeminiClient(cfg ClientConfig, opts ...ClientOption) *GeminiClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.DefaultGeminiBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultGeminiModel
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &GeminiClient{clientBase: newClientBase(ProviderGemini, cfg, opts)}
}

// Complete implements Runner.
func (c *GeminiClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	callCtx, cancel, model, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var body geminiRequest
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	body.Contents = []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}}
	body.GenerationConfig.Temperature = req.Temperature

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.cfg.BaseURL, url.PathEscape(model), url.QueryEscape(c.cfg.APIKey))

	start := time.Now()
	var out geminiResponse
	if err := c.postJSON(callCtx, endpoint, nil, body, &out, geminiErrorMessage); err != nil {
		return nil, err
	}

	var text strings.Builder
	if len(out.Candidates) > 0 {
		for _, part := range out.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, fmt.Errorf("gemini: %w", cferrors.ErrLLMEmptyResponse)
	}

	resp := &Response{
		Text:       text.String(),
		Model:      out.ModelVersion,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if resp.Model == "" {
		resp.Model = model
	}
	c.logger.Debug().Str("model", resp.Model).Int64("duration_ms", resp.DurationMs).Msg("gemini completion")
	return resp, nil
}

func geminiErrorMessage(data []byte) string {
	var e geminiError
	if json.Unmarshal(data, &e) != nil {
		return ""
	}
	if e.Error.Status != "" && e.Error.Message != "" {
		return e.Error.Status + ": " + e.Error.Message
	}
	return e.Error.Message
}
