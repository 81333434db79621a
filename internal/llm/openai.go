package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mrz1836/clarifyflow/internal/constants"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
)

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	clientBase
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

type openAIError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewOpenAIClient creates a client. Empty BaseURL and Model use the defaults.
func NewOpenAIClient(cfg ClientConfig, opts ...ClientOption) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.DefaultOpenAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultOpenAIModel
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &OpenAIClient{clientBase: newClientBase(ProviderOpenAI, cfg, opts)}
}

// Complete implements Runner.
func (c *OpenAIClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	callCtx, cancel, model, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	defer cancel()

	body := openAIRequest{Model: model, Temperature: req.Temperature}
	if req.System != "" {
		body.Messages = append(body.Messages, openAIMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, openAIMessage{Role: "user", Content: req.Prompt})

	start := time.Now()
	var out openAIResponse
	err = c.postJSON(callCtx, c.cfg.BaseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + c.cfg.APIKey},
		body, &out, openAIErrorMessage)
	if err != nil {
		return nil, err
	}

	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("openai: %w", cferrors.ErrLLMEmptyResponse)
	}

	resp := &Response{
		Text:       out.Choices[0].Message.Content,
		Model:      out.Model,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if resp.Model == "" {
		resp.Model = model
	}
	c.logger.Debug().Str("model", resp.Model).Int64("duration_ms", resp.DurationMs).Msg("openai completion")
	return resp, nil
}

func openAIErrorMessage(data []byte) string {
	var e openAIError
	if json.Unmarshal(data, &e) != nil {
		return ""
	}
	return e.Error.Message
}
