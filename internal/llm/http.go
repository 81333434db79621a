package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
	"github.com/mrz1836/clarifyflow/internal/logging"
)

// maxErrorBody caps how much of a failed response body ends up in an error.
const maxErrorBody = 512

// postJSON sends body to url and decodes a 2xx response into out.
// Non-2xx responses are reported with ErrLLMRequest and the provider's
// error message as extracted by errMessage.
func (b *clientBase) postJSON(ctx context.Context, url string, headers map[string]string, body, out any, errMessage func([]byte) string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	b.logger.Debug().
		Str("url", logging.FilterSensitiveValue(url)).
		Int("bytes", len(payload)).
		Msg("sending llm request")

	resp, err := b.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %s", cferrors.ErrLLMRequest, logging.FilterSensitiveValue(err.Error()))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", cferrors.ErrLLMRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errMessage(data)
		if msg == "" {
			msg = string(data)
			if len(msg) > maxErrorBody {
				msg = msg[:maxErrorBody]
			}
		}
		return fmt.Errorf("%w: status %d: %s", cferrors.ErrLLMRequest, resp.StatusCode, logging.FilterSensitiveValue(msg))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding response: %w", cferrors.ErrLLMRequest, err)
	}
	return nil
}
