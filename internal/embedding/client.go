package embedding

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks recall-ai/internal/embedding Embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// MaxRetries is the total number of attempts made for retryable failures.
	MaxRetries = 3
	// MaxInputChars bounds a single request to the model's context limit,
	// independent of chunking, in case a caller bypasses the chunker.
	MaxInputChars = 32000

	baseDelay      = 1 * time.Second
	defaultTimeout = 30 * time.Second
)

// Error is returned when embedding generation fails unrecoverably.
// Status is the last HTTP status observed, or 0 for network-level failures.
type Error struct {
	Status   int
	Attempts int
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("embedding failed after %d attempt(s) (status %d): %s", e.Attempts, e.Status, e.Message)
}

// Embedder generates a vector embedding for a text.
// A nil vector with a nil error means the input was empty and there is
// nothing to store.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client calls a local Ollama-style inference service to generate embeddings.
// It is constructed once at the composition root and shared; it holds no
// request-specific state, so concurrent use is safe.
type Client struct {
	baseURL string
	model   string
	client  *http.Client

	// delay is the backoff base, overridable in tests.
	delay time.Duration
}

// NewClient creates an embedding client for the inference service at baseURL.
// A zero timeout falls back to 30 seconds.
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
		delay:   baseDelay,
	}
}

// embedRequest is the inference service request payload.
type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embedResponse is the inference service response payload.
type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed generates an embedding for text.
// Empty or whitespace-only input returns (nil, nil) without calling the
// service. Input longer than MaxInputChars is truncated. Server-side (5xx)
// and network failures are retried up to MaxRetries times with exponential
// backoff (1s, 2s, 4s); client-side (4xx) failures fail immediately since
// retrying a malformed request cannot succeed.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	if len(text) > MaxInputChars {
		text = text[:MaxInputChars]
	}

	body, err := json.Marshal(embedRequest{Model: c.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	var lastStatus int
	var lastMsg string

	for attempt := 0; attempt < MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.delay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		vec, status, err := c.doRequest(ctx, body)
		if err == nil {
			return vec, nil
		}
		// A dead caller context ends the retry loop; a per-request timeout
		// from the HTTP client does not, it is a retryable network failure.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastStatus = status
		lastMsg = err.Error()

		// 4xx means the request itself is bad; no retry can fix it.
		if status >= 400 && status < 500 {
			return nil, &Error{Status: status, Attempts: attempt + 1, Message: lastMsg}
		}
	}

	return nil, &Error{Status: lastStatus, Attempts: MaxRetries, Message: lastMsg}
}

// doRequest performs one call to the inference service.
// The returned status is 0 for network-level failures.
func (c *Client) doRequest(ctx context.Context, body []byte) ([]float32, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, resp.StatusCode, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(embedResp.Embedding) == 0 {
		return nil, resp.StatusCode, fmt.Errorf("empty embedding in response")
	}

	vec := make([]float32, len(embedResp.Embedding))
	for i, v := range embedResp.Embedding {
		vec[i] = float32(v)
	}
	return vec, resp.StatusCode, nil
}
