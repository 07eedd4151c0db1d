package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout = 120 * time.Second
	retryBackoff   = 2 * time.Second
	maxErrorBody   = 512
)

// client is the JSON-over-HTTP plumbing for backends without a vendor SDK.
type client struct {
	backend string
	http    *http.Client
	retries int
	backoff time.Duration
}

func newClient(backend string, opts Options) client {
	return client{
		backend: backend,
		http:    &http.Client{Timeout: timeout(opts)},
		retries: retries(opts),
		backoff: retryBackoff,
	}
}

func timeout(opts Options) time.Duration {
	if opts.Timeout <= 0 {
		return defaultTimeout
	}
	return opts.Timeout
}

func retries(opts Options) int {
	if opts.Retries < 0 {
		return 0
	}
	return opts.Retries
}

// postJSON sends payload to url and decodes the JSON response into out.
// Transport errors, 429 and 5xx responses are retried; anything else fails
// immediately.
func (c client) postJSON(ctx context.Context, url string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &GenerationFailure{Backend: c.backend, Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		retry, err := c.do(ctx, url, headers, body, out)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return lastErr
}

func (c client) do(ctx context.Context, url string, headers map[string]string, body []byte, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, &GenerationFailure{Backend: c.backend, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return true, &GenerationFailure{Backend: c.backend, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, &GenerationFailure{Backend: c.backend, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return retry, &GenerationFailure{
			Backend: c.backend,
			Status:  resp.StatusCode,
			Err:     errors.New(truncate(strings.TrimSpace(string(data)), maxErrorBody)),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, &GenerationFailure{Backend: c.backend, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return false, nil
}

func emptyResponse(backend string) error {
	return &GenerationFailure{Backend: backend, Err: errors.New("response contained no text")}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func baseURL(configured, fallback string) string {
	value := strings.TrimSpace(configured)
	if value == "" {
		value = fallback
	}
	return strings.TrimRight(value, "/")
}
