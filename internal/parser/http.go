package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"timetabler/internal/timetable"
)

// retryBackoff is the delay before the first retry; it doubles per attempt.
var retryBackoff = 500 * time.Millisecond

// Request describes one JSON POST to a provider API.
type Request struct {
	Provider   string
	Endpoint   string
	Headers    map[string]string
	Body       interface{}
	MaxRetries int
}

// PostJSON sends req and returns the response body of a 200 answer. 5xx
// answers and transport errors are retried up to MaxRetries times; 429
// becomes a *RateLimitError and is not retried here.
func PostJSON(ctx context.Context, client *http.Client, req Request) ([]byte, error) {
	bodyBytes, err := json.Marshal(req.Body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var lastErr error
	delay := retryBackoff
	for attempt := 0; attempt <= req.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		body, err := postOnce(ctx, client, req, bodyBytes)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return nil, err
		}
		var rlErr *RateLimitError
		if errors.As(err, &rlErr) || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func postOnce(ctx context.Context, client *http.Client, req Request, bodyBytes []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling %s API: %w", req.Provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Provider: req.Provider, StatusCode: resp.StatusCode, Body: string(respBody)}
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, NewRateLimitError(req.Provider, statusErr, retryAfter)
		}
		return nil, statusErr
	}
	return respBody, nil
}

// ExtractJSON validates the model's text answer and returns it as raw JSON,
// stripping markdown code fences when present.
func ExtractJSON(text string) ([]byte, error) {
	cleaned, err := timetable.CleanJSON([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, Truncate(text, 500))
	}
	return cleaned, nil
}

// Timeout returns the client timeout for a provider config value in seconds.
func Timeout(secs int) time.Duration {
	if secs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(secs) * time.Second
}
