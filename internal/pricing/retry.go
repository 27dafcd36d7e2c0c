package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	maxAttempts = 3
	backoffBase = 500 * time.Millisecond
)

// doWithRetry runs fn up to maxAttempts times with exponential backoff
// (base 500ms, doubling). Each attempt gets its own timeout-bounded context
// so a hung call is aborted rather than blocking the batch. A rate-limited
// attempt waits 2^attempt seconds before the next try.
func doWithRetry(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	attempt := 0
	backoff := retry.WithMaxRetries(maxAttempts-1, retry.NewExponential(backoffBase))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		err := fn(callCtx)
		if err == nil {
			return nil
		}

		var rateLimited *RateLimitError
		if errors.As(err, &rateLimited) && attempt < maxAttempts {
			wait := time.Duration(1<<attempt) * time.Second
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		return retry.RetryableError(err)
	})
}

// fetchJSON performs a GET with retry and decodes the JSON response into v.
// A 429 response is surfaced as a RateLimitError so the retry layer can apply
// the rate-limit wait.
func fetchJSON(ctx context.Context, client *http.Client, timeout time.Duration, url, sourceName string, headers map[string]string, v interface{}) error {
	return doWithRetry(ctx, timeout, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		for k, val := range headers {
			req.Header.Set(k, val)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusTooManyRequests {
			return &RateLimitError{Source: sourceName}
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
}
