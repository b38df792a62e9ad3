// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across pipeline stages.
package httputil

import (
	"context"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

// TimeoutRetryDelay is the fixed pause before retrying a timed-out
// request. Tests override this to avoid real sleeps.
var TimeoutRetryDelay = 2 * time.Second

const (
	defaultMaxRetries = 5

	// maxTimeoutRetries bounds retries of timed-out requests. Slow
	// third-party endpoints (OpenAlex in particular) recover often
	// enough that one extra attempt is worth it, two is the ceiling.
	maxTimeoutRetries = 2
)

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests) with exponential backoff, and on request timeout with a fixed
// delay up to maxTimeoutRetries attempts.
//
// The 429 backoff starts at RetryBaseDelay and doubles each attempt. When
// maxRetries is 0 the default (5) is used. On each 429 the response body
// is drained and closed before sleeping. If the context is cancelled
// during a backoff wait the function returns ctx.Err(). After exhausting
// retries the last 429 response is returned so the caller can inspect it;
// after exhausting timeout retries the last error is returned.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	timeouts := 0
	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			if !isTimeout(err) || timeouts >= maxTimeoutRetries {
				return nil, err
			}
			timeouts++
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(TimeoutRetryDelay):
			}
			continue
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Exhausted retries: return the 429 response as-is.
		if attempt >= maxRetries {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// isTimeout reports whether err is a network timeout. Context deadline
// expiry counts: the per-request deadline set by http.Client.Timeout
// surfaces that way.
func isTimeout(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
