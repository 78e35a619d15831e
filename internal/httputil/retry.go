// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the retrying HTTP client used to pull open-data
// exports.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 4

// Retrier re-sends a request while the server answers 429 (Too Many
// Requests) or 503 (Service Unavailable). Open-data portals return both
// when a dataset export is being regenerated.
type Retrier struct {
	// Client sends the requests. Nil uses http.DefaultClient.
	Client *http.Client

	// MaxRetries bounds the retries after the first attempt (0 = default 4).
	MaxRetries int

	// Log receives one line per retry. Nil discards them.
	Log io.Writer
}

// Do executes req, retrying on 429 and 503. The wait honours a
// Retry-After header given in seconds; otherwise it starts at
// RetryBaseDelay and doubles each attempt. On each retry the response
// body is drained and closed before sleeping. If ctx is cancelled during a
// wait Do returns ctx.Err(). After exhausting retries the last response is
// returned so the caller can inspect it.
func (r Retrier) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	maxRetries := r.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	log := r.Log
	if log == nil {
		log = io.Discard
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := backoff(resp, attempt)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		fmt.Fprintf(log, "HTTP %d, retrying in %v (attempt %d/%d)\n", resp.StatusCode, wait, attempt+1, maxRetries)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

func backoff(resp *http.Response, attempt int) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return RetryBaseDelay << attempt
}
