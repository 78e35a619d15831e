// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Use a tiny base delay so tests finish quickly.
	RetryBaseDelay = 1 * time.Millisecond
}

// statusSequence serves the given statuses in order, then 200.
func statusSequence(t *testing.T, calls *int32, statuses ...int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(atomic.AddInt32(calls, 1))
		if n <= len(statuses) {
			w.WriteHeader(statuses[n-1])
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestRetrierDo(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		maxRetries int
		wantStatus int
		wantCalls  int32
	}{
		{"immediate success", nil, 4, http.StatusOK, 1},
		{"retries 429 then 200", []int{429, 429}, 4, http.StatusOK, 3},
		{"retries 503 then 200", []int{503}, 4, http.StatusOK, 2},
		{"exhausts retries", []int{429, 429, 429, 429, 429}, 3, http.StatusTooManyRequests, 4},
		{"default max retries", []int{429, 429, 429, 429, 429, 429, 429}, 0, http.StatusTooManyRequests, 5},
		{"non-retryable error passes through", []int{500}, 4, http.StatusInternalServerError, 1},
		{"not found passes through", []int{404}, 4, http.StatusNotFound, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := statusSequence(t, &calls, tt.statuses...)

			req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
			require.NoError(t, err)

			r := Retrier{Client: ts.Client(), MaxRetries: tt.maxRetries}
			resp, err := r.Do(context.Background(), req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestRetrierLogsRetries(t *testing.T) {
	var calls int32
	ts := statusSequence(t, &calls, 429)

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	var log strings.Builder
	resp, err := Retrier{Client: ts.Client(), Log: &log}.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Contains(t, log.String(), "HTTP 429, retrying in")
	assert.Contains(t, log.String(), "(attempt 1/4)")
}

func TestRetrierContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	// Use a longer base delay so the context cancels during the wait.
	old := RetryBaseDelay
	RetryBaseDelay = 500 * time.Millisecond
	defer func() { RetryBaseDelay = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	_, err = Retrier{Client: ts.Client()}.Do(ctx, req)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		name       string
		retryAfter string
		attempt    int
		want       time.Duration
	}{
		{"exponential first attempt", "", 0, RetryBaseDelay},
		{"exponential third attempt", "", 2, 4 * RetryBaseDelay},
		{"retry-after seconds", "3", 5, 3 * time.Second},
		{"retry-after date ignored", "Wed, 21 Oct 2026 07:28:00 GMT", 1, 2 * RetryBaseDelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.retryAfter != "" {
				resp.Header.Set("Retry-After", tt.retryAfter)
			}
			assert.Equal(t, tt.want, backoff(resp, tt.attempt))
		})
	}
}
