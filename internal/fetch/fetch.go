// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads the farmers market CSV export from the city's
// open-data portal.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pdiddy/markets-geojson/internal/httputil"
	"github.com/pdiddy/markets-geojson/pkg/types"
)

// Result describes a completed download.
type Result struct {
	Path  string
	Bytes int64
}

// Download fetches cfg.URL into cfg.DestPath. The body is streamed to a
// temp file in the destination directory and renamed into place only after
// a complete 200 response, so an interrupted download never replaces an
// existing source file.
func Download(ctx context.Context, client *http.Client, cfg types.FetchConfig, w io.Writer) (Result, error) {
	if cfg.URL == "" {
		return Result{}, fmt.Errorf("no source URL configured")
	}
	if cfg.DestPath == "" {
		return Result{}, fmt.Errorf("no destination path configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("creating request: %w", err)
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = types.DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/csv")
	if cfg.AppToken != "" {
		req.Header.Set("X-App-Token", cfg.AppToken)
	}

	retrier := httputil.Retrier{Client: client, MaxRetries: cfg.MaxRetries, Log: w}
	resp, err := retrier.Do(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("HTTP %d from %s", resp.StatusCode, cfg.URL)
	}

	dir := filepath.Dir(cfg.DestPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".fetch-*.tmp")
	if err != nil {
		return Result{}, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return Result{}, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return Result{}, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, cfg.DestPath); err != nil {
		os.Remove(tmpPath)
		return Result{}, fmt.Errorf("renaming temp file: %w", err)
	}

	fmt.Fprintf(w, "downloaded %s (%d bytes)\n", cfg.DestPath, n)
	return Result{Path: cfg.DestPath, Bytes: n}, nil
}
