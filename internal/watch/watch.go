// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch re-runs the conversion whenever the source file changes.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/markets-geojson/pkg/types"
)

// DefaultDebounce is used when WatchConfig.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

// Run watches path and calls run after each burst of writes to it, once
// the file has been quiet for the debounce interval. With cfg.RunOnStart
// the first run happens as soon as the watch is registered, so no change
// made during that run is missed. Runs never overlap. A failed run is
// reported on w and watching continues. Run returns nil when ctx is
// cancelled.
func Run(ctx context.Context, path string, cfg types.WatchConfig, run func(context.Context) error, w io.Writer) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so atomic replacements of the file are seen.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fmt.Fprintf(w, "watching %s\n", abs)

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		initial = cfg.RunOnStart
	)
	if initial {
		timer = time.NewTimer(0)
		fire = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if p, _ := filepath.Abs(event.Name); p != abs {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if initial {
				initial = false
				fmt.Fprintf(w, "initial run: %s\n", abs)
			} else {
				fmt.Fprintf(w, "source changed: %s\n", abs)
			}
			if err := run(ctx); err != nil {
				fmt.Fprintf(w, "run failed: %v\n", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(w, "watch error: %v\n", err)
		}
	}
}
