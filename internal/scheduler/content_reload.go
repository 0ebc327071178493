package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/staticsite/internal/index"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
	"github.com/MrSnakeDoc/staticsite/internal/sources/content"
)

// ContentReloader reloads the content file into the index when it changes,
// so the preview server picks up edits without a restart. Changes are
// noticed through file system events, with polling as a fallback.
type ContentReloader struct {
	path          string
	index         *index.MemoryIndex
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}

	mu      sync.Mutex
	modTime time.Time // of the last successfully loaded file
}

// NewContentReloader creates a new content reloader
func NewContentReloader(
	path string,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *ContentReloader {
	return &ContentReloader{
		path:          path,
		index:         idx,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start records the file's current modification time and begins watching.
// A manual trigger reloads even when the file looks unchanged.
func (cr *ContentReloader) Start(ctx context.Context) error {
	if cr.interval <= 0 {
		return fmt.Errorf("reload interval must be > 0, got %v", cr.interval)
	}
	abs, err := filepath.Abs(cr.path)
	if err != nil {
		return fmt.Errorf("cannot watch content file: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("cannot watch content file: %w", err)
	}
	cr.mu.Lock()
	cr.modTime = info.ModTime()
	cr.mu.Unlock()

	// Editors often replace the file instead of writing it, so the
	// directory is watched rather than the file.
	var events <-chan fsnotify.Event
	var watchErrors <-chan error
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		if err = watcher.Add(filepath.Dir(abs)); err != nil {
			_ = watcher.Close()
			watcher = nil
		}
	}
	if watcher != nil {
		events, watchErrors = watcher.Events, watcher.Errors
	} else {
		cr.logger.Warn("file events unavailable, polling content file",
			logger.Duration("interval", cr.interval),
			logger.Error(err))
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer ticker.Stop()
		if watcher != nil {
			defer func() { _ = watcher.Close() }()
		}
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				if filepath.Clean(ev.Name) != abs || !(ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create)) {
					continue
				}
				// a partial write may not parse; the next event reloads again
				if err := cr.Reload(); err != nil {
					cr.logger.Warn("content file changed but did not load",
						logger.Error(err))
				}
			case err, ok := <-watchErrors:
				if !ok {
					watchErrors = nil
					continue
				}
				cr.logger.Warn("content watcher error", logger.Error(err))
			case <-ticker.C:
				cr.reloadIfChanged()
			case <-cr.manualTrigger:
				cr.logger.Info("manual reload triggered")
				if err := cr.Reload(); err != nil {
					cr.logger.Error("failed to reload content",
						logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (cr *ContentReloader) Stop() {
	close(cr.stopCh)
}

func (cr *ContentReloader) reloadIfChanged() {
	if _, err := cr.ReloadIfChanged(); err != nil {
		cr.logger.Error("failed to reload content",
			logger.Error(err))
	}
}

// ReloadIfChanged reloads when the file's modification time moved since
// the last successful load.
func (cr *ContentReloader) ReloadIfChanged() (bool, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	info, err := os.Stat(cr.path)
	if err != nil {
		return false, fmt.Errorf("failed to stat content file: %w", err)
	}
	if info.ModTime().Equal(cr.modTime) {
		return false, nil
	}
	if err := cr.reload(); err != nil {
		return false, err
	}
	return true, nil
}

// Reload parses the content file and swaps it into the index. Broken
// content leaves the index untouched.
func (cr *ContentReloader) Reload() error {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.reload()
}

func (cr *ContentReloader) reload() error {
	info, err := os.Stat(cr.path)
	if err != nil {
		return fmt.Errorf("failed to stat content file: %w", err)
	}
	c, err := content.LoadFile(cr.path)
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	cr.index.Update(c)
	cr.modTime = info.ModTime()

	cr.logger.Info("content reloaded",
		logger.String("file", cr.path),
		logger.Int("pages", len(c.Pages)),
		logger.Int("posts", len(c.Posts)))
	return nil
}
