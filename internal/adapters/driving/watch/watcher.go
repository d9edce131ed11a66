// Package watch routes job event files dropped into a directory.
//
// Each *.json file holds one job event. Files are moved to processed/
// once routed and to failed/ when the event is rejected, so a file is
// routed at most once per drop. Producers should write files elsewhere
// and rename them into the directory; a partially written file that does
// not parse yet is left in place and retried on its next write event.
package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driving"
	"github.com/KKogaa/extracto-storage-service/internal/logger"
)

// Subdirectories receiving handled files.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// Watcher feeds dropped event files to a JobRouter.
type Watcher struct {
	dir     string
	router  driving.JobRouter
	limiter *rate.Limiter
}

// New creates a watcher on dir. A nil limiter means unlimited.
func New(dir string, router driving.JobRouter, limiter *rate.Limiter) *Watcher {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Watcher{dir: dir, router: router, limiter: limiter}
}

// Run processes files already present, then watches for new ones until
// ctx is cancelled. It returns early only when the store is unavailable
// or the watch itself fails.
func (w *Watcher) Run(ctx context.Context) error {
	for _, sub := range []string{ProcessedDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(w.dir, sub), 0o755); err != nil {
			return fmt.Errorf("creating %s dir: %w", sub, err)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Info("watching %s for job events", w.dir)

	backlog, err := w.pending()
	if err != nil {
		return err
	}
	for _, path := range backlog {
		if err := w.process(ctx, path); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			path := w.handleFsEvent(event)
			if path == "" {
				continue
			}
			if err := w.process(ctx, path); err != nil {
				return err
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// handleFsEvent returns the event file to process, or "" when the event
// is not a new or rewritten event file.
func (w *Watcher) handleFsEvent(event fsnotify.Event) string {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return ""
	}
	if !isEventFile(event.Name) {
		return ""
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	return event.Name
}

// pending lists event files already in the directory, oldest name first.
func (w *Watcher) pending() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", w.dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && isEventFile(e.Name()) {
			paths = append(paths, filepath.Join(w.dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func isEventFile(path string) bool {
	base := filepath.Base(path)
	return !strings.HasPrefix(base, ".") && strings.EqualFold(filepath.Ext(base), ".json")
}

// process routes one file. Only failures that must stop intake are
// returned.
func (w *Watcher) process(ctx context.Context, path string) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return nil
	}

	result, err := w.ProcessFile(ctx, path)
	switch {
	case err == nil:
		logger.Debug("routed %s: %d extracted", filepath.Base(path), result.Extracted)
		w.move(path, ProcessedDir)
	case errors.Is(err, os.ErrNotExist):
		// already handled by an earlier event
	case errors.As(err, new(*json.SyntaxError)), errors.Is(err, errIncomplete):
		logger.Debug("%s not complete yet: %v", filepath.Base(path), err)
	case errors.Is(err, domain.ErrInvalidInput):
		logger.Warn("rejected %s: %v", filepath.Base(path), err)
		w.move(path, FailedDir)
	case errors.Is(err, domain.ErrStoreUnavailable):
		return err
	default:
		logger.Error("routing %s: %v", filepath.Base(path), err)
		w.move(path, FailedDir)
	}
	return nil
}

var errIncomplete = errors.New("incomplete event file")

// ProcessFile reads one event file and routes it. A missing job ID is
// taken from the file name.
func (w *Watcher) ProcessFile(ctx context.Context, path string) (*domain.RouteResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errIncomplete
	}
	var event domain.JobEvent
	if err := json.Unmarshal(data, &event); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if event.JobID == "" {
		event.JobID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return w.router.Handle(ctx, event)
}

func (w *Watcher) move(path, sub string) {
	dest := filepath.Join(w.dir, sub, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("moving %s to %s: %v", filepath.Base(path), sub, err)
	}
}
