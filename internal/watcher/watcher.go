// Package watcher imports transcripts dropped into an inbox directory as
// notes.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventHandler processes one transcript file.
type EventHandler func(ctx context.Context, path string) error

// Watcher monitors an inbox directory for new .txt transcripts and hands
// each one to a handler, at most maxConcurrent at a time.
type Watcher struct {
	inboxDir  string
	handler   EventHandler
	watcher   *fsnotify.Watcher
	semaphore chan struct{}
	settle    time.Duration
	wg        sync.WaitGroup

	mu       sync.Mutex
	inFlight map[string]bool
}

// New creates a Watcher for inboxDir, creating the directory if needed.
func New(inboxDir string, handler EventHandler, maxConcurrent int) (*Watcher, error) {
	if err := os.MkdirAll(inboxDir, 0755); err != nil {
		return nil, fmt.Errorf("watcher: create inbox: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: create watcher: %w", err)
	}
	if err := fw.Add(inboxDir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watcher: add watch path: %w", err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}

	return &Watcher{
		inboxDir:  inboxDir,
		handler:   handler,
		watcher:   fw,
		semaphore: make(chan struct{}, maxConcurrent),
		settle:    500 * time.Millisecond,
		inFlight:  make(map[string]bool),
	}, nil
}

// Start imports transcripts already waiting in the inbox and then
// processes new ones until ctx is cancelled. In-flight handlers are
// waited for before it returns.
func (w *Watcher) Start(ctx context.Context) error {
	slog.Info("watching inbox", "dir", w.inboxDir, "max_concurrent", cap(w.semaphore))

	if err := w.scanExisting(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("waiting for in-flight imports")
			w.wg.Wait()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher: events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !isTranscriptFile(event.Name) {
				slog.Debug("ignoring inbox entry", "path", event.Name)
				continue
			}
			if err := w.dispatch(ctx, event.Name, w.settle); err != nil {
				w.wg.Wait()
				return err
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher: errors channel closed")
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// Stop closes the underlying file watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) scanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.inboxDir)
	if err != nil {
		return fmt.Errorf("watcher: read inbox: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !isTranscriptFile(e.Name()) {
			continue
		}
		if err := w.dispatch(ctx, filepath.Join(w.inboxDir, e.Name()), 0); err != nil {
			return err
		}
	}
	return nil
}

// dispatch runs the handler for path in a goroutine once a semaphore slot
// is free. A path already being handled is skipped.
func (w *Watcher) dispatch(ctx context.Context, path string, delay time.Duration) error {
	w.mu.Lock()
	if w.inFlight[path] {
		w.mu.Unlock()
		return nil
	}
	w.inFlight[path] = true
	w.mu.Unlock()

	select {
	case w.semaphore <- struct{}{}:
	case <-ctx.Done():
		w.release(path)
		return ctx.Err()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.semaphore }()
		defer w.release(path)

		// Give the writer a moment to finish the file.
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
		}

		slog.Info("importing transcript", "path", path)
		if err := w.handler(ctx, path); err != nil {
			slog.Error("failed to import transcript", "path", path, "error", err)
		}
	}()
	return nil
}

func (w *Watcher) release(path string) {
	w.mu.Lock()
	delete(w.inFlight, path)
	w.mu.Unlock()
}

// isTranscriptFile reports whether path is a visible .txt file.
func isTranscriptFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".txt")
}
