package workbook

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Refresher invalidates cached workbooks.
type Refresher interface {
	Refresh()
}

// Watcher refreshes a workbook cache whenever an xlsx file in a watched
// directory is created, written, renamed or removed.
type Watcher struct {
	watcher   *fsnotify.Watcher
	refresher Refresher
	logger    *slog.Logger
	refreshed chan string
	done      chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
}

// NewWatcher creates a Watcher. It must be started with Start.
func NewWatcher(refresher Refresher, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Watcher{
		watcher:   watcher,
		refresher: refresher,
		logger:    logger,
		refreshed: make(chan string, 16),
		done:      make(chan struct{}),
	}, nil
}

// Refreshed emits the path of each file that triggered a refresh. Sends
// never block; notifications are dropped when nobody reads.
func (w *Watcher) Refreshed() <-chan string {
	return w.refreshed
}

// Start watches the given directories.
func (w *Watcher) Start(dirs ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}
	for _, dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	w.running = true
	w.wg.Add(1)
	go w.processEvents()
	return nil
}

// Stop ends watching and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isWorkbookEvent(event) {
				continue
			}
			w.refresher.Refresh()
			w.logger.Info("workbook changed, cache refreshed", "path", event.Name, "op", event.Op.String())
			select {
			case w.refreshed <- event.Name:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("workbook watcher error", "error", err)
		}
	}
}

func isWorkbookEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, tempFilePrefix) || strings.HasPrefix(base, "~$") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".xlsx")
}
