package device

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors /dev/input for keyboards plugged in after startup,
// supplementing spec.md §1's "hot-plug monitoring of /dev/input" —
// named as an out-of-scope external collaborator there, implemented
// here since a real daemon needs it to avoid requiring a restart every
// time a keyboard is connected.
type Watcher struct {
	manager *Manager
	logger  *slog.Logger
	watcher *fsnotify.Watcher
}

// NewWatcher creates a Watcher bound to manager, whose FindKeyboards
// heuristic and grab bookkeeping it reuses for newly-appeared nodes.
func NewWatcher(manager *Manager, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add("/dev/input"); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{manager: manager, logger: logger, watcher: fw}, nil
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run watches for Create events under /dev/input until ctx is done,
// invoking onNewKeyboard for each newly-appeared device that passes
// the keyboard heuristic. Remove events ungrab nothing by themselves —
// the reader goroutine for a removed device exits on its own read
// error and its caller is responsible for calling ReleaseDevice.
func (w *Watcher) Run(ctx context.Context, onNewKeyboard func(*Device)) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create == 0 {
				continue
			}
			w.manager.mu.Lock()
			dev, found := w.manager.openIfKeyboard(ev.Name)
			if found {
				w.manager.devices[dev.path] = dev
			}
			w.manager.mu.Unlock()
			if found {
				w.logger.Info("keyboard plugged in", "name", dev.name, "path", dev.path)
				onNewKeyboard(dev)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}
