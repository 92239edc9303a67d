// FILE: devconsole/src/internal/connector/watch.go
package connector

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/lixenwraith/log"
)

// registryWatch pokes the connector when a claim file appears or changes
type registryWatch struct {
	watcher *fsnotify.Watcher
	onClaim func()
	logger  *log.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func newRegistryWatch(dir string, onClaim func(), logger *log.Logger) (*registryWatch, error) {
	// The console creates the directory on first claim; create it so it can be watched now
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &registryWatch{
		watcher: watcher,
		onClaim: onClaim,
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	// Capture channels before the goroutine starts so close cannot race them
	go w.processEvents(watcher.Events, watcher.Errors)

	logger.Debug("msg", "Watching registry directory",
		"component", "connector",
		"dir", dir)
	return w, nil
}

func (w *registryWatch) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !strings.HasSuffix(filepath.Base(event.Name), ".json") {
				continue
			}
			w.onClaim()

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			w.logger.Debug("msg", "Registry watch error",
				"component", "connector",
				"error", err)
		}
	}
}

func (w *registryWatch) close() {
	close(w.stopCh)
	w.watcher.Close()
	<-w.doneCh
}
