package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// FileWatcher calls back when watched files change. Bursts of events on one
// file are collapsed into a single callback after the debounce delay.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	log       *zap.Logger
	mu        sync.Mutex
	callbacks map[string]func(string)
	debounce  time.Duration
	timers    map[string]*time.Timer
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(debounce time.Duration, log *zap.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &FileWatcher{
		watcher:   watcher,
		log:       log,
		callbacks: make(map[string]func(string)),
		debounce:  debounce,
		timers:    make(map[string]*time.Timer),
	}, nil
}

// Watch registers callback for every file. The callback receives the
// absolute path of the changed file.
func (fw *FileWatcher) Watch(files []string, callback func(string)) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			return errors.Wrapf(err, "resolve path %s", file)
		}

		if err := fw.watcher.Add(absPath); err != nil {
			return errors.Wrapf(err, "watch %s", absPath)
		}

		fw.callbacks[absPath] = callback
		fw.log.Debug("watching", zap.String("path", absPath))
	}

	return nil
}

// Start begins delivering change events in a background goroutine. It
// returns when the watcher is closed.
func (fw *FileWatcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}

				// Editors that save by rename produce Create instead of Write
				if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
					fw.handleFileChange(event.Name)
				}

			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				fw.log.Warn("watcher error", zap.Error(err))
			}
		}
	}()
}

func (fw *FileWatcher) handleFileChange(filePath string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	callback, exists := fw.callbacks[filePath]
	if !exists {
		return
	}

	if timer, exists := fw.timers[filePath]; exists {
		timer.Stop()
	}

	fw.timers[filePath] = time.AfterFunc(fw.debounce, func() {
		fw.log.Debug("file changed", zap.String("path", filePath))
		callback(filePath)
	})
}

// Close stops the watcher and pending callbacks
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	for _, timer := range fw.timers {
		timer.Stop()
	}
	fw.mu.Unlock()
	return fw.watcher.Close()
}

// RemoveAll stops watching every file. Files that vanished in the meantime
// are dropped silently.
func (fw *FileWatcher) RemoveAll() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	var firstErr error
	for file := range fw.callbacks {
		if err := fw.watcher.Remove(file); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "unwatch %s", file)
			}
		}
	}

	for _, timer := range fw.timers {
		timer.Stop()
	}
	fw.callbacks = make(map[string]func(string))
	fw.timers = make(map[string]*time.Timer)
	return firstErr
}
