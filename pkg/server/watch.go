package server

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/benjaminschreck/docfill/pkg/docfill"
)

// ConfigWatcher watches a configuration file and calls a reload function
// when it changes
type ConfigWatcher struct {
	configPath   string
	watcher      *fsnotify.Watcher
	reloadFunc   func(string) error
	logger       *docfill.Logger
	mu           sync.Mutex
	running      bool
	stopCh       chan struct{}
	done         chan struct{}
	debounceTime time.Duration
}

// NewConfigWatcher creates a watcher for configPath
func NewConfigWatcher(configPath string, reloadFunc func(string) error, logger *docfill.Logger) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = docfill.GetLogger()
	}

	return &ConfigWatcher{
		configPath:   configPath,
		watcher:      watcher,
		reloadFunc:   reloadFunc,
		logger:       logger.WithField("config_path", configPath),
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
		debounceTime: 500 * time.Millisecond,
	}, nil
}

// Start begins watching. The directory is watched rather than the file so
// that editors replacing the file through a rename are noticed.
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.running {
		return nil
	}

	if err := cw.watcher.Add(filepath.Dir(cw.configPath)); err != nil {
		return err
	}
	cw.running = true

	cw.logger.Info("config watcher started")
	go cw.watchLoop(ctx)
	return nil
}

// Stop stops the watcher and waits for its loop to exit
func (cw *ConfigWatcher) Stop() error {
	cw.mu.Lock()
	if !cw.running {
		cw.mu.Unlock()
		return nil
	}
	cw.running = false
	cw.mu.Unlock()

	close(cw.stopCh)
	err := cw.watcher.Close()
	<-cw.done
	return err
}

// IsRunning reports whether the watcher is running
func (cw *ConfigWatcher) IsRunning() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.running
}

func (cw *ConfigWatcher) watchLoop(ctx context.Context) {
	defer close(cw.done)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if !cw.isConfigFileEvent(event) {
				continue
			}
			cw.logger.Debug("config file event: %s", event.Op)

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(cw.debounceTime, cw.triggerReload)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Error("config watcher error: %v", err)

		case <-cw.stopCh:
			cw.logger.Info("config watcher stopped")
			return

		case <-ctx.Done():
			cw.logger.Info("config watcher context cancelled")
			return
		}
	}
}

func (cw *ConfigWatcher) isConfigFileEvent(event fsnotify.Event) bool {
	eventPath, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	configPath, err := filepath.Abs(cw.configPath)
	if err != nil {
		return false
	}
	return eventPath == configPath
}

func (cw *ConfigWatcher) triggerReload() {
	start := time.Now()
	if err := cw.reloadFunc(cw.configPath); err != nil {
		cw.logger.Error("config reload failed, keeping previous configuration: %v", err)
		return
	}
	cw.logger.WithField("duration", time.Since(start)).Info("config reloaded")
}
