// Package watcher hot-reloads the configuration file. It debounces fsnotify
// events and only fires the reload callback when the file content actually
// changed.
package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/router-for-me/AlexaCookidooSkill/internal/config"
	log "github.com/sirupsen/logrus"
)

// configReloadDebounce coalesces the bursts of events editors and atomic
// writes produce into a single reload.
const configReloadDebounce = 150 * time.Millisecond

// Watcher watches the configuration file and pushes successfully reloaded
// configs to the callback. Invalid or unchanged file contents never reach it.
type Watcher struct {
	configPath     string
	reloadCallback func(*config.Config)
	watcher        *fsnotify.Watcher

	mu                sync.Mutex
	configReloadTimer *time.Timer
	lastConfigHash    string
}

// NewWatcher creates a watcher for the given config file.
func NewWatcher(configPath string, reloadCallback func(*config.Config)) (*Watcher, error) {
	fsWatcher, errNewWatcher := fsnotify.NewWatcher()
	if errNewWatcher != nil {
		return nil, errNewWatcher
	}
	return &Watcher{
		configPath:     configPath,
		reloadCallback: reloadCallback,
		watcher:        fsWatcher,
	}, nil
}

// Start begins watching the configuration file. The event loop runs until
// the context is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if errAdd := w.watcher.Add(w.configPath); errAdd != nil {
		log.Errorf("failed to watch config file %s: %v", w.configPath, errAdd)
		return errAdd
	}
	log.Debugf("watching config file: %s", w.configPath)

	w.seedConfigHash()
	go w.processEvents(ctx)
	return nil
}

// Stop stops the file watcher.
func (w *Watcher) Stop() error {
	w.stopConfigReloadTimer()
	return w.watcher.Close()
}

// seedConfigHash records the hash of the file as it was at startup so a
// touch without content change does not trigger a reload.
func (w *Watcher) seedConfigHash() {
	data, err := os.ReadFile(w.configPath)
	if err != nil || len(data) == 0 {
		return
	}
	sum := sha256.Sum256(data)
	w.mu.Lock()
	w.lastConfigHash = hex.EncodeToString(sum[:])
	w.mu.Unlock()
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case errWatch, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("file watcher error: %v", errWatch)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	configOps := fsnotify.Write | fsnotify.Create | fsnotify.Rename
	if normalizeWatchPath(event.Name) != normalizeWatchPath(w.configPath) || event.Op&configOps == 0 {
		return
	}
	log.Debugf("file system event detected: %s %s", event.Op.String(), event.Name)
	w.scheduleConfigReload()
}

func (w *Watcher) scheduleConfigReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.configReloadTimer != nil {
		w.configReloadTimer.Stop()
	}
	w.configReloadTimer = time.AfterFunc(configReloadDebounce, func() {
		w.mu.Lock()
		w.configReloadTimer = nil
		w.mu.Unlock()
		w.reloadConfigIfChanged()
	})
}

func (w *Watcher) stopConfigReloadTimer() {
	w.mu.Lock()
	if w.configReloadTimer != nil {
		w.configReloadTimer.Stop()
		w.configReloadTimer = nil
	}
	w.mu.Unlock()
}

func (w *Watcher) reloadConfigIfChanged() {
	data, err := os.ReadFile(w.configPath)
	if err != nil {
		log.Errorf("failed to read config file for hash check: %v", err)
		return
	}
	if len(data) == 0 {
		log.Debug("ignoring empty config file write event")
		return
	}
	sum := sha256.Sum256(data)
	newHash := hex.EncodeToString(sum[:])

	w.mu.Lock()
	unchanged := w.lastConfigHash != "" && w.lastConfigHash == newHash
	w.mu.Unlock()
	if unchanged {
		log.Debug("config file content unchanged (hash match), skipping reload")
		return
	}

	newConfig, errLoad := config.LoadConfig(w.configPath)
	if errLoad != nil {
		// Keep the old hash so a corrected file reloads even when it restores
		// a content state from before the broken write.
		log.Errorf("failed to reload config: %v", errLoad)
		return
	}

	w.mu.Lock()
	w.lastConfigHash = newHash
	w.mu.Unlock()

	log.Infof("config file changed, reloading: %s", w.configPath)
	w.reloadCallback(newConfig)
}

func normalizeWatchPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	cleaned := filepath.Clean(trimmed)
	if runtime.GOOS == "windows" {
		cleaned = strings.TrimPrefix(cleaned, `\\?\`)
		cleaned = strings.ToLower(cleaned)
	}
	return cleaned
}
