package server

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/devstack-tools/localconf/config"
	"github.com/devstack-tools/localconf/util"
	"github.com/devstack-tools/localconf/validate"
	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// DefaultDebounce is how long Watch waits after the last change before reloading
const DefaultDebounce = 500 * time.Millisecond

// Snapshot is one successfully loaded configuration with its check report
type Snapshot struct {
	Config   *config.Config
	Report   *validate.Report
	LoadedAt time.Time
}

// Holder keeps the current snapshot of a local.conf and replaces it when
// the file is reloaded. A failed reload keeps the previous snapshot.
type Holder struct {
	path     string
	opts     []config.Option
	Debounce time.Duration

	// reloadMu orders whole reloads so an older load never replaces a newer one
	reloadMu sync.Mutex
	mu       sync.RWMutex
	current  *Snapshot
	loads    uint64
	failures uint64
	lastErr  error

	listenMu  sync.Mutex
	listeners []chan<- *Snapshot
}

// NewHolder loads path and returns a holder for it
func NewHolder(path string, opts ...config.Option) (*Holder, error) {
	h := &Holder{path: path, opts: opts, Debounce: DefaultDebounce}
	if err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

// Path returns the watched file
func (h *Holder) Path() string {
	return h.path
}

// Get returns the current snapshot
func (h *Holder) Get() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Stats returns the number of loads, failed loads and the last load error
func (h *Holder) Stats() (loads uint64, failures uint64, lastErr error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loads, h.failures, h.lastErr
}

// Reload loads the file again and swaps the snapshot on success
func (h *Holder) Reload() error {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	c, err := config.Load(h.path, h.opts...)

	h.mu.Lock()
	h.loads++
	if err != nil {
		h.failures++
		h.lastErr = err
		h.mu.Unlock()
		log.WithFields(log.Fields{"file": h.path}).Error("failed to reload configuration: ", err)
		return fmt.Errorf("reload %s: %w", h.path, err)
	}
	snapshot := &Snapshot{Config: c, Report: validate.Check(c), LoadedAt: time.Now()}
	prev := h.current
	h.current = snapshot
	h.lastErr = nil
	h.mu.Unlock()

	log.WithFields(log.Fields{
		"file":      h.path,
		"variables": len(c.Keys()),
		"errors":    snapshot.Report.Count(validate.Error),
	}).Info("configuration loaded")
	if prev != nil && !util.ElementsMatchString(prev.Config.Services().Names(), c.Services().Names()) {
		log.WithFields(log.Fields{
			"file":    h.path,
			"enabled": util.Sub(c.Services().Names(), prev.Config.Services().Names()),
			"removed": util.Sub(prev.Config.Services().Names(), c.Services().Names()),
		}).Info("enabled services changed")
	}
	h.notify(snapshot)
	return nil
}

// Subscribe registers ch to receive every new snapshot. Sends never block,
// a full channel misses the update.
func (h *Holder) Subscribe(ch chan<- *Snapshot) {
	h.listenMu.Lock()
	defer h.listenMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notify(s *Snapshot) {
	h.listenMu.Lock()
	defer h.listenMu.Unlock()
	for _, ch := range h.listeners {
		select {
		case ch <- s:
		default:
		}
	}
}

// Watch reloads the file when it changes until ctx is done. The directory
// is watched so editors that replace the file by rename are seen too.
func (h *Holder) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(h.path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	log.WithFields(log.Fields{"file": target}).Info("watching configuration for changes")

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.WithFields(log.Fields{"file": target}).Info("stop watching configuration")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.WithFields(log.Fields{"file": target, "op": event.Op.String()}).Debug("configuration changed")

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(h.Debounce, func() {
				_ = h.Reload()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithFields(log.Fields{"file": target}).Error("watcher error: ", err)
		}
	}
}
