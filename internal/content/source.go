package content

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"hub47-site/internal/common/logger"
)

const reloadDebounce = 200 * time.Millisecond

// Source serves the current catalog and, when backed by a file, reloads it
// on change. A file that fails to parse leaves the previous catalog in place.
type Source struct {
	mu      sync.RWMutex
	current *Catalog
	path    string
	logger  logger.Logger

	onReload func(*Catalog)
}

func NewSource(path string, log logger.Logger) (*Source, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
		}
		path = abs
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Source{
		current: c,
		path:    path,
		logger:  log.WithFields(map[string]interface{}{"component": "content"}),
	}, nil
}

// Static wraps an already loaded catalog.
func Static(c *Catalog) *Source {
	return &Source{current: c, logger: logger.NewNoOpLogger()}
}

func (s *Source) Catalog() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// OnReload registers a callback run after every successful reload.
func (s *Source) OnReload(fn func(*Catalog)) {
	s.mu.Lock()
	s.onReload = fn
	s.mu.Unlock()
}

func (s *Source) reload() {
	c, err := Load(s.path)
	if err != nil {
		s.logger.Warn("catalog reload failed, keeping previous", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return
	}

	s.mu.Lock()
	s.current = c
	fn := s.onReload
	s.mu.Unlock()

	s.logger.Info("catalog reloaded", map[string]interface{}{
		"path":     s.path,
		"events":   len(c.Events),
		"posts":    len(c.Posts),
		"packages": len(c.Packages),
	})
	if fn != nil {
		fn(c)
	}
}

// Watch starts reloading on file changes. The returned stop func blocks
// until the watcher goroutine has exited. An embedded-only source returns
// a no-op stop.
func (s *Source) Watch(ctx context.Context) (func(), error) {
	if s.path == "" {
		return func() {}, nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Editors replace files by rename, so watch the directory.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(s.path), err)
	}

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	go s.run(ctx, w, stopCh, doneCh)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stopCh)
			<-doneCh
			if err := w.Close(); err != nil {
				s.logger.Warn("catalog watcher close failed", map[string]interface{}{"error": err.Error()})
			}
		})
	}, nil
}

func (s *Source) run(ctx context.Context, w *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(reloadDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Error("catalog watcher error", map[string]interface{}{"error": err.Error()})
		case <-timer.C:
			s.reload()
		}
	}
}
