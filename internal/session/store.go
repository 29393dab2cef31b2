// Package session keeps live wizard controllers in memory, keyed by an opaque id.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/common/logger"
	"hub47-site/internal/common/metrics"
	"hub47-site/internal/wizard"
)

const (
	defaultTTL             = 30 * time.Minute
	defaultCleanupInterval = time.Minute
	defaultMaxSessions     = 1000
)

type Session struct {
	ID         string
	Form       string
	Controller *wizard.Controller
	CreatedAt  time.Time

	// guarded separately from the store so handlers can read it without the store lock
	mu        sync.Mutex
	expiresAt time.Time
}

// ExpiresAt is refreshed on every Get.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

func (s *Session) extend(until time.Time) {
	s.mu.Lock()
	s.expiresAt = until
	s.mu.Unlock()
}

type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	MaxSessions     int
	Logger          logger.Logger
	Now             func() time.Time
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl    time.Duration
	max    int
	now    func() time.Time
	logger logger.Logger

	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

// NewStore starts the expiry sweeper; call Close to stop it.
func NewStore(opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = defaultMaxSessions
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      opts.TTL,
		max:      opts.MaxSessions,
		now:      opts.Now,
		logger:   opts.Logger.WithFields(map[string]interface{}{"component": "session-store"}),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go s.cleanupExpired(opts.CleanupInterval)
	return s
}

// Create registers a controller under a fresh id. When the store is full,
// expired sessions are swept first.
func (s *Store) Create(form string, c *wizard.Controller) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.max {
		s.sweepLocked()
		if len(s.sessions) >= s.max {
			return nil, fmt.Errorf("%w: %d live sessions", apperrors.ErrSessionLimit, s.max)
		}
	}

	now := s.now()
	sess := &Session{
		ID:         uuid.New().String(),
		Form:       form,
		Controller: c,
		CreatedAt:  now,
		expiresAt:  now.Add(s.ttl),
	}
	s.sessions[sess.ID] = sess
	metrics.ActiveSessions.WithLabelValues(form).Inc()

	s.logger.Debug("session created", map[string]interface{}{
		"sessionId": sess.ID,
		"form":      form,
	})
	return sess, nil
}

// Get returns a live session and extends its lifetime.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, id)
	}
	if s.expiredLocked(sess) {
		s.removeLocked(sess, "expired")
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, id)
	}
	sess.extend(s.now().Add(s.ttl))
	return sess, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, id)
	}
	s.removeLocked(sess, "deleted")
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and reports how many went.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

// Close stops the sweeper and releases every session.
func (s *Store) Close() {
	s.once.Do(func() {
		close(s.stopCh)
		<-s.doneCh

		s.mu.Lock()
		defer s.mu.Unlock()
		for _, sess := range s.sessions {
			s.removeLocked(sess, "shutdown")
		}
	})
}

// A session mid-submission never expires; its pipeline still holds the controller.
func (s *Store) expiredLocked(sess *Session) bool {
	if !s.now().After(sess.ExpiresAt()) {
		return false
	}
	return sess.Controller.Status() != wizard.StatusSubmitting
}

func (s *Store) sweepLocked() int {
	removed := 0
	for _, sess := range s.sessions {
		if s.expiredLocked(sess) {
			s.removeLocked(sess, "expired")
			removed++
		}
	}
	return removed
}

func (s *Store) removeLocked(sess *Session, reason string) {
	delete(s.sessions, sess.ID)
	sess.Controller.Release()
	metrics.ActiveSessions.WithLabelValues(sess.Form).Dec()

	s.logger.Debug("session removed", map[string]interface{}{
		"sessionId": sess.ID,
		"form":      sess.Form,
		"reason":    reason,
	})
}

func (s *Store) cleanupExpired(interval time.Duration) {
	defer close(s.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("expired sessions swept", map[string]interface{}{
					"removed":   n,
					"remaining": s.Len(),
				})
			}
		}
	}
}
