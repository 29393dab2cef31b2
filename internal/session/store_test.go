package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"hub47-site/internal/attachments"
	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/common/logger"
	"hub47-site/internal/common/validation"
	"hub47-site/internal/submission"
	"hub47-site/internal/wizard"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ==========================
// Test Helpers
// ==========================

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func createTestStore(t *testing.T, clock *fakeClock, max int) *Store {
	t.Helper()
	s := NewStore(Options{
		TTL:             10 * time.Minute,
		CleanupInterval: time.Hour,
		MaxSessions:     max,
		Logger:          logger.NewTestLogger(t),
		Now:             clock.Now,
	})
	t.Cleanup(s.Close)
	return s
}

func createTestController(t *testing.T, p submission.Pipeline) *wizard.Controller {
	t.Helper()
	schema := validation.MustSchema(
		validation.Field{Name: "name", Label: "Name", Required: true},
	)
	def, err := wizard.NewDefinition("contact", "Contact", schema, []wizard.Step{
		{ID: "message", Title: "Message", Fields: []string{"name"}, Slots: []string{"note"}},
	}, []attachments.Slot{{Name: "note", MaxBytes: attachments.MB, AcceptedTypes: []string{"text/plain"}}})
	require.NoError(t, err)
	return wizard.NewController(def, wizard.Options{Pipeline: p, SubmitTimeout: 5 * time.Second})
}

// ==========================
// Lifecycle Tests
// ==========================

func TestStore_CreateGetDelete(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 4, 9, 0, 0, 0, time.UTC)}
	s := createTestStore(t, clock, 10)

	sess, err := s.Create("contact", createTestController(t, nil))
	require.NoError(t, err)
	assert.Len(t, sess.ID, 36)
	assert.Equal(t, clock.Now().Add(10*time.Minute), sess.ExpiresAt())

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	require.NoError(t, s.Delete(sess.ID))
	_, err = s.Get(sess.ID)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	assert.ErrorIs(t, s.Delete(sess.ID), apperrors.ErrSessionNotFound)
}

func TestStore_GetExtendsLifetime(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 4, 9, 0, 0, 0, time.UTC)}
	s := createTestStore(t, clock, 10)

	sess, err := s.Create("contact", createTestController(t, nil))
	require.NoError(t, err)

	clock.Advance(8 * time.Minute)
	_, err = s.Get(sess.ID)
	require.NoError(t, err)

	clock.Advance(8 * time.Minute)
	_, err = s.Get(sess.ID)
	require.NoError(t, err, "touched session must still be alive")

	clock.Advance(11 * time.Minute)
	_, err = s.Get(sess.ID)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestStore_ConcurrentGetAndExpiresAt(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 4, 9, 0, 0, 0, time.UTC)}
	s := createTestStore(t, clock, 10)

	sess, err := s.Create("contact", createTestController(t, nil))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				got, err := s.Get(sess.ID)
				if err != nil {
					t.Error(err)
					return
				}
				_ = got.ExpiresAt()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, clock.Now().Add(10*time.Minute), sess.ExpiresAt())
}

func TestStore_SweepReleasesAttachments(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 4, 9, 0, 0, 0, time.UTC)}
	s := createTestStore(t, clock, 10)

	c := createTestController(t, nil)
	res, err := c.Stage("note", attachments.File{Name: "note.txt", ContentType: "text/plain", Data: []byte("hi")})
	require.NoError(t, err)
	require.True(t, res.Accepted)

	_, err = s.Create("contact", c)
	require.NoError(t, err)
	_, err = s.Create("contact", createTestController(t, nil))
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)
	assert.Equal(t, 2, s.Sweep())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, c.Snapshot().Attachments)
}

func TestStore_SubmittingSessionDoesNotExpire(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 4, 9, 0, 0, 0, time.UTC)}
	s := createTestStore(t, clock, 10)

	release := make(chan struct{})
	started := make(chan struct{})
	c := createTestController(t, submission.Func(func(ctx context.Context, req submission.Request) (*submission.Receipt, error) {
		close(started)
		<-release
		return &submission.Receipt{Form: req.Form}, nil
	}))
	_, err := c.SetValue("name", "Omar")
	require.NoError(t, err)

	sess, err := s.Create("contact", c)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		done <- err
	}()
	<-started

	clock.Advance(time.Hour)
	assert.Equal(t, 0, s.Sweep())
	_, err = s.Get(sess.ID)
	assert.NoError(t, err)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, wizard.StatusSucceeded, c.Status())
}

func TestStore_MaxSessions(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 4, 9, 0, 0, 0, time.UTC)}
	s := createTestStore(t, clock, 2)

	for i := 0; i < 2; i++ {
		_, err := s.Create("contact", createTestController(t, nil))
		require.NoError(t, err)
	}

	_, err := s.Create("contact", createTestController(t, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSessionLimit))
	assert.Equal(t, apperrors.ErrCodeSessionLimit, apperrors.Normalize(err).Code)

	// full store makes room by sweeping expired sessions
	clock.Advance(11 * time.Minute)
	_, err = s.Create("contact", createTestController(t, nil))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestStore_CloseStopsSweeper(t *testing.T) {
	s := NewStore(Options{CleanupInterval: time.Millisecond})
	_, err := s.Create("contact", createTestController(t, nil))
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	s.Close()
	s.Close()
	assert.Equal(t, 0, s.Len())
}
