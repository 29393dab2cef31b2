// Package submission sends a completed wizard to the backend: one create call, then
// concurrent attachment uploads keyed by the created record's id.
package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"hub47-site/internal/attachments"
	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/common/logger"
	"hub47-site/internal/common/metrics"
	"hub47-site/internal/common/validation"
)

const (
	StageCreate = "create"
	StageUpload = "upload"

	defaultUploadConcurrency = 4
)

// ErrMissingEntityID is returned when attachments are pending but create yielded no id.
var ErrMissingEntityID = errors.New("MISSING_ENTITY_ID")

type Request struct {
	Form        string
	Values      validation.Values
	Attachments []attachments.Record
	// Prior is set when retrying after a partial success.
	Prior *Receipt
}

type Receipt struct {
	Form        string    `json:"form"`
	EntityID    string    `json:"entityId,omitempty"`
	Uploaded    []string  `json:"uploaded,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// HasUploaded reports whether slot is already stored on the backend.
func (r *Receipt) HasUploaded(slot string) bool {
	if r == nil {
		return false
	}
	for _, s := range r.Uploaded {
		if s == slot {
			return true
		}
	}
	return false
}

type Pipeline interface {
	Submit(ctx context.Context, req Request) (*Receipt, error)
}

type CreateFunc func(ctx context.Context, values validation.Values) (string, error)

type UploadFunc func(ctx context.Context, entityID string, rec attachments.Record) error

// Sequence runs Create, then uploads every staged attachment concurrently.
type Sequence struct {
	Form   string
	Create CreateFunc
	Upload UploadFunc

	// Retries is the number of extra attempts per upload.
	Retries     int
	Backoff     time.Duration
	Concurrency int
	Logger      logger.Logger
}

func (s *Sequence) Submit(ctx context.Context, req Request) (*Receipt, error) {
	log := s.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"form": s.Form})

	receipt := &Receipt{Form: s.Form}

	if req.Prior != nil && req.Prior.EntityID != "" {
		receipt.EntityID = req.Prior.EntityID
		receipt.Uploaded = append(receipt.Uploaded, req.Prior.Uploaded...)
		log.Info("resuming submission", map[string]interface{}{
			"entityId": receipt.EntityID,
			"uploaded": len(receipt.Uploaded),
		})
	} else {
		id, err := s.Create(ctx, req.Values)
		if err != nil {
			return nil, s.createError(ctx, err)
		}
		receipt.EntityID = id
		log.Info("record created", map[string]interface{}{"entityId": id})
	}

	pending := make([]attachments.Record, 0, len(req.Attachments))
	for _, rec := range req.Attachments {
		if !receipt.HasUploaded(rec.Slot) {
			pending = append(pending, rec)
		}
	}

	if len(pending) > 0 && receipt.EntityID == "" {
		return nil, &apperrors.SubmissionError{
			Form:  s.Form,
			Stage: StageCreate,
			Code:  apperrors.ErrCodeSubmissionFailed,
			Cause: ErrMissingEntityID,
		}
	}

	failed := s.uploadAll(ctx, receipt.EntityID, pending, log)

	for _, rec := range pending {
		if _, bad := failed[rec.Slot]; !bad {
			receipt.Uploaded = append(receipt.Uploaded, rec.Slot)
		}
	}
	receipt.SubmittedAt = time.Now().UTC()

	if len(failed) > 0 {
		return receipt, &apperrors.PartialSubmissionError{
			Form:     s.Form,
			EntityID: receipt.EntityID,
			Failed:   failed,
		}
	}
	return receipt, nil
}

// uploadAll never cancels siblings: every slot gets its attempt and the caller
// learns exactly which ones failed.
func (s *Sequence) uploadAll(ctx context.Context, entityID string, pending []attachments.Record, log logger.Logger) map[string]error {
	var (
		mu     sync.Mutex
		failed = make(map[string]error)
		g      errgroup.Group
	)

	limit := s.Concurrency
	if limit <= 0 {
		limit = defaultUploadConcurrency
	}
	g.SetLimit(limit)

	for _, rec := range pending {
		g.Go(func() error {
			err := s.uploadWithRetry(ctx, entityID, rec)
			if err != nil {
				metrics.AttachmentUploads.WithLabelValues(s.Form, rec.Slot, "failure").Inc()
				log.Warn("attachment upload failed", map[string]interface{}{
					"entityId": entityID,
					"slot":     rec.Slot,
					"error":    err.Error(),
				})
				mu.Lock()
				failed[rec.Slot] = err
				mu.Unlock()
				return nil
			}
			metrics.AttachmentUploads.WithLabelValues(s.Form, rec.Slot, "success").Inc()
			return nil
		})
	}
	_ = g.Wait()

	return failed
}

func (s *Sequence) uploadWithRetry(ctx context.Context, entityID string, rec attachments.Record) error {
	var err error
	backoff := s.Backoff
	for attempt := 0; attempt <= s.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("upload %s: %w", rec.Slot, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		if err = s.Upload(ctx, entityID, rec); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
		// a refusal will not change on resend
		if code := apperrors.BackendCode(err); code != "" && !apperrors.IsRetryableErrorCode(code) {
			break
		}
	}
	return err
}

func (s *Sequence) createError(ctx context.Context, err error) error {
	code := apperrors.ErrCodeSubmissionFailed
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		code = apperrors.ErrCodeSubmissionTimeout
		if !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", err, context.DeadlineExceeded)
		}
	}
	return &apperrors.SubmissionError{Form: s.Form, Stage: StageCreate, Code: code, Cause: err}
}

// Func adapts a plain function into a Pipeline.
type Func func(ctx context.Context, req Request) (*Receipt, error)

func (f Func) Submit(ctx context.Context, req Request) (*Receipt, error) { return f(ctx, req) }
