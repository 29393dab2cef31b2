package submission

import (
	"context"
	"errors"
	"time"

	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/common/metrics"
	"hub47-site/internal/common/observability"
	"hub47-site/internal/common/validation"
)

const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeTimeout = "timeout"
	OutcomeFailed  = "failed"
)

// Outcome describes one finished Submit call.
type Outcome struct {
	Form     string
	Values   validation.Values
	Receipt  *Receipt
	Err      error
	Duration time.Duration
}

func (o Outcome) Label() string {
	return OutcomeLabel(o.Err)
}

func OutcomeLabel(err error) string {
	var partial *apperrors.PartialSubmissionError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &partial):
		return OutcomePartial
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, apperrors.ErrSubmissionTimeout):
		return OutcomeTimeout
	default:
		return OutcomeFailed
	}
}

// Hook receives every outcome. Hooks run after the pipeline returns and must not block long.
type Hook func(ctx context.Context, o Outcome)

type observed struct {
	next  Pipeline
	hooks []Hook
}

// Observe wraps p so each submission is reported to hooks.
func Observe(p Pipeline, hooks ...Hook) Pipeline {
	return &observed{next: p, hooks: hooks}
}

func (o *observed) Submit(ctx context.Context, req Request) (*Receipt, error) {
	start := time.Now()
	receipt, err := o.next.Submit(ctx, req)

	outcome := Outcome{
		Form:     req.Form,
		Values:   req.Values,
		Receipt:  receipt,
		Err:      err,
		Duration: time.Since(start),
	}
	// The request context may already be cancelled; reporting must still happen.
	hookCtx := context.WithoutCancel(ctx)
	for _, h := range o.hooks {
		h(hookCtx, outcome)
	}
	return receipt, err
}

// MetricsHook records outcomes on the Prometheus vectors.
func MetricsHook() Hook {
	return func(_ context.Context, o Outcome) {
		metrics.FormSubmissions.WithLabelValues(o.Form, o.Label()).Inc()
		metrics.FormSubmissionDuration.WithLabelValues(o.Form).Observe(o.Duration.Seconds())
	}
}

// TelemetryHook records outcomes on the OpenTelemetry meter.
func TelemetryHook(obs *observability.Observability) Hook {
	return func(ctx context.Context, o Outcome) {
		if obs == nil {
			return
		}
		obs.RecordSubmission(ctx, o.Form, o.Label(), o.Duration)
	}
}
