package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records submission telemetry through OpenTelemetry, exported to Prometheus.
type Observability struct {
	meterProvider      *metric.MeterProvider
	meter              otelmetric.Meter
	submissionCounter  otelmetric.Int64Counter
	submissionDuration otelmetric.Float64Histogram
	stageRejections    otelmetric.Int64Counter
}

// New installs a Prometheus-backed meter provider. On error the returned value is a usable no-op.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return newWithProvider(provider, serviceName), nil
}

func newWithProvider(provider *metric.MeterProvider, serviceName string) *Observability {
	meter := provider.Meter(serviceName)

	submissionCounter, _ := meter.Int64Counter(
		"forms.submissions",
		otelmetric.WithDescription("Number of form submissions"),
	)

	submissionDuration, _ := meter.Float64Histogram(
		"forms.submission.duration",
		otelmetric.WithDescription("Submission pipeline duration"),
		otelmetric.WithUnit("ms"),
	)

	stageRejections, _ := meter.Int64Counter(
		"forms.attachments.rejected",
		otelmetric.WithDescription("Attachments rejected at staging"),
	)

	return &Observability{
		meterProvider:      provider,
		meter:              meter,
		submissionCounter:  submissionCounter,
		submissionDuration: submissionDuration,
		stageRejections:    stageRejections,
	}
}

func (o *Observability) RecordSubmission(ctx context.Context, form, outcome string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("form", form),
		attribute.String("outcome", outcome),
	)
	if o.submissionCounter != nil {
		o.submissionCounter.Add(ctx, 1, attrs)
	}
	if o.submissionDuration != nil {
		o.submissionDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordRejectedAttachment(ctx context.Context, form, slot string) {
	if o.stageRejections != nil {
		o.stageRejections.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("form", form),
			attribute.String("slot", slot),
		))
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
