package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FormSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub47_form_submissions_total",
			Help: "Total number of form submissions by outcome",
		},
		[]string{"form", "outcome"},
	)

	FormSubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hub47_form_submission_duration_seconds",
			Help:    "Duration of the submission pipeline in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"form"},
	)

	AttachmentUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub47_attachment_uploads_total",
			Help: "Total number of attachment uploads by slot and result",
		},
		[]string{"form", "slot", "result"},
	)

	AttachmentsStaged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub47_attachments_staged_total",
			Help: "Attachment staging attempts by result",
		},
		[]string{"form", "slot", "result"},
	)

	WizardTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub47_wizard_transitions_total",
			Help: "Wizard navigation attempts by action and result",
		},
		[]string{"form", "action", "result"},
	)

	ActiveSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hub47_wizard_sessions_active",
			Help: "Number of live wizard sessions per form",
		},
		[]string{"form"},
	)

	BackendRequests = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hub47_backend_request_duration_seconds",
			Help:    "Latency of calls to the HUB47 backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub47_cache_lookups_total",
			Help: "Cache lookups by key family and result",
		},
		[]string{"family", "result"},
	)
)
