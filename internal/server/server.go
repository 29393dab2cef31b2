// Package server exposes the site over HTTP: page descriptors, the form
// session API, eligibility scoring, events and the operational endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hub47-site/internal/backend"
	"hub47-site/internal/common/config"
	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/common/logger"
	"hub47-site/internal/common/observability"
	"hub47-site/internal/content"
	"hub47-site/internal/forms"
	"hub47-site/internal/session"
)

const defaultMaxUploadBytes = 12 << 20

// EventLister is the live event source; the content catalog is the fallback.
type EventLister interface {
	GetEventDetailsList(ctx context.Context) ([]backend.EventDetail, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Options struct {
	Config        *config.Config
	Forms         *forms.Registry
	Sessions      *session.Store
	Content       *content.Source
	Events        EventLister
	Observability *observability.Observability
	Checks        map[string]ReadinessCheck
	Logger        logger.Logger
}

type Server struct {
	cfg       *config.Config
	forms     *forms.Registry
	sessions  *session.Store
	content   *content.Source
	events    EventLister
	obs       *observability.Observability
	checks    map[string]ReadinessCheck
	logger    logger.Logger
	errors    *apperrors.ErrorHandler
	maxUpload int64

	openapi []byte
	handler http.Handler
}

func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Forms == nil || opts.Sessions == nil || opts.Content == nil {
		return nil, errors.New("server needs config, forms, sessions and content")
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}

	log := opts.Logger.WithFields(map[string]interface{}{"component": "http"})
	s := &Server{
		cfg:       opts.Config,
		forms:     opts.Forms,
		sessions:  opts.Sessions,
		content:   opts.Content,
		events:    opts.Events,
		obs:       opts.Observability,
		checks:    opts.Checks,
		logger:    log,
		errors:    apperrors.NewErrorHandler(log),
		maxUpload: opts.Config.Server.MaxUploadBytes,
	}
	if s.maxUpload <= 0 {
		s.maxUpload = defaultMaxUploadBytes
	}

	doc, err := buildOpenAPI(context.Background(), opts.Config, opts.Forms)
	if err != nil {
		return nil, fmt.Errorf("openapi document: %w", err)
	}
	s.openapi = doc
	s.handler = s.withRequestLogging(s.routes())
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.handler }

// HTTPServer applies the configured address and timeouts.
func (s *Server) HTTPServer() *http.Server {
	sc := s.cfg.Server
	return &http.Server{
		Addr:              sc.Address,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       config.GetDuration(sc.ReadTimeout),
		WriteTimeout:      config.GetDuration(sc.WriteTimeout),
	}
}

func (s *Server) routes() http.Handler {
	app := http.NewServeMux()

	app.HandleFunc("GET /api/forms", s.handleListForms)
	app.HandleFunc("GET /api/forms/{form}", s.handleGetForm)
	app.HandleFunc("POST /api/forms/{form}/sessions", s.handleCreateSession)
	app.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	app.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	app.HandleFunc("PATCH /api/sessions/{id}/values", s.handleSetValues)
	app.HandleFunc("POST /api/sessions/{id}/advance", s.handleAdvance)
	app.HandleFunc("POST /api/sessions/{id}/retreat", s.handleRetreat)
	app.HandleFunc("POST /api/sessions/{id}/submit", s.handleSubmit)
	app.HandleFunc("POST /api/sessions/{id}/reset", s.handleReset)
	app.HandleFunc("PUT /api/sessions/{id}/attachments/{slot}", s.handleStage)
	app.HandleFunc("DELETE /api/sessions/{id}/attachments/{slot}", s.handleUnstage)
	app.HandleFunc("GET /api/eligibility/questions", s.handleQuestions)
	app.HandleFunc("POST /api/eligibility/score", s.handleScore)
	app.HandleFunc("GET /api/events", s.handleEvents)
	app.HandleFunc("GET /api/openapi.json", s.handleOpenAPI)
	s.registerPages(app)

	root := http.NewServeMux()
	root.HandleFunc("GET /health", s.handleHealth)
	root.HandleFunc("GET /ready", s.handleReady)
	root.Handle("GET /metrics", promhttp.Handler())

	base := s.cfg.BasePath()
	if base == "/" {
		root.Handle("/", app)
	} else {
		root.Handle(base, http.StripPrefix(strings.TrimSuffix(base, "/"), app))
		root.HandleFunc("/", s.handleNotFound)
	}
	return root
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady runs every readiness check; any failure answers 503.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status":   state,
		"checks":   checks,
		"sessions": s.sessions.Len(),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.openapi)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads an optional JSON body. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.NewBadRequestError(fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}
