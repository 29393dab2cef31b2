package server

import (
	"context"
	"net/http"
	"strconv"

	"hub47-site/internal/backend"
	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/forms"
	"hub47-site/internal/forms/contact"
	"hub47-site/internal/forms/eventregistration"
	"hub47-site/internal/forms/membership"
	"hub47-site/internal/forms/startupapply"
	"hub47-site/internal/forms/volunteerapply"
)

// Page is the JSON descriptor a client renders for a route.
type Page struct {
	Page  string                 `json:"page"`
	Path  string                 `json:"path"`
	Title string                 `json:"title"`
	Form  *forms.Descriptor      `json:"form,omitempty"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

type staticPage struct {
	pattern string
	name    string
	title   string
	form    string
}

var staticPages = []staticPage{
	{pattern: "/{$}", name: "home", title: "HUB47 | Startup Accelerator UAE"},
	{pattern: "/about", name: "about", title: "About HUB47"},
	{pattern: "/startup", name: "startup", title: "Startup Program"},
	{pattern: "/apply", name: "apply", title: "Apply to HUB47", form: startupapply.FormID},
	{pattern: "/volunteer", name: "volunteer", title: "Volunteer with HUB47"},
	{pattern: "/volunteer/apply", name: "volunteer-apply", title: "Volunteer Application", form: volunteerapply.FormID},
	{pattern: "/gallery", name: "gallery", title: "Gallery"},
	{pattern: "/contact", name: "contact", title: "Contact Us", form: contact.FormID},
	{pattern: "/podcast", name: "podcast", title: "HUB47 Podcast"},
}

func (s *Server) registerPages(mux *http.ServeMux) {
	for _, p := range staticPages {
		p := p
		mux.HandleFunc("GET "+p.pattern, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, Page{Page: p.name, Path: r.URL.Path, Title: p.title, Form: s.descriptor(p.form)})
		})
	}

	mux.HandleFunc("GET /eligibility", s.handleEligibilityPage)
	mux.HandleFunc("GET /events", s.handleEventsPage)
	mux.HandleFunc("GET /events/{eventId}", s.handleEventPage)
	mux.HandleFunc("GET /membership", s.handleMembershipPage)
	mux.HandleFunc("GET /blog", s.handleBlogPage)
	mux.HandleFunc("GET /blog/{slug}", s.handlePostPage)
	mux.HandleFunc("/", s.handleNotFound)
}

// descriptor is nil for an empty id or a disabled form.
func (s *Server) descriptor(formID string) *forms.Descriptor {
	if formID == "" {
		return nil
	}
	f, err := s.forms.Get(formID)
	if err != nil {
		return nil
	}
	d := f.Descriptor()
	return &d
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, Page{Page: "not-found", Path: r.URL.Path, Title: "Page Not Found"})
}

func (s *Server) handleEligibilityPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Page{
		Page:  "eligibility",
		Path:  r.URL.Path,
		Title: "Check Your Eligibility",
		Form:  s.descriptor(startupapply.FormID),
		Data:  map[string]interface{}{"questions": s.content.Catalog().Quiz},
	})
}

func (s *Server) handleEventsPage(w http.ResponseWriter, r *http.Request) {
	events, source := s.listEvents(r.Context())
	writeJSON(w, http.StatusOK, Page{
		Page:  "events",
		Path:  r.URL.Path,
		Title: "Events Calendar",
		Data:  map[string]interface{}{"events": events, "source": source},
	})
}

// handleEventPage carries the registration form; the event id becomes its preset.
func (s *Server) handleEventPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("eventId"))
	if err != nil || id <= 0 {
		s.handleNotFound(w, r)
		return
	}
	events, _ := s.listEvents(r.Context())
	for _, e := range events {
		if e.ID == id {
			writeJSON(w, http.StatusOK, Page{
				Page:  "event-details",
				Path:  r.URL.Path,
				Title: e.Title,
				Form:  s.descriptor(eventregistration.FormID),
				Data: map[string]interface{}{
					"event":  e,
					"preset": map[string]string{"eventId": strconv.Itoa(e.ID)},
				},
			})
			return
		}
	}
	s.handleNotFound(w, r)
}

func (s *Server) handleMembershipPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Page{
		Page:  "membership",
		Path:  r.URL.Path,
		Title: "Membership Packages",
		Form:  s.descriptor(membership.FormID),
		Data:  map[string]interface{}{"packages": s.content.Catalog().Packages},
	})
}

func (s *Server) handleBlogPage(w http.ResponseWriter, r *http.Request) {
	c := s.content.Catalog()
	data := map[string]interface{}{"posts": c.PostsIn(r.URL.Query().Get("category"))}
	if featured, ok := c.FeaturedPost(); ok {
		data["featured"] = featured
	}
	writeJSON(w, http.StatusOK, Page{Page: "blog", Path: r.URL.Path, Title: "HUB47 Blog", Data: data})
}

func (s *Server) handlePostPage(w http.ResponseWriter, r *http.Request) {
	post, ok := s.content.Catalog().Post(r.PathValue("slug"))
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, Page{
		Page:  "blog-details",
		Path:  r.URL.Path,
		Title: post.Title,
		Data:  map[string]interface{}{"post": post},
	})
}

// listEvents prefers the backend and falls back to the catalog when it fails.
func (s *Server) listEvents(ctx context.Context) ([]backend.EventDetail, string) {
	if s.events != nil {
		events, err := s.events.GetEventDetailsList(ctx)
		if err == nil {
			return events, "backend"
		}
		s.logger.Warn("event list unavailable, serving catalog", map[string]interface{}{
			"error":     err.Error(),
			"errorCode": string(apperrors.Normalize(err).Code),
		})
	}
	return s.content.Catalog().Events, "catalog"
}
