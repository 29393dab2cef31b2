package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"hub47-site/internal/attachments"
	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/common/logger"
	"hub47-site/internal/common/validation"
	"hub47-site/internal/session"
	"hub47-site/internal/wizard"
)

const multipartMemory = 8 << 20

type sessionView struct {
	ID        string       `json:"id"`
	Form      string       `json:"form"`
	ExpiresAt time.Time    `json:"expiresAt"`
	State     wizard.State `json:"state"`
}

func viewOf(sess *session.Session) sessionView {
	return sessionView{
		ID:        sess.ID,
		Form:      sess.Form,
		ExpiresAt: sess.ExpiresAt(),
		State:     sess.Controller.Snapshot(),
	}
}

func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"forms": s.forms.Descriptors()})
}

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	f, err := s.forms.Get(r.PathValue("form"))
	if err != nil {
		s.errors.WriteHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f.Descriptor())
}

type createSessionRequest struct {
	Preset map[string]interface{} `json:"preset"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	f, err := s.forms.Get(r.PathValue("form"))
	if err != nil {
		s.errors.WriteHTTP(w, r, err)
		return
	}

	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errors.WriteHTTP(w, r, err)
		return
	}
	preset, err := f.Preset(req.Preset)
	if err != nil {
		s.errors.WriteHTTP(w, r, err)
		return
	}

	log := logger.FromContext(r.Context(), s.logger)
	sess, err := s.sessions.Create(f.ID(), f.NewController(preset, log))
	if err != nil {
		s.errors.WriteHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.errors.WriteHTTP(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.session(w, r); ok {
		writeJSON(w, http.StatusOK, viewOf(sess))
	}
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.PathValue("id")); err != nil {
		s.errors.WriteHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setValuesRequest struct {
	Values map[string]interface{} `json:"values"`
}

// handleSetValues stores the values; invalid values are kept and reported per field.
func (s *Server) handleSetValues(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req setValuesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errors.WriteHTTP(w, r, err)
		return
	}
	if len(req.Values) == 0 {
		s.errors.WriteHTTP(w, r, apperrors.NewBadRequestError("values must not be empty"))
		return
	}

	results, err := sess.Controller.SetValues(validation.Values(req.Values))
	if err != nil {
		s.errors.WriteHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"session": viewOf(sess),
	})
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, apply func(*wizard.Controller) error) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := apply(sess.Controller); err != nil {
		s.errors.WriteHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, (*wizard.Controller).Advance)
}

func (s *Server) handleRetreat(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, (*wizard.Controller).Retreat)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, (*wizard.Controller).Reset)
}

// handleSubmit detaches from the request context: a visitor closing the tab must
// not cut a create/upload sequence in half. The controller's own timeout bounds it.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	ctx := logger.IntoContext(context.WithoutCancel(r.Context()), logger.FromContext(r.Context(), s.logger))
	receipt, err := sess.Controller.Submit(ctx)
	if err != nil {
		s.errors.WriteHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"receipt": receipt,
		"session": viewOf(sess),
	})
}

func (s *Server) handleStage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	slot := r.PathValue("slot")

	file, err := s.readUpload(w, r, slot)
	if err != nil {
		s.rejectAttachment(w, r, sess.Form, err)
		return
	}

	res, err := sess.Controller.Stage(slot, file)
	if err != nil {
		s.errors.WriteHTTP(w, r, err)
		return
	}
	if !res.Accepted {
		s.rejectAttachment(w, r, sess.Form, res.Err(slot))
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) rejectAttachment(w http.ResponseWriter, r *http.Request, form string, err error) {
	var rejected *apperrors.AttachmentRejectedError
	if errors.As(err, &rejected) && s.obs != nil {
		s.obs.RecordRejectedAttachment(r.Context(), form, rejected.Slot)
	}
	s.errors.WriteHTTP(w, r, err)
}

// readUpload pulls the "file" part of a multipart body. Bodies over the server
// limit are rejected before the slot's own limit is consulted.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, slot string) (attachments.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return attachments.File{}, &apperrors.AttachmentRejectedError{
				Slot:   slot,
				Reason: fmt.Sprintf("exceeds %s", attachments.FormatSize(s.maxUpload)),
			}
		}
		return attachments.File{}, apperrors.NewBadRequestError(fmt.Sprintf("invalid multipart body: %v", err))
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	part, header, err := r.FormFile("file")
	if err != nil {
		return attachments.File{}, apperrors.NewBadRequestError("multipart body has no file part")
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return attachments.File{}, fmt.Errorf("failed to read upload: %w", err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return attachments.File{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

func (s *Server) handleUnstage(w http.ResponseWriter, r *http.Request) {
	slot := r.PathValue("slot")
	s.transition(w, r, func(c *wizard.Controller) error { return c.Unstage(slot) })
}
