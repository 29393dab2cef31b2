package server

import (
	"net/http"

	apperrors "hub47-site/internal/common/errors"
)

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, source := s.listEvents(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events, "source": source})
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": s.content.Catalog().Quiz})
}

type scoreRequest struct {
	Answers map[string]string `json:"answers"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errors.WriteHTTP(w, r, err)
		return
	}
	if len(req.Answers) == 0 {
		s.errors.WriteHTTP(w, r, apperrors.NewBadRequestError("answers must not be empty"))
		return
	}

	res, err := s.content.Catalog().Scorer().Score(req.Answers)
	if err != nil {
		s.errors.WriteHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
