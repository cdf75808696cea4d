package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Clark-Hu/cineadmin/internal/domain"
)

const (
	maxRecommendationName = 120
	maxRecommendationText = 2000
)

type recommendationRequest struct {
	Name string `json:"nome"`
	Text string `json:"indicacao"`
}

func (req recommendationRequest) validate() error {
	var errs []domain.FieldError
	if req.Name == "" {
		errs = append(errs, domain.FieldError{Field: "nome", Message: "required"})
	} else if utf8.RuneCountInString(req.Name) > maxRecommendationName {
		errs = append(errs, domain.FieldError{Field: "nome", Message: "too long"})
	}
	if req.Text == "" {
		errs = append(errs, domain.FieldError{Field: "indicacao", Message: "required"})
	} else if utf8.RuneCountInString(req.Text) > maxRecommendationText {
		errs = append(errs, domain.FieldError{Field: "indicacao", Message: "too long"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func (s *Server) handleCreateRecommendation(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Text = strings.TrimSpace(req.Text)
	if err := req.validate(); err != nil {
		s.respondValidation(w, err)
		return
	}

	rec, err := s.repo.Recommendations.Create(r.Context(), req.Name, req.Text)
	if err != nil {
		s.respondInternal(w, "create recommendation", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid limit value")
			return
		}
		limit = n
	}

	recs, err := s.repo.Recommendations.List(r.Context(), limit)
	if err != nil {
		s.respondInternal(w, "list recommendations", err)
		return
	}
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	s.respondJSON(w, http.StatusOK, recs)
}
