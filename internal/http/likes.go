package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Clark-Hu/cineadmin/internal/domain"
	"github.com/Clark-Hu/cineadmin/internal/repository"
)

type likeRequest struct {
	UserID  uuid.UUID `json:"user_id"`
	MovieID int64     `json:"filme_id"`
}

// ownUserParam checks that an optional user_id query value names the caller.
func (s *Server) ownUserParam(w http.ResponseWriter, raw string, caller uuid.UUID) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid user_id")
		return false
	}
	if id != caller {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Likes belong to their owner")
		return false
	}
	return true
}

func (s *Server) handleListLikes(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if !s.ownUserParam(w, r.URL.Query().Get("user_id"), caller) {
		return
	}

	likes, err := s.repo.Likes.List(r.Context(), repository.LikeFilter{UserID: &caller})
	if err != nil {
		s.respondInternal(w, "list likes", err)
		return
	}
	if likes == nil {
		likes = []domain.Like{}
	}
	s.respondJSON(w, http.StatusOK, likes)
}

func (s *Server) handleCreateLike(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireCaller(w, r)
	if !ok {
		return
	}
	if !domain.CapabilitiesFor(caller.Role).CanLike {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Role cannot like movies")
		return
	}

	var req likeRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.UserID == uuid.Nil {
		req.UserID = caller.ID
	}
	if req.UserID != caller.ID {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Likes belong to their owner")
		return
	}
	if req.MovieID <= 0 {
		s.respondValidation(w, domain.NewValidationErrors([]domain.FieldError{{Field: "filme_id", Message: "required"}}))
		return
	}

	if _, err := s.repo.Movies.GetByID(r.Context(), req.MovieID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found")
			return
		}
		s.respondInternal(w, "check movie for like", err)
		return
	}

	like, err := s.repo.Likes.Insert(r.Context(), domain.Like{UserID: req.UserID, MovieID: req.MovieID})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.respondError(w, http.StatusConflict, "CONFLICT", "Movie already liked")
			return
		}
		s.respondInternal(w, "insert like", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, like)
}

// handleDeleteLikes removes the caller's like on one movie, or with no
// user_id every like on a movie (admin only).
func (s *Server) handleDeleteLikes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	movieID, err := parseMovieID(q.Get("filme_id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "filme_id is required")
		return
	}

	filter := repository.LikeFilter{MovieID: &movieID}
	if q.Has("user_id") {
		caller, ok := s.requireUser(w, r)
		if !ok {
			return
		}
		raw := q.Get("user_id")
		if strings.TrimSpace(raw) == "" {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid user_id")
			return
		}
		if !s.ownUserParam(w, raw, caller) {
			return
		}
		filter.UserID = &caller
	} else if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	removed, err := s.repo.Likes.Delete(r.Context(), filter)
	if err != nil {
		s.respondInternal(w, "delete likes", err)
		return
	}
	if filter.UserID == nil {
		s.logger.Info("movie likes removed", "movie_id", movieID, "count", removed)
	}
	w.WriteHeader(http.StatusNoContent)
}
