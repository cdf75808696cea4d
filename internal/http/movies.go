package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/cineadmin/internal/domain"
	"github.com/Clark-Hu/cineadmin/internal/repository"
)

const catalogVersionKey = "movies:version"

// catalogCache stores the movie list under a versioned key. Writers bump the
// version, so a list read before a write and cached after it lands under a key
// no reader asks for again.
type catalogCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Version(ctx context.Context, key string) (int64, error)
	Bump(ctx context.Context, key string) error
}

func catalogKey(version int64) string {
	return fmt.Sprintf("movies:all:v%d", version)
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cacheable := true
	version, err := s.cache.Version(ctx, catalogVersionKey)
	if err != nil {
		s.logger.Warn("read catalog version", "err", err)
		cacheable = false
	}
	key := catalogKey(version)

	var movies []domain.Movie
	if cacheable {
		hit, err := s.cache.GetJSON(ctx, key, &movies)
		if err != nil {
			s.logger.Warn("read catalog cache", "err", err)
		}
		if hit {
			s.respondJSON(w, http.StatusOK, movies)
			return
		}
	}

	movies, err = s.repo.Movies.List(ctx)
	if err != nil {
		s.respondInternal(w, "list movies", err)
		return
	}
	if movies == nil {
		movies = []domain.Movie{}
	}

	if ttl := time.Duration(s.cfg.CatalogCacheTTLSecs) * time.Second; cacheable && ttl > 0 {
		if err := s.cache.SetJSON(ctx, key, movies, ttl); err != nil {
			s.logger.Warn("write catalog cache", "err", err)
		}
	}
	s.respondJSON(w, http.StatusOK, movies)
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseMovieID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	movie, err := s.repo.Movies.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.respondInternal(w, "get movie", err)
		return
	}
	s.respondJSON(w, http.StatusOK, movie)
}

func (s *Server) decodeMovieFields(w http.ResponseWriter, r *http.Request) (domain.MovieFields, bool) {
	var fields domain.MovieFields
	if err := decodeJSONBody(w, r, &fields); err != nil {
		s.respondDecodeError(w, err)
		return domain.MovieFields{}, false
	}
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		s.respondValidation(w, err)
		return domain.MovieFields{}, false
	}
	return fields, true
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	admin, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	fields, ok := s.decodeMovieFields(w, r)
	if !ok {
		return
	}

	movie, err := s.repo.Movies.Create(r.Context(), fields)
	if err != nil {
		s.respondInternal(w, "create movie", err)
		return
	}
	s.invalidateCatalog(r.Context())

	s.logger.Info("movie created", "movie_id", movie.ID, "by", admin.ID)
	w.Header().Set("Location", fmt.Sprintf("/movies/%d", movie.ID))
	s.respondJSON(w, http.StatusCreated, movie)
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	admin, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	id, err := parseMovieID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	fields, ok := s.decodeMovieFields(w, r)
	if !ok {
		return
	}

	movie, err := s.repo.Movies.Update(r.Context(), id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.respondInternal(w, "update movie", err)
		return
	}
	s.invalidateCatalog(r.Context())

	s.logger.Info("movie updated", "movie_id", movie.ID, "by", admin.ID)
	s.respondJSON(w, http.StatusOK, movie)
}

// handleDeleteMovie removes only the movie row. Likes are cleaned up by the
// caller through DELETE /likes?filme_id=.
func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	admin, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	id, err := parseMovieID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := s.repo.Movies.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.respondInternal(w, "delete movie", err)
		return
	}
	s.invalidateCatalog(r.Context())

	if orphans, err := s.repo.Likes.Count(r.Context(), id); err == nil && orphans > 0 {
		s.logger.Warn("movie deleted with likes left behind", "movie_id", id, "likes", orphans)
	}
	s.logger.Info("movie deleted", "movie_id", id, "by", admin.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) invalidateCatalog(ctx context.Context) {
	if err := s.cache.Bump(ctx, catalogVersionKey); err != nil {
		s.logger.Warn("invalidate catalog cache", "err", err)
	}
}
