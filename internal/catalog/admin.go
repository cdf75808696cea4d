package catalog

import (
	"context"
	"fmt"

	"github.com/Clark-Hu/cineadmin/internal/domain"
)

// DeleteMovie removes a movie and every like on it, then reloads the view.
//
// It waits for an in-flight like toggle on the same movie to finish first.
// Like cleanup runs before the movie delete; when it fails the movie is still
// deleted unless Options.StrictCascade is set.
func (s *Service) DeleteMovie(ctx context.Context, actor Actor, movieID int64) error {
	if !actor.Caps.CanModerate {
		return ErrPermissionDenied
	}

	release, err := s.guard.acquire(ctx, movieID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelete, err)
	}
	defer release()

	if err := s.deleteMovieLikes(ctx, movieID); err != nil {
		if s.opts.StrictCascade {
			s.log.Error("delete likes", "movie_id", movieID, "err", err)
			return fmt.Errorf("%w: %w", ErrDelete, err)
		}
		s.log.Warn("delete likes failed, deleting movie anyway", "movie_id", movieID, "err", err)
	}

	callCtx, cancel := s.callContext(ctx)
	err = s.backend.DeleteMovie(callCtx, movieID)
	cancel()
	if err != nil {
		s.log.Error("delete movie", "movie_id", movieID, "err", err)
		return fmt.Errorf("%w: %w", ErrDelete, err)
	}

	if _, err := s.Load(ctx, actor); err != nil {
		s.dropMovie(movieID)
	}
	return nil
}

func (s *Service) deleteMovieLikes(ctx context.Context, movieID int64) error {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	return s.backend.DeleteMovieLikes(callCtx, movieID)
}

// CreateMovie validates fields, creates the movie and reloads the view.
func (s *Service) CreateMovie(ctx context.Context, actor Actor, fields domain.MovieFields) (domain.Movie, error) {
	if !actor.Caps.CanModerate {
		return domain.Movie{}, ErrPermissionDenied
	}
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return domain.Movie{}, fmt.Errorf("%w: %w", ErrSaveMovie, err)
	}

	callCtx, cancel := s.callContext(ctx)
	movie, err := s.backend.CreateMovie(callCtx, fields)
	cancel()
	if err != nil {
		s.log.Error("create movie", "title", fields.Title, "err", err)
		return domain.Movie{}, fmt.Errorf("%w: %w", ErrSaveMovie, err)
	}

	if _, err := s.Load(ctx, actor); err != nil {
		s.putMovie(movie)
	}
	return movie, nil
}

// EditMovie validates fields, replaces the movie's fields and reloads the view.
func (s *Service) EditMovie(ctx context.Context, actor Actor, movieID int64, fields domain.MovieFields) (domain.Movie, error) {
	if !actor.Caps.CanModerate {
		return domain.Movie{}, ErrPermissionDenied
	}
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return domain.Movie{}, fmt.Errorf("%w: %w", ErrSaveMovie, err)
	}

	callCtx, cancel := s.callContext(ctx)
	movie, err := s.backend.UpdateMovie(callCtx, movieID, fields)
	cancel()
	if err != nil {
		s.log.Error("update movie", "movie_id", movieID, "err", err)
		return domain.Movie{}, fmt.Errorf("%w: %w", ErrSaveMovie, err)
	}

	if _, err := s.Load(ctx, actor); err != nil {
		s.putMovie(movie)
	}
	return movie, nil
}

// dropMovie removes a movie from the local view when a reload is not possible.
// The backend has already removed its likes, so the liked mark goes too.
func (s *Service) dropMovie(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.liked, id)
	delete(s.confirmed, id)
	kept := s.movies[:0:0]
	for _, m := range s.movies {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.movies = kept
}

// putMovie inserts or replaces a movie in the local list, keeping id order.
func (s *Service) putMovie(movie domain.Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.movies {
		if m.ID == movie.ID {
			s.movies[i] = movie
			return
		}
	}
	idx := len(s.movies)
	for i, m := range s.movies {
		if m.ID > movie.ID {
			idx = i
			break
		}
	}
	s.movies = append(s.movies, domain.Movie{})
	copy(s.movies[idx+1:], s.movies[idx:])
	s.movies[idx] = movie
}
