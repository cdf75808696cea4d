package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Clark-Hu/cineadmin/internal/domain"
)

// Load fetches the catalog and, for a signed-in actor, their likes, then
// replaces the local view. A failed movie fetch keeps the previous view and
// returns ErrLoadCatalog. A failed likes fetch is logged and the actor is
// shown as liking nothing.
func (s *Service) Load(ctx context.Context, actor Actor) (View, error) {
	s.loading.Add(1)
	defer s.loading.Add(-1)

	s.mu.RLock()
	startSeq := s.writeSeq
	s.mu.RUnlock()

	movies, err := s.fetchMovies(ctx)
	if err != nil {
		s.log.Error("load catalog", "err", err)
		return s.Snapshot(), fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}

	liked := LikedSet{}
	if actor.Authenticated() {
		likes, err := s.fetchLikes(ctx, actor.UserID)
		if err != nil {
			s.log.Warn("load likes", "user_id", actor.UserID, "err", err)
		}
		for _, like := range likes {
			liked[like.MovieID] = true
		}
	}

	s.install(movies, liked, startSeq)
	return s.Snapshot(), nil
}

func (s *Service) fetchMovies(ctx context.Context) ([]domain.Movie, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	movies, err := s.backend.ListMovies(callCtx)
	if err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []domain.Movie{}
	}
	return movies, nil
}

func (s *Service) fetchLikes(ctx context.Context, userID uuid.UUID) ([]domain.Like, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	return s.backend.ListLikes(callCtx, userID)
}

// install swaps in freshly loaded state. Toggles confirmed after the load
// started are newer than what the load read, so they are replayed on top.
func (s *Service) install(movies []domain.Movie, liked LikedSet, startSeq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.confirmed {
		if c.seq <= startSeq {
			continue
		}
		if c.liked {
			liked[id] = true
		} else {
			delete(liked, id)
		}
	}
	if s.loading.Load() <= 1 {
		for id, c := range s.confirmed {
			if c.seq <= startSeq {
				delete(s.confirmed, id)
			}
		}
	}

	s.movies = movies
	s.liked = liked
}
