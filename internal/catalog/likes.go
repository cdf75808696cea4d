package catalog

import (
	"context"
	"fmt"

	"github.com/Clark-Hu/cineadmin/internal/domain"
)

// ToggleLike flips the actor's like on a movie and returns the new state.
//
// Guests get a no-op. The local state changes only after the backend accepts
// the write; on failure the previous state is returned with ErrUpdateLike.
// While a toggle for the same movie is in flight, further toggles fail fast
// with ErrLikeInFlight, so a burst of requests yields exactly one flip.
func (s *Service) ToggleLike(ctx context.Context, actor Actor, movieID int64) (bool, error) {
	if !actor.Authenticated() {
		return false, nil
	}
	if !actor.Caps.CanLike {
		return s.IsLiked(movieID), ErrPermissionDenied
	}

	release, ok := s.guard.tryAcquire(movieID)
	if !ok {
		return s.IsLiked(movieID), ErrLikeInFlight
	}
	defer release()

	wasLiked := s.IsLiked(movieID)
	like := domain.Like{UserID: actor.UserID, MovieID: movieID}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	var err error
	if wasLiked {
		err = s.backend.DeleteLike(callCtx, like)
	} else {
		err = s.backend.InsertLike(callCtx, like)
	}
	if err != nil {
		s.log.Error("toggle like", "movie_id", movieID, "user_id", actor.UserID, "liked", wasLiked, "err", err)
		return wasLiked, fmt.Errorf("%w: %w", ErrUpdateLike, err)
	}

	s.confirmLike(movieID, !wasLiked)
	return !wasLiked, nil
}

func (s *Service) confirmLike(movieID int64, liked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writeSeq++
	s.confirmed[movieID] = confirmedLike{liked: liked, seq: s.writeSeq}
	if liked {
		s.liked[movieID] = true
	} else {
		delete(s.liked, movieID)
	}
}
