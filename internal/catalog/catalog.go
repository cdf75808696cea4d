// Package catalog keeps a user's view of the movie catalog consistent with the
// backend: it resolves who the actor is, loads the catalog and the actor's likes,
// toggles likes, and runs the admin mutations.
//
// Local state only changes after the backend confirms a write. Operations on the
// same movie are serialised: a second like toggle is rejected while one is in
// flight, and a delete waits for it to finish.
package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Clark-Hu/cineadmin/internal/domain"
	"github.com/Clark-Hu/cineadmin/internal/logging"
)

// DefaultCallTimeout bounds every backend call unless Options says otherwise.
const DefaultCallTimeout = 10 * time.Second

type sessionSource interface {
	// CurrentSession returns nil when nobody is signed in.
	CurrentSession(ctx context.Context) (*domain.Session, error)
}

type userReader interface {
	GetUser(ctx context.Context, id uuid.UUID) (domain.User, error)
}

type movieStore interface {
	ListMovies(ctx context.Context) ([]domain.Movie, error)
	CreateMovie(ctx context.Context, fields domain.MovieFields) (domain.Movie, error)
	UpdateMovie(ctx context.Context, id int64, fields domain.MovieFields) (domain.Movie, error)
	DeleteMovie(ctx context.Context, id int64) error
}

type likeStore interface {
	ListLikes(ctx context.Context, userID uuid.UUID) ([]domain.Like, error)
	InsertLike(ctx context.Context, like domain.Like) error
	DeleteLike(ctx context.Context, like domain.Like) error
	DeleteMovieLikes(ctx context.Context, movieID int64) error
}

// Backend is everything the catalog needs from the data service.
type Backend interface {
	sessionSource
	userReader
	movieStore
	likeStore
}

// Options tunes a Service.
type Options struct {
	// CallTimeout bounds each backend call. Zero means DefaultCallTimeout.
	CallTimeout time.Duration
	// StrictCascade aborts DeleteMovie when removing the movie's likes fails.
	// By default the failure is logged and the movie is deleted anyway.
	StrictCascade bool
	Logger        *log.Logger
}

// LikedSet maps movie ids the actor likes to true. Absent ids are not liked.
type LikedSet map[int64]bool

// Has reports whether id is liked.
func (s LikedSet) Has(id int64) bool { return s[id] }

// Clone returns an independent copy.
func (s LikedSet) Clone() LikedSet {
	out := make(LikedSet, len(s))
	for k, v := range s {
		if v {
			out[k] = true
		}
	}
	return out
}

// View is a snapshot of the catalog as the actor sees it.
type View struct {
	Movies []domain.Movie
	Liked  LikedSet
}

type confirmedLike struct {
	liked bool
	seq   uint64
}

// Service owns one actor's catalog view.
type Service struct {
	backend Backend
	log     *log.Logger
	opts    Options
	guard   *movieGuard

	loading atomic.Int32

	mu        sync.RWMutex
	movies    []domain.Movie
	liked     LikedSet
	writeSeq  uint64
	confirmed map[int64]confirmedLike
}

// New builds a Service over backend.
func New(backend Backend, opts Options) *Service {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	return &Service{
		backend:   backend,
		log:       logging.Component(opts.Logger, "catalog"),
		opts:      opts,
		guard:     newMovieGuard(),
		liked:     LikedSet{},
		confirmed: make(map[int64]confirmedLike),
	}
}

// Loading reports whether a catalog load is in flight.
func (s *Service) Loading() bool {
	return s.loading.Load() > 0
}

// Snapshot returns a copy of the current view.
func (s *Service) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	movies := make([]domain.Movie, len(s.movies))
	copy(movies, s.movies)
	return View{Movies: movies, Liked: s.liked.Clone()}
}

// IsLiked reports the local like state of a movie.
func (s *Service) IsLiked(movieID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liked.Has(movieID)
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.CallTimeout)
}
