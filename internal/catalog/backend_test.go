package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Clark-Hu/cineadmin/internal/domain"
)

var errBackend = errors.New("backend unavailable")

// mockBackend keeps catalog state in memory. Any *Fn hook that is set runs
// before the default behaviour; a non-nil error from it aborts the call.
type mockBackend struct {
	mu    sync.Mutex
	calls []string

	session *domain.Session
	users   map[uuid.UUID]domain.User
	movies  map[int64]domain.Movie
	likes   map[domain.Like]bool
	nextID  int64

	currentSessionFn   func(ctx context.Context) error
	getUserFn          func(ctx context.Context) error
	listMoviesFn       func(ctx context.Context) error
	listLikesFn        func(ctx context.Context) error
	insertLikeFn       func(ctx context.Context) error
	deleteLikeFn       func(ctx context.Context) error
	deleteMovieLikesFn func(ctx context.Context) error
	deleteMovieFn      func(ctx context.Context) error
	saveMovieFn        func(ctx context.Context) error
}

func newMockBackend(movies ...string) *mockBackend {
	m := &mockBackend{
		users:  make(map[uuid.UUID]domain.User),
		movies: make(map[int64]domain.Movie),
		likes:  make(map[domain.Like]bool),
	}
	for _, title := range movies {
		m.nextID++
		m.movies[m.nextID] = domain.Movie{ID: m.nextID, Title: title, Year: 2000}
	}
	return m
}

func (m *mockBackend) signIn(role domain.Role) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.users[id] = domain.User{ID: id, Email: id.String() + "@example.com", Role: role}
	m.session = &domain.Session{UserID: id}
	return id
}

func (m *mockBackend) record(name string) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()
}

func (m *mockBackend) callLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockBackend) count(name string) int {
	n := 0
	for _, c := range m.callLog() {
		if c == name {
			n++
		}
	}
	return n
}

func (m *mockBackend) hasLike(userID uuid.UUID, movieID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.likes[domain.Like{UserID: userID, MovieID: movieID}]
}

func (m *mockBackend) addLike(userID uuid.UUID, movieID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.likes[domain.Like{UserID: userID, MovieID: movieID}] = true
}

func run(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (m *mockBackend) CurrentSession(ctx context.Context) (*domain.Session, error) {
	m.record("CurrentSession")
	if err := run(ctx, m.currentSessionFn); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *mockBackend) GetUser(ctx context.Context, id uuid.UUID) (domain.User, error) {
	m.record("GetUser")
	if err := run(ctx, m.getUserFn); err != nil {
		return domain.User{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return domain.User{}, errors.New("not found")
	}
	return user, nil
}

func (m *mockBackend) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	m.record("ListMovies")
	if err := run(ctx, m.listMoviesFn); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Movie, 0, len(m.movies))
	for _, movie := range m.movies {
		out = append(out, movie)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockBackend) CreateMovie(ctx context.Context, fields domain.MovieFields) (domain.Movie, error) {
	m.record("CreateMovie")
	if err := run(ctx, m.saveMovieFn); err != nil {
		return domain.Movie{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	movie := movieFrom(m.nextID, fields)
	m.movies[movie.ID] = movie
	return movie, nil
}

func (m *mockBackend) UpdateMovie(ctx context.Context, id int64, fields domain.MovieFields) (domain.Movie, error) {
	m.record("UpdateMovie")
	if err := run(ctx, m.saveMovieFn); err != nil {
		return domain.Movie{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.movies[id]; !ok {
		return domain.Movie{}, errors.New("not found")
	}
	movie := movieFrom(id, fields)
	m.movies[id] = movie
	return movie, nil
}

func (m *mockBackend) DeleteMovie(ctx context.Context, id int64) error {
	m.record("DeleteMovie")
	if err := run(ctx, m.deleteMovieFn); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.movies, id)
	return nil
}

func (m *mockBackend) ListLikes(ctx context.Context, userID uuid.UUID) ([]domain.Like, error) {
	m.record("ListLikes")
	if err := run(ctx, m.listLikesFn); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Like
	for like := range m.likes {
		if like.UserID == userID {
			out = append(out, like)
		}
	}
	return out, nil
}

func (m *mockBackend) InsertLike(ctx context.Context, like domain.Like) error {
	m.record("InsertLike")
	if err := run(ctx, m.insertLikeFn); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.likes[like] {
		return errors.New("duplicate like")
	}
	m.likes[like] = true
	return nil
}

func (m *mockBackend) DeleteLike(ctx context.Context, like domain.Like) error {
	m.record("DeleteLike")
	if err := run(ctx, m.deleteLikeFn); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.likes, like)
	return nil
}

func (m *mockBackend) DeleteMovieLikes(ctx context.Context, movieID int64) error {
	m.record("DeleteMovieLikes")
	if err := run(ctx, m.deleteMovieLikesFn); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for like := range m.likes {
		if like.MovieID == movieID {
			delete(m.likes, like)
		}
	}
	return nil
}

func movieFrom(id int64, f domain.MovieFields) domain.Movie {
	return domain.Movie{
		ID:          id,
		Title:       f.Title,
		Genre:       f.Genre,
		Year:        f.Year,
		Description: f.Description,
		ImageURL:    f.ImageURL,
	}
}

// gate blocks a mock hook until opened and reports when a caller arrives.
type gate struct {
	entered chan struct{}
	open    chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}, 16), open: make(chan struct{})}
}

func (g *gate) hook(ctx context.Context) error {
	g.entered <- struct{}{}
	select {
	case <-g.open:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gate) release() { close(g.open) }

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func fail(context.Context) error { return errBackend }
