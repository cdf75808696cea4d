package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Clark-Hu/cineadmin/internal/catalog"
	"github.com/Clark-Hu/cineadmin/internal/domain"
)

var _ catalog.Backend = (*HTTPClient)(nil)

type userPayload struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Tipo  string    `json:"tipo"`
}

func (p userPayload) toDomain() domain.User {
	return domain.User{ID: p.ID, Email: p.Email, Role: domain.ParseRole(p.Tipo)}
}

// CurrentSession returns the signed-in session, or nil when there is no token
// or the server no longer accepts it.
func (c *HTTPClient) CurrentSession(ctx context.Context) (*domain.Session, error) {
	if c.Token() == "" {
		return nil, nil
	}
	var sess domain.Session
	if err := c.do(ctx, http.MethodGet, "/session", nil, nil, &sess); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, nil
		}
		return nil, err
	}
	return &sess, nil
}

// GetUser fetches a user's profile, including the role.
func (c *HTTPClient) GetUser(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var payload userPayload
	if err := c.do(ctx, http.MethodGet, "/users/"+id.String(), nil, nil, &payload); err != nil {
		return domain.User{}, err
	}
	return payload.toDomain(), nil
}

// ListMovies returns the whole catalog in id order.
func (c *HTTPClient) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	var movies []domain.Movie
	if err := c.do(ctx, http.MethodGet, "/movies", nil, nil, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// GetMovie fetches one movie; a missing id wraps ErrNotFound.
func (c *HTTPClient) GetMovie(ctx context.Context, id int64) (domain.Movie, error) {
	var movie domain.Movie
	err := c.do(ctx, http.MethodGet, "/movies/"+strconv.FormatInt(id, 10), nil, nil, &movie)
	return movie, err
}

// CreateMovie adds a movie and returns it with its new id. Admin only.
func (c *HTTPClient) CreateMovie(ctx context.Context, fields domain.MovieFields) (domain.Movie, error) {
	var movie domain.Movie
	err := c.do(ctx, http.MethodPost, "/movies", nil, fields, &movie)
	return movie, err
}

// UpdateMovie replaces a movie's fields. Admin only.
func (c *HTTPClient) UpdateMovie(ctx context.Context, id int64, fields domain.MovieFields) (domain.Movie, error) {
	var movie domain.Movie
	err := c.do(ctx, http.MethodPut, "/movies/"+strconv.FormatInt(id, 10), nil, fields, &movie)
	return movie, err
}

// DeleteMovie removes the movie row. Likes are removed separately with DeleteMovieLikes.
func (c *HTTPClient) DeleteMovie(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/movies/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// ListLikes returns the likes of userID, which must be the signed-in user.
func (c *HTTPClient) ListLikes(ctx context.Context, userID uuid.UUID) ([]domain.Like, error) {
	var likes []domain.Like
	q := url.Values{"user_id": {userID.String()}}
	if err := c.do(ctx, http.MethodGet, "/likes", q, nil, &likes); err != nil {
		return nil, err
	}
	return likes, nil
}

// InsertLike records a like. A duplicate wraps ErrConflict.
func (c *HTTPClient) InsertLike(ctx context.Context, like domain.Like) error {
	return c.do(ctx, http.MethodPost, "/likes", nil, like, nil)
}

// DeleteLike removes one user's like on one movie.
func (c *HTTPClient) DeleteLike(ctx context.Context, like domain.Like) error {
	q := url.Values{
		"user_id":  {like.UserID.String()},
		"filme_id": {strconv.FormatInt(like.MovieID, 10)},
	}
	return c.do(ctx, http.MethodDelete, "/likes", q, nil, nil)
}

// DeleteMovieLikes removes every user's like on a movie. Admin only.
func (c *HTTPClient) DeleteMovieLikes(ctx context.Context, movieID int64) error {
	q := url.Values{"filme_id": {strconv.FormatInt(movieID, 10)}}
	return c.do(ctx, http.MethodDelete, "/likes", q, nil, nil)
}

// AuthResult is the answer to a successful signup or login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Tipo     string `json:"tipo,omitempty"`
}

type authResponse struct {
	AccessToken string      `json:"accessToken"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	User        userPayload `json:"user"`
}

// Signup registers an account with the given role and stores the new token.
func (c *HTTPClient) Signup(ctx context.Context, email, password string, role domain.Role) (AuthResult, error) {
	return c.authenticate(ctx, "/auth/signup", credentialsRequest{Email: email, Password: password, Tipo: role.Tipo()})
}

// Login exchanges credentials for a token and stores it.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", credentialsRequest{Email: email, Password: password})
}

func (c *HTTPClient) authenticate(ctx context.Context, path string, req credentialsRequest) (AuthResult, error) {
	c.SetToken("")
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, path, nil, req, &resp); err != nil {
		return AuthResult{}, err
	}
	c.SetToken(resp.AccessToken)
	return AuthResult{Token: resp.AccessToken, ExpiresAt: resp.ExpiresAt, User: resp.User.toDomain()}, nil
}

type recommendationRequest struct {
	Name string `json:"nome"`
	Text string `json:"indicacao"`
}

// SubmitRecommendation sends a free-text suggestion. No sign-in needed.
func (c *HTTPClient) SubmitRecommendation(ctx context.Context, name, text string) (domain.Recommendation, error) {
	var rec domain.Recommendation
	err := c.do(ctx, http.MethodPost, "/recommendations", nil, recommendationRequest{Name: name, Text: text}, &rec)
	return rec, err
}

// ListRecommendations returns the newest suggestions first. Admin only.
func (c *HTTPClient) ListRecommendations(ctx context.Context, limit int) ([]domain.Recommendation, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var recs []domain.Recommendation
	if err := c.do(ctx, http.MethodGet, "/recommendations", q, nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
