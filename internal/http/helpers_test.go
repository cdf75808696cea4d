package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Clark-Hu/cineadmin/internal/auth"
	"github.com/Clark-Hu/cineadmin/internal/config"
	"github.com/Clark-Hu/cineadmin/internal/logging"
	"github.com/Clark-Hu/cineadmin/internal/repository"
	"github.com/Clark-Hu/cineadmin/internal/store"
	"github.com/Clark-Hu/cineadmin/internal/store/storetest"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testConfig() config.Config {
	return config.Config{
		Port:                "0",
		JWTSecret:           testSecret,
		JWTIssuer:           "cineadmin",
		AccessTokenTTLMins:  60,
		RecommendRatePerMin: 3,
		ReadTimeoutSecs:     15,
		WriteTimeoutSecs:    15,
		IdleTimeoutSecs:     60,
	}
}

func testTokens() *auth.JWTManager {
	return auth.NewJWTManager(testSecret, "cineadmin", time.Hour)
}

func buildTestServer(tb testing.TB) *Server {
	tb.Helper()
	pool := storetest.NewPool(tb, "movies_test_handlers")
	st := store.Wrap(pool, store.Options{ConnTimeout: 2 * time.Second})
	return New(testConfig(), st, repository.New(st), nil, testTokens(), logging.Discard())
}

func doRequest(tb testing.TB, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	tb.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			tb.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.10:4321"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(tb testing.TB, rec *httptest.ResponseRecorder, dst interface{}) {
	tb.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		tb.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

type account struct {
	ID    uuid.UUID
	Token string
}

func signupAccount(tb testing.TB, srv *Server, email, tipo string) account {
	tb.Helper()
	rec := doRequest(tb, srv, http.MethodPost, "/auth/signup", "", signupRequest{Email: email, Password: "secret1", Tipo: tipo})
	if rec.Code != http.StatusCreated {
		tb.Fatalf("signup %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	var resp authResponse
	decodeBody(tb, rec, &resp)
	return account{ID: resp.User.ID, Token: resp.AccessToken}
}

func createMovie(tb testing.TB, srv *Server, admin account, title string) int64 {
	tb.Helper()
	rec := doRequest(tb, srv, http.MethodPost, "/movies", admin.Token, map[string]interface{}{
		"titulo": title, "genero": "Drama", "ano": 2001,
	})
	if rec.Code != http.StatusCreated {
		tb.Fatalf("create movie %s: status %d body %s", title, rec.Code, rec.Body.String())
	}
	var movie struct {
		ID int64 `json:"id"`
	}
	decodeBody(tb, rec, &movie)
	return movie.ID
}

func likesPath(userID uuid.UUID, movieID int64) string {
	return fmt.Sprintf("/likes?user_id=%s&filme_id=%d", userID, movieID)
}

func itoa(id int64) string {
	return fmt.Sprintf("%d", id)
}

// memCache is an in-process catalogCache. beforeSet runs once, ahead of the
// next SetJSON, to interleave a write with a list request.
type memCache struct {
	mu        sync.Mutex
	values    map[string][]byte
	versions  map[string]int64
	beforeSet func()
}

func newMemCache() *memCache {
	return &memCache{values: make(map[string][]byte), versions: make(map[string]int64)}
}

func (c *memCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	raw, ok := c.values[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	hook := c.beforeSet
	c.beforeSet = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = raw
	return nil
}

func (c *memCache) Version(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[key], nil
}

func (c *memCache) Bump(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[key]++
	return nil
}
