package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/cineadmin/internal/domain"
	"github.com/Clark-Hu/cineadmin/internal/logging"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer secret", "secret", true},
		{"Bearer secret ", "secret", true},
		{"Bearer ", "", false},
		{"secret", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		token, ok := bearerToken(c.header)
		if ok != c.ok || token != c.token {
			t.Fatalf("bearerToken(%q) = %q, %v; want %q, %v", c.header, token, ok, c.token, c.ok)
		}
	}
}

func TestParseMovieID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{" 42 ", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"99999999999999999999", 0, true},
	}
	for _, tt := range tests {
		got, err := parseMovieID(tt.raw)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("parseMovieID(%q) = %d, %v", tt.raw, got, err)
		}
	}
}

func TestValidateSignup(t *testing.T) {
	role, err := validateSignup(signupRequest{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, role)

	role, err = validateSignup(signupRequest{Email: "a@example.com", Password: "secret1", Tipo: "admin"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)

	_, err = validateSignup(signupRequest{Email: "nope", Password: "123", Tipo: "root"})
	require.ErrorIs(t, err, domain.ErrValidation)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Errors, 3)
}

func TestRecommendationValidate(t *testing.T) {
	assert.NoError(t, recommendationRequest{Name: "Ana", Text: "Watch Ran"}.validate())
	assert.ErrorIs(t, recommendationRequest{}.validate(), domain.ErrValidation)

	long := make([]rune, maxRecommendationText+1)
	for i := range long {
		long[i] = 'á'
	}
	assert.Error(t, recommendationRequest{Name: "Ana", Text: string(long)}.validate())
}

func TestIPLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newIPLimiter(2)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("a"))
	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))
	assert.True(t, l.allow("b"), "other clients have their own bucket")

	now = now.Add(30 * time.Second)
	assert.True(t, l.allow("a"), "one token refills every 30s at 2/min")

	now = now.Add(limiterIdleTTL + time.Minute)
	l.allow("c")
	l.mu.Lock()
	_, kept := l.visitors["b"]
	l.mu.Unlock()
	assert.False(t, kept, "idle visitors are pruned")
}

func TestIPLimiterMiddleware(t *testing.T) {
	srv := &Server{logger: logging.Discard()}
	l := newIPLimiter(1)
	h := l.middleware(srv)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	for i, want := range []int{http.StatusCreated, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/recommendations", nil)
		req.RemoteAddr = "198.51.100.7:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "request %d", i)
	}
}

func TestRecommendationLimitIgnoresForwardedHeaders(t *testing.T) {
	srv := New(testConfig(), nil, nil, nil, testTokens(), logging.Discard())

	send := func(i int, header string) int {
		req := httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader(`{}`))
		req.RemoteAddr = "192.0.2.10:4321"
		req.Header.Set(header, fmt.Sprintf("203.0.113.%d", i+1))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		return rec.Code
	}

	var codes []int
	for i := 0; i < 6; i++ {
		header := "X-Forwarded-For"
		if i%2 == 1 {
			header = "X-Real-IP"
		}
		codes = append(codes, send(i, header))
	}
	assert.Equal(t, []int{
		http.StatusUnprocessableEntity,
		http.StatusUnprocessableEntity,
		http.StatusUnprocessableEntity,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes, "limit is per connection peer, whatever the headers claim")
}

func TestClientIPPrefersPeer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:80"
	assert.Equal(t, "203.0.113.9", clientIP(req))

	req = req.WithContext(context.WithValue(req.Context(), peerAddrKey, "192.0.2.10:4321"))
	assert.Equal(t, "192.0.2.10", clientIP(req))
}

func TestHealthzWithoutStore(t *testing.T) {
	srv := New(testConfig(), nil, nil, nil, testTokens(), logging.Discard())
	rec := doRequest(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestInvalidTokenRejected(t *testing.T) {
	srv := New(testConfig(), nil, nil, nil, testTokens(), logging.Discard())
	rec := doRequest(t, srv, http.MethodGet, "/session", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
