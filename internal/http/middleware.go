package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/Clark-Hu/cineadmin/internal/domain"
	"github.com/Clark-Hu/cineadmin/internal/repository"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	peerAddrKey
)

// rememberPeer records the socket address before RealIP rewrites RemoteAddr
// from client-supplied headers.
func rememberPeer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), peerAddrKey, r.RemoteAddr)))
	})
}

func peerAddr(r *http.Request) string {
	if addr, ok := r.Context().Value(peerAddrKey).(string); ok && addr != "" {
		return addr
	}
	return r.RemoteAddr
}

func withUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func userIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

// authenticate attaches the caller's user id when a bearer token is present.
// Requests without one continue anonymously; a bad token is rejected.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := s.tokens.ValidateAccessToken(token)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		kv := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		}
		if status >= 500 {
			s.logger.Error("http request", kv...)
			return
		}
		s.logger.Info("http request", kv...)
	})
}

// requireUser returns the caller's id or answers 401.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := userIDFrom(r.Context())
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return uuid.Nil, false
	}
	return id, true
}

// requireCaller loads the calling user so handlers can check the stored role.
// Roles are never taken from the token.
func (s *Server) requireCaller(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	id, ok := s.requireUser(w, r)
	if !ok {
		return domain.User{}, false
	}
	user, err := s.repo.Users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Account no longer exists")
			return domain.User{}, false
		}
		s.respondInternal(w, "load caller", err)
		return domain.User{}, false
	}
	return user, true
}

// requireAdmin answers 403 unless the caller's stored role allows moderation.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	user, ok := s.requireCaller(w, r)
	if !ok {
		return domain.User{}, false
	}
	if !domain.CapabilitiesFor(user.Role).CanModerate {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Admin role required")
		return domain.User{}, false
	}
	return user, true
}
