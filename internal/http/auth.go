package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Clark-Hu/cineadmin/internal/auth"
	"github.com/Clark-Hu/cineadmin/internal/domain"
	"github.com/Clark-Hu/cineadmin/internal/repository"
)

const maxEmailLen = 254

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Tipo     string `json:"tipo"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Tipo  string    `json:"tipo"`
}

type authResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        userResponse `json:"user"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Tipo: u.Role.Tipo()}
}

func validateSignup(req signupRequest) (domain.Role, error) {
	var errs []domain.FieldError
	email := strings.TrimSpace(req.Email)
	if email == "" || len(email) > maxEmailLen || !strings.Contains(email, "@") {
		errs = append(errs, domain.FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if len(req.Password) < auth.MinPasswordLen {
		errs = append(errs, domain.FieldError{Field: "password", Message: "must be at least 6 characters"})
	}
	tipo := req.Tipo
	if strings.TrimSpace(tipo) == "" {
		tipo = domain.TipoUsuario
	}
	role := domain.ParseRole(tipo)
	if role == domain.RoleGuest {
		errs = append(errs, domain.FieldError{Field: "tipo", Message: "must be usuario or admin"})
	}
	if len(errs) > 0 {
		return domain.RoleGuest, domain.NewValidationErrors(errs)
	}
	return role, nil
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	role, err := validateSignup(req)
	if err != nil {
		s.respondValidation(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.respondInternal(w, "hash password", err)
		return
	}
	user, err := s.repo.Users.Create(r.Context(), domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.respondError(w, http.StatusConflict, "CONFLICT", "Email already registered")
			return
		}
		s.respondInternal(w, "create user", err)
		return
	}

	s.logger.Info("user signed up", "user_id", user.ID, "role", user.Role)
	s.respondWithToken(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	user, err := s.repo.Users.GetByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.respondInternal(w, "load user for login", err)
		return
	}
	if err != nil || auth.CheckPassword(user.PasswordHash, req.Password) != nil {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
		return
	}

	s.respondWithToken(w, http.StatusOK, user)
}

func (s *Server) respondWithToken(w http.ResponseWriter, status int, user domain.User) {
	token, expiresAt, err := s.tokens.GenerateAccessToken(user.ID)
	if err != nil {
		s.respondInternal(w, "issue token", err)
		return
	}
	s.respondJSON(w, status, authResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        toUserResponse(user),
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, domain.Session{UserID: id})
}

// handleGetUser returns a profile to its owner or to an admin.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	callerID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid user id")
		return
	}
	if targetID != callerID {
		if _, ok := s.requireAdmin(w, r); !ok {
			return
		}
	}

	user, err := s.repo.Users.GetByID(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.respondInternal(w, "get user", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}
