package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Clark-Hu/cineadmin/internal/auth"
	"github.com/Clark-Hu/cineadmin/internal/cache"
	"github.com/Clark-Hu/cineadmin/internal/config"
	"github.com/Clark-Hu/cineadmin/internal/logging"
	"github.com/Clark-Hu/cineadmin/internal/repository"
	"github.com/Clark-Hu/cineadmin/internal/store"
)

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg     config.Config
	store   *store.Store
	repo    *repository.Repository
	cache   catalogCache
	tokens  *auth.JWTManager
	limiter *ipLimiter
	logger  *log.Logger
	router  chi.Router
	httpSrv *http.Server
}

// New constructs the HTTP server with base middleware and routes.
// A nil cache disables catalog caching.
func New(cfg config.Config, st *store.Store, repo *repository.Repository, movieCache *cache.Cache, tokens *auth.JWTManager, logger *log.Logger) *Server {
	logger = logging.Component(logger, "http")

	s := &Server{
		cfg:     cfg,
		store:   st,
		repo:    repo,
		cache:   movieCache,
		tokens:  tokens,
		limiter: newIPLimiter(cfg.RecommendRatePerMin),
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(rememberPeer)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.authenticate)
	s.router = r

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
	})
	s.router.Get("/session", s.handleSession)
	s.router.Get("/users/{id}", s.handleGetUser)

	s.router.Route("/movies", func(r chi.Router) {
		r.Get("/", s.handleListMovies)
		r.Post("/", s.handleCreateMovie)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetMovie)
			r.Put("/", s.handleUpdateMovie)
			r.Delete("/", s.handleDeleteMovie)
		})
	})

	s.router.Route("/likes", func(r chi.Router) {
		r.Get("/", s.handleListLikes)
		r.Post("/", s.handleCreateLike)
		r.Delete("/", s.handleDeleteLikes)
	})

	s.router.Route("/recommendations", func(r chi.Router) {
		r.With(s.limiter.middleware(s)).Post("/", s.handleCreateRecommendation)
		r.Get("/", s.handleListRecommendations)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start boots the HTTP server and blocks until ctx ends or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Database unreachable")
		return
	}
	resp := map[string]any{"status": "ok"}
	if stat := s.store.Stats(); stat != nil {
		resp["db"] = map[string]int32{
			"total": stat.TotalConns(),
			"idle":  stat.IdleConns(),
			"max":   stat.MaxConns(),
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}
