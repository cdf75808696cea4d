package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Clark-Hu/cineadmin/internal/auth"
	"github.com/Clark-Hu/cineadmin/internal/cache"
	"github.com/Clark-Hu/cineadmin/internal/config"
	httpserver "github.com/Clark-Hu/cineadmin/internal/http"
	"github.com/Clark-Hu/cineadmin/internal/logging"
	"github.com/Clark-Hu/cineadmin/internal/repository"
	"github.com/Clark-Hu/cineadmin/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootLogger := logging.New(os.Stderr, "info", "text")
	cfg, err := config.Load()
	if err != nil {
		bootLogger.Fatal("config error", "err", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat).WithPrefix("cineadmin")

	dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		logger.Fatal("connect database", "err", err)
	}
	defer st.Close()

	if err := st.Migrate(dbCtx); err != nil {
		logger.Fatal("migrate database", "err", err)
	}

	movieCache, err := cache.New(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		Prefix:   "cineadmin",
		Logger:   logger,
	})
	if err != nil {
		logger.Warn("redis unavailable, catalog cache disabled", "err", err)
		movieCache = nil
	}
	defer movieCache.Close()

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.AccessTokenTTLMins)*time.Minute)

	repo := repository.New(st)
	server := httpserver.New(cfg, st, repo, movieCache, tokens, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			logger.Error("server error", "err", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("graceful shutdown error", "err", err)
	}
	logger.Info("server stopped")
}
