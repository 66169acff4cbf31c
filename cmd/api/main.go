package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"virtual-pet/internal/adapters/auth/jwtauth"
	"virtual-pet/internal/adapters/auth/remote"
	idemmem "virtual-pet/internal/adapters/idempotency/memory"
	idemredis "virtual-pet/internal/adapters/idempotency/redis"
	"virtual-pet/internal/adapters/storage/badgerstore"
	mem "virtual-pet/internal/adapters/storage/memory"
	pg "virtual-pet/internal/adapters/storage/postgres"
	"virtual-pet/internal/config"
	"virtual-pet/internal/domain/interactions"
	"virtual-pet/internal/domain/pets"
	"virtual-pet/internal/middleware"
	"virtual-pet/internal/platform/logger"
	"virtual-pet/internal/ports/auth"
	"virtual-pet/internal/ports/idempotency"
	"virtual-pet/internal/router"
)

// @title virtual-pet API
// @version 1.0
// @description Mascota virtual: estado (happiness, hunger, age) y log de interacciones.
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	petRepo, store, closeStore, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("closing storage", map[string]any{"error": err.Error()})
		}
	}()

	verifier, err := newVerifier(cfg)
	if err != nil {
		return err
	}

	idem, closeIdem, err := openIdempotency(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeIdem() }()

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.NewRouter(router.Options{
			AuthVerifier:   verifier,
			Logger:         log,
			Pets:           petRepo,
			Interactions:   store,
			Idempotency:    idem,
			IdempotencyTTL: cfg.IdempotencyTTL,
			RateLimiter:    limiter,
			CallTimeout:    cfg.StoreCallTimeout,
			RequestTimeout: cfg.RequestTimeout,
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":    srv.Addr,
			"storage": cfg.StorageDriver,
			"auth":    cfg.AuthMode,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down", nil)
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped", nil)
	return nil
}

func openStorage(ctx context.Context, cfg config.Config, log logger.Logger) (pets.Repository, interactions.Store, func() error, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("postgres: %w", err)
		}
		if err := pg.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		return pg.NewPetsRepo(db), pg.NewInteractionsRepo(db), db.Close, nil

	case config.StorageBadger:
		s, err := badgerstore.Open(cfg.BadgerPath, log.With(map[string]any{"module": "badger"}))
		if err != nil {
			return nil, nil, nil, err
		}
		return s.Pets(), s.Interactions(), s.Close, nil

	default:
		m := mem.New()
		return m.Pets(), m.Interactions(), func() error { return nil }, nil
	}
}

// newVerifier devuelve nil en modo dev; el middleware usa X-Debug-User-ID.
func newVerifier(cfg config.Config) (auth.AuthVerifier, error) {
	switch cfg.AuthMode {
	case config.AuthJWT:
		return jwtauth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	case config.AuthRemote:
		return remote.NewVerifier(remote.Config{
			BaseURL: cfg.AuthBaseURL,
			APIKey:  cfg.AuthAPIKey,
		})
	default:
		return nil, nil
	}
}

func openIdempotency(ctx context.Context, cfg config.Config) (idempotency.Store, func() error, error) {
	if cfg.IdempotencyDriver != config.IdempotencyRedis {
		return idemmem.New(), func() error { return nil }, nil
	}
	s := idemredis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, nil, err
	}
	return s, s.Close, nil
}
