package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/connex/contact-manager/internal/api"
	"github.com/connex/contact-manager/internal/api/handler"
	"github.com/connex/contact-manager/internal/core/ports"
	"github.com/connex/contact-manager/internal/core/service"
	"github.com/connex/contact-manager/internal/infrastructure/config"
	mongodb "github.com/connex/contact-manager/internal/infrastructure/db/mongo"
	redisdb "github.com/connex/contact-manager/internal/infrastructure/db/redis"
	"github.com/connex/contact-manager/internal/infrastructure/queue"
	"github.com/connex/contact-manager/pkg/logger"
)

// ServeCmd runs the HTTP API until SIGINT or SIGTERM.
type ServeCmd struct {
	EnvFile string `help:"Dotenv file loaded before reading the environment." default:".env" type:"path"`
}

// Run executes the serve command.
func (s *ServeCmd) Run() error {
	if err := loadDotEnv(s.EnvFile); err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "connex-api",
	})

	// --- Storage ---
	store, err := mongodb.Open(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	contacts, events := store.Contacts, store.Events

	checks := map[string]handler.Pinger{"mongodb": handler.MongoPinger(store.Database())}

	var idem ports.IdempotencyStore
	redisCfg := redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	if redisCfg.Enabled() {
		rdb, cache, err := redisdb.Open(ctx, redisCfg)
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		defer rdb.Close()
		idem = cache
		checks["redis"] = handler.RedisPinger(rdb)
	} else {
		log.Info().Msg("REDIS_ADDR not set, idempotency keys disabled")
	}

	// --- Audit trail ---
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, service.NewAuditService(events, logger.Component("audit")), logger.Component("dispatcher"))
	dispatcher.Start(workerCtx)
	defer func() {
		cancelWorkers()
		dispatcher.Wait()
	}()

	svc := service.NewContactService(contacts, events, idem, dispatcher, logger.Component("contacts"))

	e := api.NewRouter(api.Deps{
		Contacts: svc,
		Checks:   checks,
		Origins:  cfg.FrontendURLs,
		Logger:   logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("serve: shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// loadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
