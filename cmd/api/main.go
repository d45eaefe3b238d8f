// Package main is the entry point for the SmartCity complaints API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/smartcity/complaints-api/docs"
	"github.com/smartcity/complaints-api/internal/api"
	"github.com/smartcity/complaints-api/internal/core/ports"
	"github.com/smartcity/complaints-api/internal/core/service"
	"github.com/smartcity/complaints-api/internal/infrastructure/config"
	mongodb "github.com/smartcity/complaints-api/internal/infrastructure/db/mongo"
	redisdb "github.com/smartcity/complaints-api/internal/infrastructure/db/redis"
	"github.com/smartcity/complaints-api/internal/infrastructure/http/handlers"
	"github.com/smartcity/complaints-api/internal/infrastructure/queue"
	"github.com/smartcity/complaints-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title SmartCity Complaints API
// @version 1.0
// @description Municipal complaint management: citizens file cases, admins assign them to their employees, employees resolve them.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "complaints-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	users := mongodb.NewUserRepository(db)
	cases := mongodb.NewCaseRepository(db)
	events := mongodb.NewCaseEventRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, cases, events); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Auth ---
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err := tokens.Validate(); err != nil {
		return err
	}
	revocations := redisdb.NewRevocationStore(rdb, cfg.JWTTTL)

	// --- Audit log writers ---
	dispatcher := queue.NewDispatcher(cfg.EventWorkers, events, logger.Component("dispatcher"))
	dispatcher.Start()

	// --- Services ---
	authService := service.NewAuthService(users, tokens, logger.Component("auth_service"))
	identityService := service.NewIdentityService(users, revocations, logger.Component("identity_service"))
	caseService := service.NewCaseService(cases, users, events, dispatcher, cfg.RewardPointsOnResolve, logger.Component("case_service"))

	if cfg.Bootstrap.Enabled() {
		b := cfg.Bootstrap
		if _, err := authService.EnsureAdmin(ctx, ports.SignupInput{
			Username:    b.Username,
			Email:       b.Email,
			Password:    b.Password,
			State:       b.State,
			District:    b.District,
			City:        b.City,
			PhoneNumber: b.PhoneNumber,
		}); err != nil {
			return err
		}
	}

	e := api.NewRouter(api.Dependencies{
		Auth:        authService,
		Identity:    identityService,
		Cases:       caseService,
		Tokens:      tokens,
		TokenTTL:    tokens.TTL(),
		Revocations: revocations,
		Readiness: map[string]handlers.Check{
			"mongo": handlers.MongoCheck(db),
			"redis": handlers.RedisCheck(rdb),
		},
		Logger:     logger.Component("http"),
		EnableDocs: !cfg.IsProduction(),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting complaints api")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	// Requests are drained; flush the audit events they queued.
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("dispatcher did not drain before the deadline")
	}

	log.Info().Msg("shutdown complete")
	return nil
}
