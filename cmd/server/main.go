package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rjtc/pms-sync/internal/api"
	"github.com/rjtc/pms-sync/internal/core/service"
	"github.com/rjtc/pms-sync/internal/infrastructure/auth"
	mongodb "github.com/rjtc/pms-sync/internal/infrastructure/db/mongo"
	redisdb "github.com/rjtc/pms-sync/internal/infrastructure/db/redis"
	"github.com/rjtc/pms-sync/internal/infrastructure/images"
	"github.com/rjtc/pms-sync/internal/infrastructure/queue"
	"github.com/rjtc/pms-sync/internal/pkg/config"
	"github.com/rjtc/pms-sync/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}()

	creds := mongodb.NewCredentialsRepository(db)
	if err := creds.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongodb index creation failed")
	}

	store := mongodb.NewDocumentStore(db)
	snapshots := redisdb.NewSessionStore(rdb, cfg.Redis.Namespace)
	authenticator := auth.NewAuthenticator(creds, cfg.OAuthSecret)
	tokens := auth.NewJWTIssuer(cfg.JWTSecret, 24*time.Hour)
	imageFetcher := images.NewHTTPFetcher(10 * time.Second)

	// --- Core services ---
	cache := service.NewTaskCache(store, log)
	coordinator := service.NewMutationCoordinator(store, cache, log)
	members := service.NewMemberHydrator(store, imageFetcher, log)
	sessions := service.NewSessionManager(store, authenticator, snapshots, tokens, log)

	prefetch := queue.NewPrefetcher(cfg.PrefetchWorkers, cache, log)
	prefetch.Start(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Reader:    cache,
		Writer:    coordinator,
		Members:   members,
		Sessions:  sessions,
		Prefetch:  prefetch,
		Mongo:     db,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
