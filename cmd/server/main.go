// @title           VideoTube API
// @version         1.0
// @description     User accounts, sessions, profiles and channels of the VideoTube backend.
// @BasePath        /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/videotube/videotube-api/internal/api"
	"github.com/videotube/videotube-api/internal/api/handler"
	"github.com/videotube/videotube-api/internal/core/service"
	mongodb "github.com/videotube/videotube-api/internal/infrastructure/db/mongo"
	redisdb "github.com/videotube/videotube-api/internal/infrastructure/db/redis"
	"github.com/videotube/videotube-api/internal/infrastructure/queue"
	"github.com/videotube/videotube-api/internal/infrastructure/storage"
	"github.com/videotube/videotube-api/internal/infrastructure/token"
	"github.com/videotube/videotube-api/internal/pkg/config"
	"github.com/videotube/videotube-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		l := logger.Get()
		l.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{})
		return err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Console: !cfg.IsProduction(),
		Service: "videotube-api",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	media, err := storage.NewMinIOStorage(ctx, storage.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
		PublicURL: cfg.MinIO.PublicURL,
	})
	if err != nil {
		return err
	}

	tokens, err := token.NewManager(token.Config{
		AccessSecret:  cfg.Tokens.AccessSecret,
		AccessTTL:     cfg.Tokens.AccessTTL,
		RefreshSecret: cfg.Tokens.RefreshSecret,
		RefreshTTL:    cfg.Tokens.RefreshTTL,
	})
	if err != nil {
		return err
	}

	// Cleanup workers outlive request contexts and are drained on shutdown.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	cleaner := queue.NewDispatcher(cfg.CleanupWorkers, media, logger.Component("media_cleanup"))
	cleaner.Start(workerCtx)

	users := mongodb.NewUserRepository(db)
	subscriptions := mongodb.NewSubscriptionRepository(db)
	blacklist := redisdb.NewTokenBlacklist(rdb)

	proxies, err := cfg.ProxyRanges()
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Dependencies{
		Auth:      service.NewAuthService(users, tokens, blacklist, media, cleaner, logger.Component("auth")),
		Profile:   service.NewProfileService(users, media, cleaner, logger.Component("profile")),
		Channels:  service.NewChannelService(users, subscriptions, logger.Component("channel")),
		Tokens:    tokens,
		Blacklist: blacklist,
		Users:     users,
		Limiter:   redisdb.NewFixedWindowLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window),
		Health: map[string]handler.Pinger{
			"mongodb": handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx, nil) }),
			"redis":   handler.PingFunc(func(ctx context.Context) error { return redisdb.Ping(ctx, rdb, 2*time.Second) }),
			"minio":   media,
		},
		Log: log,
	}, api.Options{
		CORSOrigins: cfg.CORSOrigins,
		BodyLimit:   cfg.BodyLimit,
		Cookies: handler.CookieOptions{
			Secure:   cfg.Cookies.Secure,
			SameSite: cfg.Cookies.SameSiteMode(),
			Domain:   cfg.Cookies.Domain,
		},
		TrustedProxies: proxies,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	if err := cleaner.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("media cleanup did not drain")
	}
	log.Info().Msg("server stopped")
	return nil
}
