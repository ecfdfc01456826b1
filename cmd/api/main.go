// @title                       DevConnector API
// @version                     1.0
// @description                 Developer profiles, posts, likes and comments.
// @BasePath                    /
// @securityDefinitions.apikey  TokenAuth
// @in                          header
// @name                        x-auth-token
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/devconnector/devconnector-api/internal/api"
	"github.com/devconnector/devconnector-api/internal/api/handler"
	"github.com/devconnector/devconnector-api/internal/api/middleware"
	"github.com/devconnector/devconnector-api/internal/core/ports"
	"github.com/devconnector/devconnector-api/internal/core/service"
	"github.com/devconnector/devconnector-api/internal/infrastructure/avatar"
	"github.com/devconnector/devconnector-api/internal/infrastructure/db/memory"
	"github.com/devconnector/devconnector-api/internal/infrastructure/db/mongo"
	"github.com/devconnector/devconnector-api/internal/infrastructure/db/redis"
	"github.com/devconnector/devconnector-api/internal/infrastructure/github"
	"github.com/devconnector/devconnector-api/internal/infrastructure/queue"
	"github.com/devconnector/devconnector-api/internal/pkg/config"
	"github.com/devconnector/devconnector-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	users    ports.UserRepository
	profiles ports.ProfileRepository
	posts    ports.PostRepository
	pinger   handler.Pinger
	close    func(context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "devconnector-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("close storage")
		}
	}()

	pingers := map[string]handler.Pinger{cfg.StorageDriver: st.pinger}

	var (
		rdb       *goredis.Client
		limiter   middleware.Limiter
		repoCache github.Cache
		tokenOpts []service.TokenOption
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		pingers["redis"] = redis.NewPinger(rdb)
		limiter = redis.NewRateLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window)
		repoCache = redis.NewJSONCache(rdb, "gh:repos:", cfg.GitHub.CacheTTL)
		tokenOpts = append(tokenOpts, service.WithDenylist(redis.NewDenylist(rdb)))
	} else {
		log.Warn().Msg("redis disabled: no rate limiting, no token revocation, no github cache")
	}

	// The serializer outlives ctx: in-flight requests still need it while the
	// router drains.
	serializerCtx, stopSerializer := context.WithCancel(context.Background())
	defer stopSerializer()
	serializer := queue.NewSerializer(cfg.AggregateWorkers, logger.Component("serializer"))
	serializer.Start(serializerCtx)

	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger.Component("tokens"), tokenOpts...)
	repos := github.NewClient(cfg.GitHub.BaseURL, cfg.GitHub.Token, repoCache, logger.Component("github"))

	router := api.NewRouter(api.Deps{
		Auth:       service.NewAuthService(st.users, tokens, avatar.NewGravatar(), logger.Component("auth")),
		Profiles:   service.NewProfileService(st.profiles, st.users, repos, serializer, logger.Component("profiles")),
		Posts:      service.NewPostService(st.posts, st.users, serializer, logger.Component("posts")),
		Accounts:   service.NewAccountService(st.users, st.profiles, st.posts, serializer, logger.Component("accounts")),
		Tokens:     tokens,
		Limiter:    limiter,
		Pingers:    pingers,
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
		Logger:     logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageDriver).Msg("server started")
		if err := router.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = router.Shutdown(shutdownCtx)
	stopSerializer()
	return err
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StorageDriver == config.StorageMemory {
		m := memory.NewStore()
		return &stores{
			users:    m.Users,
			profiles: m.Profiles,
			posts:    m.Posts,
			pinger:   m,
			close:    func(context.Context) error { return nil },
		}, nil
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	m := mongo.NewStore(db)
	if err := m.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &stores{
		users:    m.Users,
		profiles: m.Profiles,
		posts:    m.Posts,
		pinger:   m,
		close:    client.Disconnect,
	}, nil
}
