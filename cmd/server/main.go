// @title                       Idea Voting API
// @version                     1.0
// @description                 Register, log in, propose ideas and vote on them once per idea.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
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
	"golang.org/x/crypto/bcrypt"

	"github.com/ideaboard/idea-voting/internal/api"
	"github.com/ideaboard/idea-voting/internal/api/handler"
	"github.com/ideaboard/idea-voting/internal/core/ports"
	"github.com/ideaboard/idea-voting/internal/core/service"
	"github.com/ideaboard/idea-voting/internal/infrastructure/config"
	"github.com/ideaboard/idea-voting/internal/infrastructure/db/memory"
	mongostore "github.com/ideaboard/idea-voting/internal/infrastructure/db/mongo"
	"github.com/ideaboard/idea-voting/internal/infrastructure/db/postgres"
	redisstore "github.com/ideaboard/idea-voting/internal/infrastructure/db/redis"
	"github.com/ideaboard/idea-voting/internal/infrastructure/password"
	"github.com/ideaboard/idea-voting/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// store is what every backend provides to the services.
type store interface {
	ports.CredentialStore
	ports.IdeaRepository
	ports.VoteRepository
	handler.Pinger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.New(logger.Options{Service: "idea-voting"})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "idea-voting",
	})

	hasher := password.NewHasher(bcrypt.DefaultCost)
	ready := map[string]handler.Pinger{}

	st, closeStore, err := openStore(ctx, cfg, hasher, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer closeStore()
	ready[cfg.StoreDriver] = st

	var cache ports.VoteCountCache
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		counts := redisstore.NewVoteCountCache(rdb, cfg.Redis.CountTTL)
		cache = counts
		ready["redis"] = counts
		log.Info().Str("addr", cfg.Redis.Addr).Msg("vote count cache enabled")
	}

	if err := service.SeedRoles(ctx, st); err != nil {
		log.Fatal().Err(err).Msg("failed to seed roles")
	}

	tokens := service.NewTokenService(service.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})

	e := api.NewRouter(api.Dependencies{
		Auth:   service.NewAuthService(st, tokens, log),
		Ideas:  service.NewIdeaService(st, log),
		Votes:  service.NewVoteService(st, cache, log),
		Tokens: tokens,
		Ready:  ready,
		Log:    log,

		AllowOrigins: cfg.CORS.AllowOrigins,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openStore connects the backend named by STORE_DRIVER and prepares its
// schema. The returned func releases the connection.
func openStore(ctx context.Context, cfg *config.Config, hasher password.Hasher, log zerolog.Logger) (store, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		if cfg.Postgres.AutoMigrate {
			if err := postgres.RunMigrations(cfg.Postgres.URL); err != nil {
				return nil, nil, err
			}
			log.Info().Msg("database migrations applied")
		}
		db, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL, Timeout: cfg.Postgres.Timeout})
		if err != nil {
			return nil, nil, err
		}
		st := postgres.NewStore(db, hasher, cfg.Postgres.Timeout)
		return st, func() {
			if err := st.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close postgres")
			}
		}, nil

	case config.StoreMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		st := mongostore.NewStore(client, db, hasher)
		if err := st.EnsureIndexes(ctx); err != nil {
			_ = st.Close(context.Background())
			return nil, nil, err
		}
		return st, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := st.Close(closeCtx); err != nil {
				log.Warn().Err(err).Msg("failed to disconnect mongo")
			}
		}, nil

	default:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return memory.NewStore(hasher), func() {}, nil
	}
}
