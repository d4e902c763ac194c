package app

import (
	"context"
	"log/slog"

	httpapp "juin_store/internal/app/http"
	"juin_store/internal/config"
	"juin_store/internal/lib/jwt"
	"juin_store/internal/repository"
	accountsvc "juin_store/internal/services/account_service"
	tokensvc "juin_store/internal/services/token_service"
	"juin_store/internal/storage/postgresql"
	redisapp "juin_store/internal/storage/redis"
	httprouters "juin_store/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	storage    *postgresql.Storage
	redis      *redisapp.Client
}

func New(log *slog.Logger, cfg *config.Config) *App {
	ctx := context.Background()

	if err := postgresql.RunMigrations(ctx, cfg.DSN); err != nil {
		panic(err)
	}

	storage, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		panic(err)
	}

	repo := repository.NewRepository(storage.Pool())

	// token rows live in Postgres unless a Redis address is configured
	tokenRepo := repo.Token
	var redisClient *redisapp.Client
	if cfg.Redis.Addr != "" {
		redisClient = redisapp.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		tokenRepo = repository.NewRedisTokenRepo(redisClient)
	}

	codec := jwt.NewCodec([]byte(cfg.Token.Secret), cfg.Token.AccessTTL, cfg.Token.RefreshTTL)

	accountService := accountsvc.NewAccountService(log, repo.Account, cfg.Cache.AccountTTL)
	tokenService := tokensvc.NewTokenService(log, codec, tokenRepo, accountService)

	routers := httprouters.NewRouter(log, tokenService, accountService)

	server := httpapp.New(log, cfg.HTTP.Host, cfg.HTTP.Port, routers)
	server.BuildRouters()

	return &App{
		HTTPServer: server,
		storage:    storage,
		redis:      redisClient,
	}
}

func (a *App) Stop() {
	if err := a.HTTPServer.Stop(); err != nil {
		panic(err)
	}

	if a.redis != nil {
		_ = a.redis.Stop()
	}

	a.storage.Stop()
}
