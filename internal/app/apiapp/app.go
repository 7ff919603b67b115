package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/config"
	"github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/infra/httpclient"
	s3infra "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/infra/s3"
	pgrepo "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/repo/postgres"
	redrepo "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/repo/redis"
	authsvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/auth"
	avatarsvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/avatars"
	followsvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/follows"
	profilesvc "github.com/2024-2c-gruopo3-IS2/profile-microservice/internal/services/profiles"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
		if cfg.Postgres.Migrate {
			if err := pgrepo.Migrate(ctx, cfg.Postgres.DSN); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	emailCacheRepo := redrepo.NewEmailCacheRepo(redisClient)
	profileRepo := pgrepo.NewProfileRepo(pool)
	followRepo := pgrepo.NewFollowRepo(pool)

	var resolver authsvc.EmailResolver
	switch cfg.Auth.Mode {
	case "remote":
		resolver = authsvc.NewRemoteResolver(cfg.Auth.ServiceURL, httpclient.New(cfg.Auth.ClientTimeout))
	default:
		resolver = authsvc.NewJWTResolver(cfg.Auth.JWTSecret)
	}
	authService := authsvc.NewService(resolver, emailCacheRepo, cfg.Auth.CacheTTL)

	profileService := profilesvc.NewService(profileRepo)
	followService := followsvc.NewService(profileRepo, followRepo)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	avatarStorage := avatarsvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	avatarService := avatarsvc.NewService(profileRepo, avatarStorage)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:    authService,
		ProfileService: profileService,
		FollowService:  followService,
		AvatarService:  avatarService,
		Logger:         log,
		Config:         cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
