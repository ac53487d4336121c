package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/tasktracker/api/handler"
	"github.com/fastygo/tasktracker/internal/config"
	"github.com/fastygo/tasktracker/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/tasktracker/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/tasktracker/internal/infrastructure/redis"
	"github.com/fastygo/tasktracker/internal/middleware"
	"github.com/fastygo/tasktracker/internal/passhash"
	"github.com/fastygo/tasktracker/internal/router"
	"github.com/fastygo/tasktracker/internal/services/lifecycle"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	"github.com/fastygo/tasktracker/pkg/logger"
	"github.com/fastygo/tasktracker/pkg/token"
	"github.com/fastygo/tasktracker/repository"
	"github.com/fastygo/tasktracker/repository/memory"
	"github.com/fastygo/tasktracker/repository/postgres"
	redisRepo "github.com/fastygo/tasktracker/repository/redis"
	authUC "github.com/fastygo/tasktracker/usecase/auth"
	profileUC "github.com/fastygo/tasktracker/usecase/profile"
	taskUC "github.com/fastygo/tasktracker/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	for _, warning := range cfg.Warnings() {
		zapLogger.Warn(warning)
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen()

	var (
		userRepo repository.UserRepository
		taskRepo repository.TaskRepository
		probes   []monitor.Probe
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		userRepo = memory.NewUserRepository()
		taskRepo = memory.NewTaskRepository()
	default:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		userRepo = postgres.NewUserRepository(pool)
		taskRepo = postgres.NewTaskRepository(pool)
		probes = append(probes, monitor.PostgresProbe(pool))
	}

	var limiter repository.LoginLimiter
	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	if redisClient != nil {
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		probes = append(probes, monitor.RedisProbe(redisClient))
		if cfg.Auth.LoginMaxFailures > 0 {
			limiter = redisRepo.NewLoginLimiter(redisClient, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginFailureWindow)
		}
	}

	mon := monitor.New(cfg.Health.Interval, zapLogger, probes...)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop(ctx)
		return nil
	})

	tokens := token.NewService(token.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
	})

	authUseCase := authUC.New(userRepo, tokens, passhash.New(cfg.Auth.BcryptCost), limiter, zapLogger)
	profileUseCase := profileUC.New(userRepo, zapLogger)
	taskUseCase := taskUC.New(taskRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	opts := router.Options{EnablePprof: cfg.HTTP.EnablePprof}
	var metricsMiddleware middleware.Middleware
	if cfg.HTTP.EnableMetrics {
		opts.Metrics = middleware.NewMetrics(cfg.AppName)
		metricsMiddleware = opts.Metrics.Middleware
	}

	r := router.New(handlers, middleware.JWTAuth(tokens, zapLogger), opts)

	server := &fasthttp.Server{
		Handler: router.Handler(r,
			middleware.AccessLog(zapLogger),
			middleware.Recover(zapLogger),
			metricsMiddleware,
			middleware.SecurityHeaders,
			middleware.CORS(cfg.HTTP.CORSOrigins),
		),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	manager.Go("http_server", func() error {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver),
			zap.Bool("login_limiter", limiter != nil),
		)
		return server.ListenAndServe(cfg.Address())
	})
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	if err := manager.Wait(appCtx); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
