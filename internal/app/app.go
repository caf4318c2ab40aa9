package app

import (
	"context"
	"fmt"
	"net"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/clients/redis"
	"github.com/yungbote/lingobridge-backend/internal/data/db"
	httpserver "github.com/yungbote/lingobridge-backend/internal/http"
	"github.com/yungbote/lingobridge-backend/internal/http/validation"
	"github.com/yungbote/lingobridge-backend/internal/observability"
	"github.com/yungbote/lingobridge-backend/internal/platform/envutil"
	"github.com/yungbote/lingobridge-backend/internal/platform/logger"
	"github.com/yungbote/lingobridge-backend/internal/realtime"
	"github.com/yungbote/lingobridge-backend/internal/realtime/bus"
	"github.com/yungbote/lingobridge-backend/internal/services"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *httpserver.Server
	Cfg      Config
	Repos    Repos
	Services Services
	SSEHub   *realtime.SSEHub

	dbService    *db.Service
	redis        *goredis.Client
	bus          bus.Bus
	shutdownOtel func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	a := &App{Log: log, Cfg: cfg}
	a.shutdownOtel = observability.InitOTel(ctx, log, cfg.Otel)

	dbService, err := db.NewService(cfg.DB, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init db: %w", err)
	}
	a.dbService = dbService
	a.DB = dbService.DB()
	if err := db.AutoMigrateAll(a.DB); err != nil {
		a.Close()
		return nil, err
	}
	if cfg.SeedCatalog {
		seed, err := db.LoadCatalogSeed()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("load catalog seed: %w", err)
		}
		if err := db.SeedCatalog(ctx, a.DB, log, seed); err != nil {
			a.Close()
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
	}

	a.SSEHub = realtime.NewSSEHub(log)
	var (
		emit  services.SSEEmitter = &services.HubEmitter{Hub: a.SSEHub}
		cache redis.Cache
	)
	if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		a.redis = rdb
		b, err := bus.NewRedisBus(log, rdb, cfg.RedisChannel)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init sse bus: %w", err)
		}
		a.bus = b
		emit = &services.BusEmitter{Bus: b, Log: log}
		cache = redis.NewCache(rdb, "lingobridge:")
	} else {
		log.Info("REDIS_ADDR not set; realtime stays in-process and reports use a memory cache")
		cache = redis.NewMemoryCache()
	}

	if err := validation.Register(); err != nil {
		a.Close()
		return nil, fmt.Errorf("register validators: %w", err)
	}

	a.Repos = wireRepos(a.DB, log)
	a.Services, err = wireServices(a.DB, log, cfg, a.Repos, emit, cache)
	if err != nil {
		a.Close()
		return nil, err
	}
	handlers := wireHandlers(log, a.DB, cfg, a.Services, a.SSEHub)
	middleware := wireMiddleware(log, cfg, a.Services)

	a.Server = httpserver.NewServer(httpserver.RouterConfig{
		Log:                log,
		ServiceName:        cfg.Otel.ServiceName,
		CORSOrigins:        cfg.CORSOrigins,
		Tracing:            cfg.Otel.Enabled,
		AuthMiddleware:     middleware.Auth,
		HealthHandler:      handlers.Health,
		AuthHandler:        handlers.Auth,
		StudentHandler:     handlers.Student,
		ModuleHandler:      handlers.Module,
		ProgressHandler:    handlers.Progress,
		AchievementHandler: handlers.Achievement,
		ExamHandler:        handlers.Exam,
		CertificateHandler: handlers.Certificate,
		ReportHandler:      handlers.Report,
		RealtimeHandler:    handlers.Realtime,
	})
	return a, nil
}

// Start launches background work: the bus forwarder when redis is configured.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.bus != nil {
		if err := a.bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start sse forwarder: %w", err)
		}
	}
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := net.JoinHostPort("", a.Cfg.Port)
	a.Log.Info("Server listening", "addr", addr)
	return a.Server.Run(ctx, addr, a.Cfg.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.bus != nil {
		_ = a.bus.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn("Redis close failed", "error", err)
		}
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("DB close failed", "error", err)
		}
	}
	if a.shutdownOtel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.shutdownOtel(ctx); err != nil {
			a.Log.Warn("OTel shutdown failed", "error", err)
		}
		cancel()
	}
	a.Log.Sync()
}
