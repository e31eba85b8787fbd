package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/vowbridge-backend/internal/data/db"
	vowhttp "github.com/yungbote/vowbridge-backend/internal/http"
	"github.com/yungbote/vowbridge-backend/internal/observability"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
	"github.com/yungbote/vowbridge-backend/internal/realtime"
	"github.com/yungbote/vowbridge-backend/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Metrics  *observability.Metrics
	Repos    Repos
	Clients  Clients
	Services Services
	Hub      *realtime.Hub
	Server   *vowhttp.Server

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	bootLog, err := logger.New("development")
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	cfg, err := LoadConfig(bootLog)
	if err != nil {
		bootLog.Sync()
		return nil, err
	}
	log := bootLog
	if cfg.LogMode != "development" {
		if log, err = logger.New(cfg.LogMode); err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Telemetry.Environment,
		Version:     cfg.Telemetry.Version,
	})
	a.Metrics = observability.Init(log)

	pg, err := db.NewPostgresService(log, db.Config{
		Driver:          cfg.DB.Driver,
		DSN:             cfg.DB.DSN,
		Host:            cfg.DB.Host,
		Port:            cfg.DB.Port,
		User:            cfg.DB.User,
		Password:        cfg.DB.Password,
		Name:            cfg.DB.Name,
		SSLMode:         cfg.DB.SSLMode,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.pg = pg
	a.DB = pg.DB()
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrateAll(a.DB); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Repos = wireRepos(a.DB, log)
	a.Clients, err = wireClients(ctx, log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Services = wireServices(a.DB, log, cfg, a.Metrics, a.Repos, a.Clients)
	a.Hub = realtime.NewHub(log)
	a.Server = vowhttp.NewServer(wireRouterConfig(a.DB, log, cfg, a.Metrics, a.Services, a.Hub))
	a.Server.OnShutdown(a.Hub.CloseAll)
	return a, nil
}

// Run serves HTTP and runs background loops until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	a.Metrics.StartServer(gctx, a.Log, a.Cfg.Metrics.Addr)
	a.Metrics.StartPostgresCollector(gctx, a.Log, a.DB)

	// Progress messages published by any instance reach this instance's subscribers.
	g.Go(func() error {
		return a.Clients.Bus.StartForwarder(gctx, a.Hub.Broadcast)
	})

	if a.Clients.Temporal != nil {
		runner, err := temporalworker.NewRunner(a.Log, a.Clients.Temporal, a.Clients.TemporalCfg, a.Services.Ledger)
		if err != nil {
			return err
		}
		g.Go(func() error { return runner.Start(gctx) })
	}

	g.Go(func() error {
		return a.Server.Run(gctx, a.Cfg.HTTP.Addr, a.Cfg.HTTP.ShutdownTimeout)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("close database", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	a.Log.Sync()
}
