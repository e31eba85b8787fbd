package app

import (
	"slices"

	"gorm.io/gorm"

	vowhttp "github.com/yungbote/vowbridge-backend/internal/http"
	httpH "github.com/yungbote/vowbridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/vowbridge-backend/internal/http/middleware"
	"github.com/yungbote/vowbridge-backend/internal/observability"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
	"github.com/yungbote/vowbridge-backend/internal/realtime"
)

func wireRouterConfig(db *gorm.DB, log *logger.Logger, cfg Config, metrics *observability.Metrics, services Services, hub *realtime.Hub) vowhttp.RouterConfig {
	log.Info("Wiring handlers...")
	origins := cfg.CORSOrigins()
	var allowOrigin func(string) bool
	if len(origins) > 0 {
		allowOrigin = func(o string) bool { return slices.Contains(origins, o) }
	}

	return vowhttp.RouterConfig{
		Log:     log,
		Metrics: metrics,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, httpMW.AuthConfig{
			Secret:   cfg.Auth.JWTSecret,
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
			Leeway:   cfg.Auth.Leeway,
		}),
		CORSOrigins:   origins,
		ExposeMetrics: cfg.Metrics.ExposeOnAPI,

		HealthHandler:   httpH.NewHealthHandler(db),
		UserHandler:     httpH.NewUserHandler(services.Users),
		EventHandler:    httpH.NewEventHandler(log, services.Events),
		CatalogHandler:  httpH.NewCatalogHandler(services.Catalog),
		RegistryHandler: httpH.NewRegistryHandler(log, services.Registry),
		RealtimeHandler: httpH.NewRealtimeHandler(log, hub, services.Registry, metrics, allowOrigin),
		VendorHandler:   httpH.NewVendorHandler(log, services.Vendors),
	}
}
