package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/vowbridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/vowbridge-backend/internal/http/middleware"
	"github.com/yungbote/vowbridge-backend/internal/observability"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

const serviceName = "vowbridge-api"

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware
	CORSOrigins    []string
	// ExposeMetrics mounts GET /metrics on the API router in addition to the metrics listener.
	ExposeMetrics bool

	HealthHandler   *httpH.HealthHandler
	UserHandler     *httpH.UserHandler
	EventHandler    *httpH.EventHandler
	CatalogHandler  *httpH.CatalogHandler
	RegistryHandler *httpH.RegistryHandler
	RealtimeHandler *httpH.RealtimeHandler
	VendorHandler   *httpH.VendorHandler
}

// NewRouter mounts every API route. Wildcards under /events and /vendors are all named
// :id because gin requires one name per path segment.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.SecurityHeaders())
	r.Use(httpMW.CORS(cfg.CORSOrigins...))
	r.Use(httpMW.Compress())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.ExposeMetrics && cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")

	// Public routes still resolve a caller when a token is present.
	public := api.Group("/")
	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		public.Use(cfg.AuthMiddleware.OptionalAuth())
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Webhooks authenticate by signature, not bearer token.
	if cfg.RegistryHandler != nil {
		api.POST("/webhooks/stripe", cfg.RegistryHandler.StripeWebhook)
	}

	// Identity
	if cfg.UserHandler != nil {
		protected.GET("/auth/user", cfg.UserHandler.GetAuthUser)
	}

	// Events, guests, timeline
	if cfg.EventHandler != nil {
		protected.POST("/events", cfg.EventHandler.CreateEvent)
		protected.GET("/events", cfg.EventHandler.ListEvents)
		public.GET("/events/:id", cfg.EventHandler.GetEvent)

		protected.POST("/events/:id/guests", cfg.EventHandler.AddGuest)
		protected.GET("/events/:id/guests", cfg.EventHandler.ListGuests)
		protected.POST("/events/:id/guests/invitations", cfg.EventHandler.SendInvitations)
		public.PATCH("/guests/:id/rsvp", cfg.EventHandler.UpdateRSVP)

		protected.POST("/events/:id/timeline", cfg.EventHandler.AddTimelineItem)
		public.GET("/events/:id/timeline", cfg.EventHandler.ListTimeline)
	}

	// Catalog
	if cfg.CatalogHandler != nil {
		public.GET("/products", cfg.CatalogHandler.ListProducts)
		public.GET("/products/:id", cfg.CatalogHandler.GetProduct)
		public.GET("/categories", cfg.CatalogHandler.ListCategories)
	}

	// Registry and contributions
	if cfg.RegistryHandler != nil {
		protected.POST("/registry-items", cfg.RegistryHandler.CreateItem)
		protected.PATCH("/registry-items/:id", cfg.RegistryHandler.UpdateItem)
		public.GET("/registry-items/:id", cfg.RegistryHandler.GetItem)
		public.GET("/registry-items/:id/contributions", cfg.RegistryHandler.ListContributions)
		public.GET("/events/:id/registry", cfg.RegistryHandler.ListRegistry)
		public.GET("/events/:id/registry/qr", cfg.RegistryHandler.RegistryQR)
		public.GET("/events/:id/registry/card", cfg.RegistryHandler.RegistryCard)

		public.POST("/contributions", cfg.RegistryHandler.Contribute)
		public.POST("/create-payment-intent", cfg.RegistryHandler.CreatePaymentIntent)
	}

	// Live registry feed
	if cfg.RealtimeHandler != nil {
		public.GET("/events/:id/registry/stream", cfg.RealtimeHandler.Stream)
		public.GET("/events/:id/registry/live", cfg.RealtimeHandler.Live)
	}

	// Vendors, reviews, portfolio, bookings
	if cfg.VendorHandler != nil {
		protected.POST("/vendors", cfg.VendorHandler.CreateVendor)
		public.GET("/vendors", cfg.VendorHandler.ListVendors)
		public.GET("/vendors/:id", cfg.VendorHandler.GetVendor)
		protected.GET("/my-vendor", cfg.VendorHandler.MyVendor)

		protected.POST("/vendors/:id/reviews", cfg.VendorHandler.AddReview)
		public.GET("/vendors/:id/reviews", cfg.VendorHandler.ListReviews)

		protected.POST("/vendors/:id/portfolio", cfg.VendorHandler.AddPortfolioItem)
		public.GET("/vendors/:id/portfolio", cfg.VendorHandler.ListPortfolio)

		protected.POST("/vendors/:id/bookings", cfg.VendorHandler.CreateBooking)
		protected.GET("/my-bookings", cfg.VendorHandler.MyBookings)
		protected.PATCH("/bookings/:id/status", cfg.VendorHandler.UpdateBookingStatus)
	}

	return r
}
