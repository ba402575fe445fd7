package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/peerrent/rental-system/docs"
	"github.com/peerrent/rental-system/internal/api/handler"
	"github.com/peerrent/rental-system/internal/api/middleware"
	"github.com/peerrent/rental-system/internal/core/domain"
	"github.com/peerrent/rental-system/internal/core/ports"
	"github.com/peerrent/rental-system/internal/core/service"
	mongorepo "github.com/peerrent/rental-system/internal/infrastructure/db/mongo"
	"github.com/peerrent/rental-system/internal/realtime"
	"github.com/peerrent/rental-system/pkg/logger"
)

// RouterConfig carries everything NewRouter needs that isn't a live
// connection: secrets and origin policy.
type RouterConfig struct {
	JWTSecret      string
	FrontendOrigin string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, hub *realtime.Hub, payments ports.PaymentProcessor, cfg RouterConfig) *echo.Echo {
	log := logger.Get()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendOrigin},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddleware("rental"))
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Repositories ---
	userRepo := mongorepo.NewUserRepository(db)
	itemRepo := mongorepo.NewItemRepository(db)
	bookingRepo := mongorepo.NewBookingRepository(db)
	reviewRepo := mongorepo.NewReviewRepository(db)

	// --- Services ---
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 7*24*time.Hour)
	catalogService := service.NewCatalogService(itemRepo, userRepo, log)
	bookingService := service.NewBookingService(bookingRepo, itemRepo, payments, hub, log)
	reviewService := service.NewReviewService(reviewRepo, itemRepo, userRepo, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	itemHandler := handler.NewItemHandler(catalogService, bookingService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	wsHandler := handler.NewWSHandler(hub, cfg.FrontendOrigin)

	authRequired := middleware.Auth(cfg.JWTSecret)
	vendorOnly := middleware.RBAC(domain.RoleVendor, domain.RoleAdmin)

	apiGroup := e.Group("/api")

	// --- Auth routes ---
	auth := apiGroup.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/profile", authHandler.Profile, authRequired)
	auth.PUT("/profile", authHandler.UpdateProfile, authRequired)

	// --- Catalog routes (reads public, writes vendor-gated) ---
	items := apiGroup.Group("/items")
	items.GET("", itemHandler.List)
	items.GET("/:id", itemHandler.Get)
	items.GET("/:id/availability", itemHandler.Availability)
	items.POST("", itemHandler.Create, authRequired, vendorOnly)
	items.PUT("/:id", itemHandler.Update, authRequired, vendorOnly)
	items.DELETE("/:id", itemHandler.Delete, authRequired, vendorOnly)

	// --- Booking routes (all authenticated) ---
	bookings := apiGroup.Group("/bookings", authRequired)
	bookings.POST("", bookingHandler.Create)
	bookings.GET("", bookingHandler.List)
	bookings.GET("/:id", bookingHandler.Get)
	bookings.PUT("/:id", bookingHandler.Update)
	bookings.DELETE("/:id", bookingHandler.Cancel)

	// --- Review routes (reads public, writes authenticated) ---
	reviews := apiGroup.Group("/reviews")
	reviews.GET("/item/:itemId", reviewHandler.ListForItem)
	reviews.GET("/user/:userId", reviewHandler.ListForUser)
	reviews.POST("", reviewHandler.Create, authRequired)
	reviews.PUT("/:id", reviewHandler.Update, authRequired)
	reviews.DELETE("/:id", reviewHandler.Delete, authRequired)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	apiGroup.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	apiGroup.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Realtime ---
	e.GET("/ws", wsHandler.Connect)

	// --- API docs ---
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
