package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	catalogapp "github.com/outpost-commerce/backend/internal/application/catalog"
	checkoutapp "github.com/outpost-commerce/backend/internal/application/checkout"
	identityapp "github.com/outpost-commerce/backend/internal/application/identity"
	orderapp "github.com/outpost-commerce/backend/internal/application/order"
	"github.com/outpost-commerce/backend/internal/domain/checkout"
	"github.com/outpost-commerce/backend/internal/domain/shared"
	"github.com/outpost-commerce/backend/internal/domain/shared/valueobject"
	"github.com/outpost-commerce/backend/internal/infrastructure/auth"
	"github.com/outpost-commerce/backend/internal/infrastructure/cache"
	"github.com/outpost-commerce/backend/internal/infrastructure/cartstore"
	"github.com/outpost-commerce/backend/internal/infrastructure/config"
	"github.com/outpost-commerce/backend/internal/infrastructure/logger"
	"github.com/outpost-commerce/backend/internal/infrastructure/persistence"
	"github.com/outpost-commerce/backend/internal/infrastructure/seed"
	"github.com/outpost-commerce/backend/internal/infrastructure/telemetry"
	"github.com/outpost-commerce/backend/internal/interfaces/http/handler"
	"github.com/outpost-commerce/backend/internal/interfaces/http/middleware"
	"github.com/outpost-commerce/backend/internal/interfaces/http/router"

	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Distributed tracing. Disabled it costs nothing; enabled it exports
	// OTLP spans for every request and, optionally, every query.
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.TraceDB
	if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Seed an empty catalog with sample data when configured
	if cfg.App.SeedData {
		seeder := seed.NewSeeder(productRepo, userRepo, log)
		if err := seeder.Run(context.Background()); err != nil {
			log.Fatal("Failed to seed database", zap.Error(err))
		}
	}

	// Cart slots and idempotency tokens share the Redis client when the
	// redis backend is selected; the file backend keeps both node-local.
	var (
		newStorage  checkoutapp.StorageFactory
		idempotency shared.IdempotencyStore
	)
	switch cfg.CartStore.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		cancel()
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		newStorage = func(sessionID string) checkout.Storage {
			return cartstore.NewRedisStorage(rdb, "cart:"+sessionID)
		}
		idempotency = cache.NewRedisIdempotencyStoreWithClient(rdb, "order:idempotency:")
		log.Info("Cart storage backend ready", zap.String("backend", "redis"))
	default:
		fileStore, err := cartstore.NewFileStorage(cfg.CartStore.Dir)
		if err != nil {
			log.Fatal("Failed to initialize cart storage", zap.Error(err))
		}
		newStorage = func(sessionID string) checkout.Storage {
			return cartstore.SlotPrefix(fileStore, cartstore.SafeToken(sessionID)+".")
		}
		memStore := cache.NewInMemoryIdempotencyStore()
		defer memStore.Close()
		idempotency = memStore
		log.Info("Cart storage backend ready",
			zap.String("backend", "file"),
			zap.String("dir", cfg.CartStore.Dir),
		)
	}

	pricing := pricingFromConfig(cfg.Pricing)

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	identityService := identityapp.NewService(userRepo, jwtService)
	catalogService := catalogapp.NewService(productRepo)
	orderService := orderapp.NewService(orderRepo, idempotency, pricing)
	checkoutService := checkoutapp.NewService(newStorage, pricing, orderService)
	defer func() {
		_ = checkoutService.Close()
	}()

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(identityService)
	productHandler := handler.NewProductHandler(catalogService)
	cartHandler := handler.NewCartHandler(checkoutService)
	orderHandler := handler.NewOrderHandler(orderService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, in order: request ID, panic recovery, request
	// logging, security headers, CORS, body limit, cart session, tracing.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-Cart-Session"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.CartSession())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.App.Name,
		Enabled:     cfg.Telemetry.Enabled,
	}))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Browsing and cart building stay anonymous; placing and reading
	// orders requires a token.
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/register",
		},
		SkipPathPrefixes: []string{
			"/api/v1/products",
			"/api/v1/cart",
		},
		Logger: log,
	}
	// The attribute injector sits after JWT so spans carry the user ID
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig), middleware.TracingAttributes())

	// Auth domain
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)

	// Catalog domain. Writes are admin-only; reads are public.
	productRoutes := router.NewDomainGroup("catalog", "/products")
	productRoutes.GET("", productHandler.List)
	productRoutes.GET("/:id", productHandler.Get)
	productRoutes.POST("", middleware.OptionalJWTAuthMiddleware(jwtService), middleware.RequireAdmin(), productHandler.Create)
	productRoutes.PUT("/:id", middleware.OptionalJWTAuthMiddleware(jwtService), middleware.RequireAdmin(), productHandler.Update)
	productRoutes.DELETE("/:id", middleware.OptionalJWTAuthMiddleware(jwtService), middleware.RequireAdmin(), productHandler.Delete)

	// Checkout domain. The cart itself is anonymous; checkout steps read
	// the token when present to decide between proceeding and a login
	// redirect.
	cartRoutes := router.NewDomainGroup("checkout", "/cart")
	cartRoutes.Use(middleware.OptionalJWTAuthMiddleware(jwtService))
	cartRoutes.GET("", cartHandler.Get)
	cartRoutes.POST("/items", cartHandler.AddItem)
	cartRoutes.DELETE("/items/:ref", cartHandler.RemoveItem)
	cartRoutes.PUT("/payment", cartHandler.SetPayment)
	cartRoutes.DELETE("", cartHandler.Clear)
	cartRoutes.POST("/checkout", cartHandler.BeginCheckout)
	cartRoutes.POST("/shipping", cartHandler.SubmitShipping)
	cartRoutes.POST("/placeorder", cartHandler.PlaceOrder)
	cartRoutes.POST("/abandon", cartHandler.Abandon)

	// Order domain (JWT enforced by the router-level middleware)
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", orderHandler.Create)
	orderRoutes.GET("/mine", orderHandler.ListMine)
	orderRoutes.GET("/:id", orderHandler.Get)
	orderRoutes.PUT("/:id/deliver", middleware.RequireAdmin(), orderHandler.MarkDelivered)
	orderRoutes.PUT("/:id/pay", middleware.RequireAdmin(), orderHandler.MarkPaid)

	r.Register(authRoutes).
		Register(productRoutes).
		Register(cartRoutes).
		Register(orderRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// pricingFromConfig maps the pricing knobs onto the checkout quote engine
func pricingFromConfig(p config.PricingConfig) checkout.PricingConfig {
	return checkout.PricingConfig{
		FreeShippingThreshold: valueobject.NewMoneyGBPFromFloat(p.FreeShippingThreshold),
		FlatShippingFee:       valueobject.NewMoneyGBPFromFloat(p.FlatShippingFee),
		VATRate:               decimal.NewFromFloat(p.VATRate),
	}
}

// healthHandler reports process and database liveness
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
