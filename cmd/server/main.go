package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingapp "github.com/mailriver/backend/internal/application/billing"
	catalogapp "github.com/mailriver/backend/internal/application/catalog"
	forwardingapp "github.com/mailriver/backend/internal/application/forwarding"
	identityapp "github.com/mailriver/backend/internal/application/identity"
	mailapp "github.com/mailriver/backend/internal/application/mail"
	domainbilling "github.com/mailriver/backend/internal/domain/billing"
	"github.com/mailriver/backend/internal/infrastructure/auth"
	infrabilling "github.com/mailriver/backend/internal/infrastructure/billing"
	"github.com/mailriver/backend/internal/infrastructure/cache"
	"github.com/mailriver/backend/internal/infrastructure/config"
	"github.com/mailriver/backend/internal/infrastructure/event"
	"github.com/mailriver/backend/internal/infrastructure/logger"
	"github.com/mailriver/backend/internal/infrastructure/payment"
	"github.com/mailriver/backend/internal/infrastructure/persistence"
	"github.com/mailriver/backend/internal/infrastructure/scheduler"
	"github.com/mailriver/backend/internal/infrastructure/shipping"
	"github.com/mailriver/backend/internal/infrastructure/storage"
	"github.com/mailriver/backend/internal/infrastructure/telemetry"
	"github.com/mailriver/backend/internal/interfaces/http/handler"
	"github.com/mailriver/backend/internal/interfaces/http/middleware"
	"github.com/mailriver/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting MailRiver Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing before anything that emits spans
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracing(cfg.Telemetry, log)
		if err := dbTracing.Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	workspaceRepo := persistence.NewGormWorkspaceRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	authTokenRepo := persistence.NewGormAuthTokenRepository(db.DB)
	officeLocationRepo := persistence.NewGormOfficeLocationRepository(db.DB)
	mailboxRepo := persistence.NewGormMailboxRepository(db.DB)
	mailItemRepo := persistence.NewGormMailItemRepository(db.DB)
	deliveryAddressRepo := persistence.NewGormDeliveryAddressRepository(db.DB)
	planRepo := persistence.NewGormPlanRepository(db.DB)
	featureRepo := persistence.NewGormFeatureRepository(db.DB)
	planFeatureRepo := persistence.NewGormPlanFeatureRepository(db.DB)
	addonRepo := persistence.NewGormAddonRepository(db.DB)
	carrierRepo := persistence.NewGormCarrierRepository(db.DB)
	shippingOptionRepo := persistence.NewGormShippingOptionRepository(db.DB)
	locationOptionRepo := persistence.NewGormLocationShippingOptionRepository(db.DB)
	forwardingRequestRepo := persistence.NewGormForwardingRequestRepository(db.DB)
	balanceRepo := persistence.NewGormBalanceRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)
	usageRepo := persistence.NewGormUsageRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Entitlement cache: Redis-backed when available, in-memory otherwise.
	// With Redis the tiered cache keeps a short-lived local layer in front
	// and subscribes to cross-instance invalidations.
	var entitlementCache domainbilling.EntitlementCache
	var invalidationCache *cache.TieredEntitlementCache
	l2Cache, err := cache.NewRedisEntitlementCache(cfg.Redis, cache.WithCacheLogger(log))
	if err != nil {
		log.Warn("Redis unavailable, using in-memory entitlement cache", zap.Error(err))
		entitlementCache = cache.NewInMemoryEntitlementCache(cache.WithInMemoryLogger(log))
	} else {
		l1Cache := cache.NewInMemoryEntitlementCache(cache.WithInMemoryLogger(log))
		invalidator, invErr := cache.NewRedisEntitlementInvalidator(cfg.Redis, cache.WithInvalidatorLogger(log))
		if invErr != nil {
			log.Warn("Entitlement invalidator unavailable", zap.Error(invErr))
			invalidator = nil
		}
		tiered := cache.NewTieredEntitlementCache(l1Cache, l2Cache, invalidator, cache.WithTieredLogger(log))
		entitlementCache = tiered
		invalidationCache = tiered
	}

	// Idempotency store for webhook event replay protection
	idempotencyFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := idempotencyFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Token blacklist for logout and credential revocation
	var tokenBlacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		tokenBlacklist = redisBlacklist
		defer func() {
			if err := redisBlacklist.Close(); err != nil {
				log.Error("Error closing token blacklist", zap.Error(err))
			}
		}()
	}

	// Stripe adapter for checkout, portal sessions, and webhook verification
	stripeAdapter, err := payment.NewStripeAdapter(&payment.StripeConfig{
		SecretKey:              cfg.Stripe.SecretKey,
		WebhookSecret:          cfg.Stripe.WebhookSecret,
		SuccessURL:             cfg.Stripe.SuccessURL,
		CancelURL:              cfg.Stripe.CancelURL,
		BillingPortalReturnURL: cfg.Stripe.PortalReturnTo,
		DefaultCurrency:        "usd",
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize Stripe adapter", zap.Error(err))
	}

	// Separate Stripe client for metered usage reporting
	usageReporter, err := infrabilling.NewStripeUsageReporter(&infrabilling.StripeConfig{
		SecretKey:       cfg.Stripe.SecretKey,
		DefaultCurrency: "usd",
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize Stripe usage reporter", zap.Error(err))
	}

	// Shipping rate aggregator
	shippingConfig := shipping.NewEasyPostConfig(cfg.Shipping.APIKey)
	if cfg.Shipping.BaseURL != "" {
		shippingConfig.APIBaseURL = cfg.Shipping.BaseURL
	}
	if cfg.Shipping.Timeout > 0 {
		shippingConfig.TimeoutSeconds = int(cfg.Shipping.Timeout.Seconds())
	}
	shippingConfig.MaxRetries = cfg.Shipping.MaxRetries
	rateGateway, err := shipping.NewEasyPostAdapter(shippingConfig)
	if err != nil {
		log.Fatal("Failed to initialize shipping adapter", zap.Error(err))
	}

	// Object storage for mail scans
	var objectStorage mailapp.ObjectStorageService
	if cfg.Storage.Provider == "s3" {
		s3Storage, err := storage.NewS3ObjectStorage(cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignTTL(cfg.Storage.PresignTTL),
		)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
	} else {
		log.Warn("Using stub object storage; scan uploads will not persist")
		objectStorage = storage.NewStubObjectStorage()
	}

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, workspaceRepo, authTokenRepo, jwtService, tokenBlacklist, log)
	userService := identityapp.NewUserService(userRepo, log)
	workspaceService := identityapp.NewWorkspaceService(workspaceRepo, log)

	balanceService := billingapp.NewBalanceService(balanceRepo, transactionRepo, log)
	entitlementService := billingapp.NewEntitlementService(
		workspaceRepo, planRepo, featureRepo, planFeatureRepo,
		subscriptionRepo, usageRepo,
		entitlementCache, domainbilling.DefaultEntitlementCacheConfig().TTL, log,
	)
	subscriptionService := billingapp.NewSubscriptionService(
		workspaceRepo, planRepo, subscriptionRepo, stripeAdapter, entitlementCache, log,
	)
	webhookService := billingapp.NewStripeWebhookService(
		stripeAdapter, idempotencyStore, workspaceRepo, subscriptionRepo,
		balanceService, entitlementCache, log,
	)
	usageReportingService := billingapp.NewUsageReportingService(
		subscriptionRepo, usageRepo, usageReporter, log,
	)

	mailboxService := mailapp.NewMailboxService(mailboxRepo, officeLocationRepo, log)
	mailItemService := mailapp.NewMailItemService(mailItemRepo, mailboxRepo, objectStorage, entitlementService, log)
	deliveryAddressService := mailapp.NewDeliveryAddressService(deliveryAddressRepo, forwardingRequestRepo, log)
	officeLocationService := mailapp.NewOfficeLocationService(officeLocationRepo, log)

	planService := catalogapp.NewPlanService(planRepo, featureRepo, planFeatureRepo, log)
	featureService := catalogapp.NewFeatureService(featureRepo, log)
	addonService := catalogapp.NewAddonService(addonRepo, log)
	carrierService := catalogapp.NewCarrierService(carrierRepo, log)
	shippingOptionService := catalogapp.NewShippingOptionService(
		shippingOptionRepo, locationOptionRepo, officeLocationRepo, log,
	)

	quoteService := forwardingapp.NewQuoteService(
		mailItemRepo, officeLocationRepo, deliveryAddressRepo, locationOptionRepo,
		rateGateway, cfg.Forwarding, log,
	)
	requestService := forwardingapp.NewRequestService(
		mailItemRepo, officeLocationRepo, deliveryAddressRepo,
		shippingOptionRepo, locationOptionRepo, forwardingRequestRepo,
		rateGateway, cfg.Forwarding, log,
	)
	lifecycleService := forwardingapp.NewLifecycleService(forwardingRequestRepo, rateGateway, log)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Label purchased -> balance deduction task from the outbox.
	// The outbox delivers at-least-once, so the charge handler goes
	// through the idempotency wrapper to keep redeliveries from
	// deducting twice.
	chargeDueHandler := event.NewIdempotentHandler(
		billingapp.NewChargeDueHandler(balanceService, forwardingRequestRepo, log),
		idempotencyStore, log,
	)
	eventBus.Subscribe(chargeDueHandler, chargeDueHandler.EventTypes()...)

	log.Info("Event handlers registered",
		zap.Strings("charge_due_events", chargeDueHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize and start outbox processor for guaranteed event delivery.
	// The processor reads entries from the outbox table and publishes them
	// to the event bus; balance deductions ride this path.
	if cfg.Event.ProcessorEnabled {
		processorConfig := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			processorConfig.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			processorConfig.PollInterval = cfg.Event.PollInterval
		}
		processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			processorConfig.CleanupRetention = cfg.Event.CleanupRetention
		}
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// Cross-instance entitlement invalidation subscription
	if invalidationCache != nil {
		invalidationCtx, cancelInvalidation := context.WithCancel(context.Background())
		defer cancelInvalidation()
		go func() {
			if err := invalidationCache.StartInvalidationSubscription(invalidationCtx); err != nil {
				log.Warn("Entitlement invalidation subscription stopped", zap.Error(err))
			}
		}()
	}

	// Usage reporting scheduler: a daily trigger enqueues one job per
	// billed workspace, and the worker pool pushes metered usage to Stripe.
	schedulerConfig := scheduler.DefaultConfig()
	usageScheduler := scheduler.NewScheduler(
		schedulerConfig,
		scheduler.NewUsageReportingExecutor(usageReportingService, log),
		log,
	)
	if err := usageScheduler.Start(context.Background()); err != nil {
		log.Fatal("Failed to start usage scheduler", zap.Error(err))
	}
	defer func() {
		if err := usageScheduler.Stop(context.Background()); err != nil {
			log.Error("Error stopping usage scheduler", zap.Error(err))
		}
	}()

	usageTrigger := scheduler.NewUsageTrigger(
		scheduler.DefaultUsageTriggerConfig(),
		usageScheduler,
		persistence.NewBillableWorkspaceSource(db.DB),
		schedulerConfig.RetryAttempts,
		log,
	)
	if err := usageTrigger.Start(context.Background()); err != nil {
		log.Fatal("Failed to start usage trigger", zap.Error(err))
	}
	defer func() {
		if err := usageTrigger.Stop(context.Background()); err != nil {
			log.Error("Error stopping usage trigger", zap.Error(err))
		}
	}()
	log.Info("Usage reporting scheduler started")

	// Expired auth token cleanup
	tokenCleanup := scheduler.NewTokenCleanup(authTokenRepo, scheduler.DefaultTokenCleanupInterval, log)
	if err := tokenCleanup.Start(context.Background()); err != nil {
		log.Fatal("Failed to start token cleanup", zap.Error(err))
	}
	defer func() {
		if err := tokenCleanup.Stop(context.Background()); err != nil {
			log.Error("Error stopping token cleanup", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Auth:           handler.NewAuthHandler(authService),
		User:           handler.NewUserHandler(userService),
		Workspace:      handler.NewWorkspaceHandler(workspaceService),
		Mailbox:        handler.NewMailboxHandler(mailboxService),
		MailItem:       handler.NewMailItemHandler(mailItemService),
		Address:        handler.NewAddressHandler(deliveryAddressService),
		Location:       handler.NewLocationHandler(officeLocationService),
		Catalog:        handler.NewCatalogHandler(planService, featureService, addonService, carrierService),
		ShippingOption: handler.NewShippingOptionHandler(shippingOptionService),
		Forwarding:     handler.NewForwardingHandler(quoteService, requestService, lifecycleService),
		Billing:        handler.NewBillingHandler(balanceService, entitlementService, subscriptionService),
		StripeWebhook:  handler.NewStripeWebhookHandler(webhookService),
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Report JSON field names in binding errors
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Tracing - Per-request spans, error marking
	// 4. Logger - Log requests
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// API routes; the JWT middleware is applied per-group inside Setup so
	// auth and webhook endpoints stay public
	authn := middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Blacklist:  tokenBlacklist,
		Logger:     log,
	})
	router.Setup(engine, handlers, authn, middleware.SpanAnnotator())

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
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

// healthHandler returns a handler for health check endpoints
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
