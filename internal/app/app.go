package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "github.com/datalake/server/cmd/server/docs" // swagger docs
	"github.com/datalake/server/internal/module/customer"
	"github.com/datalake/server/internal/module/file"
	"github.com/datalake/server/internal/module/order"
	"github.com/datalake/server/internal/module/payment"
	paymentprovider "github.com/datalake/server/internal/module/payment/provider"
	"github.com/datalake/server/internal/module/product"
	"github.com/datalake/server/internal/module/user"
	sharedcache "github.com/datalake/server/internal/shared/cache"
	"github.com/datalake/server/internal/shared/config"
	"github.com/datalake/server/internal/shared/database"
	"github.com/datalake/server/internal/shared/events"
	"github.com/datalake/server/internal/shared/logger"
	"github.com/datalake/server/internal/shared/metrics"
	"github.com/datalake/server/internal/shared/middleware"
	"github.com/datalake/server/internal/shared/mongodb"
	"github.com/datalake/server/internal/shared/storage"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// App represents the application.
type App struct {
	config    *config.Config
	db        *gorm.DB
	mongo     *mongo.Client
	mongoDB   *mongo.Database
	redis     redis.UniversalClient
	router    *gin.Engine
	logger    *logger.Logger
	zapLogger *zap.Logger
	metrics   *metrics.Metrics

	// Event infrastructure
	eventBus    *events.Bus
	kafkaWriter *kafka.Writer

	jwtManager *user.JWTManager

	// Modules
	userHandler     *user.Handler
	fileHandler     *file.Handler
	customerHandler *customer.Handler
	orderHandler    *order.Handler
	productHandler  *product.Handler
	paymentHandler  *payment.Handler
	webhookHandler  *payment.WebhookHandler

	// Services (for cross-module dependencies)
	orderService   *order.Service
	paymentService *payment.Service
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	// Initialize logger
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	// Initialize zap logger for modules that use zap
	zapLog, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init zap logger: %w", err)
	}

	app := &App{
		config:    cfg,
		logger:    log,
		zapLogger: zapLog,
		metrics:   metrics.New("datalake"),
	}

	ctx := context.Background()

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			app.Stop()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		log.Info("database migrations applied")
	}

	// Initialize MongoDB
	mongoClient, mongoDB, err := mongodb.New(ctx, &cfg.Mongo)
	if err != nil {
		app.Stop()
		return nil, fmt.Errorf("init mongo: %w", err)
	}
	app.mongo = mongoClient
	app.mongoDB = mongoDB

	// Initialize Redis (optional)
	if cfg.Redis.Enabled() {
		redisClient, err := sharedcache.NewRedisClient(&cfg.Redis)
		if err != nil {
			// Redis is optional, log warning but continue
			log.Warn("redis connection failed, caching and rate limiting disabled", "error", err)
		} else {
			app.redis = redisClient
		}
	}

	// Initialize router
	app.router = app.setupRouter()

	// Initialize modules
	if err := app.initModules(ctx); err != nil {
		app.Stop()
		return nil, fmt.Errorf("init modules: %w", err)
	}

	app.registerRoutes()

	return app, nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	// Set Gin mode based on environment
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Apply global middleware
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.Metrics(a.metrics))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if a.config.RateLimit.Enabled && a.redis != nil {
		r.Use(middleware.RateLimit(sharedcache.NewRateLimiter(a.redis), middleware.RateLimitConfig{
			Limit:  a.config.RateLimit.Limit,
			Window: a.config.RateLimit.Window,
		}))
	}

	r.GET("/", a.root)
	r.GET("/health", a.health)
	r.GET("/test-db", a.testDB)
	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))

	// Swagger documentation endpoint
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	return r
}

// initModules initializes all application modules.
func (a *App) initModules(ctx context.Context) error {
	// Initialize event bus for domain events
	a.eventBus = events.NewBus(a.zapLogger)
	a.eventBus.Register(events.NewHandlerFunc([]string{"*"}, func(e events.Event) error {
		a.metrics.RecordEventPublished(e.EventType())
		return nil
	}))
	if a.config.Kafka.Enabled() {
		a.kafkaWriter = events.NewKafkaWriter(a.config.Kafka.Brokers, a.config.Kafka.Topic)
		a.eventBus.Register(events.NewKafkaForwarder(a.kafkaWriter, a.config.Kafka.Topic, a.zapLogger))
	}

	a.initUserModule()

	if err := a.initFileModule(); err != nil {
		return fmt.Errorf("init file module: %w", err)
	}

	a.customerHandler = customer.NewHandler(customer.NewService(customer.NewRepository(a.db), a.zapLogger))

	a.initOrderModule()

	if err := a.initProductModule(ctx); err != nil {
		return fmt.Errorf("init product module: %w", err)
	}

	a.initPaymentModule()

	// Register event handlers after all modules are initialized
	a.registerEventHandlers()

	return nil
}

// registerEventHandlers registers all domain event handlers.
func (a *App) registerEventHandlers() {
	// Order module confirms orders on payment.completed
	a.eventBus.Register(order.NewEventHandler(a.orderService, a.zapLogger))
}

func (a *App) initUserModule() {
	a.jwtManager = user.NewJWTManager(&user.JWTConfig{
		Secret:            a.config.Auth.JWTSecret,
		AccessTokenExpiry: a.config.Auth.AccessTokenExpiry,
		Issuer:            a.config.Auth.Issuer,
	})
	userService := user.NewService(user.NewRepository(a.db), a.jwtManager, a.zapLogger)
	a.userHandler = user.NewHandler(userService)
}

func (a *App) initFileModule() error {
	store, err := storage.New(&a.config.Storage)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	fileService := file.NewService(file.NewRepository(a.db), store, a.config.Server.MaxUploadBytes, a.zapLogger)
	a.fileHandler = file.NewHandler(fileService)
	return nil
}

func (a *App) initOrderModule() {
	a.orderService = order.NewService(
		order.NewRepository(a.db),
		a.eventBus,
		a.metrics,
		a.zapLogger,
	)
	a.orderHandler = order.NewHandler(a.orderService)
}

func (a *App) initProductModule(ctx context.Context) error {
	repo := product.NewRepository(a.mongoDB)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure product indexes: %w", err)
	}

	productCache := sharedcache.NewJSONCache(a.redis, "product", a.config.Redis.CacheTTL)
	a.productHandler = product.NewHandler(product.NewService(repo, productCache, a.metrics, a.zapLogger))
	return nil
}

func (a *App) initPaymentModule() {
	gateways := payment.NewGatewayRegistry()
	breakerCfg := paymentprovider.BreakerConfig{
		FailureThreshold: a.config.Payment.FailureThreshold,
		Timeout:          a.config.Payment.CircuitTimeout,
	}

	if a.config.Payment.StripeAPIKey != "" {
		stripeProvider := paymentprovider.NewStripeProvider(&paymentprovider.StripeConfig{
			APIKey:        a.config.Payment.StripeAPIKey,
			WebhookSecret: a.config.Payment.StripeWebhookSecret,
		})
		gateways.Register(paymentprovider.NewBreaker(stripeProvider, breakerCfg, a.metrics))
	}

	if a.config.Payment.PayPalClientID != "" && a.config.Payment.PayPalSecret != "" {
		paypalProvider, err := paymentprovider.NewPayPalProvider(&paymentprovider.PayPalConfig{
			ClientID:   a.config.Payment.PayPalClientID,
			Secret:     a.config.Payment.PayPalSecret,
			Production: a.config.Payment.PayPalProduction,
		})
		if err != nil {
			// PayPal is optional, payments without it stay local
			a.logger.Warn("paypal gateway disabled", "error", err)
		} else {
			gateways.Register(paymentprovider.NewBreaker(paypalProvider, breakerCfg, a.metrics))
		}
	}

	a.paymentService = payment.NewService(
		payment.NewRepository(a.db),
		gateways,
		a.eventBus,
		a.metrics,
		a.zapLogger,
	)
	a.paymentHandler = payment.NewHandler(a.paymentService)
	a.webhookHandler = payment.NewWebhookHandler(a.paymentService, a.zapLogger)
}

// registerRoutes mounts every module under /api/v1.
func (a *App) registerRoutes() {
	v1 := a.router.Group("/api/v1")
	requireAuth := middleware.RequireAuth(a.jwtManager)

	a.userHandler.RegisterRoutes(v1, requireAuth)
	a.fileHandler.RegisterRoutes(v1, requireAuth)
	a.customerHandler.RegisterRoutes(v1, requireAuth)
	a.orderHandler.RegisterRoutes(v1, requireAuth)
	a.productHandler.RegisterRoutes(v1, requireAuth)
	// Gateway webhooks authenticate by signature.
	a.webhookHandler.RegisterRoutes(v1)
	a.paymentHandler.RegisterRoutes(v1, requireAuth)
}

func (a *App) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Datalake API",
		"version": Version,
		"docs":    "/swagger/index.html",
	})
}

func (a *App) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	postgresOK := database.Ping(ctx, a.db) == nil
	mongoOK := mongodb.Ping(ctx, a.mongo) == nil
	redisOK := a.redis != nil && a.redis.Ping(ctx).Err() == nil

	status := "healthy"
	if !postgresOK || !mongoOK {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"postgres": postgresOK,
		"mongo":    mongoOK,
		"redis":    redisOK,
	})
}

func (a *App) testDB(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var errs []error
	if err := database.Ping(ctx, a.db); err != nil {
		errs = append(errs, err)
	}
	if err := mongodb.Ping(ctx, a.mongo); err != nil {
		errs = append(errs, fmt.Errorf("ping mongo: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Error("database check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "postgres and mongo connections are working"})
}

// Router returns the HTTP handler.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases every connection the application holds.
func (a *App) Stop() {
	if a.kafkaWriter != nil {
		if err := a.kafkaWriter.Close(); err != nil {
			a.logger.Warn("close kafka writer", "error", err)
		}
	}

	if a.redis != nil {
		_ = a.redis.Close()
	}

	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = mongodb.Close(ctx, a.mongo)
		cancel()
	}

	if a.db != nil {
		_ = database.Close(a.db)
	}

	if a.zapLogger != nil {
		_ = a.zapLogger.Sync()
	}
}
