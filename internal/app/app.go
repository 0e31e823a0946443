package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/askhat-dev/storefront/internal/adapter/client"
	"github.com/askhat-dev/storefront/internal/adapter/email"
	"github.com/askhat-dev/storefront/internal/adapter/memory"
	mongoadapter "github.com/askhat-dev/storefront/internal/adapter/mongo"
	natsadapter "github.com/askhat-dev/storefront/internal/adapter/nats"
	redisadapter "github.com/askhat-dev/storefront/internal/adapter/redis"
	"github.com/askhat-dev/storefront/internal/app/config"
	"github.com/askhat-dev/storefront/internal/platform/logger"
	httpport "github.com/askhat-dev/storefront/internal/port/http"
	"github.com/askhat-dev/storefront/internal/repository"
	"github.com/askhat-dev/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type App struct {
	cfg         *config.Config
	log         logger.Logger
	server      *httpport.Server
	mongoClient *mongo.Client
	redisClient *redis.Client
	natsConn    *nats.Conn
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Infof("Configuration loaded: Env=%s, HTTP Port: %s", cfg.Env, cfg.HTTPServer.Port)

	appLogger.Info("Initializing MongoDB client...")
	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	userRepo := mongoadapter.NewUserRepository(mongoClient, cfg.MongoDB)
	appLogger.Info("UserRepository initialized")

	appLogger.Info("Initializing Redis client...")
	redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	productCache := redisadapter.NewProductDetailCacheRepository(redisClient)

	var cartRepo repository.CartRepository
	switch cfg.Cart.Backend {
	case "redis":
		cartRepo = redisadapter.NewCartRepository(redisClient)
		appLogger.Info("CartRepository initialized (redis backend)")
	default:
		cartRepo = memory.NewCartRepository()
		appLogger.Info("CartRepository initialized (memory backend)")
	}

	productClient, err := client.NewHTTPProductClient(client.HTTPProductClientConfig{
		BaseURL: cfg.ProductService.BaseURL,
		Timeout: cfg.ProductService.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize product service client: %w", err)
	}
	appLogger.Infof("Product service client initialized for %s", cfg.ProductService.BaseURL)

	var natsConn *nats.Conn
	var publisher natsadapter.MessagePublisher
	if cfg.NATS.Enabled {
		natsConn, err = natsadapter.NewConnection(cfg.NATS)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher, err = natsadapter.NewPublisher(natsConn)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize NATS publisher: %w", err)
		}
		appLogger.Info("NATS publisher initialized")
	}

	var receipts service.ReceiptService
	if cfg.SMTP.Enabled {
		sender, errSMTP := email.NewSMTPSender(cfg.SMTP, appLogger)
		if errSMTP != nil {
			return nil, fmt.Errorf("failed to initialize SMTP sender: %w", errSMTP)
		}
		receipts = service.NewReceiptService(sender, appLogger)
		appLogger.Info("Receipt service initialized")
	}

	cartService := service.NewCartService(cartRepo, productCache, productClient, appLogger, service.CartServiceConfig{
		CartTTL:         cfg.Cart.TTL,
		ProductCacheTTL: cfg.ProductCache.TTL,
	})
	productService := service.NewProductService(productCache, productClient, appLogger, cfg.ProductCache.TTL)
	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, appLogger)
	checkoutService := service.NewCheckoutService(cartService, productClient, userRepo, publisher, receipts, appLogger)

	handler := httpport.NewHandler(cartService, checkoutService, authService, productService, appLogger)
	router := chi.NewRouter()
	httpport.SetupRoutes(router, handler, cfg.Auth.JWTSecret)

	server := httpport.NewServer(
		appLogger,
		cfg.HTTPServer.Port,
		cfg.HTTPServer.ReadTimeout,
		cfg.HTTPServer.WriteTimeout,
		router,
	)
	appLogger.Info("HTTP server instance created")

	return &App{
		cfg:         cfg,
		log:         appLogger,
		server:      server,
		mongoClient: mongoClient,
		redisClient: redisClient,
		natsConn:    natsConn,
	}, nil
}

func (a *App) Run() {
	a.log.Info("Starting application components...")

	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down application...", receivedSignal)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful+5*time.Second)
	defer cancel()

	if err := a.server.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during HTTP server graceful shutdown: %v", err)
	}

	a.log.Info("Closing external connections...")

	if a.natsConn != nil {
		a.natsConn.Close()
		a.log.Info("NATS connection closed")
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		} else {
			a.log.Info("MongoDB connection closed successfully")
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		} else {
			a.log.Info("Redis client closed successfully")
		}
	}

	a.log.Info("Application shut down successfully")
}
