package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-gonic/gin"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/config"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/consumer"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/controllers"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/database"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/events"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/identity"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/middleware"
	awspkg "github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/pkg/aws"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/pkg/logger"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/repository"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/routes"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/services"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load AWS config: %v\n", err)
		os.Exit(1)
	}

	log := initLogger(ctx, cfg, awsCfg)
	defer log.Sync()

	if cfg.UseSecrets {
		cfg.ApplySecrets(ctx, awspkg.NewSecretsClient(awsCfg))
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.ConnectPostgres(cfg.PostgresDSN(), log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.Close(db)

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	metrics := awspkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, cfg.CloudWatchEnabled)

	var catalogSource repository.ProductSource = repository.NewGormProductRepository(db)
	if cfg.CatalogBackend == "dynamodb" {
		catalogSource = repository.NewDynamoProductAdapter(dynamodb.NewFromConfig(awsCfg), cfg.ProductsTable)
	}
	products := repository.NewCachedProductLookup(catalogSource, redisClient, cfg.ProductCacheTTL, log.Named("catalog"))

	var sns awspkg.SNSPublisher
	if cfg.CartTopicARN != "" || cfg.CheckoutTopicARN != "" {
		sns = awspkg.NewSNSClient(awsCfg)
	}
	publisher := events.NewPublisher(sns, cfg.CartTopicARN, cfg.CheckoutTopicARN, metrics, log.Named("events"))

	deviceStores := repository.NewRedisDeviceStores(redisClient, cfg.GuestCartTTL)
	sessions := services.NewSessionRegistry(services.RegistryDeps{
		Products: products,
		Store:    repository.NewGormCartStore(db),
		Devices: func(deviceID string) services.LocalDurableStore {
			return deviceStores.ForDevice(deviceID)
		},
		Events: publisher,
		Logger: log.Named("cart"),
	})
	defer sessions.Close()

	verifier, err := identity.NewTokenVerifier(cfg.JWTSecret)
	if err != nil {
		log.Fatal("Token verifier", zap.Error(err))
	}

	catalog := services.NewCatalogService(products, log.Named("catalog"))
	checkout := services.NewCheckoutService(publisher, log.Named("checkout"))

	router := routes.NewRouter(routes.Deps{
		Cart:           controllers.NewCartController(sessions, catalog, checkout),
		Session:        controllers.NewSessionController(sessions, verifier),
		Products:       controllers.NewProductController(catalog),
		Builder:        controllers.NewBuilderController(catalog, sessions),
		Metrics:        metrics,
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimiter:    middleware.DefaultRateLimiter(),
	})

	if cfg.IdentityQueueURL != "" {
		identityConsumer := consumer.NewIdentityConsumer(sessions, metrics, log.Named("identity"))
		queue := awspkg.NewSQSConsumer(awsCfg, cfg.IdentityQueueURL, log.Named("sqs"))
		go func() {
			if err := identityConsumer.Run(ctx, queue); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Identity consumer stopped", zap.Error(err))
			}
		}()
	}

	go evictIdleSessions(ctx, sessions, cfg.SessionIdle)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Info("Cart Service is running", zap.String("port", cfg.Port), zap.String("catalog", cfg.CatalogBackend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
	}
	log.Info("Server shutdown complete.")
}

func initLogger(ctx context.Context, cfg config.Config, awsCfg sdkaws.Config) *zap.Logger {
	var log *zap.Logger
	var err error
	if cfg.CloudWatchEnabled {
		cw, cwErr := awspkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.CloudWatchLogGroup, routes.ServiceName)
		if cwErr == nil {
			log, err = logger.InitializeWithWriter(cfg.AppEnv, cw)
		} else {
			fmt.Fprintf(os.Stderr, "CloudWatch logs disabled: %v\n", cwErr)
			log, err = logger.Initialize(cfg.AppEnv)
		}
	} else {
		log, err = logger.Initialize(cfg.AppEnv)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return log
}

func evictIdleSessions(ctx context.Context, sessions *services.SessionRegistry, idle time.Duration) {
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.Evict(idle)
		}
	}
}
