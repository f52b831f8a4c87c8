package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-storefront-service/config"
	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/currency"
	"github.com/fekuna/omnipos-storefront-service/internal/middleware"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/pkg/postgres"

	cartBroadcastPkg "github.com/fekuna/omnipos-storefront-service/internal/cart/broadcast"
	cartH "github.com/fekuna/omnipos-storefront-service/internal/cart/handler"
	cartListenerPkg "github.com/fekuna/omnipos-storefront-service/internal/cart/listener"
	cartRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/cart/repository"
	cartUCPkg "github.com/fekuna/omnipos-storefront-service/internal/cart/usecase"

	"github.com/fekuna/omnipos-storefront-service/internal/catalog"
	catalogH "github.com/fekuna/omnipos-storefront-service/internal/catalog/handler"
	catalogRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/catalog/repository"
	catalogSearchPkg "github.com/fekuna/omnipos-storefront-service/internal/catalog/search"
	catalogUCPkg "github.com/fekuna/omnipos-storefront-service/internal/catalog/usecase"

	currencyH "github.com/fekuna/omnipos-storefront-service/internal/currency/handler"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize Catalog Repository
	var catalogRepo catalog.Repository
	switch cfg.Catalog.Source {
	case "postgres":
		db, err := postgres.NewPostgres(&postgres.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to database", zap.Error(err))
		}
		defer db.Close()
		appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

		pgRepo := catalogRepoPkg.NewPGRepository(db)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			appLogger.Fatal("Could not prepare catalog schema", zap.Error(err))
		}
		catalogRepo = pgRepo
	default:
		staticRepo, err := catalogRepoPkg.NewStaticRepository(cfg.Catalog.DatasetFile)
		if err != nil {
			appLogger.Fatal("Could not load catalog dataset", zap.Error(err))
		}
		catalogRepo = staticRepo
		appLogger.Info("Loaded static catalog", zap.String("file", cfg.Catalog.DatasetFile))
	}

	// 4. Initialize Elasticsearch
	var searchIndex catalog.SearchIndex
	if cfg.Elastic.Enabled {
		esClient, err := catalogSearchPkg.NewClient(&catalogSearchPkg.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch (search falls back to in-memory)", zap.Error(err))
		} else {
			searchIndex = catalogSearchPkg.NewIndex(esClient, cfg.Elastic.Index)
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 5. Initialize Cart Persistence
	var cartRepo cart.Repository = cartRepoPkg.NewMemoryRepository()
	if cfg.Redis.Enabled {
		redisClient, err := cartRepoPkg.NewRedisClient(ctx, &cartRepoPkg.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis (carts kept in memory)", zap.Error(err))
		} else {
			defer redisClient.Close()
			cartRepo = cartRepoPkg.NewRedisRepository(redisClient, cfg.Cart.KeyPrefix, time.Duration(cfg.Cart.TTLHours)*time.Hour)
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// 6. Initialize Kafka
	var broadcaster cart.Broadcaster
	var badges cartH.BadgeSource
	if cfg.Kafka.Enabled {
		writer := cartBroadcastPkg.NewKafkaWriter(&cartBroadcastPkg.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, appLogger)
		kafkaBroadcaster := cartBroadcastPkg.NewKafkaBroadcaster(writer, appLogger)
		defer kafkaBroadcaster.Close()
		broadcaster = kafkaBroadcaster

		reader := cartListenerPkg.NewKafkaReader(&cartListenerPkg.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		})
		badgeListener := cartListenerPkg.NewBadgeListener(reader, cartRepo, appLogger)
		defer badgeListener.Close()
		badges = badgeListener
		go badgeListener.Start(ctx)

		appLogger.Info("Connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// 7. Initialize UseCases
	catalogUC, err := catalogUCPkg.NewCatalogUseCase(ctx, catalogRepo, searchIndex, appLogger)
	if err != nil {
		appLogger.Fatal("Could not load catalog", zap.Error(err))
	}

	shipping, err := decimal.NewFromString(cfg.Cart.ShippingFlat)
	if err != nil {
		appLogger.Fatal("Invalid CART_SHIPPING_FLAT", zap.String("value", cfg.Cart.ShippingFlat), zap.Error(err))
	}
	cartUC := cartUCPkg.NewCartUseCase(cartRepo, broadcaster, shipping, time.Duration(cfg.Cart.IdleMinutes)*time.Minute, appLogger)

	detector := currency.NewDetector(
		currency.NewIPAPILookup(cfg.Currency.LookupURL, time.Duration(cfg.Currency.TimeoutMS)*time.Millisecond),
		cfg.Currency.DefaultCountry,
		appLogger,
	)

	// 8. Initialize Handlers
	catalogHandler := catalogH.NewCatalogHandler(catalogUC, auth.ContextProvider{}, appLogger)
	cartHandler := cartH.NewCartHandler(cartUC, badges, appLogger)
	currencyHandler := currencyH.NewCurrencyHandler(detector)

	// 9. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.LoggingInterceptor(appLogger),
			middleware.ContextInterceptor(auth.NewTokenVerifier(cfg.JWT.SecretKey)),
		),
	)

	// Register Services
	grpcServer.RegisterService(&catalogH.ServiceDesc, catalogHandler)
	grpcServer.RegisterService(&cartH.ServiceDesc, cartHandler)
	grpcServer.RegisterService(&currencyH.ServiceDesc, currencyHandler)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	// Graceful Shutdown
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}
