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

	"go.uber.org/zap"

	"github.com/hemen47/coolgards-front-sub000/internal/alert"
	"github.com/hemen47/coolgards-front-sub000/internal/config"
	"github.com/hemen47/coolgards-front-sub000/internal/consumer"
	h "github.com/hemen47/coolgards-front-sub000/internal/http"
	"github.com/hemen47/coolgards-front-sub000/internal/pricing"
	"github.com/hemen47/coolgards-front-sub000/internal/session"
	"github.com/hemen47/coolgards-front-sub000/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)

	os.Exit(exitCode(logger, run(cfg, logger)))
}

// exitCode logs err and flushes the logger before the process exits.
func exitCode(logger *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("storefront stopped with error", zap.Error(err))
		code = 1
	}
	_ = logger.Sync()
	return code
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	pricingClient := pricing.NewClient(pricing.Config{
		BaseURL:          cfg.PricingURL,
		Timeout:          cfg.PricingTimeout,
		FailureThreshold: cfg.BreakerFailureThreshold,
		OpenTimeout:      cfg.BreakerOpenTimeout,
	}, logger.Named("pricing"))

	var publisher alert.Publisher
	if cfg.NATSURL != "" {
		nc, err := alert.ConnectNATS(cfg.NATSURL, logger)
		if err != nil {
			return err
		}
		defer nc.Drain()
		publisher = nc
		logger.Info("publishing alerts to nats", zap.String("url", cfg.NATSURL))
	}

	sessions := session.NewManager(kv, pricingClient, publisher, session.Config{
		DefaultShipmentPlan: cfg.DefaultShipmentPlan,
		ClearCartOnOrder:    cfg.ClearCartOnOrder,
		RefreshTimeout:      cfg.PricingTimeout,
		BannerLimit:         cfg.BannerLimit,
		AlertSubjectPrefix:  cfg.AlertSubjectPrefix,
	}, logger.Named("session"))
	defer sessions.Close()

	if len(cfg.KafkaBrokers) > 0 {
		orders := consumer.NewConsumer(sessions, consumer.Config{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			GroupID: cfg.KafkaGroupID,
		}, logger.Named("consumer"))
		consumerDone := make(chan struct{})
		go func() {
			defer close(consumerDone)
			orders.Run(ctx)
		}()
		defer func() {
			<-consumerDone
			orders.Close()
		}()
		logger.Info("consuming order events", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: h.NewRouter(sessions, pricingClient, h.RouterConfig{
			RequestTimeout: cfg.RequestTimeout,
		}, logger.Named("http")),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", zap.String("port", cfg.HTTPPort), zap.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		stop()
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

// openStorage connects the configured cart backend.
func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.KV, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		kv, err := storage.NewSQLiteKV(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite cart storage", zap.String("path", cfg.SQLitePath))
		return kv, func() {
			if err := kv.Close(); err != nil {
				logger.Warn("failed to close sqlite", zap.Error(err))
			}
		}, nil

	case config.BackendRedis:
		client, err := storage.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis cart storage", zap.String("addr", cfg.RedisAddr))
		return storage.NewRedisKV(client, cfg.CartTTL), func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis", zap.Error(err))
			}
		}, nil

	case config.BackendMongo:
		db, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		kv := storage.NewMongoKV(db)
		if cfg.CartTTL > 0 {
			if err := kv.CreateIndexes(ctx, cfg.CartTTL); err != nil {
				logger.Warn("failed to create cart ttl index", zap.Error(err))
			}
		}
		logger.Info("using mongo cart storage", zap.String("database", cfg.MongoDBName))
		return kv, func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				logger.Warn("failed to disconnect mongo", zap.Error(err))
			}
		}, nil

	default:
		logger.Warn("using in-memory cart storage, carts will not survive restarts")
		return storage.NewMemoryKV(), func() {}, nil
	}
}
