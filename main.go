package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"ballpark-tracker/internal/api"
	"ballpark-tracker/internal/config"
	"ballpark-tracker/internal/games"
	"ballpark-tracker/internal/kafka"
	"ballpark-tracker/internal/logger"
	"ballpark-tracker/internal/reconcile"
	"ballpark-tracker/internal/seed"
	"ballpark-tracker/internal/storage"
	"ballpark-tracker/internal/ticketsales"
)

// closableKV is what every storage backend gives us.
type closableKV interface {
	storage.KV
	Close() error
}

func openStorage(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) closableKV {
	switch cfg.Driver {
	case "sqlite", "":
		log.Info("DATABASE", fmt.Sprintf("Opening sqlite store at %s", cfg.SQLitePath))
		kv, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Failed to open sqlite: %v", err))
		}
		return kv

	case "postgres":
		if cfg.PostgresDSN == "" {
			log.Fatal("CONFIG", "POSTGRES_DSN not set")
		}
		var kv *storage.BunKV
		var err error
		maxRetries := 5
		for i := 0; i < maxRetries; i++ {
			log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
			kv, err = storage.OpenPostgres(cfg.PostgresDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.MaxLifetime)
			if err == nil {
				break
			}
			log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
			if i < maxRetries-1 {
				time.Sleep(2 * time.Second)
			}
		}
		if err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
		}
		log.Info("DATABASE", "PostgreSQL connection successful")
		return kv

	case "redis":
		kv, err := storage.OpenRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
		}
		log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.RedisAddr))
		return kv

	default:
		log.Fatal("CONFIG", fmt.Sprintf("Unknown storage driver: %s", cfg.Driver))
		return nil
	}
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Ballpark Tracker initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	kv := openStorage(ctx, cfg.Storage, log)
	defer kv.Close()

	var events reconcile.EventPublisher
	if cfg.Kafka.Enabled {
		if !cfg.Kafka.MockMode {
			requiredTopics := []string{
				cfg.Kafka.Topics.GameUpdated,
				cfg.Kafka.Topics.SaleSaved,
				cfg.Kafka.Topics.SaleDeleted,
			}
			if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
				log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
			} else {
				log.Info("KAFKA", "Required topics ensured successfully")
			}
		}
		producer := kafka.NewProducer(cfg.Kafka, log)
		defer producer.Close()
		events = producer
		log.Info("KAFKA", "Kafka producer initialized successfully")
	}

	gameStore := games.NewStore(kv, log)
	saleStore := ticketsales.NewStore(kv, log)
	seedSource := seed.NewFileSource(cfg.Seed.GamesFile, log)

	service := reconcile.NewService(gameStore, saleStore, seedSource, events, log)

	log.Info("APP", "Loading and reconciling stores")
	if err := service.Load(ctx); err != nil {
		log.Fatal("APP", fmt.Sprintf("Failed to load stores: %v", err))
	}

	handler := api.NewHandler(service, log)

	log.Info("HTTP", "Setting up router")
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	log.Info("ROUTER", "Tracker routes registered under /api")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Ballpark Tracker running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "Ballpark Tracker shutdown complete")
	}
}
