package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/avsharma-lib/orchids-manga-curated6/internal/catalog"
	h "github.com/avsharma-lib/orchids-manga-curated6/internal/http"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/kv"
	"github.com/avsharma-lib/orchids-manga-curated6/internal/orders"
)

type Config struct {
	HTTPPort          string
	RedisAddr         string
	BuyNowTTL         time.Duration
	CatalogDBPath     string
	CatalogMigrations string
	OrdersCreds       *orders.Credentials
	RequestTimeout    time.Duration
	SubmitTimeout     time.Duration
	ShutdownTimeout   time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		BuyNowTTL:         getDurationEnv("BUYNOW_TTL", kv.DefaultSessionTTL),
		CatalogDBPath:     getEnv("CATALOG_DB_PATH", "./data/catalog.db"),
		CatalogMigrations: getEnv("CATALOG_MIGRATIONS_PATH", "./internal/catalog/migrations"),
		OrdersCreds: &orders.Credentials{
			Host:              getEnv("ORDERS_DB_HOST", "localhost"),
			Port:              getIntEnv("ORDERS_DB_PORT", 5432),
			User:              getEnv("ORDERS_DB_USER", "postgres"),
			Password:          getEnv("ORDERS_DB_PASSWORD", "postgres"),
			DBName:            getEnv("ORDERS_DB_NAME", "orders"),
			MigrationsDirPath: getEnv("ORDERS_MIGRATIONS_PATH", "./internal/orders/migrations"),
		},
		RequestTimeout:  getDurationEnv("REQUEST_TIMEOUT", 30*time.Second),
		SubmitTimeout:   getDurationEnv("SUBMIT_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment")
	}

	cfg := loadConfig()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
	}
	durableStore := kv.NewRedisStore(redisClient)
	sessionStore := kv.NewSessionStore(redisClient, cfg.BuyNowTTL)

	catalogDB, err := catalog.Open(cfg.CatalogDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open catalog database")
	}
	defer catalogDB.Close()
	if err := catalog.RunMigrations(catalogDB, cfg.CatalogMigrations); err != nil {
		log.Fatal().Err(err).Msg("failed to run catalog migrations")
	}
	catalogRepo := catalog.NewRepository(catalogDB)

	ordersRepo, err := orders.NewRepository(cfg.OrdersCreds)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to orders database")
	}
	defer ordersRepo.Close()
	if err := ordersRepo.RunMigrations(cfg.OrdersCreds); err != nil {
		log.Fatal().Err(err).Msg("failed to run orders migrations")
	}

	sessions := h.NewSessionManager(durableStore, sessionStore, ordersRepo, cfg.SubmitTimeout)

	router := h.NewRouter(
		h.NewCartHandler(sessions, catalogRepo, cfg.RequestTimeout),
		h.NewCheckoutHandler(sessions, cfg.RequestTimeout),
		h.NewOrdersHandler(ordersRepo, cfg.RequestTimeout),
		h.NewProductHandler(catalogRepo, cfg.RequestTimeout),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
