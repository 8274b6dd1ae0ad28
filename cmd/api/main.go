package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"veloce/internal/api"
	"veloce/internal/cache"
	"veloce/internal/config"
	"veloce/internal/events"
	"veloce/internal/logging"
	"veloce/internal/metrics"
	"veloce/internal/models"
	"veloce/internal/notify"
	"veloce/internal/sheets"
	"veloce/internal/store"
	"veloce/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, cars, logger, closer, loadErr := loadConfigAndLogger()
	if loadErr != nil {
		return loadErr
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Failed to create exports directory")
		return err
	}

	st := store.New(cars)
	logger.Info().Int("cars", len(cars)).Msg("Catalog seeded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, &logger)
	catalog := buildCatalog(cfg, redisClient, &logger)

	eventBus := events.NewEventBus()
	initNotifier(cfg, eventBus, &logger)

	syncWorker := initSyncWorker(ctx, cfg, redisClient, &logger)

	metrics.Register()
	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(cfg, &logger)
	}

	var syncer api.SyncEnqueuer
	if syncWorker != nil {
		syncer = syncWorker
	}

	apiServer := api.NewHTTPServer(*cfg, st, &logger, api.Options{
		Catalog: catalog,
		Bus:     eventBus,
		Syncer:  syncer,
		Redis:   redisClient,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error().Err(err).Msg("API server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("API server shutdown error")
	}

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, []models.Car, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	carsPath := os.Getenv("CARS_PATH")
	if carsPath == "" {
		carsPath = "configs/cars.yaml"
	}
	carsData, err := os.ReadFile(carsPath)
	if err != nil {
		logger.Error().Err(err).Msgf("Failed to read %s", carsPath)
		return nil, nil, zerolog.Logger{}, closer, err
	}

	var carsConfig struct {
		Cars []models.Car `yaml:"cars"`
	}
	if err := yaml.Unmarshal(carsData, &carsConfig); err != nil {
		logger.Error().Err(err).Msg("Failed to parse cars.yaml")
		return nil, nil, zerolog.Logger{}, closer, err
	}

	if err := config.ValidateCars(carsConfig.Cars); err != nil {
		logger.Error().Err(err).Msg("Seed catalog validation failed")
		return nil, nil, zerolog.Logger{}, closer, err
	}

	return cfg, carsConfig.Cars, logger, closer, nil
}

// initRedis returns nil when redis is not configured; the service runs
// degraded on the in-memory cache alone.
func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := cache.NewRedisClient(cfg.Redis)
	if err := cache.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable")
	}
	return client
}

func buildCatalog(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) cache.Catalog {
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	fallback := cache.NewMemoryCatalog(ttl)
	if redisClient == nil {
		return fallback
	}
	return cache.NewFailoverCatalog(cache.NewRedisCatalog(redisClient, ttl), fallback, logger)
}

func initNotifier(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Notify.TelegramToken == "" || cfg.Notify.TelegramChatID == 0 {
		return
	}

	notifier, err := notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Telegram notifier")
		return
	}
	notifier.Attach(bus)
	logger.Info().Msg("Telegram notifier attached")
}

// initSyncWorker wires the Sheets register sync when credentials are
// configured; nil otherwise.
func initSyncWorker(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) *worker.SyncWorker {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingSpreadSheetID == "" {
		return nil
	}

	sheetsSvc, err := sheets.NewService(cfg.Google.CredentialsFile, cfg.Google.BookingSpreadSheetID, cfg.Google.BookingsSheetName)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Google Sheets service")
		return nil
	}

	if err := sheetsSvc.TestConnection(ctx); err != nil {
		logger.Error().Err(err).Msg("Google Sheets connection test failed")
		return nil
	}
	logger.Info().Msg("Google Sheets service initialized successfully")

	retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
	syncWorker := worker.NewSyncWorker(sheetsSvc, redisClient, retryPolicy, logger)
	go syncWorker.Start(ctx)
	return syncWorker
}

func startMetricsServer(cfg *config.Config, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort)
	logger.Info().Str("addr", addr).Msg("Metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics server error")
	}
}
