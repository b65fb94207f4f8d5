// cmd/radar/main.go

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"trendradar/internal/adapter/collector"
	"trendradar/internal/adapter/events"
	"trendradar/internal/adapter/images"
	"trendradar/internal/adapter/storage"
	"trendradar/internal/config"
	"trendradar/internal/domain/trend"
	"trendradar/internal/service/content"
	"trendradar/internal/service/listening"
)

func main() {
	// A missing .env file is fine; the environment may already be set
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	logger := newLogger(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	sources, err := config.LoadSources(cfg.Collector.SourcesFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load sources")
	}

	// Cancel the run on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collectors, err := collector.New(cfg.Collector, sources, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build collectors")
	}

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("Failed to open trend store")
	}
	defer closeStore()

	var publisher trend.Publisher = events.Noop{}
	if cfg.NATS.URL != "" {
		natsConn, err := events.Connect(cfg.NATS, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to NATS")
		}
		defer natsConn.Close()
		publisher = events.NewNATSPublisher(natsConn, cfg.Store.EventsTopic)
	}

	generator := content.NewGenerator(content.GeneratorConfig{
		APIKey:    cfg.Content.AnthropicAPIKey,
		Model:     cfg.Content.Model,
		MaxTokens: cfg.Content.MaxTokens,
		Timeout:   cfg.Content.Timeout,
		BaseURL:   cfg.Content.BaseURL,
	}, logger)
	if !generator.Enabled() {
		logger.Warn().Msg("ANTHROPIC_API_KEY not set, using fallback content")
	}

	highTrust := make([]trend.Platform, len(cfg.Aggregator.HighTrustSources))
	for i, s := range cfg.Aggregator.HighTrustSources {
		highTrust[i] = trend.Platform(s)
	}
	analyzer := listening.NewAnalyzer(listening.AnalyzerConfig{
		MinPlatforms:     cfg.Aggregator.MinPlatforms,
		MaxTrendsPerRun:  cfg.Aggregator.MaxTrendsPerRun,
		HighTrustSources: highTrust,
	})

	detector := listening.NewTrendDetector(
		collectors,
		analyzer,
		generator,
		store,
		publisher,
		listening.TrendDetectorConfig{
			HistoryLimit:            cfg.Aggregator.HistoryLimit,
			MaxConcurrentCollectors: cfg.Collector.MaxConcurrentCollectors,
			ScanInterval:            cfg.Aggregator.ScanInterval,
		},
		logger,
	)

	if cfg.Images.UnsplashAccessKey != "" {
		imageClient := collector.NewHTTPClient(cfg.Collector.RequestTimeout, cfg.Collector.RetryDelay, cfg.Collector.UserAgents)
		detector.UseImageFinder(images.NewUnsplash(imageClient, cfg.Images.UnsplashBaseURL, cfg.Images.UnsplashAccessKey, logger))
	}

	if cfg.Aggregator.ScanInterval > 0 {
		logger.Info().Dur("interval", cfg.Aggregator.ScanInterval).Msg("Starting trend detector")
		if err := detector.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("Trend detector stopped")
		}
		logger.Info().Msg("Shutdown complete")
		return
	}

	summary, err := detector.Run(ctx)
	if err != nil {
		// Deferred cleanup does not run after os.Exit
		closeStore()
		logger.Fatal().Err(err).Str("run_id", summary.RunID).Msg("Trend run failed")
	}
	if summary.Selected == 0 {
		logger.Warn().Msg("No trends qualified this run")
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Environment == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Str("service", "radar").Logger()
}
