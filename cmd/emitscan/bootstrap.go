package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"emitscan/internal/cache"
	"emitscan/internal/fetch"
	"emitscan/internal/logger"
	"emitscan/internal/news"
	"emitscan/internal/scanlog"
	"emitscan/internal/screener"
	"emitscan/internal/store"
	"emitscan/internal/trace"

	"github.com/joho/godotenv"
)

// initializeSystem loads env vars and wires up logger and tracer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// compressOldLogs gzips old verdict logs when retention is configured.
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("EMITSCAN_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := scanlog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old verdict logs", "error", err)
		}
	}
}

// loadConfig loads and returns the configuration.
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	logger.Info(ctx, "Config loaded",
		"exchange", cfg.Exchange, "universe_size", len(cfg.Universe), "workers", cfg.Screener.Workers)
	return cfg, nil
}

// initializeClient builds the shared rate-limited HTTP client.
func initializeClient(cfg *store.Config) *fetch.Client {
	return fetch.NewClient(
		fetch.WithTimeout(time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second),
		fetch.WithJitter(
			time.Duration(cfg.Fetch.MinDelayMs)*time.Millisecond,
			time.Duration(cfg.Fetch.MaxDelayMs)*time.Millisecond,
		),
		fetch.WithRate(cfg.Fetch.RatePerSecond),
		fetch.WithMaxRetries(cfg.Fetch.MaxRetries),
		fetch.WithLogging(true),
	)
}

// initializeExtractor builds the news sentiment extractor over the shared client.
func initializeExtractor(client *fetch.Client, cfg *store.Config) news.Extractor {
	newsCfg := news.DefaultConfig()
	if cfg.News.MaxItems > 0 {
		newsCfg.MaxItems = cfg.News.MaxItems
	}
	if cfg.News.MinTitleLen > 0 {
		newsCfg.MinTitleLen = cfg.News.MinTitleLen
	}
	if cfg.News.MaxOtherTickers > 0 {
		newsCfg.MaxOtherTickers = cfg.News.MaxOtherTickers
	}
	if len(cfg.News.NoisePhrases) > 0 {
		newsCfg.NoisePhrases = cfg.News.NoisePhrases
	}
	return news.NewService(client, newsCfg, cfg.Universe)
}

// initializePipeline assembles the two-phase screening pipeline.
func initializePipeline(client *fetch.Client, extractor news.Extractor, cfg *store.Config) *screener.Pipeline {
	provider := fetch.NewYahooProvider(client)
	return screener.New(provider, extractor, screener.OptionsFromConfig(cfg))
}

// initializeCache builds the disk-resident result cache.
func initializeCache(cfg *store.Config) *cache.ResultCache {
	return cache.New(cfg.Cache.Path, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
}
