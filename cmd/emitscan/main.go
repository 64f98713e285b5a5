package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emitscan/internal/cache"
	"emitscan/internal/export"
	"emitscan/internal/logger"
	"emitscan/internal/scanlog"
	"emitscan/internal/store"
	"emitscan/internal/trace"
	"emitscan/internal/types"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	clearCache := flag.Bool("clear-cache", false, "remove the cached scan and exit")
	force := flag.Bool("force", false, "ignore the cache and re-scan")
	summary := flag.Bool("summary", false, "write today's verdict summary CSV and exit")
	flag.Parse()

	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer trace.Shutdown(context.Background())

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Warn(ctx, "Shutdown signal received, cancelling scan")
		cancel()
	}()

	compressOldLogs(ctx)

	if *summary {
		p, err := export.SummarizeToday()
		must(err)
		if p == "" {
			logger.Info(ctx, "No verdicts logged today, nothing to summarize")
		} else {
			logger.Info(ctx, "Summary CSV written", "path", p)
		}
		return
	}

	cfg, err := loadConfig(ctx, *configPath)
	must(err)

	resultCache := initializeCache(cfg)
	if *clearCache {
		must(resultCache.Clear(ctx))
		logger.Info(ctx, "Cache cleared")
		return
	}

	results, producedAt, err := obtainResults(ctx, cfg, resultCache, *force)
	must(err)

	emit(results, producedAt)
}

// obtainResults serves the cached scan when one is alive, refreshing its
// heartbeat, and runs a fresh scan otherwise.
func obtainResults(ctx context.Context, cfg *store.Config, resultCache *cache.ResultCache, force bool) ([]types.AnalysisResult, time.Time, error) {
	if !force {
		entry, err := resultCache.Load(ctx)
		if err != nil {
			return nil, time.Time{}, err
		}
		if entry != nil {
			if err := resultCache.Touch(ctx); err != nil {
				logger.Warn(ctx, "Failed to refresh cache heartbeat", "error", err)
			}
			logger.Info(ctx, "Serving cached scan",
				"results", len(entry.Results), "produced_at", entry.ProducedAt)
			return entry.Results, entry.ProducedAt, nil
		}
	}

	client := initializeClient(cfg)
	extractor := initializeExtractor(client, cfg)
	pipeline := initializePipeline(client, extractor, cfg)

	producedAt := time.Now()
	results, err := pipeline.RunScan(ctx, cfg.Universe)
	if err != nil {
		return nil, time.Time{}, err
	}

	if err := resultCache.Save(ctx, results, producedAt); err != nil {
		logger.Warn(ctx, "Failed to persist scan results", "error", err)
	}
	if err := scanlog.AppendResults(results); err != nil {
		logger.Warn(ctx, "Failed to append verdict log", "error", err)
	}
	return results, producedAt, nil
}

// emit prints one JSON line per result, the shape downstream consumers read.
func emit(results []types.AnalysisResult, producedAt time.Time) {
	if len(results) == 0 {
		fmt.Println(`{"matches":0}`)
		return
	}
	for _, r := range results {
		b, _ := json.Marshal(r)
		fmt.Println(string(b))
	}
	fmt.Printf("{\"matches\":%d,\"produced_at\":%q}\n", len(results), producedAt.Format(time.RFC3339))
}
