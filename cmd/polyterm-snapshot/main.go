// Command polyterm-snapshot captures one point-in-time snapshot of the
// market listing and appends it to the day's parquet file. Run it from cron
// to build a price/volume history alongside the interactive client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"polyterm/internal/api"
	"polyterm/internal/config"
	"polyterm/internal/domain"
	"polyterm/internal/store"
	"polyterm/internal/util"
)

func main() {
	configPath := flag.String("config", os.Getenv("POLYTERM_CONFIG"), "config file path")
	category := flag.String("category", "", "restrict the snapshot to one category")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger := util.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	limiter := util.NewRateLimiter(cfg.API.RateLimitPerMin)

	if err := limiter.Wait(ctx); err != nil {
		logger.Error("rate limiter", "error", err)
		os.Exit(1)
	}
	events, err := client.FetchEvents(ctx, "", *category)
	if err != nil {
		logger.Error("fetching events", "error", err)
		os.Exit(1)
	}
	logger.Info("fetched events", "count", len(events), "category", *category)

	now := time.Now().UTC()
	var snaps []domain.Snapshot
	for _, ev := range events {
		for _, mk := range ev.Markets {
			snaps = append(snaps, domain.Snapshot{
				EventID:      ev.ID,
				EventTitle:   ev.Title,
				Category:     ev.Category,
				MarketID:     mk.ID,
				Question:     mk.Question,
				OutcomePrice: mk.OutcomePrice,
				Volume:       mk.Volume.Float64(),
				CapturedAt:   now,
			})
		}
	}
	if len(snaps) == 0 {
		logger.Warn("no markets to snapshot")
		return
	}

	ps := store.NewParquetStore(cfg.Storage.DataDir)
	if err := ps.WriteSnapshots(ctx, snaps); err != nil {
		logger.Error("writing snapshots", "error", err)
		os.Exit(1)
	}
	logger.Info("snapshot written",
		"rows", len(snaps),
		"events", len(events),
		"date", now.Format("2006-01-02"),
	)
}
