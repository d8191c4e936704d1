// Dealer inventory scraper: collects every listed vehicle, enriches it from its
// detail page and history report, and writes JSON, CSV, XLSX and SQLite outputs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"dealerscraper/internal/browser"
	"dealerscraper/internal/config"
	"dealerscraper/internal/export"
	"dealerscraper/internal/logging"
	"dealerscraper/internal/report"
	"dealerscraper/internal/scraper"
)

func main() {
	os.Exit(start())
}

func start() int {
	envLoaded := config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		return 1
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		return 1
	}
	defer log.Sync()

	if !envLoaded {
		log.Debug("No .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBrowser(cfg, log)
	if err != nil {
		log.Error("Failed to start browser", zap.String("backend", cfg.Backend), zap.Error(err))
		return 1
	}
	defer b.Close()

	return run(ctx, cfg, b, log, os.Stdout)
}

func openBrowser(cfg *config.Config, log *zap.Logger) (browser.Browser, error) {
	switch cfg.Backend {
	case config.BackendHTTP:
		return browser.NewHTTPBrowser(), nil
	case config.BackendRod:
		return browser.NewRodBrowser(browser.RodOptions{
			Headless:  cfg.Headless,
			ChromeBin: cfg.ChromeBin,
			Logger:    log,
		})
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// run scrapes, exports and prints the quality report. A run that collects
// nothing still exits 0.
func run(ctx context.Context, cfg *config.Config, b browser.Browser, log *zap.Logger, out io.Writer) int {
	s, err := scraper.New(b, cfg.Rules, log)
	if err != nil {
		log.Error("Invalid site rules", zap.Error(err))
		return 1
	}

	log.Info("Starting scrape",
		zap.String("site", cfg.Rules.Site.Name),
		zap.String("backend", cfg.Backend),
		zap.String("output_dir", cfg.OutputDir))

	result, err := s.Run(ctx)
	if err != nil {
		log.Error("Scrape failed", zap.Error(err))
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		log.Warn("Interrupted, exporting what was collected")
	}
	if result == nil || len(result.Vehicles) == 0 {
		log.Warn("No vehicles collected, nothing to export")
		return 0
	}

	files, err := export.Run(export.Options{
		Dir:     cfg.OutputDir,
		Prefix:  cfg.Rules.Site.OutputPrefix,
		Started: result.Started,
		Elapsed: result.Elapsed,
		Listed:  result.Listed,
	}, result.Vehicles, result.History, log)
	if err != nil {
		log.Error("Export incomplete", zap.Error(err))
	}
	if files != nil {
		log.Info("Export finished", zap.Strings("files", files.All()))
	}

	vehicleTable := export.VehicleTable(result.Vehicles)
	report.Print(out, report.Quality(vehicleTable), report.Summary{
		Elapsed:       result.Elapsed,
		Vehicles:      len(result.Vehicles),
		Listed:        result.Listed,
		HistoryEvents: len(result.History),
	})
	return 0
}
