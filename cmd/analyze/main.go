// Command analyze runs the analytics pipeline over a CSV or XLSX export and
// writes the result as JSON, with optional flat CSV sections.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"retailpulse/internal/exporter"
	"retailpulse/internal/ingest"
	"retailpulse/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		inputPath = flag.String("input", "", "path to the CSV or XLSX file to analyze (required)")
		outputDir = flag.String("output", ".", "directory for result files")
		mode      = flag.String("mode", pipeline.ModeFull, "processing mode: full or sales")
		window    = flag.Int("window", 0, "moving average window in days")
		alpha     = flag.Float64("alpha", 0, "exponential smoothing factor (0,1]")
		horizon   = flag.Int("horizon", 0, "forecast horizon in days")
		serviceZ  = flag.Float64("service-z", 0, "safety stock service-level multiplier")
		orderCost = flag.Float64("order-cost", 0, "fixed cost per order, enables EOQ with -holding-cost")
		holding   = flag.Float64("holding-cost", 0, "annual holding cost per unit, enables EOQ with -order-cost")
		evalDate  = flag.String("eval-date", "", "evaluation date for recency scoring (YYYY-MM-DD, default today)")
		writeCSV  = flag.Bool("csv", false, "also write inventory, segment, and forecast CSV files")
		verbose   = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		return fmt.Errorf("-input is required")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := pipeline.Config{
		Mode:                *mode,
		MovingAverageWindow: *window,
		SmoothingAlpha:      *alpha,
		ForecastHorizonDays: *horizon,
		ServiceLevelZ:       *serviceZ,
		OrderCost:           *orderCost,
		HoldingCost:         *holding,
	}
	if *evalDate != "" {
		parsed, err := time.Parse("2006-01-02", *evalDate)
		if err != nil {
			return fmt.Errorf("parse eval-date: %w", err)
		}
		cfg.EvaluationDate = parsed
	}

	pl, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}
	logger.Debug("pipeline configured", slog.String("settings", pl.Describe()))

	raw, err := ingest.ReadFile(*inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	logger.Info("input loaded",
		slog.String("file", *inputPath),
		slog.Int("rows", len(raw)))

	result, err := pl.ProcessRaw(context.Background(), raw)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(*inputPath), filepath.Ext(*inputPath))
	jsonPath := filepath.Join(*outputDir, base+"_analysis.json")
	if err := exporter.WriteJSON(jsonPath, result); err != nil {
		return err
	}
	logger.Info("result written", slog.String("file", jsonPath))

	if *writeCSV {
		if len(result.InventoryInsights) > 0 {
			path := filepath.Join(*outputDir, base+"_inventory.csv")
			if err := exporter.WriteInventoryCSV(path, result.InventoryInsights); err != nil {
				return err
			}
			logger.Info("inventory csv written", slog.String("file", path))
		}
		if len(result.CustomerSegments) > 0 {
			path := filepath.Join(*outputDir, base+"_segments.csv")
			if err := exporter.WriteSegmentsCSV(path, result.CustomerSegments); err != nil {
				return err
			}
			logger.Info("segments csv written", slog.String("file", path))
		}
		if result.Predictions != nil {
			path := filepath.Join(*outputDir, base+"_forecast.csv")
			if err := exporter.WriteForecastCSV(path, result.Predictions); err != nil {
				return err
			}
			logger.Info("forecast csv written", slog.String("file", path))
		}
	}

	for module, moduleErr := range result.Errors {
		logger.Warn("module did not run",
			slog.String("module", module),
			slog.String("kind", moduleErr.Kind),
			slog.String("reason", moduleErr.Message))
	}

	return nil
}
