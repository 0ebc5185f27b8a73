// Package pipeline composes the analytics modules into one synchronous
// processData call: normalize, aggregate, then fan out forecasting,
// segmentation, inventory, and anomaly/association over the shared
// aggregates and assemble the result.
//
// The pipeline holds no state between invocations: every call is a pure
// function of its record set and config. The four downstream modules are
// independent given the aggregation output, so they run concurrently and
// fail independently; a module failure produces a partial result with a
// per-module error, not a failed request.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"retailpulse/internal/aggregate"
	"retailpulse/internal/anomaly"
	"retailpulse/internal/errors"
	"retailpulse/internal/forecast"
	"retailpulse/internal/inventory"
	"retailpulse/internal/normalize"
	"retailpulse/internal/segment"
	"retailpulse/pkg/contracts/domain"
)

// Module names used as keys in AnalyticsResult.Errors.
const (
	ModuleForecasting  = "forecasting"
	ModuleSegmentation = "segmentation"
	ModuleInventory    = "inventory"
	ModuleAnomaly      = "anomaly"
	ModuleAssociation  = "association"
)

// Pipeline runs the analytics over validated transaction records.
type Pipeline struct {
	config Config
	logger *slog.Logger
}

// New creates a pipeline with the given config. The config is normalized
// (zero fields filled with defaults) and validated up front.
func New(cfg Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.Normalized()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{config: cfg, logger: logger}, nil
}

// Config returns the effective (normalized) configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

// Normalize validates and coerces raw uploaded rows. It is the caller-facing
// wrapper over the normalize package, wired to the pipeline's config.
func (p *Pipeline) Normalize(raw []domain.RawRecord) ([]domain.TransactionRecord, int, error) {
	records, rejected, err := normalize.Normalize(raw, normalize.Options{
		LeadTimeFallback: p.config.LeadTimeFallback,
		Logger:           p.logger,
	})
	if err != nil {
		return nil, 0, errors.Wrap(errors.KindInvalidDataFormat, err, "input is not a usable record set")
	}
	return records, rejected, nil
}

// ProcessRaw normalizes raw rows and processes the survivors.
func (p *Pipeline) ProcessRaw(ctx context.Context, raw []domain.RawRecord) (*domain.AnalyticsResult, error) {
	records, rejected, err := p.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, records, rejected)
}

// Process runs the full analytics over validated records. rejectedCount is
// the normalizer's data-quality signal and participates in the rejection
// rate precondition.
//
// Module failures do not fail the call: the result carries what succeeded
// plus a per-module error for what did not. Only pipeline-level
// preconditions (over-rejected input, empty input, bad config) fail fast.
func (p *Pipeline) Process(ctx context.Context, records []domain.TransactionRecord, rejectedCount int) (*domain.AnalyticsResult, error) {
	start := time.Now()

	total := len(records) + rejectedCount
	if total == 0 {
		return nil, errors.E(errors.KindInsufficientData, "no records provided")
	}
	rejectionRate := float64(rejectedCount) / float64(total)
	if rejectionRate > p.config.MaxRejectionRate {
		return nil, errors.E(errors.KindInvalidDataFormat,
			"%.0f%% of records were rejected during validation (limit %.0f%%)",
			rejectionRate*100, p.config.MaxRejectionRate*100)
	}
	if len(records) == 0 {
		return nil, errors.E(errors.KindInsufficientData, "no valid records after validation")
	}

	p.logger.InfoContext(ctx, "starting analytics pipeline",
		slog.String("mode", p.config.Mode),
		slog.Int("records", len(records)),
		slog.Int("rejected", rejectedCount))

	aggregates := aggregate.Build(records)

	result := &domain.AnalyticsResult{
		SalesAnalysis: domain.SalesAnalysis{
			OverallMetrics: aggregate.Overall(records, aggregates.Daily, aggregates.Products, rejectedCount),
			TopProducts:    aggregate.TopProducts(aggregates.Products, p.config.TopProductsLimit),
			DailySales:     aggregates.Daily,
		},
	}

	moduleErrs := p.runModules(ctx, records, aggregates, result)

	if len(moduleErrs) > 0 {
		result.Errors = moduleErrs
	}

	p.logger.InfoContext(ctx, "analytics pipeline completed",
		slog.Duration("duration", time.Since(start)),
		slog.Int("module_errors", len(moduleErrs)))

	return result, ctx.Err()
}

// runModules fans the independent analytics modules out over the shared
// aggregates and fans their outputs back into result. Each goroutine writes
// only its own slot, so no locking is needed beyond the errgroup join.
func (p *Pipeline) runModules(ctx context.Context, records []domain.TransactionRecord, aggregates aggregate.Result, result *domain.AnalyticsResult) map[string]domain.ModuleError {
	var (
		forecastErr    error
		segmentErr     error
		inventoryErr   error
		anomalyErr     error
		associationErr error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		predictions, err := forecast.Compute(aggregates.Daily, forecast.Options{
			Window:  p.config.MovingAverageWindow,
			Alpha:   p.config.SmoothingAlpha,
			Horizon: p.config.ForecastHorizonDays,
		})
		if err != nil {
			forecastErr = err
			return nil
		}
		result.Predictions = predictions
		return gctx.Err()
	})

	if p.config.Mode == ModeFull {
		g.Go(func() error {
			segments, err := segment.Score(aggregates.Customers, p.config.EvaluationDate, segment.ReferenceMax{
				RecencyDays: p.config.RFMRecencyMaxDays,
				Frequency:   p.config.RFMFrequencyMax,
				Monetary:    p.config.RFMMonetaryMax,
			})
			if err != nil {
				segmentErr = err
				return nil
			}
			result.CustomerSegments = segments
			return gctx.Err()
		})

		g.Go(func() error {
			insights, err := inventory.Compute(aggregates.Products, inventory.Options{
				ServiceLevelZ: p.config.ServiceLevelZ,
				ABCThresholdA: p.config.ABCThresholdA,
				ABCThresholdB: p.config.ABCThresholdB,
				OrderCost:     p.config.OrderCost,
				HoldingCost:   p.config.HoldingCost,
			})
			if err != nil {
				inventoryErr = err
				return nil
			}
			result.InventoryInsights = insights
			return gctx.Err()
		})

		g.Go(func() error {
			report, err := anomaly.Detect(records, anomaly.Options{
				SalesZThreshold: p.config.SalesZThreshold,
				PriceZThreshold: p.config.PriceZThreshold,
			})
			if err != nil {
				anomalyErr = err
			} else {
				result.Anomalies = report
			}

			rules, err := anomaly.MineRules(records, anomaly.BasketOptions{
				MinSupport:    p.config.MinSupport,
				MinConfidence: p.config.MinConfidence,
			})
			if err != nil {
				associationErr = err
				return nil
			}
			result.AssociationRules = rules
			return gctx.Err()
		})
	}

	// Module errors are captured, not returned, so Wait only reports
	// context cancellation.
	_ = g.Wait()

	moduleErrs := make(map[string]domain.ModuleError)
	record := func(module string, err error) {
		if err == nil {
			return
		}
		kind := errors.KindOf(err)
		if kind == "" {
			kind = errors.KindInsufficientData
		}
		p.logger.Warn("analytics module failed",
			slog.String("module", module),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		moduleErrs[module] = domain.ModuleError{Kind: string(kind), Message: err.Error()}
	}
	record(ModuleForecasting, forecastErr)
	record(ModuleSegmentation, segmentErr)
	record(ModuleInventory, inventoryErr)
	record(ModuleAnomaly, anomalyErr)
	record(ModuleAssociation, associationErr)

	return moduleErrs
}

// Describe returns a short human-readable summary of the pipeline's
// effective settings, used by the CLI's verbose output.
func (p *Pipeline) Describe() string {
	return fmt.Sprintf("mode=%s window=%d alpha=%g horizon=%d z=%g",
		p.config.Mode, p.config.MovingAverageWindow, p.config.SmoothingAlpha,
		p.config.ForecastHorizonDays, p.config.ServiceLevelZ)
}
