// Package inventory computes replenishment recommendations per product:
// safety stock, reorder point, ABC revenue classification, stock coverage,
// and optional EOQ order sizing.
package inventory

import (
	"math"
	"sort"

	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// Defaults for the inventory options.
const (
	// DefaultServiceLevelZ is the service-level multiplier for ~95%.
	DefaultServiceLevelZ = 1.65
	// DefaultABCThresholdA / B are cumulative revenue-share percentages.
	DefaultABCThresholdA = 70.0
	DefaultABCThresholdB = 90.0

	// MinObservations is the minimum number of transactions required.
	MinObservations = 2

	daysPerYear = 365
)

// Options configures the inventory computation.
type Options struct {
	// ServiceLevelZ is the safety-stock service-level multiplier
	// (1.65 for ~95%, 1.96 for ~97.5%).
	ServiceLevelZ float64
	// ABCThresholdA and ABCThresholdB are the cumulative revenue-share
	// boundaries (percent) between categories.
	ABCThresholdA float64
	ABCThresholdB float64
	// OrderCost and HoldingCost enable EOQ sizing when both are positive.
	// There are no universal defaults for these; they must be configured
	// explicitly per business.
	OrderCost   float64
	HoldingCost float64
}

// DefaultOptions returns the standard inventory options. EOQ stays disabled
// until order and holding costs are configured.
func DefaultOptions() Options {
	return Options{
		ServiceLevelZ: DefaultServiceLevelZ,
		ABCThresholdA: DefaultABCThresholdA,
		ABCThresholdB: DefaultABCThresholdB,
	}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.ServiceLevelZ <= 0 {
		return errors.E(errors.KindConfigurationError, "service level z must be positive, got %g", o.ServiceLevelZ)
	}
	if o.ABCThresholdA <= 0 || o.ABCThresholdB <= o.ABCThresholdA || o.ABCThresholdB > 100 {
		return errors.E(errors.KindConfigurationError,
			"abc thresholds must satisfy 0 < a < b <= 100, got a=%g b=%g", o.ABCThresholdA, o.ABCThresholdB)
	}
	if o.OrderCost < 0 || o.HoldingCost < 0 {
		return errors.E(errors.KindConfigurationError, "order and holding costs cannot be negative")
	}
	return nil
}

// Compute derives an InventoryInsight per product. Insights are sorted by
// revenue descending, ties broken by product id ascending, which is also the
// order the ABC classification walks.
func Compute(products map[string]domain.ProductAggregate, opts Options) ([]domain.InventoryInsight, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	observations := 0
	totalRevenue := 0.0
	for _, agg := range products {
		observations += agg.TransactionCount
		totalRevenue += agg.TotalRevenue
	}
	if observations < MinObservations {
		return nil, errors.E(errors.KindInsufficientData,
			"inventory analysis requires at least %d transactions, got %d", MinObservations, observations)
	}

	ordered := make([]domain.ProductAggregate, 0, len(products))
	for _, agg := range products {
		ordered = append(ordered, agg)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].TotalRevenue != ordered[j].TotalRevenue {
			return ordered[i].TotalRevenue > ordered[j].TotalRevenue
		}
		return ordered[i].Product < ordered[j].Product
	})

	insights := make([]domain.InventoryInsight, 0, len(ordered))
	cumulativeShare := 0.0

	for _, agg := range ordered {
		share := 0.0
		if totalRevenue > 0 {
			share = agg.TotalRevenue / totalRevenue * 100
		}

		// Category is decided on the running cumulative total at the point
		// the product is placed, so the product crossing a boundary still
		// lands in the better category.
		category := classify(cumulativeShare, opts)
		cumulativeShare += share

		safetyStock := int(math.Ceil(opts.ServiceLevelZ * agg.SalesStdDev * math.Sqrt(agg.AvgLeadTimeDays)))
		reorderPoint := int(math.Ceil(agg.AvgDailySales*agg.AvgLeadTimeDays + float64(safetyStock)))

		insight := domain.InventoryInsight{
			Product:             agg.Product,
			Revenue:             agg.TotalRevenue,
			RevenueSharePercent: share,
			ABCCategory:         category,
			StockLevel:          agg.LastKnownStock,
			ReorderPoint:        reorderPoint,
			SafetyStock:         safetyStock,
			AvgDailySales:       agg.AvgDailySales,
			LeadTimeDays:        agg.AvgLeadTimeDays,
		}

		// Coverage is undefined for products that do not sell; report it as
		// not applicable instead of dividing by zero.
		if agg.AvgDailySales > 0 {
			coverage := float64(agg.LastKnownStock) / agg.AvgDailySales
			insight.StockCoverageDays = &coverage
		}

		if opts.OrderCost > 0 && opts.HoldingCost > 0 && agg.AvgDailySales > 0 {
			annualDemand := agg.AvgDailySales * daysPerYear
			eoq := int(math.Ceil(math.Sqrt(2 * annualDemand * opts.OrderCost / opts.HoldingCost)))
			insight.EOQ = &eoq
		}

		insights = append(insights, insight)
	}

	return insights, nil
}

// classify maps a cumulative revenue share (before placing the product)
// onto its ABC category.
func classify(cumulativeShare float64, opts Options) domain.ABCCategory {
	switch {
	case cumulativeShare <= opts.ABCThresholdA:
		return domain.ABCCategoryA
	case cumulativeShare <= opts.ABCThresholdB:
		return domain.ABCCategoryB
	default:
		return domain.ABCCategoryC
	}
}
