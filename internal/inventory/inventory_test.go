package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

func product(id string, revenue, avgDaily, stdDev, leadTime float64, stock, txCount int) domain.ProductAggregate {
	return domain.ProductAggregate{
		Product:          id,
		TotalRevenue:     revenue,
		TransactionCount: txCount,
		LastKnownStock:   stock,
		AvgDailySales:    avgDaily,
		SalesStdDev:      stdDev,
		AvgLeadTimeDays:  leadTime,
	}
}

func TestComputeABCClassification(t *testing.T) {
	// Revenue shares 75/15/5/5. The walk goes revenue-descending: P1 enters
	// at cumulative 0 (A), P2 at 75 (B), P3 at 90 (B), P4 at 95 (C).
	products := map[string]domain.ProductAggregate{
		"P1": product("P1", 750, 1, 0, 5, 10, 2),
		"P2": product("P2", 150, 1, 0, 5, 10, 2),
		"P3": product("P3", 50, 1, 0, 5, 10, 2),
		"P4": product("P4", 50, 1, 0, 5, 10, 2),
	}

	insights, err := Compute(products, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, insights, 4)

	assert.Equal(t, "P1", insights[0].Product)
	assert.Equal(t, domain.ABCCategoryA, insights[0].ABCCategory)
	assert.Equal(t, domain.ABCCategoryB, insights[1].ABCCategory)
	assert.Equal(t, domain.ABCCategoryB, insights[2].ABCCategory)
	assert.Equal(t, domain.ABCCategoryC, insights[3].ABCCategory)

	assert.InDelta(t, 75, insights[0].RevenueSharePercent, 1e-9)
}

func TestComputeBoundaryCrosserKeepsBetterCategory(t *testing.T) {
	// The product whose share crosses the 70% boundary is still placed in A
	// because classification happens before its own share is added.
	products := map[string]domain.ProductAggregate{
		"P1": product("P1", 690, 1, 0, 5, 10, 2),
		"P2": product("P2", 200, 1, 0, 5, 10, 2),
		"P3": product("P3", 110, 1, 0, 5, 10, 2),
	}

	insights, err := Compute(products, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, insights, 3)

	// P2 enters at cumulative 69 and pushes it to 89: still A.
	assert.Equal(t, "P2", insights[1].Product)
	assert.Equal(t, domain.ABCCategoryA, insights[1].ABCCategory)
	// P3 enters at cumulative 89: B.
	assert.Equal(t, domain.ABCCategoryB, insights[2].ABCCategory)
}

func TestComputeSafetyStockAndReorderPoint(t *testing.T) {
	// safety = ceil(1.65 * 10 * sqrt(4)) = 33; reorder = ceil(5*4 + 33) = 53.
	products := map[string]domain.ProductAggregate{
		"P1": product("P1", 100, 5, 10, 4, 60, 3),
	}

	insights, err := Compute(products, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, insights, 1)

	assert.Equal(t, 33, insights[0].SafetyStock)
	assert.Equal(t, 53, insights[0].ReorderPoint)
}

func TestComputeSafetyStockScalesWithServiceLevel(t *testing.T) {
	products := map[string]domain.ProductAggregate{
		"P1": product("P1", 100, 5, 10, 4, 60, 3),
	}

	low := DefaultOptions()
	low.ServiceLevelZ = 1.0
	high := DefaultOptions()
	high.ServiceLevelZ = 1.96

	lowInsights, err := Compute(products, low)
	require.NoError(t, err)
	highInsights, err := Compute(products, high)
	require.NoError(t, err)

	assert.Greater(t, highInsights[0].SafetyStock, lowInsights[0].SafetyStock)
}

func TestComputeStockCoverage(t *testing.T) {
	products := map[string]domain.ProductAggregate{
		"P1": product("P1", 100, 4, 1, 5, 60, 2),
		"P2": product("P2", 50, 0, 0, 5, 30, 2),
	}

	insights, err := Compute(products, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, insights, 2)

	require.NotNil(t, insights[0].StockCoverageDays)
	assert.InDelta(t, 15, *insights[0].StockCoverageDays, 1e-9)
	// A product that does not sell has no meaningful coverage.
	assert.Nil(t, insights[1].StockCoverageDays)
}

func TestComputeEOQ(t *testing.T) {
	products := map[string]domain.ProductAggregate{
		"P1": product("P1", 100, 1, 0, 5, 60, 2),
	}

	// EOQ is off by default: no cost inputs, no recommendation.
	insights, err := Compute(products, DefaultOptions())
	require.NoError(t, err)
	assert.Nil(t, insights[0].EOQ)

	opts := DefaultOptions()
	opts.OrderCost = 100
	opts.HoldingCost = 2

	insights, err = Compute(products, opts)
	require.NoError(t, err)
	require.NotNil(t, insights[0].EOQ)
	// ceil(sqrt(2 * 365 * 100 / 2)) = ceil(191.05) = 192.
	assert.Equal(t, 192, *insights[0].EOQ)
}

func TestComputeInsufficientData(t *testing.T) {
	products := map[string]domain.ProductAggregate{
		"P1": product("P1", 100, 1, 0, 5, 60, 1),
	}

	_, err := Compute(products, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInsufficientData))
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{name: "zero service level", mutate: func(o *Options) { o.ServiceLevelZ = 0 }},
		{name: "b below a", mutate: func(o *Options) { o.ABCThresholdA = 80; o.ABCThresholdB = 70 }},
		{name: "b above 100", mutate: func(o *Options) { o.ABCThresholdB = 110 }},
		{name: "negative order cost", mutate: func(o *Options) { o.OrderCost = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.KindConfigurationError))
		})
	}

	assert.NoError(t, DefaultOptions().Validate())
}
