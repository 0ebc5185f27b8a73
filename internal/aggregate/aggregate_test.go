package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/pkg/contracts/domain"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func record(d int, product, segment string, units int, price float64, stock int) domain.TransactionRecord {
	return domain.TransactionRecord{
		Date:            day(d),
		Product:         product,
		Store:           "S1",
		UnitsSold:       units,
		UnitPrice:       price,
		Revenue:         float64(units) * price,
		CustomerSegment: segment,
		StockLevel:      stock,
		LeadTimeDays:    5,
	}
}

func TestBuildDaily(t *testing.T) {
	records := []domain.TransactionRecord{
		record(2, "P1", "Urban", 3, 2, 100),
		record(1, "P1", "Urban", 5, 2, 100),
		record(1, "P2", "Rural", 4, 3, 50),
	}

	result := Build(records)

	require.Len(t, result.Daily, 2)
	// Sorted ascending by date regardless of input order.
	assert.True(t, result.Daily[0].Date.Equal(day(1)))
	assert.True(t, result.Daily[1].Date.Equal(day(2)))

	assert.Equal(t, 9, result.Daily[0].TotalUnits)
	assert.Equal(t, 2, result.Daily[0].TransactionCount)
	assert.InDelta(t, 22, result.Daily[0].TotalRevenue, 1e-9)

	assert.Equal(t, 3, result.Daily[1].TotalUnits)
	assert.Equal(t, 1, result.Daily[1].TransactionCount)
}

func TestBuildConservation(t *testing.T) {
	records := []domain.TransactionRecord{
		record(1, "P1", "Urban", 5, 2, 100),
		record(2, "P1", "Urban", 3, 2, 90),
		record(2, "P2", "Rural", 4, 3, 50),
		record(3, "P3", "Urban", 7, 1, 20),
	}

	result := Build(records)

	totalRevenue := 0.0
	totalUnits := 0
	for _, r := range records {
		totalRevenue += r.Revenue
		totalUnits += r.UnitsSold
	}

	dailyRevenue := 0.0
	dailyUnits := 0
	for _, d := range result.Daily {
		dailyRevenue += d.TotalRevenue
		dailyUnits += d.TotalUnits
	}
	assert.InDelta(t, totalRevenue, dailyRevenue, 1e-9)
	assert.Equal(t, totalUnits, dailyUnits)

	productRevenue := 0.0
	for _, p := range result.Products {
		productRevenue += p.TotalRevenue
	}
	assert.InDelta(t, totalRevenue, productRevenue, 1e-9)

	customerRevenue := 0.0
	for _, c := range result.Customers {
		customerRevenue += c.TotalRevenue
	}
	assert.InDelta(t, totalRevenue, customerRevenue, 1e-9)
}

func TestProductStdDevMatchesTwoPass(t *testing.T) {
	// The running Welford result must agree with a from-scratch two-pass
	// computation over the same samples.
	units := []int{2, 4, 4, 4, 5, 5, 7, 9}
	records := make([]domain.TransactionRecord, len(units))
	for i, u := range units {
		records[i] = record(i+1, "P1", "Urban", u, 1, 10)
	}

	result := Build(records)
	agg := result.Products["P1"]

	mean := 0.0
	for _, u := range units {
		mean += float64(u)
	}
	mean /= float64(len(units))

	sumSq := 0.0
	for _, u := range units {
		diff := float64(u) - mean
		sumSq += diff * diff
	}
	want := math.Sqrt(sumSq / float64(len(units)))

	assert.InDelta(t, want, agg.SalesStdDev, 1e-9)
	assert.InDelta(t, 2.0, agg.SalesStdDev, 1e-9)
}

func TestProductAggregates(t *testing.T) {
	records := []domain.TransactionRecord{
		record(1, "P1", "Urban", 4, 2, 100),
		record(1, "P1", "Urban", 2, 4, 95),
		record(3, "P1", "Urban", 6, 3, 80),
	}

	result := Build(records)
	agg := result.Products["P1"]

	assert.Equal(t, 12, agg.TotalUnits)
	assert.Equal(t, 3, agg.TransactionCount)
	assert.InDelta(t, 3, agg.AvgPrice, 1e-9)
	assert.InDelta(t, 5, agg.AvgLeadTimeDays, 1e-9)
	// Two distinct days observed, 12 units total.
	assert.InDelta(t, 6, agg.AvgDailySales, 1e-9)
	// Stock from the chronologically last record.
	assert.Equal(t, 80, agg.LastKnownStock)
}

func TestLastKnownStockIgnoresInputOrder(t *testing.T) {
	records := []domain.TransactionRecord{
		record(5, "P1", "Urban", 1, 1, 42),
		record(1, "P1", "Urban", 1, 1, 99),
	}

	result := Build(records)
	assert.Equal(t, 42, result.Products["P1"].LastKnownStock)
}

func TestCustomerAggregates(t *testing.T) {
	records := []domain.TransactionRecord{
		record(1, "P1", "Urban", 2, 5, 10),
		record(4, "P2", "Urban", 1, 5, 10),
		record(2, "P1", "Rural", 3, 5, 10),
	}

	result := Build(records)
	require.Len(t, result.Customers, 2)

	urban := result.Customers["Urban"]
	assert.Equal(t, 2, urban.TransactionCount)
	assert.InDelta(t, 15, urban.TotalRevenue, 1e-9)
	assert.True(t, urban.LastPurchaseDate.Equal(day(4)))
}

func TestTopProducts(t *testing.T) {
	products := map[string]domain.ProductAggregate{
		"P1": {Product: "P1", TotalRevenue: 100, TotalUnits: 10},
		"P2": {Product: "P2", TotalRevenue: 300, TotalUnits: 5},
		"P3": {Product: "P3", TotalRevenue: 100, TotalUnits: 8},
		"P4": {Product: "P4", TotalRevenue: 50, TotalUnits: 1},
	}

	top := TopProducts(products, 3)

	require.Len(t, top, 3)
	assert.Equal(t, "P2", top[0].Product)
	// Revenue tie broken by product id ascending.
	assert.Equal(t, "P1", top[1].Product)
	assert.Equal(t, "P3", top[2].Product)
}

func TestOverall(t *testing.T) {
	records := []domain.TransactionRecord{
		record(1, "P1", "Urban", 2, 5, 10),
		record(2, "P2", "Rural", 4, 5, 10),
	}
	result := Build(records)

	metrics := Overall(records, result.Daily, result.Products, 2)

	assert.Equal(t, 2, metrics.TransactionCount)
	assert.Equal(t, 2, metrics.UniqueProducts)
	assert.Equal(t, 2, metrics.DaysObserved)
	assert.InDelta(t, 30, metrics.TotalRevenue, 1e-9)
	assert.Equal(t, 6, metrics.TotalUnits)
	assert.InDelta(t, 15, metrics.AvgOrderValue, 1e-9)
	assert.Equal(t, 2, metrics.RejectedRecords)
	assert.InDelta(t, 0.5, metrics.RejectionRate, 1e-9)
}
