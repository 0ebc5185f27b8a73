// Package aggregate groups validated transaction records by date, product,
// and customer segment, and reduces each group to summary statistics. All
// output is derived fresh per pipeline run; nothing here caches across calls.
package aggregate

import (
	"math"
	"sort"
	"time"

	"retailpulse/pkg/contracts/domain"
)

// Result holds the three grouped views the downstream modules consume.
type Result struct {
	Daily     []domain.DailyAggregate
	Products  map[string]domain.ProductAggregate
	Customers map[string]domain.CustomerAggregate
}

// productAccumulator carries the running sums for one product. Means are
// single-pass running sum / count; the standard deviation uses Welford's
// update so it never recomputes from a stale previous mean.
type productAccumulator struct {
	revenue     float64
	units       int
	count       int
	priceSum    float64
	leadTimeSum float64

	// Welford state over per-record unit sales.
	mean float64
	m2   float64

	lastDate  time.Time
	lastStock int

	days map[time.Time]struct{}
}

// Build groups the record set into daily, product, and customer aggregates.
// Daily aggregates are returned sorted ascending by date.
func Build(records []domain.TransactionRecord) Result {
	daily := make(map[time.Time]*domain.DailyAggregate)
	products := make(map[string]*productAccumulator)
	customers := make(map[string]*domain.CustomerAggregate)

	for _, record := range records {
		// Daily grouping.
		day, ok := daily[record.Date]
		if !ok {
			day = &domain.DailyAggregate{Date: record.Date}
			daily[record.Date] = day
		}
		day.TotalUnits += record.UnitsSold
		day.TransactionCount++
		day.TotalRevenue += record.Revenue

		// Product grouping.
		acc, ok := products[record.Product]
		if !ok {
			acc = &productAccumulator{days: make(map[time.Time]struct{})}
			products[record.Product] = acc
		}
		acc.revenue += record.Revenue
		acc.units += record.UnitsSold
		acc.count++
		acc.priceSum += record.UnitPrice
		acc.leadTimeSum += record.LeadTimeDays
		acc.days[record.Date] = struct{}{}

		// Welford update: increment count first, then fold in the sample.
		units := float64(record.UnitsSold)
		delta := units - acc.mean
		acc.mean += delta / float64(acc.count)
		acc.m2 += delta * (units - acc.mean)

		// Stock is taken from the chronologically last record per product.
		if !record.Date.Before(acc.lastDate) {
			acc.lastDate = record.Date
			acc.lastStock = record.StockLevel
		}

		// Customer grouping.
		cust, ok := customers[record.CustomerSegment]
		if !ok {
			cust = &domain.CustomerAggregate{SegmentKey: record.CustomerSegment}
			customers[record.CustomerSegment] = cust
		}
		cust.TransactionCount++
		cust.TotalRevenue += record.Revenue
		if record.Date.After(cust.LastPurchaseDate) {
			cust.LastPurchaseDate = record.Date
		}
	}

	return Result{
		Daily:     sortDaily(daily),
		Products:  finalizeProducts(products),
		Customers: finalizeCustomers(customers),
	}
}

func sortDaily(daily map[time.Time]*domain.DailyAggregate) []domain.DailyAggregate {
	out := make([]domain.DailyAggregate, 0, len(daily))
	for _, day := range daily {
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func finalizeProducts(accs map[string]*productAccumulator) map[string]domain.ProductAggregate {
	out := make(map[string]domain.ProductAggregate, len(accs))
	for product, acc := range accs {
		agg := domain.ProductAggregate{
			Product:          product,
			TotalRevenue:     acc.revenue,
			TotalUnits:       acc.units,
			TransactionCount: acc.count,
			LastKnownStock:   acc.lastStock,
		}
		if acc.count > 0 {
			agg.AvgPrice = acc.priceSum / float64(acc.count)
			agg.AvgLeadTimeDays = acc.leadTimeSum / float64(acc.count)
			// Population standard deviation of per-record unit sales.
			agg.SalesStdDev = math.Sqrt(acc.m2 / float64(acc.count))
		}
		if days := len(acc.days); days > 0 {
			agg.AvgDailySales = float64(acc.units) / float64(days)
		}
		out[product] = agg
	}
	return out
}

func finalizeCustomers(accs map[string]*domain.CustomerAggregate) map[string]domain.CustomerAggregate {
	out := make(map[string]domain.CustomerAggregate, len(accs))
	for key, acc := range accs {
		out[key] = *acc
	}
	return out
}

// TopProducts returns the n highest-revenue products, revenue descending,
// ties broken by product id ascending for determinism.
func TopProducts(products map[string]domain.ProductAggregate, n int) []domain.ProductRevenue {
	out := make([]domain.ProductRevenue, 0, len(products))
	for _, agg := range products {
		out = append(out, domain.ProductRevenue{
			Product: agg.Product,
			Revenue: agg.TotalRevenue,
			Units:   agg.TotalUnits,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Product < out[j].Product
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Overall computes the dataset-level metrics including the rejection signal
// surfaced by the normalizer.
func Overall(records []domain.TransactionRecord, daily []domain.DailyAggregate, products map[string]domain.ProductAggregate, rejected int) domain.OverallMetrics {
	metrics := domain.OverallMetrics{
		TransactionCount: len(records),
		UniqueProducts:   len(products),
		DaysObserved:     len(daily),
		RejectedRecords:  rejected,
	}
	for _, record := range records {
		metrics.TotalRevenue += record.Revenue
		metrics.TotalUnits += record.UnitsSold
	}
	if metrics.TransactionCount > 0 {
		metrics.AvgOrderValue = metrics.TotalRevenue / float64(metrics.TransactionCount)
	}
	if total := len(records) + rejected; total > 0 {
		metrics.RejectionRate = float64(rejected) / float64(total)
	}
	return metrics
}
