// Package anomaly flags outlier transactions by per-product z-score and
// mines market-basket association rules over reconstructed transactions.
package anomaly

import (
	"math"
	"sort"

	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// Defaults for outlier detection thresholds.
const (
	DefaultSalesZThreshold = 2.5
	DefaultPriceZThreshold = 2.0

	// MinObservations is the minimum number of transactions required.
	MinObservations = 3
)

// Options configures z-score outlier detection.
type Options struct {
	// SalesZThreshold flags unit-sales outliers; PriceZThreshold flags
	// price outliers. Both are absolute z-score cutoffs.
	SalesZThreshold float64
	PriceZThreshold float64
}

// DefaultOptions returns the standard detection thresholds.
func DefaultOptions() Options {
	return Options{
		SalesZThreshold: DefaultSalesZThreshold,
		PriceZThreshold: DefaultPriceZThreshold,
	}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.SalesZThreshold <= 0 || o.PriceZThreshold <= 0 {
		return errors.E(errors.KindConfigurationError,
			"z-score thresholds must be positive, got sales=%g price=%g", o.SalesZThreshold, o.PriceZThreshold)
	}
	return nil
}

// Detect runs per-product z-score outlier detection independently on the
// unit-sales and price series. A product group with zero standard deviation
// reports no anomalies: a constant series has none, and flagging would mean
// dividing by zero.
func Detect(records []domain.TransactionRecord, opts Options) (*domain.AnomalyReport, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(records) < MinObservations {
		return nil, errors.E(errors.KindInsufficientData,
			"anomaly detection requires at least %d transactions, got %d", MinObservations, len(records))
	}

	byProduct := make(map[string][]domain.TransactionRecord)
	for _, record := range records {
		byProduct[record.Product] = append(byProduct[record.Product], record)
	}

	report := &domain.AnomalyReport{
		Sales: []domain.Anomaly{},
		Price: []domain.Anomaly{},
	}

	for _, group := range byProduct {
		report.Sales = append(report.Sales, flagOutliers(group, opts.SalesZThreshold, func(r domain.TransactionRecord) float64 {
			return float64(r.UnitsSold)
		})...)
		report.Price = append(report.Price, flagOutliers(group, opts.PriceZThreshold, func(r domain.TransactionRecord) float64 {
			return r.UnitPrice
		})...)
	}

	sortAnomalies(report.Sales)
	sortAnomalies(report.Price)
	return report, nil
}

// flagOutliers returns the records whose value deviates from the group mean
// by more than threshold standard deviations.
func flagOutliers(group []domain.TransactionRecord, threshold float64, value func(domain.TransactionRecord) float64) []domain.Anomaly {
	mean, stdDev := meanStdDev(group, value)
	if stdDev == 0 {
		return nil
	}

	var out []domain.Anomaly
	for _, record := range group {
		v := value(record)
		z := math.Abs(v-mean) / stdDev
		if z > threshold {
			out = append(out, domain.Anomaly{
				Product: record.Product,
				Date:    record.Date,
				Value:   v,
				Mean:    mean,
				StdDev:  stdDev,
				ZScore:  z,
			})
		}
	}
	return out
}

// meanStdDev computes the population mean and standard deviation in one pass.
func meanStdDev(group []domain.TransactionRecord, value func(domain.TransactionRecord) float64) (float64, float64) {
	n := float64(len(group))
	if n == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, record := range group {
		sum += value(record)
	}
	mean := sum / n

	sumSquared := 0.0
	for _, record := range group {
		diff := value(record) - mean
		sumSquared += diff * diff
	}
	return mean, math.Sqrt(sumSquared / n)
}

// sortAnomalies orders anomalies by z-score descending for stable output;
// ties broken by product then date.
func sortAnomalies(anomalies []domain.Anomaly) {
	sort.Slice(anomalies, func(i, j int) bool {
		if anomalies[i].ZScore != anomalies[j].ZScore {
			return anomalies[i].ZScore > anomalies[j].ZScore
		}
		if anomalies[i].Product != anomalies[j].Product {
			return anomalies[i].Product < anomalies[j].Product
		}
		return anomalies[i].Date.Before(anomalies[j].Date)
	})
}
