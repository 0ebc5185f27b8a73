// Package segment scores customer-segment aggregates on the RFM
// (recency/frequency/monetary) scale and assigns qualitative value tiers.
//
// Scores are banded against fixed reference ceilings, not the in-batch
// min/max: a single upload's extremes would make segment boundaries jump
// between uploads of different sizes.
package segment

import (
	"math"
	"sort"
	"time"

	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// Default reference ceilings for RFM banding. Domain placeholders; callers
// with real calibration data should override them in the pipeline config.
const (
	DefaultRecencyMaxDays = 365.0
	DefaultFrequencyMax   = 50.0
	DefaultMonetaryMax    = 10000.0

	// MinObservations is the minimum number of transactions required.
	MinObservations = 3
)

// ReferenceMax holds the fixed ceilings each RFM dimension is banded against.
type ReferenceMax struct {
	RecencyDays float64
	Frequency   float64
	Monetary    float64
}

// DefaultReferenceMax returns the default banding ceilings.
func DefaultReferenceMax() ReferenceMax {
	return ReferenceMax{
		RecencyDays: DefaultRecencyMaxDays,
		Frequency:   DefaultFrequencyMax,
		Monetary:    DefaultMonetaryMax,
	}
}

// Validate checks that all ceilings are positive.
func (rm ReferenceMax) Validate() error {
	if rm.RecencyDays <= 0 || rm.Frequency <= 0 || rm.Monetary <= 0 {
		return errors.E(errors.KindConfigurationError,
			"rfm reference ceilings must be positive, got recency=%g frequency=%g monetary=%g",
			rm.RecencyDays, rm.Frequency, rm.Monetary)
	}
	return nil
}

// Score computes RFM scores for every customer aggregate. evaluationDate
// anchors the recency computation and must be injected by the caller for
// deterministic output.
//
// Returned segments are sorted by RFM score descending, ties broken by
// monetary value descending, then segment key ascending.
func Score(customers map[string]domain.CustomerAggregate, evaluationDate time.Time, refMax ReferenceMax) ([]domain.CustomerSegment, error) {
	if err := refMax.Validate(); err != nil {
		return nil, err
	}

	observations := 0
	for _, agg := range customers {
		observations += agg.TransactionCount
	}
	if observations < MinObservations {
		return nil, errors.E(errors.KindInsufficientData,
			"segmentation requires at least %d transactions, got %d", MinObservations, observations)
	}

	segments := make([]domain.CustomerSegment, 0, len(customers))
	for _, agg := range customers {
		recencyDays := int(evaluationDate.Sub(agg.LastPurchaseDate).Hours() / 24)
		if recencyDays < 0 {
			recencyDays = 0
		}

		rScore := bandInverse(float64(recencyDays), refMax.RecencyDays)
		fScore := bandDirect(float64(agg.TransactionCount), refMax.Frequency)
		mScore := bandDirect(agg.TotalRevenue, refMax.Monetary)
		rfm := (rScore + fScore + mScore) / 3.0

		segments = append(segments, domain.CustomerSegment{
			SegmentKey:    agg.SegmentKey,
			RecencyDays:   recencyDays,
			Frequency:     agg.TransactionCount,
			MonetaryValue: agg.TotalRevenue,
			RFMScore:      rfm,
			Tier:          tierFor(rfm),
		})
	}

	sort.Slice(segments, func(i, j int) bool {
		if segments[i].RFMScore != segments[j].RFMScore {
			return segments[i].RFMScore > segments[j].RFMScore
		}
		if segments[i].MonetaryValue != segments[j].MonetaryValue {
			return segments[i].MonetaryValue > segments[j].MonetaryValue
		}
		return segments[i].SegmentKey < segments[j].SegmentKey
	})

	return segments, nil
}

// bandDirect maps a value onto the 1-5 scale by quantile banding against the
// reference ceiling: higher value, higher score.
func bandDirect(value, refMax float64) float64 {
	ratio := value / refMax
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	score := math.Floor(ratio*5) + 1
	if score > 5 {
		score = 5
	}
	return score
}

// bandInverse maps a value onto the 1-5 scale inversely: lower value,
// higher score. Used for recency, where fewer days means a better customer.
func bandInverse(value, refMax float64) float64 {
	ratio := value / refMax
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	return bandDirect((1-ratio)*refMax, refMax)
}

// tierFor assigns the qualitative tier for an RFM score.
func tierFor(rfm float64) domain.SegmentTier {
	switch {
	case rfm >= 4:
		return domain.TierHighValue
	case rfm >= 3:
		return domain.TierMidValue
	default:
		return domain.TierLowValue
	}
}
