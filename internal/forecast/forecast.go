// Package forecast computes the moving-average diagnostic series and the
// exponential-smoothing forecast over the date-grouped daily sales.
//
// The smoothing recurrence anchors every horizon step to the single last
// observed value rather than walking forward on the previous forecast point:
//
//	s_0 = lastObserved
//	s_t = alpha*lastObserved + (1-alpha)*s_{t-1}
//
// which decays the curve toward lastObserved. This is a deliberate
// simplification carried over from the product definition, not a standard
// walk-forward recurrence.
package forecast

import (
	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// Defaults for the forecasting options.
const (
	DefaultWindow  = 7
	DefaultAlpha   = 0.2
	DefaultHorizon = 30

	// MinObservations is the minimum number of observed days required.
	MinObservations = 2
)

// Options configures the forecast computation.
type Options struct {
	// Window is the trailing moving-average window in days.
	Window int
	// Alpha is the exponential smoothing factor, valid range (0, 1].
	Alpha float64
	// Horizon is the number of future days to forecast.
	Horizon int
}

// DefaultOptions returns the standard forecasting options.
func DefaultOptions() Options {
	return Options{
		Window:  DefaultWindow,
		Alpha:   DefaultAlpha,
		Horizon: DefaultHorizon,
	}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.Window <= 0 {
		return errors.E(errors.KindConfigurationError, "moving average window must be positive, got %d", o.Window)
	}
	if o.Alpha <= 0 || o.Alpha > 1 {
		return errors.E(errors.KindConfigurationError, "smoothing alpha must be in (0, 1], got %g", o.Alpha)
	}
	if o.Horizon <= 0 {
		return errors.E(errors.KindConfigurationError, "forecast horizon must be positive, got %d", o.Horizon)
	}
	return nil
}

// Compute builds the historical series with its moving average and the
// forecast horizon from the ascending daily aggregates.
//
// Fewer observed days than the window leaves the moving-average series
// all-nil but the forecast still proceeds from the last available point.
// Fewer than MinObservations days fails with an insufficient-data error.
func Compute(daily []domain.DailyAggregate, opts Options) (*domain.Predictions, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(daily) < MinObservations {
		return nil, errors.E(errors.KindInsufficientData,
			"forecasting requires at least %d observed days, got %d", MinObservations, len(daily))
	}

	historical := make([]domain.ForecastPoint, len(daily))
	for i, day := range daily {
		actual := float64(day.TotalUnits)
		point := domain.ForecastPoint{
			Date:   day.Date,
			Actual: &actual,
		}
		if i >= opts.Window-1 {
			ma := trailingMean(daily, i, opts.Window)
			point.MovingAverage = &ma
		}
		historical[i] = point
	}

	last := daily[len(daily)-1]
	lastObserved := float64(last.TotalUnits)

	forecasted := make([]domain.ForecastPoint, opts.Horizon)
	smoothed := lastObserved
	for step := 1; step <= opts.Horizon; step++ {
		smoothed = opts.Alpha*lastObserved + (1-opts.Alpha)*smoothed
		predicted := smoothed
		if predicted < 0 {
			predicted = 0
		}
		value := predicted
		forecasted[step-1] = domain.ForecastPoint{
			Date:      last.Date.AddDate(0, 0, step),
			Predicted: &value,
		}
	}

	return &domain.Predictions{
		Historical: historical,
		Forecast:   forecasted,
	}, nil
}

// trailingMean averages the window ending at index i inclusive.
func trailingMean(daily []domain.DailyAggregate, i, window int) float64 {
	sum := 0.0
	for j := i - window + 1; j <= i; j++ {
		sum += float64(daily[j].TotalUnits)
	}
	return sum / float64(window)
}
