package pipeline

import (
	stderrors "errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"retailpulse/internal/anomaly"
	"retailpulse/internal/errors"
	"retailpulse/internal/forecast"
	"retailpulse/internal/inventory"
	"retailpulse/internal/normalize"
	"retailpulse/internal/segment"
)

// Processing modes. ModeFull runs every analytics module; ModeSales runs
// only the descriptive sales analysis and the forecast.
const (
	ModeFull  = "full"
	ModeSales = "sales"
)

// DefaultMaxRejectionRate fails the pipeline when normalization rejected
// more than this fraction of the upload; computing on a decimated sample
// would silently misrepresent the business.
const DefaultMaxRejectionRate = 0.5

// DefaultTopProductsLimit caps the revenue leaderboard.
const DefaultTopProductsLimit = 5

// Config carries every tunable of one pipeline invocation. Zero values are
// replaced by defaults in Normalized; Validate rejects out-of-range values.
type Config struct {
	Mode string `json:"mode,omitempty"`

	MovingAverageWindow int     `json:"movingAverageWindow" validate:"gt=0"`
	SmoothingAlpha      float64 `json:"smoothingAlpha" validate:"gt=0,lte=1"`
	ForecastHorizonDays int     `json:"forecastHorizonDays" validate:"gt=0"`

	ServiceLevelZ float64 `json:"serviceLevelZ" validate:"gt=0"`
	ABCThresholdA float64 `json:"abcThresholdA" validate:"gt=0,lte=100"`
	ABCThresholdB float64 `json:"abcThresholdB" validate:"gt=0,lte=100,gtfield=ABCThresholdA"`
	OrderCost     float64 `json:"orderCost,omitempty" validate:"gte=0"`
	HoldingCost   float64 `json:"holdingCost,omitempty" validate:"gte=0"`

	RFMRecencyMaxDays float64 `json:"rfmRecencyMaxDays" validate:"gt=0"`
	RFMFrequencyMax   float64 `json:"rfmFrequencyMax" validate:"gt=0"`
	RFMMonetaryMax    float64 `json:"rfmMonetaryMax" validate:"gt=0"`

	SalesZThreshold float64 `json:"salesZThreshold" validate:"gt=0"`
	PriceZThreshold float64 `json:"priceZThreshold" validate:"gt=0"`
	MinSupport      float64 `json:"minSupport" validate:"gt=0,lte=1"`
	MinConfidence   float64 `json:"minConfidence" validate:"gt=0,lte=1"`

	MaxRejectionRate float64 `json:"maxRejectionRate" validate:"gte=0,lte=1"`
	TopProductsLimit int     `json:"topProductsLimit" validate:"gt=0"`
	LeadTimeFallback float64 `json:"leadTimeFallback" validate:"gt=0"`

	// EvaluationDate anchors recency scoring. Defaults to the current date;
	// inject a fixed date for deterministic output.
	EvaluationDate time.Time `json:"evaluationDate,omitempty"`
}

// DefaultConfig returns the pipeline defaults, assembled from each module's
// own default constructors. EOQ stays disabled until order and holding costs
// are configured explicitly.
func DefaultConfig() Config {
	forecastOpts := forecast.DefaultOptions()
	inventoryOpts := inventory.DefaultOptions()
	refMax := segment.DefaultReferenceMax()
	detectOpts := anomaly.DefaultOptions()
	basketOpts := anomaly.DefaultBasketOptions()

	return Config{
		Mode:                ModeFull,
		MovingAverageWindow: forecastOpts.Window,
		SmoothingAlpha:      forecastOpts.Alpha,
		ForecastHorizonDays: forecastOpts.Horizon,
		ServiceLevelZ:       inventoryOpts.ServiceLevelZ,
		ABCThresholdA:       inventoryOpts.ABCThresholdA,
		ABCThresholdB:       inventoryOpts.ABCThresholdB,
		RFMRecencyMaxDays:   refMax.RecencyDays,
		RFMFrequencyMax:     refMax.Frequency,
		RFMMonetaryMax:      refMax.Monetary,
		SalesZThreshold:     detectOpts.SalesZThreshold,
		PriceZThreshold:     detectOpts.PriceZThreshold,
		MinSupport:          basketOpts.MinSupport,
		MinConfidence:       basketOpts.MinConfidence,
		MaxRejectionRate:    DefaultMaxRejectionRate,
		TopProductsLimit:    DefaultTopProductsLimit,
		LeadTimeFallback:    normalize.DefaultLeadTimeFallback,
	}
}

// Normalized fills zero-valued fields with defaults so callers can set only
// the options they care about.
func (c Config) Normalized() Config {
	defaults := DefaultConfig()
	if c.Mode == "" {
		c.Mode = defaults.Mode
	}
	if c.MovingAverageWindow == 0 {
		c.MovingAverageWindow = defaults.MovingAverageWindow
	}
	if c.SmoothingAlpha == 0 {
		c.SmoothingAlpha = defaults.SmoothingAlpha
	}
	if c.ForecastHorizonDays == 0 {
		c.ForecastHorizonDays = defaults.ForecastHorizonDays
	}
	if c.ServiceLevelZ == 0 {
		c.ServiceLevelZ = defaults.ServiceLevelZ
	}
	if c.ABCThresholdA == 0 {
		c.ABCThresholdA = defaults.ABCThresholdA
	}
	if c.ABCThresholdB == 0 {
		c.ABCThresholdB = defaults.ABCThresholdB
	}
	if c.RFMRecencyMaxDays == 0 {
		c.RFMRecencyMaxDays = defaults.RFMRecencyMaxDays
	}
	if c.RFMFrequencyMax == 0 {
		c.RFMFrequencyMax = defaults.RFMFrequencyMax
	}
	if c.RFMMonetaryMax == 0 {
		c.RFMMonetaryMax = defaults.RFMMonetaryMax
	}
	if c.SalesZThreshold == 0 {
		c.SalesZThreshold = defaults.SalesZThreshold
	}
	if c.PriceZThreshold == 0 {
		c.PriceZThreshold = defaults.PriceZThreshold
	}
	if c.MinSupport == 0 {
		c.MinSupport = defaults.MinSupport
	}
	if c.MinConfidence == 0 {
		c.MinConfidence = defaults.MinConfidence
	}
	if c.MaxRejectionRate == 0 {
		c.MaxRejectionRate = defaults.MaxRejectionRate
	}
	if c.TopProductsLimit == 0 {
		c.TopProductsLimit = defaults.TopProductsLimit
	}
	if c.LeadTimeFallback == 0 {
		c.LeadTimeFallback = defaults.LeadTimeFallback
	}
	if c.EvaluationDate.IsZero() {
		now := time.Now().UTC()
		c.EvaluationDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	return c
}

var validate = validator.New()

// Validate checks the config against its declared ranges. An unknown mode is
// an unsupported-data-type error; range violations are configuration errors.
func (c Config) Validate() error {
	if c.Mode != ModeFull && c.Mode != ModeSales {
		return errors.E(errors.KindUnsupportedDataType, "unsupported processing mode %q", c.Mode)
	}
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.E(errors.KindConfigurationError,
				"config option %s is out of range", lowerFirst(fe.Field()))
		}
		return errors.Wrap(errors.KindConfigurationError, err, "invalid configuration")
	}
	return nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
