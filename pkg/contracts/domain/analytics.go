package domain

import (
	"time"
)

// ABCCategory classifies a product by cumulative revenue contribution.
type ABCCategory string

const (
	ABCCategoryA ABCCategory = "A"
	ABCCategoryB ABCCategory = "B"
	ABCCategoryC ABCCategory = "C"
)

// SegmentTier is the qualitative customer-value tier derived from the RFM score.
type SegmentTier string

const (
	TierHighValue SegmentTier = "High-Value"
	TierMidValue  SegmentTier = "Mid-Value"
	TierLowValue  SegmentTier = "Low-Value"
)

// ForecastPoint is one entry of the historical or forecast series.
// Pointer fields are nil where the series is not defined: Actual is nil for
// future dates, MovingAverage is nil until the window is filled, Predicted
// is present only on the forecast horizon.
type ForecastPoint struct {
	Date          time.Time `json:"date"`
	Actual        *float64  `json:"actual,omitempty"`
	MovingAverage *float64  `json:"moving_average,omitempty"`
	Predicted     *float64  `json:"predicted,omitempty"`
}

// Predictions holds the observed series with its moving-average diagnostic
// and the forecast horizon.
type Predictions struct {
	Historical []ForecastPoint `json:"historical"`
	Forecast   []ForecastPoint `json:"forecast"`
}

// CustomerSegment is one scored customer segment.
type CustomerSegment struct {
	SegmentKey    string      `json:"segment_key"`
	RecencyDays   int         `json:"recency_days"`
	Frequency     int         `json:"frequency"`
	MonetaryValue float64     `json:"monetary_value"`
	RFMScore      float64     `json:"rfm_score"`
	Tier          SegmentTier `json:"tier"`
}

// InventoryInsight is the replenishment recommendation for one product.
// StockCoverageDays is nil when average daily sales are zero (coverage is
// not applicable, never a division by zero). EOQ is present only when order
// and holding costs were configured.
type InventoryInsight struct {
	Product             string      `json:"product"`
	Revenue             float64     `json:"revenue"`
	RevenueSharePercent float64     `json:"revenue_share_percent"`
	ABCCategory         ABCCategory `json:"abc_category"`
	StockLevel          int         `json:"stock_level"`
	ReorderPoint        int         `json:"reorder_point"`
	SafetyStock         int         `json:"safety_stock"`
	AvgDailySales       float64     `json:"avg_daily_sales"`
	LeadTimeDays        float64     `json:"lead_time_days"`
	StockCoverageDays   *float64    `json:"stock_coverage_days,omitempty"`
	EOQ                 *int        `json:"eoq,omitempty"`
}

// Anomaly flags a single record whose value deviates from its product group.
type Anomaly struct {
	Product string    `json:"product"`
	Date    time.Time `json:"date"`
	Value   float64   `json:"value"`
	Mean    float64   `json:"mean"`
	StdDev  float64   `json:"std_dev"`
	ZScore  float64   `json:"z_score"`
}

// AnomalyReport groups detected anomalies by the series they were found in.
type AnomalyReport struct {
	Sales []Anomaly `json:"sales"`
	Price []Anomaly `json:"price"`
}

// AssociationRule is a mined antecedent -> consequent co-occurrence rule.
type AssociationRule struct {
	Antecedent string  `json:"antecedent"`
	Consequent string  `json:"consequent"`
	Support    float64 `json:"support"`
	Confidence float64 `json:"confidence"`
	Lift       float64 `json:"lift"`
}

// ProductRevenue is a revenue leaderboard entry.
type ProductRevenue struct {
	Product string  `json:"product"`
	Revenue float64 `json:"revenue"`
	Units   int     `json:"units"`
}

// OverallMetrics summarizes the validated dataset, including the
// data-quality signal from normalization.
type OverallMetrics struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TotalUnits       int     `json:"total_units"`
	TransactionCount int     `json:"transaction_count"`
	AvgOrderValue    float64 `json:"avg_order_value"`
	UniqueProducts   int     `json:"unique_products"`
	DaysObserved     int     `json:"days_observed"`
	RejectedRecords  int     `json:"rejected_records"`
	RejectionRate    float64 `json:"rejection_rate"`
}

// SalesAnalysis is the descriptive-statistics section of the result.
type SalesAnalysis struct {
	OverallMetrics OverallMetrics   `json:"overall_metrics"`
	TopProducts    []ProductRevenue `json:"top_products"`
	DailySales     []DailyAggregate `json:"daily_sales"`
}

// ModuleError reports a per-module failure inside a partial result. Kind is
// machine readable; Message is safe to show to a user.
type ModuleError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// AnalyticsResult is the complete output of one pipeline invocation. Module
// sections are nil/empty when the corresponding module failed; Errors then
// carries the per-module failure keyed by module name ("forecasting",
// "segmentation", "inventory", "anomaly").
type AnalyticsResult struct {
	SalesAnalysis     SalesAnalysis          `json:"sales_analysis"`
	Predictions       *Predictions           `json:"predictions,omitempty"`
	CustomerSegments  []CustomerSegment      `json:"customer_segments,omitempty"`
	InventoryInsights []InventoryInsight     `json:"inventory_insights,omitempty"`
	Anomalies         *AnomalyReport         `json:"anomalies,omitempty"`
	AssociationRules  []AssociationRule      `json:"association_rules,omitempty"`
	Errors            map[string]ModuleError `json:"errors,omitempty"`
}
