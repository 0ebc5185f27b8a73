package domain

import (
	"time"
)

// DailyAggregate summarizes all transactions that share a calendar date.
// Built fresh on every pipeline run and immutable afterward.
type DailyAggregate struct {
	Date             time.Time `json:"date"`
	TotalUnits       int       `json:"total_units"`
	TransactionCount int       `json:"transaction_count"`
	TotalRevenue     float64   `json:"total_revenue"`
}

// ProductAggregate summarizes all transactions for a single product.
type ProductAggregate struct {
	Product          string  `json:"product"`
	TotalRevenue     float64 `json:"total_revenue"`
	TotalUnits       int     `json:"total_units"`
	TransactionCount int     `json:"transaction_count"`
	AvgPrice         float64 `json:"avg_price"`
	LastKnownStock   int     `json:"last_known_stock"`
	AvgDailySales    float64 `json:"avg_daily_sales"`
	SalesStdDev      float64 `json:"sales_std_dev"`
	AvgLeadTimeDays  float64 `json:"avg_lead_time_days"`
}

// CustomerAggregate summarizes all transactions for a customer segment key.
type CustomerAggregate struct {
	SegmentKey       string    `json:"segment_key"`
	TransactionCount int       `json:"transaction_count"`
	TotalRevenue     float64   `json:"total_revenue"`
	LastPurchaseDate time.Time `json:"last_purchase_date"`
}
