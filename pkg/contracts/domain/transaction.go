package domain

import (
	"time"
)

// RawRecord is a single uploaded row before normalization. Keys are the
// column names of the uploaded schema; values may be strings (CSV/XLSX
// ingestion), JSON numbers or booleans (HTTP ingestion), or nil.
type RawRecord map[string]any

// TransactionRecord is a validated business transaction after normalization.
// All analytics modules operate on this type only.
type TransactionRecord struct {
	Date            time.Time `json:"date"`
	Product         string    `json:"product"`
	Store           string    `json:"store,omitempty"`
	UnitsSold       int       `json:"units_sold"`
	UnitPrice       float64   `json:"unit_price"`
	Revenue         float64   `json:"revenue"`
	CompetitorPrice *float64  `json:"competitor_price,omitempty"`
	PromotionActive bool      `json:"promotion_active"`
	CustomerSegment string    `json:"customer_segment"`
	StockLevel      int       `json:"stock_level"`
	LeadTimeDays    float64   `json:"lead_time_days"`
}

// IsValid checks the invariants a normalized record must satisfy.
func (tr TransactionRecord) IsValid() bool {
	return !tr.Date.IsZero() && tr.Product != "" &&
		tr.UnitsSold >= 0 && tr.UnitPrice >= 0 && tr.Revenue >= 0 &&
		tr.StockLevel >= 0 && tr.LeadTimeDays >= 0
}
