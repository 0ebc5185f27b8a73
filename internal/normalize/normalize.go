package normalize

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"retailpulse/pkg/contracts/domain"
)

// Canonical field names after alias resolution.
const (
	fieldDate            = "date"
	fieldStore           = "store"
	fieldProduct         = "product"
	fieldUnitsSold       = "units_sold"
	fieldUnitPrice       = "unit_price"
	fieldRevenue         = "revenue"
	fieldStockLevel      = "stock_level"
	fieldLeadTimeDays    = "lead_time_days"
	fieldCustomerSegment = "customer_segment"
	fieldPromotionActive = "promotion_active"
	fieldCompetitorPrice = "competitor_price"
)

// columnAliases maps cleaned column names from the uploaded schema to
// canonical fields. Matching is case-insensitive with spaces collapsed to
// underscores; uploads come from many export tools and never agree on names.
var columnAliases = map[string]string{
	"date":                 fieldDate,
	"transaction_date":     fieldDate,
	"order_date":           fieldDate,
	"store":                fieldStore,
	"store_id":             fieldStore,
	"shop":                 fieldStore,
	"product":              fieldProduct,
	"product_id":           fieldProduct,
	"product_name":         fieldProduct,
	"sku":                  fieldProduct,
	"item":                 fieldProduct,
	"units_sold":           fieldUnitsSold,
	"units":                fieldUnitsSold,
	"quantity":             fieldUnitsSold,
	"qty":                  fieldUnitsSold,
	"price_per_unit":       fieldUnitPrice,
	"unit_price":           fieldUnitPrice,
	"price":                fieldUnitPrice,
	"revenue":              fieldRevenue,
	"sales":                fieldRevenue,
	"total":                fieldRevenue,
	"total_revenue":        fieldRevenue,
	"stock_level":          fieldStockLevel,
	"stock":                fieldStockLevel,
	"inventory":            fieldStockLevel,
	"lead_time_days":       fieldLeadTimeDays,
	"lead_time":            fieldLeadTimeDays,
	"customer_demographic": fieldCustomerSegment,
	"customer_segment":     fieldCustomerSegment,
	"demographic":          fieldCustomerSegment,
	"segment":              fieldCustomerSegment,
	"promotion_active":     fieldPromotionActive,
	"promotion":            fieldPromotionActive,
	"promo":                fieldPromotionActive,
	"competition_price":    fieldCompetitorPrice,
	"competitor_price":     fieldCompetitorPrice,
}

// DefaultLeadTimeFallback is used for records without a usable lead time.
// Nonzero so downstream safety-stock math never divides or multiplies by a
// silently-defaulted zero.
const DefaultLeadTimeFallback = 7.0

// DefaultRevenueTolerance is the relative tolerance for the
// revenue == units x price cross-check.
const DefaultRevenueTolerance = 0.05

// DefaultSegmentKey labels records whose upload had no demographic column.
const DefaultSegmentKey = "Unknown"

// Options configures normalization behavior.
type Options struct {
	// LeadTimeFallback substitutes for missing or unparseable lead times.
	LeadTimeFallback float64
	// RevenueTolerance is the allowed relative disagreement between a
	// supplied revenue and units x price before the mismatch is logged.
	RevenueTolerance float64
	Logger           *slog.Logger
}

// DefaultOptions returns the normalization defaults.
func DefaultOptions() Options {
	return Options{
		LeadTimeFallback: DefaultLeadTimeFallback,
		RevenueTolerance: DefaultRevenueTolerance,
	}
}

// Normalize validates and coerces raw uploaded rows into TransactionRecords.
// Rows failing coercion are dropped and counted, never zero-filled. The
// returned rejected count plus len(records) always equals len(raw).
//
// Only structurally impossible input (nil or empty) returns an error.
func Normalize(raw []domain.RawRecord, opts Options) ([]domain.TransactionRecord, int, error) {
	if len(raw) == 0 {
		return nil, 0, fmt.Errorf("no records provided")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.LeadTimeFallback <= 0 {
		opts.LeadTimeFallback = DefaultLeadTimeFallback
	}
	if opts.RevenueTolerance <= 0 {
		opts.RevenueTolerance = DefaultRevenueTolerance
	}

	records := make([]domain.TransactionRecord, 0, len(raw))
	rejected := 0

	for i, row := range raw {
		record, ok := normalizeRow(row, opts, logger)
		if !ok {
			rejected++
			logger.Debug("rejected record", slog.Int("row", i))
			continue
		}
		records = append(records, record)
	}

	logger.Info("normalization complete",
		slog.Int("total", len(raw)),
		slog.Int("valid", len(records)),
		slog.Int("rejected", rejected))

	return records, rejected, nil
}

// normalizeRow coerces a single row. The bool result is false when the row
// must be rejected per the validation contract: unparseable date, negative
// units, or neither revenue nor units x price derivable.
func normalizeRow(row domain.RawRecord, opts Options, logger *slog.Logger) (domain.TransactionRecord, bool) {
	fields := resolveAliases(row)

	date, err := coerceDate(fields[fieldDate])
	if err != nil {
		return domain.TransactionRecord{}, false
	}

	product := coerceString(fields[fieldProduct])
	if product == "" {
		return domain.TransactionRecord{}, false
	}

	units, unitsOK := optionalInt(fields[fieldUnitsSold])
	if unitsOK && units < 0 {
		return domain.TransactionRecord{}, false
	}
	price, priceOK := optionalFloat(fields[fieldUnitPrice])
	if priceOK && price < 0 {
		return domain.TransactionRecord{}, false
	}
	revenue, revenueOK := optionalFloat(fields[fieldRevenue])
	if revenueOK && revenue < 0 {
		return domain.TransactionRecord{}, false
	}

	// Derive whichever of revenue / units / price is missing; reject when
	// neither side of the revenue identity can be established.
	switch {
	case revenueOK && unitsOK && priceOK:
		if expected := float64(units) * price; expected > 0 {
			if math.Abs(revenue-expected)/expected > opts.RevenueTolerance {
				logger.Debug("revenue mismatch",
					slog.String("product", product),
					slog.Float64("revenue", revenue),
					slog.Float64("expected", expected))
			}
		}
	case !revenueOK && unitsOK && priceOK:
		revenue = float64(units) * price
	case revenueOK && !unitsOK && priceOK && price > 0:
		units = int(math.Round(revenue / price))
	case revenueOK && unitsOK && !priceOK && units > 0:
		price = revenue / float64(units)
	case revenueOK:
		// Revenue alone is enough for sales analytics; units/price stay zero.
		units, price = 0, 0
	default:
		return domain.TransactionRecord{}, false
	}

	stock, ok := optionalInt(fields[fieldStockLevel])
	if !ok || stock < 0 {
		stock = 0
	}
	leadTime, ok := optionalFloat(fields[fieldLeadTimeDays])
	if !ok || leadTime <= 0 {
		leadTime = opts.LeadTimeFallback
	}
	promo, err := coerceBool(fields[fieldPromotionActive])
	if err != nil {
		promo = false
	}

	segment := coerceString(fields[fieldCustomerSegment])
	if segment == "" {
		segment = DefaultSegmentKey
	}

	var competitor *float64
	if cp, ok := optionalFloat(fields[fieldCompetitorPrice]); ok && cp >= 0 {
		competitor = &cp
	}

	return domain.TransactionRecord{
		Date:            date,
		Product:         product,
		Store:           coerceString(fields[fieldStore]),
		UnitsSold:       units,
		UnitPrice:       price,
		Revenue:         revenue,
		CompetitorPrice: competitor,
		PromotionActive: promo,
		CustomerSegment: segment,
		StockLevel:      stock,
		LeadTimeDays:    leadTime,
	}, true
}

// resolveAliases maps the row's column names onto canonical field names.
// Unknown columns are ignored. When several columns alias to the same field
// the winner is chosen by fixed precedence, never by map iteration order:
// the canonical name itself outranks every other alias, and among the rest
// the lexicographically smallest cleaned name wins.
func resolveAliases(row domain.RawRecord) map[string]any {
	fields := make(map[string]any, len(row))
	chosen := make(map[string]string, len(row))
	for key, value := range row {
		cleaned := cleanColumnName(key)
		canonical, ok := columnAliases[cleaned]
		if !ok {
			continue
		}
		if current, exists := chosen[canonical]; exists && !preferAlias(cleaned, current, canonical) {
			continue
		}
		chosen[canonical] = cleaned
		fields[canonical] = value
	}
	return fields
}

// preferAlias reports whether the candidate alias should replace the current
// one for a canonical field.
func preferAlias(candidate, current, canonical string) bool {
	if candidate == canonical {
		return current != canonical
	}
	if current == canonical {
		return false
	}
	return candidate < current
}

// cleanColumnName normalizes an uploaded column name for alias lookup.
// Strips the UTF-8 BOM that Excel exports prepend to the first header cell.
func cleanColumnName(name string) string {
	cleaned := strings.TrimSpace(name)
	cleaned = strings.TrimPrefix(cleaned, "\ufeff")
	cleaned = strings.TrimLeft(cleaned, "\u200B\u200C\u200D\u2060\uFEFF")
	cleaned = strings.ToLower(strings.TrimSpace(cleaned))
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	cleaned = strings.ReplaceAll(cleaned, "-", "_")
	return cleaned
}

// optionalFloat coerces a possibly-absent numeric cell.
func optionalFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return 0, false
	}
	f, err := coerceFloat(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// optionalInt coerces a possibly-absent integer cell.
func optionalInt(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return 0, false
	}
	n, err := coerceInt(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
