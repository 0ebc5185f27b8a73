package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/pkg/contracts/domain"
)

func validRow() domain.RawRecord {
	return domain.RawRecord{
		"Date":                 "2024-03-15",
		"Store ID":             "S001",
		"Product ID":           "P001",
		"Units Sold":           "10",
		"Price per Unit":       "2.50",
		"Revenue":              "25.00",
		"Stock Level":          "120",
		"Lead Time Days":       "5",
		"Customer Demographic": "Urban",
		"Promotion Active":     "yes",
		"Competition Price":    "2.40",
	}
}

func TestNormalizeValidRow(t *testing.T) {
	records, rejected, err := Normalize([]domain.RawRecord{validRow()}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0, rejected)

	record := records[0]
	assert.True(t, record.Date.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "P001", record.Product)
	assert.Equal(t, "S001", record.Store)
	assert.Equal(t, 10, record.UnitsSold)
	assert.InDelta(t, 2.50, record.UnitPrice, 1e-9)
	assert.InDelta(t, 25.00, record.Revenue, 1e-9)
	assert.Equal(t, 120, record.StockLevel)
	assert.InDelta(t, 5, record.LeadTimeDays, 1e-9)
	assert.Equal(t, "Urban", record.CustomerSegment)
	assert.True(t, record.PromotionActive)
	require.NotNil(t, record.CompetitorPrice)
	assert.InDelta(t, 2.40, *record.CompetitorPrice, 1e-9)
	assert.True(t, record.IsValid())
}

func TestNormalizeRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(domain.RawRecord)
	}{
		{
			name:   "unparseable date",
			mutate: func(r domain.RawRecord) { r["Date"] = "soon" },
		},
		{
			name:   "missing date",
			mutate: func(r domain.RawRecord) { delete(r, "Date") },
		},
		{
			name:   "empty product",
			mutate: func(r domain.RawRecord) { r["Product ID"] = "  " },
		},
		{
			name:   "negative units",
			mutate: func(r domain.RawRecord) { r["Units Sold"] = "-3" },
		},
		{
			name: "no revenue and no way to derive it",
			mutate: func(r domain.RawRecord) {
				delete(r, "Revenue")
				delete(r, "Units Sold")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			tt.mutate(row)

			records, rejected, err := Normalize([]domain.RawRecord{validRow(), row}, DefaultOptions())
			require.NoError(t, err)
			assert.Len(t, records, 1)
			assert.Equal(t, 1, rejected)
		})
	}
}

func TestNormalizeAccounting(t *testing.T) {
	// Valid + rejected must always partition the input.
	rows := []domain.RawRecord{validRow(), validRow()}
	bad := validRow()
	bad["Date"] = "never"
	rows = append(rows, bad)

	records, rejected, err := Normalize(rows, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, len(rows), len(records)+rejected)
}

func TestNormalizeDerivation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(domain.RawRecord)
		wantUnits   int
		wantPrice   float64
		wantRevenue float64
	}{
		{
			name:        "revenue from units and price",
			mutate:      func(r domain.RawRecord) { delete(r, "Revenue") },
			wantUnits:   10,
			wantPrice:   2.50,
			wantRevenue: 25.00,
		},
		{
			name:        "units from revenue and price",
			mutate:      func(r domain.RawRecord) { delete(r, "Units Sold") },
			wantUnits:   10,
			wantPrice:   2.50,
			wantRevenue: 25.00,
		},
		{
			name:        "price from revenue and units",
			mutate:      func(r domain.RawRecord) { delete(r, "Price per Unit") },
			wantUnits:   10,
			wantPrice:   2.50,
			wantRevenue: 25.00,
		},
		{
			name: "revenue alone is enough",
			mutate: func(r domain.RawRecord) {
				delete(r, "Units Sold")
				delete(r, "Price per Unit")
			},
			wantUnits:   0,
			wantPrice:   0,
			wantRevenue: 25.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			tt.mutate(row)

			records, rejected, err := Normalize([]domain.RawRecord{row}, DefaultOptions())
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, 0, rejected)
			assert.Equal(t, tt.wantUnits, records[0].UnitsSold)
			assert.InDelta(t, tt.wantPrice, records[0].UnitPrice, 1e-9)
			assert.InDelta(t, tt.wantRevenue, records[0].Revenue, 1e-9)
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	row := validRow()
	delete(row, "Lead Time Days")
	delete(row, "Customer Demographic")
	delete(row, "Promotion Active")
	delete(row, "Competition Price")
	delete(row, "Stock Level")

	records, _, err := Normalize([]domain.RawRecord{row}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.InDelta(t, DefaultLeadTimeFallback, record.LeadTimeDays, 1e-9)
	assert.Equal(t, DefaultSegmentKey, record.CustomerSegment)
	assert.False(t, record.PromotionActive)
	assert.Nil(t, record.CompetitorPrice)
	assert.Equal(t, 0, record.StockLevel)
}

func TestNormalizeCustomLeadTimeFallback(t *testing.T) {
	row := validRow()
	row["Lead Time Days"] = ""

	opts := DefaultOptions()
	opts.LeadTimeFallback = 14

	records, _, err := Normalize([]domain.RawRecord{row}, opts)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 14, records[0].LeadTimeDays, 1e-9)
}

func TestNormalizeEmptyInput(t *testing.T) {
	_, _, err := Normalize(nil, DefaultOptions())
	assert.Error(t, err)

	_, _, err = Normalize([]domain.RawRecord{}, DefaultOptions())
	assert.Error(t, err)
}

func TestCleanColumnName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "mixed case with spaces", input: "Units Sold", want: "units_sold"},
		{name: "hyphenated", input: "lead-time-days", want: "lead_time_days"},
		{name: "bom prefix from excel export", input: "\ufeffDate", want: "date"},
		{name: "surrounding whitespace", input: "  Revenue ", want: "revenue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanColumnName(tt.input))
		})
	}
}

func TestResolveAliasesDuplicateColumns(t *testing.T) {
	// Two columns aliasing to the same canonical field must resolve the
	// same way on every call: the canonical name outranks other aliases,
	// and ties resolve lexicographically, never by map iteration order.
	row := domain.RawRecord{
		"Date":       "2024-01-02",
		"Product ID": "P9",
		"Units Sold": "10",
		"Unit Price": "10.00",
		"Price":      "99.00",
		"Revenue":    "100",
		"Sales":      "999",
	}

	for i := 0; i < 200; i++ {
		records, rejected, err := Normalize([]domain.RawRecord{row}, DefaultOptions())
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 0, rejected)
		assert.InDelta(t, 100, records[0].Revenue, 1e-9, "iteration %d", i)
		assert.InDelta(t, 10.00, records[0].UnitPrice, 1e-9, "iteration %d", i)
	}
}

func TestPreferAlias(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		current   string
		want      bool
	}{
		{name: "canonical replaces alias", candidate: "revenue", current: "sales", want: true},
		{name: "alias never replaces canonical", candidate: "sales", current: "revenue", want: false},
		{name: "smaller alias replaces larger", candidate: "price", current: "price_per_unit", want: true},
		{name: "larger alias keeps smaller", candidate: "price_per_unit", current: "price", want: false},
		{name: "canonical is stable against itself", candidate: "revenue", current: "revenue", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, preferAlias(tt.candidate, tt.current, "revenue"))
		})
	}
}

func TestResolveAliases(t *testing.T) {
	row := domain.RawRecord{
		"Transaction Date": "2024-01-02",
		"SKU":              "P9",
		"Qty":              "3",
		"Price":            "4",
		"Total":            "12",
		"Unknown Column":   "ignored",
	}

	records, rejected, err := Normalize([]domain.RawRecord{row}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0, rejected)
	assert.Equal(t, "P9", records[0].Product)
	assert.Equal(t, 3, records[0].UnitsSold)
	assert.InDelta(t, 12, records[0].Revenue, 1e-9)
}
