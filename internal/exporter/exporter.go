// Package exporter writes analytics results to JSON and CSV files for the
// CLI. The JSON export is the full result verbatim; the CSV exports are the
// flat sections a spreadsheet consumer wants.
package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"retailpulse/pkg/contracts/domain"
)

// WriteJSON writes the full result as indented JSON.
func WriteJSON(path string, result *domain.AnalyticsResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// WriteInventoryCSV writes the inventory insights section.
func WriteInventoryCSV(path string, insights []domain.InventoryInsight) error {
	header := []string{
		"Product", "Revenue", "RevenueSharePercent", "ABCCategory",
		"StockLevel", "ReorderPoint", "SafetyStock", "AvgDailySales",
		"LeadTimeDays", "StockCoverageDays", "EOQ",
	}
	rows := make([][]string, 0, len(insights))
	for _, insight := range insights {
		coverage := ""
		if insight.StockCoverageDays != nil {
			coverage = formatFloat(*insight.StockCoverageDays)
		}
		eoq := ""
		if insight.EOQ != nil {
			eoq = strconv.Itoa(*insight.EOQ)
		}
		rows = append(rows, []string{
			insight.Product,
			formatFloat(insight.Revenue),
			formatFloat(insight.RevenueSharePercent),
			string(insight.ABCCategory),
			strconv.Itoa(insight.StockLevel),
			strconv.Itoa(insight.ReorderPoint),
			strconv.Itoa(insight.SafetyStock),
			formatFloat(insight.AvgDailySales),
			formatFloat(insight.LeadTimeDays),
			coverage,
			eoq,
		})
	}
	return writeCSV(path, header, rows)
}

// WriteSegmentsCSV writes the customer segments section.
func WriteSegmentsCSV(path string, segments []domain.CustomerSegment) error {
	header := []string{"SegmentKey", "RecencyDays", "Frequency", "MonetaryValue", "RFMScore", "Tier"}
	rows := make([][]string, 0, len(segments))
	for _, segment := range segments {
		rows = append(rows, []string{
			segment.SegmentKey,
			strconv.Itoa(segment.RecencyDays),
			strconv.Itoa(segment.Frequency),
			formatFloat(segment.MonetaryValue),
			formatFloat(segment.RFMScore),
			string(segment.Tier),
		})
	}
	return writeCSV(path, header, rows)
}

// WriteForecastCSV writes the historical and forecast series as one table.
func WriteForecastCSV(path string, predictions *domain.Predictions) error {
	header := []string{"Date", "Actual", "MovingAverage", "Predicted"}
	var rows [][]string
	if predictions != nil {
		for _, point := range predictions.Historical {
			rows = append(rows, forecastRow(point))
		}
		for _, point := range predictions.Forecast {
			rows = append(rows, forecastRow(point))
		}
	}
	return writeCSV(path, header, rows)
}

func forecastRow(point domain.ForecastPoint) []string {
	return []string{
		point.Date.Format("2006-01-02"),
		formatOptional(point.Actual),
		formatOptional(point.MovingAverage),
		formatOptional(point.Predicted),
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
