// Package ingest reads uploaded tabular files (CSV, XLSX) into raw
// key-value records for the normalization boundary. It does no validation
// or coercion beyond shaping rows under their header names.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"retailpulse/pkg/contracts/domain"
)

// ReadFile dispatches on the file extension.
func ReadFile(path string) ([]domain.RawRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSVFile(path)
	case ".xlsx", ".xlsm":
		return ReadXLSXFile(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

// ReadCSVFile reads a CSV file into raw records.
func ReadCSVFile(path string) ([]domain.RawRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV reads CSV content into raw records. The first row is the header;
// a UTF-8 BOM on the header is stripped. Rows shorter than the header are
// padded with empty cells so the normalizer can count them as rejects
// instead of the reader failing the whole upload.
func ReadCSV(r io.Reader) ([]domain.RawRecord, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv content: %w", err)
	}
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("csv has no data rows")
	}

	return rowsToRecords(rows[0], rows[1:]), nil
}

// ReadXLSXFile reads the first populated sheet of an XLSX workbook.
func ReadXLSXFile(path string) ([]domain.RawRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx file: %w", err)
	}
	defer f.Close()

	var rows [][]string
	for _, name := range f.GetSheetList() {
		sheetRows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if len(sheetRows) > 1 {
			rows = sheetRows
			break
		}
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook has no data rows")
	}

	return rowsToRecords(rows[0], rows[1:]), nil
}

// rowsToRecords shapes data rows under the header's column names.
func rowsToRecords(header []string, rows [][]string) []domain.RawRecord {
	records := make([]domain.RawRecord, 0, len(rows))
	for _, row := range rows {
		record := make(domain.RawRecord, len(header))
		for i, column := range header {
			if column == "" {
				continue
			}
			if i < len(row) {
				record[column] = row[i]
			} else {
				record[column] = ""
			}
		}
		records = append(records, record)
	}
	return records
}
