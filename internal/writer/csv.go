// Package writer serialises statement data for callers. The CSV shape
// is field-selectable so downstream pipelines can ask for exactly the
// columns they ingest.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/insightdelivered/transtractor/internal/models"
)

// CSVWriter writes statement transactions in CSV format.
type CSVWriter struct {
	// Fields selects and orders the output columns. Empty means
	// models.DefaultExportFields.
	Fields []string
	// IncludeHeader writes the field names as the first row.
	IncludeHeader bool
}

// WriteToFile writes the statement to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, data *models.StatementData) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, data)
}

// Write writes the statement in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, data *models.StatementData) error {
	fields := w.Fields
	if len(fields) == 0 {
		fields = models.DefaultExportFields
	}
	for _, field := range fields {
		if !models.ValidExportField(field) {
			return fmt.Errorf("unknown export field %q", field)
		}
	}

	writer := csv.NewWriter(out)
	defer writer.Flush()

	if w.IncludeHeader {
		if err := writer.Write(fields); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}
	for _, txn := range data.Transactions {
		row := make([]string, len(fields))
		for i, field := range fields {
			row[i] = fieldValue(field, data, txn)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return writer.Error()
}

func fieldValue(field string, data *models.StatementData, txn models.Transaction) string {
	switch field {
	case models.FieldDate:
		return txn.Date.Format("2006-01-02")
	case models.FieldDateIndex:
		return strconv.Itoa(txn.DateIndex)
	case models.FieldDescription:
		return txn.Description
	case models.FieldAmount:
		return txn.Amount.StringFixed(2)
	case models.FieldBalance:
		return txn.Balance.StringFixed(2)
	case models.FieldKey:
		return data.Key
	case models.FieldFilename:
		return data.Filename
	case models.FieldAccountNumber:
		return data.AccountNumber
	}
	return ""
}
