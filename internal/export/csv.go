package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"fjacquet/statement-categorizer/internal/common"
	"fjacquet/statement-categorizer/internal/models"

	"github.com/gocarina/gocsv"
)

// CSVWriter writes one row per transaction.
type CSVWriter struct {
	delimiter rune
}

// NewCSVWriter creates a CSVWriter.
func NewCSVWriter(opts Options) *CSVWriter {
	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = common.DefaultDelimiter
	}
	return &CSVWriter{delimiter: delimiter}
}

// Extension implements FileWriter.
func (c *CSVWriter) Extension() string { return ".csv" }

// Write implements FileWriter.
func (c *CSVWriter) Write(w io.Writer, r *models.CorporateReport) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = c.delimiter

	rows := TransactionRows(r)
	if len(rows) == 0 {
		if err := csvWriter.Write(TransactionHeader); err != nil {
			return fmt.Errorf("error writing CSV header: %w", err)
		}
		csvWriter.Flush()
		return csvWriter.Error()
	}

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV export: %w", err)
	}
	return nil
}
