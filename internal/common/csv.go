// Package common provides the working-CSV reader and writer shared by the
// intake adapters and the commands.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"

	"github.com/gocarina/gocsv"
)

// DefaultDelimiter is the working-CSV field separator.
const DefaultDelimiter = ','

// CSVIO reads and writes the working CSV: one models.Transaction per row
// with the ID, Date, Description, Amount, Type, MCC, Category, Confidence,
// Source and NeedsReview columns.
type CSVIO struct {
	delimiter rune
	logger    logging.Logger
}

// NewCSVIO creates a CSVIO. A zero delimiter means DefaultDelimiter.
func NewCSVIO(delimiter rune, logger logging.Logger) *CSVIO {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	return &CSVIO{delimiter: delimiter, logger: logging.OrDefault(logger)}
}

// Delimiter returns the field separator.
func (c *CSVIO) Delimiter() rune {
	return c.delimiter
}

// ReadRows decodes CSV rows from r into structs tagged with `csv:"..."`.
// Columns missing from the header are left zero.
func ReadRows[TCSVRow any](r io.Reader, delimiter rune) ([]TCSVRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []TCSVRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV data: %w", err)
	}
	return rows, nil
}

// DecodeTransactions reads working-CSV rows from r.
func (c *CSVIO) DecodeTransactions(r io.Reader) ([]models.Transaction, error) {
	return ReadRows[models.Transaction](r, c.delimiter)
}

// ReadTransactions reads the working CSV at path.
func (c *CSVIO) ReadTransactions(path string) ([]models.Transaction, error) {
	c.logger.Info("Reading CSV file", logging.F(logging.FieldFile, path))

	file, err := os.Open(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close file", logging.F(logging.FieldFile, path))
		}
	}()

	txs, err := c.DecodeTransactions(file)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Read transactions", logging.F(logging.FieldCount, len(txs)))
	return txs, nil
}

// EncodeTransactions writes txs as working CSV to w.
func (c *CSVIO) EncodeTransactions(w io.Writer, txs []models.Transaction) error {
	if txs == nil {
		txs = []models.Transaction{}
	}
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = c.delimiter
	if err := gocsv.MarshalCSV(txs, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteTransactions writes txs to path, creating parent directories.
func (c *CSVIO) WriteTransactions(path string, txs []models.Transaction) error {
	if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close file", logging.F(logging.FieldFile, path))
		}
	}()

	if err := c.EncodeTransactions(file, txs); err != nil {
		return err
	}

	c.logger.Info("Wrote transactions to CSV file",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(txs)))
	return nil
}
