// Package common contains shared functionality for command handlers
package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	workingcsv "fjacquet/statement-categorizer/internal/common"
	"fjacquet/statement-categorizer/internal/container"
	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/validation"
)

// LoadTransactions reads the working CSV at path with the configured
// delimiter.
func LoadTransactions(app *container.Container, path string) ([]models.Transaction, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("an input file is required (--input)")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error resolving %s: %w", path, err)
	}
	if err := validation.IsValidPath(abs); err != nil {
		return nil, err
	}

	csvIO := workingcsv.NewCSVIO(app.GetConfig().Delimiter(), app.GetLogger())
	txs, err := csvIO.ReadTransactions(abs)
	if err != nil {
		return nil, err
	}

	invalid := 0
	for _, tx := range txs {
		if err := validation.ValidateTransaction(tx); err != nil {
			invalid++
			app.GetLogger().Debug("Transaction will need review", logging.F(logging.FieldReason, err.Error()))
		}
	}
	if invalid > 0 {
		app.GetLogger().Warn("Some transactions lack a description or a valid date",
			logging.F(logging.FieldFile, path),
			logging.F(logging.FieldCount, invalid))
	}
	return txs, nil
}

// SaveTransactions writes txs as a working CSV to path, or to stdout when
// path is empty.
func SaveTransactions(app *container.Container, path string, txs []models.Transaction, stdout io.Writer) error {
	csvIO := workingcsv.NewCSVIO(app.GetConfig().Delimiter(), app.GetLogger())
	if strings.TrimSpace(path) == "" {
		if stdout == nil {
			stdout = os.Stdout
		}
		return csvIO.EncodeTransactions(stdout, txs)
	}
	return csvIO.WriteTransactions(path, txs)
}

// DerivedPath returns output when set, otherwise input with its extension
// replaced by suffix.
func DerivedPath(input, output, suffix string) string {
	if strings.TrimSpace(output) != "" {
		return output
	}
	if strings.TrimSpace(input) == "" {
		return ""
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}
