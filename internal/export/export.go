// Package export writes a CorporateReport to CSV, XLSX, JSON or Google
// Sheets. Writers only see the report and their options; they never look
// at the classifier or the session.
package export

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/report"
)

// Options tune the rendering shared by every writer.
type Options struct {
	CompanyName          string
	FiscalYearStartMonth int
	Delimiter            rune
}

// FileWriter renders a report into a byte stream.
type FileWriter interface {
	Write(w io.Writer, r *models.CorporateReport) error
	Extension() string
}

// NewFileWriter returns the writer for format: csv, xlsx or json.
func NewFileWriter(format string, opts Options, logger logging.Logger) (FileWriter, error) {
	switch strings.ToLower(format) {
	case "csv":
		return NewCSVWriter(opts), nil
	case "xlsx":
		return NewXLSXWriter(opts), nil
	case "json":
		return NewJSONWriter(logger), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// TransactionHeader is the column order of transaction exports.
var TransactionHeader = []string{"Date", "Description", "Category", "Amount", "Type", "Confidence"}

// TransactionRow is one exported transaction, formatted for display.
type TransactionRow struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Category    string `csv:"Category"`
	Amount      string `csv:"Amount"`
	Type        string `csv:"Type"`
	Confidence  string `csv:"Confidence"`
}

// Values returns the row in TransactionHeader order.
func (r TransactionRow) Values() []interface{} {
	return []interface{}{r.Date, r.Description, r.Category, r.Amount, r.Type, r.Confidence}
}

// TransactionRows flattens every category of r into rows sorted by date,
// then id. Amounts and confidences carry two decimals.
func TransactionRows(r *models.CorporateReport) []TransactionRow {
	txs := report.SortedTransactions(r)
	rows := make([]TransactionRow, len(txs))
	for i, tx := range txs {
		rows[i] = TransactionRow{
			Date:        tx.Date,
			Description: tx.Description,
			Category:    tx.CategoryOrDefault(),
			Amount:      models.FormatAmount(tx.Amount),
			Type:        string(tx.Type),
			Confidence:  fmt.Sprintf("%.2f", tx.Confidence),
		}
	}
	return rows
}

func reportTitle(opts Options) string {
	if name := strings.TrimSpace(opts.CompanyName); name != "" {
		return strings.ToUpper(name) + " - CORPORATE BUSINESS REPORT"
	}
	return "CORPORATE BUSINESS REPORT"
}
