// Package csvparser reads generic Date,Description,Amount[,Type][,MCC]
// statement exports.
package csvparser

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fjacquet/statement-categorizer/internal/common"
	"fjacquet/statement-categorizer/internal/dateutils"
	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parser"
	"fjacquet/statement-categorizer/internal/parsererror"
	"fjacquet/statement-categorizer/internal/validation"
)

// StatementType is reported in the metadata of CSV statements.
const StatementType = "csv"

// RequiredColumns must all appear in the header.
var RequiredColumns = []string{"Date", "Description", "Amount"}

// StatementRow is one row of a CSV statement. Type and MCC are optional.
type StatementRow struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Type        string `csv:"Type"`
	MCC         string `csv:"MCC"`
}

// Adapter implements parser.Parser for CSV statements.
type Adapter struct {
	parser.BaseParser
	delimiter rune
}

// NewAdapter creates a CSV adapter. A zero delimiter means a comma.
func NewAdapter(logger logging.Logger, delimiter rune) *Adapter {
	if delimiter == 0 {
		delimiter = common.DefaultDelimiter
	}
	return &Adapter{BaseParser: parser.NewBaseParser(logger), delimiter: delimiter}
}

// Format implements parser.Parser.
func (a *Adapter) Format() string {
	return "csv"
}

// Parse reads every row. Rows whose amount cannot be parsed are skipped
// with a warning; rows with a blank description are kept.
func (a *Adapter) Parse(ctx context.Context, r io.Reader) (*models.Statement, error) {
	logger := a.GetLogger()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading CSV statement: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if err := a.checkHeader(data); err != nil {
		return nil, err
	}

	rows, err := common.ReadRows[StatementRow](bytes.NewReader(data), a.delimiter)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{ExpectedFormat: "CSV", Msg: err.Error()}
	}

	txs := make([]models.Transaction, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tx, err := convertRow(row)
		if err != nil {
			logger.WithError(err).Warn("Skipping CSV row", logging.F("row", i+2))
			continue
		}
		txs = append(txs, tx)
	}
	if len(txs) == 0 {
		return nil, parsererror.ErrNoTransactions
	}

	return a.Finish(txs, models.StatementMetadata{StatementType: StatementType, SafetyCheckPassed: true}), nil
}

func (a *Adapter) checkHeader(data []byte) error {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = a.delimiter
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return parsererror.ErrNoTransactions
		}
		return &parsererror.InvalidFormatError{ExpectedFormat: "CSV", Msg: err.Error()}
	}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	for _, col := range RequiredColumns {
		if !present[col] {
			return &parsererror.InvalidFormatError{
				ExpectedFormat:       "CSV with " + strings.Join(RequiredColumns, ","),
				ActualContentSnippet: strings.Join(header, ","),
				Msg:                  fmt.Sprintf("missing column %q", col),
			}
		}
	}
	return nil
}

func convertRow(row StatementRow) (models.Transaction, error) {
	amount, err := models.ParseAmount(row.Amount)
	if err != nil {
		return models.Transaction{}, &parsererror.ParseError{Parser: "CSV", Field: "Amount", Value: row.Amount, Err: err}
	}

	tx := models.Transaction{
		Date:        dateutils.NormalizeDate(row.Date),
		Description: validation.SanitizeDescription(row.Description),
		Amount:      validation.SanitizeAmount(amount),
		Type:        models.ParseTransactionType(row.Type),
	}
	if mcc := strings.TrimSpace(row.MCC); mcc != "" {
		code, err := strconv.Atoi(mcc)
		if err != nil {
			return models.Transaction{}, &parsererror.ParseError{Parser: "CSV", Field: "MCC", Value: row.MCC, Err: err}
		}
		tx.MCC = code
	}
	return tx, nil
}
