// Package ofxparser reads OFX and QFX downloads, both bank and credit-card
// statements.
package ofxparser

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"fjacquet/statement-categorizer/internal/dateutils"
	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parser"
	"fjacquet/statement-categorizer/internal/parsererror"
	"fjacquet/statement-categorizer/internal/validation"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// StatementType is reported in the metadata of OFX statements.
const StatementType = "ofx"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// SGML tags left without their closing bracket at end of line.
	openTagRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Adapter implements parser.Parser for OFX/QFX files.
type Adapter struct {
	parser.BaseParser
}

// NewAdapter creates an OFX adapter.
func NewAdapter(logger logging.Logger) *Adapter {
	return &Adapter{BaseParser: parser.NewBaseParser(logger)}
}

// Format implements parser.Parser.
func (a *Adapter) Format() string {
	return "ofx"
}

// preprocess repairs the formatting slips banks commonly ship.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagRegex.ReplaceAllString(content, "$1>")
}

// Parse reads every bank and credit-card statement in the response.
func (a *Adapter) Parse(ctx context.Context, r io.Reader) (*models.Statement, error) {
	logger := a.GetLogger()

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, &parsererror.InvalidFormatError{ExpectedFormat: "OFX", Msg: err.Error()}
	}

	var txs []models.Transaction
	var bankStmts, cardStmts int
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			for _, t := range stmt.BankTranList.Transactions {
				txs = append(txs, convert(t))
			}
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			cardStmts++
			for _, t := range stmt.BankTranList.Transactions {
				txs = append(txs, convert(t))
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Debug("Parsed OFX file",
		logging.F("bank_statements", bankStmts),
		logging.F("card_statements", cardStmts))

	if len(txs) == 0 {
		return nil, parsererror.ErrNoTransactions
	}
	return a.Finish(txs, models.StatementMetadata{StatementType: StatementType, SafetyCheckPassed: true}), nil
}

func convert(t ofxgo.Transaction) models.Transaction {
	amount, err := decimal.NewFromString(t.TrnAmt.Rat.FloatString(4))
	if err != nil {
		amount = decimal.Zero
	}
	return models.Transaction{
		Date:        dateutils.ToISODate(t.DtPosted.Time),
		Description: validation.SanitizeDescription(description(t)),
		Amount:      validation.SanitizeAmount(amount),
		Type:        models.TypeFromAmount(amount),
	}
}

// description prefers the payee name, then NAME, then MEMO.
func description(t ofxgo.Transaction) string {
	if t.Payee != nil && strings.TrimSpace(string(t.Payee.Name)) != "" {
		return string(t.Payee.Name)
	}
	if name := strings.TrimSpace(string(t.Name)); name != "" {
		return name
	}
	return string(t.Memo)
}
