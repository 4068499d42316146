// Package camtparser reads ISO 20022 CAMT.053 bank-to-customer statements.
package camtparser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"fjacquet/statement-categorizer/internal/dateutils"
	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parser"
	"fjacquet/statement-categorizer/internal/parsererror"
	"fjacquet/statement-categorizer/internal/validation"

	"gopkg.in/xmlpath.v2"
)

// StatementType is reported in the metadata of CAMT statements.
const StatementType = "camt.053"

// Paths are matched on local names, so namespaced documents work unchanged.
var (
	xpathStatement = xmlpath.MustCompile("//BkToCstmrStmt/Stmt")
	xpathEntry     = xmlpath.MustCompile("//BkToCstmrStmt/Stmt/Ntry")
	xpathBankName  = xmlpath.MustCompile("//BkToCstmrStmt/Stmt/Acct/Svcr/FinInstnId/Nm")
	xpathBankBIC   = xmlpath.MustCompile("//BkToCstmrStmt/Stmt/Acct/Svcr/FinInstnId/BIC")

	xpathAmount      = xmlpath.MustCompile("Amt")
	xpathCreditDebit = xmlpath.MustCompile("CdtDbtInd")
	xpathBookingDate = xmlpath.MustCompile("BookgDt/Dt")
	xpathBookingTime = xmlpath.MustCompile("BookgDt/DtTm")
	xpathValueDate   = xmlpath.MustCompile("ValDt/Dt")
	xpathAddtlInfo   = xmlpath.MustCompile("AddtlNtryInf")
	xpathRemittance  = xmlpath.MustCompile("NtryDtls/TxDtls/RmtInf/Ustrd")
	xpathCreditor    = xmlpath.MustCompile("NtryDtls/TxDtls/RltdPties/Cdtr/Nm")
	xpathDebtor      = xmlpath.MustCompile("NtryDtls/TxDtls/RltdPties/Dbtr/Nm")
)

// Adapter implements parser.Parser for CAMT.053 XML.
type Adapter struct {
	parser.BaseParser
}

// NewAdapter creates a CAMT.053 adapter.
func NewAdapter(logger logging.Logger) *Adapter {
	return &Adapter{BaseParser: parser.NewBaseParser(logger)}
}

// Format implements parser.Parser.
func (a *Adapter) Format() string {
	return "camt"
}

// Parse reads every Ntry of every statement in the document.
func (a *Adapter) Parse(ctx context.Context, r io.Reader) (*models.Statement, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading CAMT statement: %w", err)
	}

	root, err := xmlpath.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			ExpectedFormat:       "CAMT.053 XML",
			ActualContentSnippet: snippet(data),
			Msg:                  "document is not well-formed XML",
		}
	}
	if !xpathStatement.Exists(root) {
		return nil, &parsererror.InvalidFormatError{
			ExpectedFormat:       "CAMT.053 XML",
			ActualContentSnippet: snippet(data),
			Msg:                  "no BkToCstmrStmt/Stmt element",
		}
	}

	var txs []models.Transaction
	iter := xpathEntry.Iter(root)
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tx, err := entryToTransaction(iter.Node())
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if len(txs) == 0 {
		return nil, parsererror.ErrNoTransactions
	}

	bank := value(root, xpathBankName)
	if bank == "" {
		bank = value(root, xpathBankBIC)
	}
	return a.Finish(txs, models.StatementMetadata{
		Bank:              bank,
		StatementType:     StatementType,
		SafetyCheckPassed: true,
	}), nil
}

func entryToTransaction(entry *xmlpath.Node) (models.Transaction, error) {
	rawAmount := value(entry, xpathAmount)
	if rawAmount == "" {
		return models.Transaction{}, &parsererror.DataExtractionError{FieldName: "Amt", Reason: "entry has no amount"}
	}
	amount, err := models.ParseAmount(rawAmount)
	if err != nil {
		return models.Transaction{}, &parsererror.ParseError{Parser: "CAMT", Field: "Amt", Value: rawAmount, Err: err}
	}

	// Amounts are unsigned; the indicator carries the direction.
	txType := models.ParseTransactionType(value(entry, xpathCreditDebit))
	amount = amount.Abs()
	if txType == models.TypeDebit {
		amount = amount.Neg()
	}

	date := firstNonEmpty(value(entry, xpathBookingDate), value(entry, xpathBookingTime), value(entry, xpathValueDate))

	counterparty := xpathCreditor
	if txType == models.TypeCredit {
		counterparty = xpathDebtor
	}
	description := firstNonEmpty(
		value(entry, xpathAddtlInfo),
		value(entry, xpathRemittance),
		value(entry, counterparty),
	)

	return models.Transaction{
		Date:        dateutils.NormalizeDate(date),
		Description: validation.SanitizeDescription(description),
		Amount:      validation.SanitizeAmount(amount),
		Type:        txType,
	}, nil
}

func value(node *xmlpath.Node, path *xmlpath.Path) string {
	s, ok := path.String(node)
	if !ok {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 80 {
		s = s[:80]
	}
	return s
}
