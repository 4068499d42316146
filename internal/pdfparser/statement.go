package pdfparser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parsererror"
	"fjacquet/statement-categorizer/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Statement types reported in the metadata.
const (
	StatementCredit   = "credit"
	StatementChequing = "chequing"
	StatementSavings  = "savings"

	bankName = "RBC"
)

// MMM DD DESCRIPTION AMOUNT
var lineRegex = regexp.MustCompile(`^([A-Z]{3})\s+(\d{1,2})\s+(.+?)\s+(-?\d+[.,]\d{2})$`)

var months = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// DetectStatementType identifies the account type from marker words in the
// statement text.
func DetectStatementType(text string) (string, error) {
	switch {
	case strings.Contains(text, "VISA") || strings.Contains(text, "Credit Card"):
		return StatementCredit, nil
	case strings.Contains(text, "Chequing") || strings.Contains(text, "CHEQUING"):
		return StatementChequing, nil
	case strings.Contains(text, "Savings") || strings.Contains(text, "SAVINGS"):
		return StatementSavings, nil
	default:
		return "", parsererror.ErrUnrecognizedStatement
	}
}

// ParseStatementText scrapes transaction lines out of extracted statement
// text. Dates carry no year on the statement, so year is applied to every
// row; zero means the current year.
func ParseStatementText(text string, year int) (*models.Statement, error) {
	statementType, err := DetectStatementType(text)
	if err != nil {
		return nil, err
	}
	if year == 0 {
		year = time.Now().Year()
	}

	var txs []models.Transaction
	for _, raw := range strings.Split(text, "\n") {
		tx, ok := parseLine(strings.TrimSpace(raw), year)
		if !ok {
			continue
		}
		txs = append(txs, tx)
	}
	if len(txs) == 0 {
		return nil, parsererror.ErrNoTransactions
	}

	return &models.Statement{
		Transactions: txs,
		Metadata: models.StatementMetadata{
			Bank:              bankName,
			StatementType:     statementType,
			TotalTransactions: len(txs),
			SafetyCheckPassed: true,
		},
	}, nil
}

func parseLine(line string, year int) (models.Transaction, bool) {
	m := lineRegex.FindStringSubmatch(line)
	if m == nil {
		return models.Transaction{}, false
	}

	month, ok := months[m[1]]
	if !ok {
		return models.Transaction{}, false
	}
	day, err := strconv.Atoi(m[2])
	if err != nil || day < 1 || day > 31 {
		return models.Transaction{}, false
	}
	amount, err := decimal.NewFromString(strings.Replace(m[4], ",", ".", 1))
	if err != nil {
		return models.Transaction{}, false
	}

	return models.Transaction{
		ID:          uuid.NewString(),
		Date:        fmt.Sprintf("%04d-%02d-%02d", year, int(month), day),
		Description: validation.SanitizeDescription(m[3]),
		Amount:      amount,
		Type:        models.TypeFromAmount(amount),
	}, true
}
