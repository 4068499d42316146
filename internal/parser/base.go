package parser

import (
	"strings"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"

	"github.com/google/uuid"
)

// BaseParser provides the logger and statement finishing shared by the
// format adapters. Adapters embed it:
//
//	type Adapter struct {
//		parser.BaseParser
//		// format-specific fields
//	}
type BaseParser struct {
	logger logging.Logger
	newID  func() string
}

// NewBaseParser creates a BaseParser. A nil logger means the default logger.
func NewBaseParser(logger logging.Logger) BaseParser {
	return BaseParser{
		logger: logging.OrDefault(logger),
		newID:  uuid.NewString,
	}
}

// SetLogger replaces the logger; nil is ignored.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// GetLogger returns the current logger.
func (b *BaseParser) GetLogger() logging.Logger {
	if b.logger == nil {
		b.logger = logging.OrDefault(nil)
	}
	return b.logger
}

// Finish assigns missing ids and types and fills the transaction count.
func (b *BaseParser) Finish(txs []models.Transaction, meta models.StatementMetadata) *models.Statement {
	newID := b.newID
	if newID == nil {
		newID = uuid.NewString
	}

	for i := range txs {
		if strings.TrimSpace(txs[i].ID) == "" {
			txs[i].ID = newID()
		}
		if txs[i].Type == "" {
			txs[i].Type = models.TypeFromAmount(txs[i].Amount)
		}
	}
	meta.TotalTransactions = len(txs)

	b.GetLogger().Info("Statement converted",
		logging.F(logging.FieldCount, len(txs)),
		logging.F("bank", meta.Bank),
		logging.F("statement_type", meta.StatementType))

	return &models.Statement{Transactions: txs, Metadata: meta}
}
