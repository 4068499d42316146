package categorizer

import (
	"fmt"
	"strings"
	"time"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parsererror"
)

// Categorizer is the batch categorizer: it applies the Engine to every
// transaction of a statement.
type Categorizer struct {
	engine *Engine
	logger logging.Logger
}

// NewCategorizer wraps engine. A nil engine means the default engine.
func NewCategorizer(engine *Engine, logger logging.Logger) *Categorizer {
	if engine == nil {
		engine = NewEngine(nil)
	}
	return &Categorizer{
		engine: engine,
		logger: logging.OrDefault(logger),
	}
}

// Engine returns the underlying classification engine.
func (c *Categorizer) Engine() *Engine {
	return c.engine
}

// Categorize classifies a single description. It never fails; a panicking
// strategy yields an Uncategorized result flagged for review.
func (c *Categorizer) Categorize(description string, tx models.Transaction, rules []models.MerchantRule) models.CategorizationResult {
	tx.Description = description
	res, err := c.safeClassify(tx, rules)
	if err != nil {
		c.logger.WithError(err).Warn("Classification failed, flagging for review",
			logging.F(logging.FieldMerchant, description))
	}
	return res
}

// CategorizeAll returns a copy of txs with category, confidence, source and
// review flag set from the current rules. Transactions the user already
// confirmed are copied unchanged. A failure on one transaction never aborts
// the batch.
func (c *Categorizer) CategorizeAll(txs []models.Transaction, rules []models.MerchantRule) []models.Transaction {
	start := time.Now()
	out := make([]models.Transaction, len(txs))
	failures := 0

	for i, tx := range txs {
		out[i] = tx
		if tx.IsUserConfirmed() {
			continue
		}

		if strings.TrimSpace(tx.Description) == "" {
			c.logger.Debug("Transaction has no description, flagging for review",
				logging.F(logging.FieldTransactionID, tx.ID),
				logging.F(logging.FieldReason, "missing description"))
		}

		res, err := c.safeClassify(tx, rules)
		if err != nil {
			failures++
			c.logger.WithError(err).Warn("Classification failed, flagging for review",
				logging.F(logging.FieldTransactionID, tx.ID))
		}
		out[i].Apply(res)
	}

	stats := models.ComputeStats(out)
	stats.LogSummary(c.logger, "categorize_all")
	if failures > 0 {
		c.logger.Warn("Some transactions could not be classified",
			logging.F(logging.FieldCount, failures),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	}
	return out
}

func (c *Categorizer) safeClassify(tx models.Transaction, rules []models.MerchantRule) (res models.CategorizationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = models.Uncategorized()
			err = &parsererror.CategorizationError{
				Transaction: tx.ID,
				Strategy:    "chain",
				Err:         fmt.Errorf("panic: %v", r),
			}
		}
	}()
	return c.engine.ClassifyTransaction(tx, rules), nil
}
