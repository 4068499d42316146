// Package categorizer assigns categories to transactions. The Engine runs a
// fixed chain of pure strategies (user rules, merchant category codes,
// keywords, banking patterns); the Categorizer applies it to whole
// statements, and the Escalator sends what is left unresolved to an external
// merchant lookup.
package categorizer

import (
	"strings"

	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/registry"

	"github.com/shopspring/decimal"
)

// Engine is the classification engine. It performs no I/O and holds no
// mutable state, so one Engine may be shared freely.
type Engine struct {
	registry   *registry.Registry
	strategies []CategorizationStrategy
	threshold  float64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithThreshold sets the confidence below which results are flagged for
// review.
func WithThreshold(threshold float64) EngineOption {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

// WithStrategies replaces the default strategy chain.
func WithStrategies(strategies ...CategorizationStrategy) EngineOption {
	return func(e *Engine) {
		e.strategies = strategies
	}
}

// NewEngine builds an engine over reg. A nil registry means the built-in
// category table.
func NewEngine(reg *registry.Registry, opts ...EngineOption) *Engine {
	if reg == nil {
		reg = registry.Default()
	}
	e := &Engine{
		registry:  reg,
		threshold: models.DefaultReviewThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.strategies == nil {
		e.strategies = DefaultStrategies(reg, e.threshold)
	}
	return e
}

// Registry returns the category registry the engine matches against.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Threshold returns the review threshold.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Strategies returns the names of the chain, in evaluation order.
func (e *Engine) Strategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}

// Classify runs the strategy chain on one description. The first strategy
// that applies decides; when none does, or the description is blank, the
// result is Uncategorized and flagged for review.
func (e *Engine) Classify(description string, amount decimal.Decimal, mcc int, rules []models.MerchantRule) models.CategorizationResult {
	if strings.TrimSpace(description) == "" {
		return models.Uncategorized()
	}

	in := newInput(description, amount, mcc, rules)
	for _, s := range e.strategies {
		if res, ok := s.Categorize(in); ok {
			return res
		}
	}
	return models.Uncategorized()
}

// ClassifyTransaction classifies tx from its description, amount and MCC.
func (e *Engine) ClassifyTransaction(tx models.Transaction, rules []models.MerchantRule) models.CategorizationResult {
	return e.Classify(tx.Description, tx.Amount, tx.MCC, rules)
}
