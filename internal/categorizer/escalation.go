package categorizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parsererror"
	"fjacquet/statement-categorizer/internal/ratelimit"
	"fjacquet/statement-categorizer/internal/registry"
	"fjacquet/statement-categorizer/internal/textutils"
)

// Escalation defaults.
const (
	DefaultMaxBatchMerchants = 20
	DefaultRequestsPerMinute = 10
)

// EscalationConfig bounds and scores AI escalation.
type EscalationConfig struct {
	// MaxMerchants caps the distinct merchants looked up per run.
	MaxMerchants int
	// Threshold flags AI answers below it for review.
	Threshold float64
	// DefaultConfidence is used when the lookup reports none.
	DefaultConfidence float64
}

func (c EscalationConfig) withDefaults() EscalationConfig {
	if c.MaxMerchants <= 0 {
		c.MaxMerchants = DefaultMaxBatchMerchants
	}
	if c.Threshold <= 0 {
		c.Threshold = models.DefaultReviewThreshold
	}
	if c.DefaultConfidence <= 0 {
		c.DefaultConfidence = models.ConfidenceAIDefault
	}
	return c
}

// Categorization is the per-transaction outcome of an escalation.
type Categorization struct {
	ID         string        `json:"id"`
	Category   string        `json:"category"`
	Confidence float64       `json:"confidence"`
	Source     models.Source `json:"source"`
}

// EscalationResult summarizes one escalation run.
type EscalationResult struct {
	Transactions    []models.Transaction `json:"transactions"`
	Categorizations []Categorization     `json:"categorizations"`
	// Processed counts transactions whose merchant was looked up.
	Processed int `json:"processedCount"`
	// Remaining counts unresolved transactions left for a later run.
	Remaining int `json:"remainingCount"`
	Resolved  int `json:"resolvedCount"`
	Failed    int `json:"failedCount"`
	// Skipped is set when no lookup is configured.
	Skipped bool `json:"skipped"`
}

// Escalator sends unresolved transactions to a MerchantLookup, one call per
// distinct merchant, paced by a shared Dispatcher.
type Escalator struct {
	lookup     MerchantLookup
	dispatcher *ratelimit.Dispatcher
	registry   *registry.Registry
	cfg        EscalationConfig
	logger     logging.Logger
	progress   func(done, total int)
}

// NewEscalator builds an escalator. A nil lookup yields an escalator that
// skips every run; a nil dispatcher paces at DefaultRequestsPerMinute.
func NewEscalator(lookup MerchantLookup, dispatcher *ratelimit.Dispatcher, reg *registry.Registry, cfg EscalationConfig, logger logging.Logger) *Escalator {
	if dispatcher == nil {
		dispatcher = ratelimit.NewDispatcher(DefaultRequestsPerMinute)
	}
	if reg == nil {
		reg = registry.Default()
	}
	return &Escalator{
		lookup:     lookup,
		dispatcher: dispatcher,
		registry:   reg,
		cfg:        cfg.withDefaults(),
		logger:     logging.OrDefault(logger),
	}
}

// Enabled reports whether a lookup is configured.
func (e *Escalator) Enabled() bool {
	return e != nil && e.lookup != nil
}

// Lookup returns the configured merchant lookup, or nil.
func (e *Escalator) Lookup() MerchantLookup {
	if e == nil {
		return nil
	}
	return e.lookup
}

// OnProgress registers fn to be called after each merchant lookup.
func (e *Escalator) OnProgress(fn func(done, total int)) {
	e.progress = fn
}

type merchantGroup struct {
	merchant string
	indices  []int
}

// Escalate looks up the merchants of unresolved transactions and applies the
// answers to a copy of txs. User-confirmed transactions are never touched.
// Lookup failures leave the affected transactions flagged for review; the
// run itself only stops early when ctx ends.
func (e *Escalator) Escalate(ctx context.Context, txs []models.Transaction) EscalationResult {
	out := make([]models.Transaction, len(txs))
	copy(out, txs)

	if !e.Enabled() {
		return EscalationResult{Transactions: out, Categorizations: []Categorization{}, Skipped: true}
	}

	start := time.Now()
	groups, unresolved := groupUnresolved(out)
	batch := groups
	if len(batch) > e.cfg.MaxMerchants {
		batch = batch[:e.cfg.MaxMerchants]
	}

	res := EscalationResult{Categorizations: []Categorization{}}
	for i, g := range batch {
		info, err := e.lookupOne(ctx, g.merchant)
		if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			e.logger.Warn("Escalation interrupted",
				logging.F(logging.FieldCount, len(batch)-i))
			break
		}

		category, confidence, ok := e.resolve(info, err)
		if !ok {
			e.logger.WithError(err).Warn("Merchant lookup failed",
				logging.F(logging.FieldProvider, e.lookup.Provider()),
				logging.F(logging.FieldMerchant, g.merchant))
		}

		for _, idx := range g.indices {
			tx := &out[idx]
			if ok {
				e.applyAnswer(tx, category, confidence)
				res.Resolved++
			} else {
				applyFailure(tx)
				res.Failed++
			}
			res.Processed++
			res.Categorizations = append(res.Categorizations, Categorization{
				ID:         tx.ID,
				Category:   tx.Category,
				Confidence: tx.Confidence,
				Source:     tx.Source,
			})
		}

		if e.progress != nil {
			e.progress(i+1, len(batch))
		}
	}

	res.Transactions = out
	res.Remaining = unresolved - res.Processed

	e.logger.Info("AI escalation finished",
		logging.F(logging.FieldProvider, e.lookup.Provider()),
		logging.F("merchants", len(groups)),
		logging.F("processed", res.Processed),
		logging.F("resolved", res.Resolved),
		logging.F("failed", res.Failed),
		logging.F("remaining", res.Remaining),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return res
}

// LookupMerchant runs a single paced lookup.
func (e *Escalator) LookupMerchant(ctx context.Context, merchant string) (*models.MerchantInfo, error) {
	if !e.Enabled() {
		return nil, parsererror.ErrAIUnavailable
	}
	return e.lookupOne(ctx, merchant)
}

func (e *Escalator) lookupOne(ctx context.Context, merchant string) (*models.MerchantInfo, error) {
	var info *models.MerchantInfo
	err := e.dispatcher.Do(ctx, func(ctx context.Context) error {
		var lerr error
		info, lerr = e.safeLookup(ctx, merchant)
		return lerr
	})
	return info, err
}

func (e *Escalator) safeLookup(ctx context.Context, merchant string) (info *models.MerchantInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("lookup panicked: %v", r)
		}
	}()
	return e.lookup.Lookup(ctx, merchant)
}

// resolve turns a lookup answer into a registry category. Unknown or
// Uncategorized suggestions count as failures.
func (e *Escalator) resolve(info *models.MerchantInfo, err error) (string, float64, bool) {
	if err != nil || info == nil {
		return "", 0, false
	}
	name, ok := e.registry.Canonical(info.SuggestedCategory)
	if !ok || name == models.CategoryUncategorized {
		return "", 0, false
	}
	confidence := info.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = e.cfg.DefaultConfidence
	}
	return name, confidence, true
}

// applyAnswer takes the AI category unless the transaction already holds a
// more confident one.
func (e *Escalator) applyAnswer(tx *models.Transaction, category string, confidence float64) {
	if tx.Category != "" && tx.Category != models.CategoryUncategorized && tx.Confidence > confidence {
		tx.NeedsReview = true
		return
	}
	tx.Apply(models.CategorizationResult{
		Category:    category,
		Confidence:  confidence,
		Source:      models.SourceAI,
		NeedsReview: confidence < e.cfg.Threshold,
	})
}

// applyFailure keeps a tentative category for review, or marks the
// transaction as tried and failed.
func applyFailure(tx *models.Transaction) {
	if tx.Category != "" && tx.Category != models.CategoryUncategorized {
		tx.NeedsReview = true
		return
	}
	tx.Apply(models.CategorizationResult{
		Category:    models.CategoryUncategorized,
		Source:      models.SourceFailed,
		NeedsReview: true,
	})
}

// groupUnresolved groups unresolved, unconfirmed transactions by merchant
// key in first-seen order and returns how many transactions were selected.
func groupUnresolved(txs []models.Transaction) ([]merchantGroup, int) {
	var groups []merchantGroup
	byKey := make(map[string]int)
	count := 0

	for i, tx := range txs {
		if tx.IsUserConfirmed() || !tx.IsUnresolved() {
			continue
		}
		merchant := textutils.NormalizeMerchant(tx.Description)
		key := textutils.MerchantKey(merchant)
		if strings.TrimSpace(key) == "" {
			continue
		}
		count++
		if gi, ok := byKey[key]; ok {
			groups[gi].indices = append(groups[gi].indices, i)
			continue
		}
		byKey[key] = len(groups)
		groups = append(groups, merchantGroup{merchant: merchant, indices: []int{i}})
	}
	return groups, count
}
