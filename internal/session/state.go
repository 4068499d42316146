// Package session holds the working state of one user session: the current
// transactions and the merchant rules. Only the rules cross the
// persistence boundary; transactions live for the session and are cleared
// in bulk.
package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"fjacquet/statement-categorizer/internal/categorizer"
	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parsererror"
	"fjacquet/statement-categorizer/internal/rules"
	"fjacquet/statement-categorizer/internal/store"
	"fjacquet/statement-categorizer/internal/textutils"
	"fjacquet/statement-categorizer/internal/validation"
)

// State is safe for concurrent use.
type State struct {
	mu           sync.RWMutex
	transactions []models.Transaction
	rules        *rules.Set

	categorizer *categorizer.Categorizer
	ruleStore   store.RuleStore
	logger      logging.Logger
}

// New creates an empty state. A nil ruleStore keeps rules in memory only.
func New(cat *categorizer.Categorizer, ruleStore store.RuleStore, logger logging.Logger) *State {
	logger = logging.OrDefault(logger)
	if cat == nil {
		cat = categorizer.NewCategorizer(nil, logger)
	}
	return &State{
		rules:       rules.NewSet(),
		categorizer: cat,
		ruleStore:   ruleStore,
		logger:      logger,
	}
}

// Load replaces the in-memory rules with the persisted ones.
func (s *State) Load() error {
	if s.ruleStore == nil {
		return nil
	}
	loaded, err := s.ruleStore.LoadRules()
	if err != nil {
		return fmt.Errorf("error loading merchant rules: %w", err)
	}
	s.rules.Replace(loaded)
	s.logger.Debug("Loaded merchant rules", logging.F(logging.FieldCount, s.rules.Len()))
	return nil
}

// Save persists the current rules.
func (s *State) Save() error {
	if s.ruleStore == nil {
		return nil
	}
	if err := s.ruleStore.SaveRules(s.rules.Snapshot()); err != nil {
		return fmt.Errorf("error saving merchant rules: %w", err)
	}
	return nil
}

// SetTransactions replaces the session's transactions with a copy of txs.
func (s *State) SetTransactions(txs []models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append([]models.Transaction(nil), txs...)
}

// AppendTransactions adds txs after the current transactions.
func (s *State) AppendTransactions(txs []models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, txs...)
}

// Transactions returns a copy of the session's transactions.
func (s *State) Transactions() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Transaction(nil), s.transactions...)
}

// Transaction returns the transaction with id.
func (s *State) Transaction(id string) (models.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.transactions[i], true
	}
	return models.Transaction{}, false
}

func (s *State) indexOf(id string) int {
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			return i
		}
	}
	return -1
}

// UpdateTransaction applies patch to the transaction with id. The patched
// category is sanitized; clearing it stores Uncategorized, and a transaction
// without a category must stay flagged for review.
func (s *State) UpdateTransaction(id string, patch models.Patch) (models.Transaction, error) {
	cleared := false
	if patch.Category != nil {
		cleared = strings.TrimSpace(*patch.Category) == ""
		category := s.canonical(*patch.Category)
		patch.Category = &category
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Transaction{}, fmt.Errorf("%w: %s", parsererror.ErrTransactionNotFound, id)
	}
	updated := s.transactions[i]
	updated.ApplyPatch(patch)
	if !updated.NeedsReview && (cleared || strings.TrimSpace(updated.Category) == "") {
		return models.Transaction{}, &parsererror.ValidationError{Reason: "a transaction without a category must stay flagged for review"}
	}
	s.transactions[i] = updated
	return updated, nil
}

// ClearTransactions drops every transaction. Rules are kept.
func (s *State) ClearTransactions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = nil
}

// AddMerchantRule teaches merchant → category, replacing any rule for the
// same merchant.
func (s *State) AddMerchantRule(merchant, category string) (models.MerchantRule, error) {
	rule, err := s.rules.Add(merchant, s.canonical(category))
	if err != nil {
		return models.MerchantRule{}, err
	}
	s.logger.Info("Merchant rule saved",
		logging.F(logging.FieldMerchant, rule.MerchantName),
		logging.F(logging.FieldCategory, rule.Category))
	return rule, nil
}

// RemoveMerchantRule forgets the rule for merchant.
func (s *State) RemoveMerchantRule(merchant string) bool {
	return s.rules.Remove(merchant)
}

// Rules returns the merchant rules in insertion order.
func (s *State) Rules() []models.MerchantRule {
	return s.rules.Snapshot()
}

// ReviewQueue returns the transactions still flagged for review.
func (s *State) ReviewQueue() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var queue []models.Transaction
	for _, tx := range s.transactions {
		if tx.NeedsReview {
			queue = append(queue, tx)
		}
	}
	return queue
}

// Approve records the user's category for a transaction. With remember, a
// rule for the normalized merchant is added so the choice applies to future
// statements too.
func (s *State) Approve(id, category string, remember bool) (models.Transaction, error) {
	category = s.canonical(category)

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Transaction{}, fmt.Errorf("%w: %s", parsererror.ErrTransactionNotFound, id)
	}
	s.transactions[i].Apply(models.CategorizationResult{
		Category:    category,
		Confidence:  models.ConfidenceUser,
		Source:      models.SourceManual,
		NeedsReview: false,
	})
	tx := s.transactions[i]
	s.mu.Unlock()

	s.logger.Info("Transaction approved",
		logging.F(logging.FieldTransactionID, id),
		logging.F(logging.FieldCategory, category))

	if remember {
		merchant := textutils.NormalizeMerchant(tx.Description)
		if merchant == "" {
			s.logger.Warn("Cannot remember a rule for a transaction without description",
				logging.F(logging.FieldTransactionID, id))
			return tx, nil
		}
		if _, err := s.AddMerchantRule(merchant, category); err != nil {
			return tx, err
		}
	}
	return tx, nil
}

// Recategorize re-runs the batch categorizer with the current rules. User
// approved transactions keep their category; rule matches are recomputed.
func (s *State) Recategorize() []models.Transaction {
	ruleSnapshot := s.rules.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = s.categorizer.CategorizeAll(s.transactions, ruleSnapshot)
	return append([]models.Transaction(nil), s.transactions...)
}

// canonical maps category onto the registry spelling when it is known;
// otherwise the sanitized input is kept as a user-defined category.
func (s *State) canonical(category string) string {
	category = validation.SanitizeCategory(category)
	if name, ok := s.categorizer.Engine().Registry().Canonical(category); ok {
		return name
	}
	return category
}

type rulesDocument struct {
	Rules []models.MerchantRule `json:"rules"`
}

// MarshalRules serializes the rules; transactions are never included.
func (s *State) MarshalRules() ([]byte, error) {
	return json.Marshal(rulesDocument{Rules: s.rules.Snapshot()})
}

// UnmarshalRules replaces the rules with the serialized set. Entries
// without a merchant or category are dropped.
func (s *State) UnmarshalRules(data []byte) error {
	var doc rulesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("error decoding merchant rules: %w", err)
	}
	kept := doc.Rules[:0]
	for _, r := range doc.Rules {
		if strings.TrimSpace(r.MerchantName) != "" && strings.TrimSpace(r.Category) != "" {
			kept = append(kept, r)
		}
	}
	s.rules.Replace(kept)
	return nil
}
