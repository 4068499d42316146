package store

import (
	"sync"

	"fjacquet/statement-categorizer/internal/models"
)

// MockRuleStore is an in-memory RuleStore for testing.
type MockRuleStore struct {
	mu    sync.Mutex
	Rules []models.MerchantRule
	Saves int

	// Error fields for testing error conditions
	LoadRulesError error
	SaveRulesError error
}

// LoadRules returns a copy of the stored rules.
func (m *MockRuleStore) LoadRules() ([]models.MerchantRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadRulesError != nil {
		return nil, m.LoadRulesError
	}
	return append([]models.MerchantRule(nil), m.Rules...), nil
}

// SaveRules replaces the stored rules.
func (m *MockRuleStore) SaveRules(rules []models.MerchantRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveRulesError != nil {
		return m.SaveRulesError
	}
	m.Rules = append([]models.MerchantRule(nil), rules...)
	m.Saves++
	return nil
}

// Close is a no-op.
func (m *MockRuleStore) Close() error {
	return nil
}
