// Package rules holds the in-memory set of user-taught merchant rules.
package rules

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/textutils"
)

// Set keeps at most one rule per merchant, compared case-insensitively.
// Adding a rule for a known merchant replaces the old one in place, so
// iteration order is first-insertion order. Safe for concurrent use.
type Set struct {
	mu    sync.RWMutex
	rules []models.MerchantRule
	index map[string]int
	now   func() time.Time
}

// NewSet builds a set from rules; later duplicates replace earlier ones.
func NewSet(rules ...models.MerchantRule) *Set {
	s := &Set{index: make(map[string]int), now: time.Now}
	for _, r := range rules {
		_ = s.put(r)
	}
	return s
}

// Add records merchant → category stamped with the current time. The
// merchant is stored as given, trimmed; matching ignores case.
func (s *Set) Add(merchant, category string) (models.MerchantRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := models.MerchantRule{
		MerchantName: strings.TrimSpace(merchant),
		Category:     strings.TrimSpace(category),
		Timestamp:    s.now().UTC(),
	}
	if err := s.put(r); err != nil {
		return models.MerchantRule{}, err
	}
	return r, nil
}

// Upsert stores r as is, keeping its timestamp.
func (s *Set) Upsert(r models.MerchantRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(r)
}

func (s *Set) put(r models.MerchantRule) error {
	r.MerchantName = strings.TrimSpace(r.MerchantName)
	r.Category = strings.TrimSpace(r.Category)
	key := textutils.MerchantKey(r.MerchantName)
	if key == "" {
		return fmt.Errorf("merchant name is required")
	}
	if r.Category == "" {
		return fmt.Errorf("category is required for merchant %q", r.MerchantName)
	}

	if i, ok := s.index[key]; ok {
		s.rules[i] = r
		return nil
	}
	s.index[key] = len(s.rules)
	s.rules = append(s.rules, r)
	return nil
}

// Get returns the rule for merchant, ignoring case.
func (s *Set) Get(merchant string) (models.MerchantRule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[textutils.MerchantKey(merchant)]
	if !ok {
		return models.MerchantRule{}, false
	}
	return s.rules[i], true
}

// Remove deletes the rule for merchant and reports whether one existed.
func (s *Set) Remove(merchant string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := textutils.MerchantKey(merchant)
	i, ok := s.index[key]
	if !ok {
		return false
	}
	s.rules = append(s.rules[:i], s.rules[i+1:]...)
	delete(s.index, key)
	for k, j := range s.index {
		if j > i {
			s.index[k] = j - 1
		}
	}
	return true
}

// Snapshot returns a copy of the rules in insertion order.
func (s *Set) Snapshot() []models.MerchantRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MerchantRule(nil), s.rules...)
}

// Replace swaps the whole set for rules.
func (s *Set) Replace(rules []models.MerchantRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = nil
	s.index = make(map[string]int)
	for _, r := range rules {
		_ = s.put(r)
	}
}

// Len returns the number of rules.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}
