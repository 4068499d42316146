package categorizer

import (
	"context"
	"strings"
	"sync"

	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parsererror"
)

// Lookup provider names.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderHeuristic = "heuristic"
	ProviderMock      = "mock"
)

// MerchantLookup asks an external service what a merchant is. Implementations
// return a *parsererror.LookupError for unreachable services and malformed
// answers; they must not panic on bad input.
type MerchantLookup interface {
	Lookup(ctx context.Context, merchant string) (*models.MerchantInfo, error)
	Provider() string
}

// HeuristicLookup guesses the business type from words in the merchant name.
// It needs no credentials and is used when no AI provider is configured.
type HeuristicLookup struct{}

// NewHeuristicLookup returns the offline lookup.
func NewHeuristicLookup() *HeuristicLookup {
	return &HeuristicLookup{}
}

func (*HeuristicLookup) Provider() string { return ProviderHeuristic }

const heuristicConfidence = 0.75

type heuristicRule struct {
	words        []string
	businessType string
	description  string
	category     string
}

var heuristicRules = []heuristicRule{
	{[]string{"market", "food", "grocery"}, "Grocery Store", "Food and grocery retailer", "Grocery"},
	{[]string{"gas", "fuel", "petroleum"}, "Gas Station", "Fuel and convenience store", "Gas"},
	{[]string{"restaurant", "cafe", "grill", "pizza"}, "Restaurant", "Food service establishment", "Meals & entertainment"},
	{[]string{"wireless", "telecom", "phone"}, "Telecommunications", "Phone and internet service provider", "Business Cell phone"},
}

// Lookup never fails for a non-blank name. Unknown merchants come back with
// business type "Unknown" and no suggested category.
func (h *HeuristicLookup) Lookup(ctx context.Context, merchant string) (*models.MerchantInfo, error) {
	name := strings.TrimSpace(merchant)
	if name == "" {
		return nil, &parsererror.LookupError{Merchant: merchant, Provider: h.Provider(), Err: errEmptyMerchant}
	}
	if err := ctx.Err(); err != nil {
		return nil, &parsererror.LookupError{Merchant: name, Provider: h.Provider(), Err: err}
	}

	lower := strings.ToLower(name)
	for _, rule := range heuristicRules {
		for _, w := range rule.words {
			if strings.Contains(lower, w) {
				return &models.MerchantInfo{
					Name:              name,
					BusinessType:      rule.businessType,
					Description:       rule.description,
					SuggestedCategory: rule.category,
					Confidence:        heuristicConfidence,
				}, nil
			}
		}
	}
	return &models.MerchantInfo{
		Name:         name,
		BusinessType: "Unknown",
		Description:  "Business type not automatically detected",
	}, nil
}

// MockLookup is a MerchantLookup for tests. Answers and errors are keyed by
// the exact merchant name; unknown merchants fail.
type MockLookup struct {
	Answers map[string]*models.MerchantInfo
	Errors  map[string]error
	// Func, when set, is used instead of the maps.
	Func func(ctx context.Context, merchant string) (*models.MerchantInfo, error)

	mu    sync.Mutex
	calls []string
}

// NewMockLookup returns an empty mock.
func NewMockLookup() *MockLookup {
	return &MockLookup{
		Answers: make(map[string]*models.MerchantInfo),
		Errors:  make(map[string]error),
	}
}

func (m *MockLookup) Provider() string { return ProviderMock }

func (m *MockLookup) Lookup(ctx context.Context, merchant string) (*models.MerchantInfo, error) {
	m.mu.Lock()
	m.calls = append(m.calls, merchant)
	m.mu.Unlock()

	if m.Func != nil {
		return m.Func(ctx, merchant)
	}
	if err, ok := m.Errors[merchant]; ok {
		return nil, &parsererror.LookupError{Merchant: merchant, Provider: ProviderMock, Err: err}
	}
	if info, ok := m.Answers[merchant]; ok {
		cp := *info
		return &cp, nil
	}
	return nil, &parsererror.LookupError{Merchant: merchant, Provider: ProviderMock, Err: errNoAnswer}
}

// Calls returns the merchants looked up so far, in call order.
func (m *MockLookup) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
