package categorizer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/registry"
	"fjacquet/statement-categorizer/internal/textutils"

	"github.com/shopspring/decimal"
)

// Input is the view of one transaction a strategy classifies.
type Input struct {
	// Description is the raw statement text.
	Description string
	// Normalized is NormalizeMerchant(Description).
	Normalized string
	Amount     decimal.Decimal
	MCC        int
	Rules      []models.MerchantRule
}

func newInput(description string, amount decimal.Decimal, mcc int, rules []models.MerchantRule) Input {
	return Input{
		Description: description,
		Normalized:  textutils.NormalizeMerchant(description),
		Amount:      amount,
		MCC:         mcc,
		Rules:       rules,
	}
}

// CategorizationStrategy is one tier of the classification chain. A strategy
// is pure: it reports a result and true when it applies, or false so the
// next tier is tried.
type CategorizationStrategy interface {
	Categorize(in Input) (models.CategorizationResult, bool)

	// Name returns the name of this strategy for logging and debugging purposes.
	Name() string
}

// StrategyFunc adapts a plain function to CategorizationStrategy.
type StrategyFunc struct {
	Label string
	Fn    func(in Input) (models.CategorizationResult, bool)
}

func (s StrategyFunc) Categorize(in Input) (models.CategorizationResult, bool) { return s.Fn(in) }
func (s StrategyFunc) Name() string                                            { return s.Label }

// DefaultStrategies returns the standard chain: user rules, MCC, keywords,
// patterns.
func DefaultStrategies(reg *registry.Registry, threshold float64) []CategorizationStrategy {
	return []CategorizationStrategy{
		RuleStrategy{},
		MCCStrategy{Registry: reg},
		KeywordStrategy{Registry: reg, Threshold: threshold},
		PatternStrategy{},
	}
}

// RuleStrategy applies user-taught merchant rules. A rule matches when its
// merchant name occurs in the normalized description, ignoring case. The
// longest matching name wins; among equal lengths the newest rule wins.
type RuleStrategy struct{}

func (RuleStrategy) Name() string { return "UserRule" }

func (RuleStrategy) Categorize(in Input) (models.CategorizationResult, bool) {
	var (
		best    models.MerchantRule
		bestLen = -1
	)
	for _, rule := range in.Rules {
		name := strings.TrimSpace(rule.MerchantName)
		if name == "" || strings.TrimSpace(rule.Category) == "" {
			continue
		}
		if !textutils.ContainsFold(in.Normalized, name) {
			continue
		}
		n := utf8.RuneCountInString(name)
		if n > bestLen || (n == bestLen && !rule.Timestamp.Before(best.Timestamp)) {
			best, bestLen = rule, n
		}
	}
	if bestLen < 0 {
		return models.CategorizationResult{}, false
	}
	return models.CategorizationResult{
		Category:   best.Category,
		Confidence: models.ConfidenceUser,
		Source:     models.SourceUserHistory,
	}, true
}

// MCCStrategy matches the merchant category code against the registry.
type MCCStrategy struct {
	Registry *registry.Registry
}

func (MCCStrategy) Name() string { return "MCC" }

func (s MCCStrategy) Categorize(in Input) (models.CategorizationResult, bool) {
	if s.Registry == nil || in.MCC <= 0 {
		return models.CategorizationResult{}, false
	}
	cat, ok := s.Registry.ByMCC(in.MCC)
	if !ok {
		return models.CategorizationResult{}, false
	}
	return models.CategorizationResult{
		Category:   cat.Name,
		Confidence: models.ConfidenceMCC,
		Source:     models.SourceMCC,
	}, true
}

// KeywordStrategy scans every keyword of every category and keeps the best
// scoring one. A keyword scores 0.7 plus 0.2 times its share of the
// description length, capped at 0.9; the first of equal scores wins.
type KeywordStrategy struct {
	Registry  *registry.Registry
	Threshold float64
}

func (KeywordStrategy) Name() string { return "Keyword" }

func (s KeywordStrategy) Categorize(in Input) (models.CategorizationResult, bool) {
	if s.Registry == nil {
		return models.CategorizationResult{}, false
	}
	desc := strings.ToLower(in.Normalized)
	descLen := utf8.RuneCountInString(desc)
	if descLen == 0 {
		return models.CategorizationResult{}, false
	}

	var (
		bestCategory string
		bestScore    float64
	)
	for _, cat := range s.Registry.Categories() {
		for _, kw := range cat.Keywords {
			if !strings.Contains(desc, kw) {
				continue
			}
			score := KeywordConfidence(utf8.RuneCountInString(kw), descLen)
			if score > bestScore {
				bestCategory, bestScore = cat.Name, score
			}
		}
	}

	if bestCategory == "" || bestScore < models.ConfidenceKeywordFloor {
		return models.CategorizationResult{}, false
	}
	return models.CategorizationResult{
		Category:    bestCategory,
		Confidence:  bestScore,
		Source:      models.SourceKeyword,
		NeedsReview: bestScore < s.Threshold,
	}, true
}

// KeywordConfidence scores a keyword of keywordLen runes found in a
// description of descriptionLen runes.
func KeywordConfidence(keywordLen, descriptionLen int) float64 {
	if descriptionLen <= 0 {
		return 0
	}
	score := models.ConfidenceKeywordFloor + float64(keywordLen)/float64(descriptionLen)*0.2
	if score > models.ConfidenceKeywordCeiling {
		return models.ConfidenceKeywordCeiling
	}
	return score
}

// Pattern terms match anywhere in the description, so plural and compound
// forms such as AUTOPAYMENT or E-TRANSFERS are covered.
var (
	paymentPattern  = regexp.MustCompile(`payment|autopay|bill ?pay`)
	transferPattern = regexp.MustCompile(`transfer|xfer|wire`)
	incomePattern   = regexp.MustCompile(`deposit|payroll|direct dep|salary`)
	chequePattern   = regexp.MustCompile(`check|cheque|chk\s*#`)
)

// PatternStrategy infers a category from generic banking terms. It reads the
// raw description, since the normalizer removes the leading TRANSFER, CHECK
// and WIRE tokens these patterns look for.
type PatternStrategy struct{}

func (PatternStrategy) Name() string { return "Pattern" }

func (PatternStrategy) Categorize(in Input) (models.CategorizationResult, bool) {
	text := strings.ToLower(in.Description)

	switch {
	case paymentPattern.MatchString(text):
		return models.CategorizationResult{
			Category:    models.CategoryFees,
			Confidence:  models.ConfidencePaymentPattern,
			Source:      models.SourcePattern,
			NeedsReview: true,
		}, true
	case transferPattern.MatchString(text):
		return patternUncategorized(), true
	case incomePattern.MatchString(text) && in.Amount.IsPositive():
		return models.CategorizationResult{
			Category:   models.CategoryIncome,
			Confidence: models.ConfidenceIncomePattern,
			Source:     models.SourcePattern,
		}, true
	case chequePattern.MatchString(text):
		return patternUncategorized(), true
	}
	return models.CategorizationResult{}, false
}

func patternUncategorized() models.CategorizationResult {
	return models.CategorizationResult{
		Category:    models.CategoryUncategorized,
		Source:      models.SourcePattern,
		NeedsReview: true,
	}
}
