package models

import "time"

// Category is a named bucket of the category registry. Name is the canonical
// key used for grouping everywhere.
type Category struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
	MCCCodes []int    `yaml:"mcc_codes,omitempty" json:"mccCodes,omitempty"`
}

// HasMCC reports whether code belongs to the category.
func (c Category) HasMCC(code int) bool {
	for _, m := range c.MCCCodes {
		if m == code {
			return true
		}
	}
	return false
}

// MerchantRule is a user-taught override mapping a normalized merchant name
// to a category.
type MerchantRule struct {
	MerchantName string    `yaml:"merchant_name" json:"merchantName"`
	Category     string    `yaml:"category" json:"category"`
	Timestamp    time.Time `yaml:"timestamp" json:"timestamp"`
}

// CategorizationResult is the transient output of the classification engine.
type CategorizationResult struct {
	Category    string  `json:"category"`
	Confidence  float64 `json:"confidence"`
	Source      Source  `json:"source"`
	NeedsReview bool    `json:"needsReview"`
}

// Uncategorized is the fallback decision.
func Uncategorized() CategorizationResult {
	return CategorizationResult{
		Category:    CategoryUncategorized,
		Confidence:  0,
		Source:      SourceUncategorized,
		NeedsReview: true,
	}
}

// MerchantInfo is what an external merchant lookup knows about a merchant.
type MerchantInfo struct {
	Name              string  `json:"name"`
	BusinessType      string  `json:"businessType,omitempty"`
	Description       string  `json:"description,omitempty"`
	SuggestedCategory string  `json:"suggestedCategory,omitempty"`
	Confidence        float64 `json:"confidence,omitempty"`
}
