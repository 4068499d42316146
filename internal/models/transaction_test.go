package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseTransactionType(t *testing.T) {
	assert.Equal(t, TypeDebit, ParseTransactionType("Debit"))
	assert.Equal(t, TypeDebit, ParseTransactionType("DBIT"))
	assert.Equal(t, TypeCredit, ParseTransactionType(" credit "))
	assert.Equal(t, TypeCredit, ParseTransactionType("CRDT"))
	assert.Equal(t, TransactionType(""), ParseTransactionType("other"))
}

func TestTypeFromAmount(t *testing.T) {
	assert.Equal(t, TypeDebit, TypeFromAmount(decimal.NewFromInt(-1)))
	assert.Equal(t, TypeCredit, TypeFromAmount(decimal.NewFromInt(1)))
	assert.Equal(t, TransactionType(""), TypeFromAmount(decimal.Zero))
}

func TestTransaction_StateHelpers(t *testing.T) {
	tx := Transaction{Description: "NETFLIX"}
	assert.True(t, tx.IsUnresolved())
	assert.Equal(t, CategoryUncategorized, tx.CategoryOrDefault())

	tx.Apply(CategorizationResult{Category: "Meals & entertainment", Confidence: 0.81, Source: SourceKeyword})
	assert.False(t, tx.IsUnresolved())
	assert.False(t, tx.IsUserConfirmed())

	tx.Apply(CategorizationResult{Category: "Spotify", Confidence: 1, Source: SourceUserHistory})
	assert.False(t, tx.IsUserConfirmed())

	tx.Apply(CategorizationResult{Category: "Spotify", Confidence: 1, Source: SourceManual})
	assert.True(t, tx.IsUserConfirmed())
}

func TestTransaction_ApplyPatch(t *testing.T) {
	tx := Transaction{Category: "Gas", Confidence: 0.7, NeedsReview: true}
	category := "Auto"
	review := false

	tx.ApplyPatch(Patch{Category: &category, NeedsReview: &review})

	assert.Equal(t, "Auto", tx.Category)
	assert.Equal(t, 0.7, tx.Confidence)
	assert.False(t, tx.NeedsReview)
}

func TestCategory_HasMCC(t *testing.T) {
	c := Category{Name: "Gas", MCCCodes: []int{5541, 5542}}
	assert.True(t, c.HasMCC(5542))
	assert.False(t, c.HasMCC(5411))
}

func TestCategoryTotals_Average(t *testing.T) {
	assert.True(t, CategoryTotals{}.Average().IsZero())
	avg := CategoryTotals{Amount: decimal.NewFromInt(-90), Count: 3}.Average()
	assert.True(t, avg.Equal(decimal.NewFromInt(-30)))
}
