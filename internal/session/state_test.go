package session

import (
	"errors"
	"testing"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parsererror"
	"fjacquet/statement-categorizer/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(t *testing.T, rs store.RuleStore) *State {
	t.Helper()
	return New(nil, rs, logging.NewMockLogger())
}

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		{ID: "1", Date: "2024-01-02", Description: "AMAZON.COM", Amount: decimal.NewFromInt(-30)},
		{ID: "2", Date: "2024-01-03", Description: "ZZZ UNKNOWN VENDOR", Amount: decimal.NewFromInt(-12)},
		{ID: "3", Date: "2024-01-04", Description: "PAYROLL DEPOSIT", Amount: decimal.NewFromInt(2500), Type: models.TypeCredit},
	}
}

func TestState_TransactionsAreCopies(t *testing.T) {
	s := newState(t, nil)
	txs := sampleTransactions()
	s.SetTransactions(txs)

	txs[0].Description = "mutated"
	got := s.Transactions()
	assert.Equal(t, "AMAZON.COM", got[0].Description)

	got[1].Description = "mutated too"
	tx, ok := s.Transaction("2")
	require.True(t, ok)
	assert.Equal(t, "ZZZ UNKNOWN VENDOR", tx.Description)

	s.ClearTransactions()
	assert.Empty(t, s.Transactions())
}

func TestState_UpdateTransaction(t *testing.T) {
	s := newState(t, nil)
	s.SetTransactions(sampleTransactions())

	category := "Travel"
	tx, err := s.UpdateTransaction("1", models.Patch{Category: &category})
	require.NoError(t, err)
	assert.Equal(t, "Travel", tx.Category)

	_, err = s.UpdateTransaction("missing", models.Patch{})
	assert.ErrorIs(t, err, parsererror.ErrTransactionNotFound)
}

func TestState_UpdateTransactionCategoryRules(t *testing.T) {
	s := newState(t, nil)
	s.SetTransactions(sampleTransactions())

	category := "  professional services  "
	tx, err := s.UpdateTransaction("1", models.Patch{Category: &category})
	require.NoError(t, err)
	assert.Equal(t, "Professional Services", tx.Category)

	blank := ""
	reviewed := false
	_, err = s.UpdateTransaction("2", models.Patch{Category: &blank, NeedsReview: &reviewed})
	assert.True(t, parsererror.IsValidation(err))
	unchanged, ok := s.Transaction("2")
	require.True(t, ok)
	assert.Empty(t, unchanged.Category)

	flagged := true
	tx, err = s.UpdateTransaction("2", models.Patch{Category: &blank, NeedsReview: &flagged})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryUncategorized, tx.Category)
	assert.True(t, tx.NeedsReview)

	_, err = s.UpdateTransaction("3", models.Patch{NeedsReview: &reviewed})
	assert.True(t, parsererror.IsValidation(err))
}

func TestState_RuleChangesReclassify(t *testing.T) {
	s := newState(t, nil)
	s.SetTransactions([]models.Transaction{
		{ID: "w", Date: "2024-02-01", Description: "WIDGETCO ORDER 991", Amount: decimal.NewFromInt(-20)},
	})

	_, err := s.AddMerchantRule("WIDGETCO", "Shopping")
	require.NoError(t, err)
	txs := s.Recategorize()
	assert.Equal(t, models.CategoryShopping, txs[0].Category)
	assert.Equal(t, models.SourceUserHistory, txs[0].Source)

	_, err = s.AddMerchantRule("WIDGETCO", "Travel")
	require.NoError(t, err)
	txs = s.Recategorize()
	assert.Equal(t, "Travel", txs[0].Category)
	assert.Equal(t, models.SourceUserHistory, txs[0].Source)

	require.True(t, s.RemoveMerchantRule("WIDGETCO"))
	txs = s.Recategorize()
	assert.NotEqual(t, models.SourceUserHistory, txs[0].Source)
	assert.NotEqual(t, "Travel", txs[0].Category)
}

func TestState_ApprovalSurvivesRuleChanges(t *testing.T) {
	s := newState(t, nil)
	s.SetTransactions(sampleTransactions())
	s.Recategorize()

	_, err := s.Approve("1", "Travel", false)
	require.NoError(t, err)
	_, err = s.AddMerchantRule("AMAZON", "Shopping")
	require.NoError(t, err)

	txs := s.Recategorize()
	assert.Equal(t, "Travel", txs[0].Category)
	assert.Equal(t, models.SourceManual, txs[0].Source)
}

func TestState_AppendTransactions(t *testing.T) {
	s := newState(t, nil)
	s.SetTransactions(sampleTransactions()[:1])
	_, err := s.Approve("1", "Travel", false)
	require.NoError(t, err)

	s.AppendTransactions(sampleTransactions()[1:])

	txs := s.Transactions()
	require.Len(t, txs, 3)
	assert.Equal(t, "Travel", txs[0].Category)
	assert.Equal(t, models.SourceManual, txs[0].Source)
	assert.Equal(t, "3", txs[2].ID)
}

func TestState_RecategorizeAndReviewQueue(t *testing.T) {
	s := newState(t, nil)
	s.SetTransactions(sampleTransactions())

	txs := s.Recategorize()
	assert.Equal(t, models.CategoryShopping, txs[0].Category)
	assert.Equal(t, models.SourceKeyword, txs[0].Source)
	assert.Equal(t, models.CategoryUncategorized, txs[1].Category)
	assert.Equal(t, models.CategoryIncome, txs[2].Category)

	queue := s.ReviewQueue()
	require.Len(t, queue, 1)
	assert.Equal(t, "2", queue[0].ID)
}

func TestState_RuleOverridesAfterRecategorize(t *testing.T) {
	s := newState(t, nil)
	s.SetTransactions(sampleTransactions())
	s.Recategorize()

	_, err := s.AddMerchantRule("AMAZON", "shopping")
	require.NoError(t, err)

	txs := s.Recategorize()
	assert.Equal(t, models.CategoryShopping, txs[0].Category)
	assert.Equal(t, 1.0, txs[0].Confidence)
	assert.Equal(t, models.SourceUserHistory, txs[0].Source)
	assert.False(t, txs[0].NeedsReview)
}

func TestState_ApproveRemember(t *testing.T) {
	rs := &store.MockRuleStore{}
	s := newState(t, rs)
	s.SetTransactions(sampleTransactions())
	s.Recategorize()

	tx, err := s.Approve("2", "professional services", true)
	require.NoError(t, err)
	assert.Equal(t, "Professional Services", tx.Category)
	assert.Equal(t, 1.0, tx.Confidence)
	assert.Equal(t, models.SourceManual, tx.Source)
	assert.False(t, tx.NeedsReview)
	assert.Empty(t, s.ReviewQueue())

	rules := s.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, "ZZZ UNKNOWN VENDOR", rules[0].MerchantName)

	// The approval survives recategorization.
	txs := s.Recategorize()
	assert.Equal(t, "Professional Services", txs[1].Category)

	require.NoError(t, s.Save())
	assert.Equal(t, 1, rs.Saves)
	assert.Len(t, rs.Rules, 1)
}

func TestState_ApproveWithoutRemember(t *testing.T) {
	s := newState(t, nil)
	s.SetTransactions(sampleTransactions())

	_, err := s.Approve("2", "My Own Bucket", false)
	require.NoError(t, err)
	assert.Empty(t, s.Rules())

	tx, _ := s.Transaction("2")
	assert.Equal(t, "My Own Bucket", tx.Category)

	_, err = s.Approve("nope", "Travel", true)
	assert.ErrorIs(t, err, parsererror.ErrTransactionNotFound)
}

func TestState_LoadAndSaveErrors(t *testing.T) {
	rs := &store.MockRuleStore{LoadRulesError: errors.New("disk gone")}
	s := newState(t, rs)
	assert.ErrorContains(t, s.Load(), "disk gone")

	rs.LoadRulesError = nil
	rs.Rules = []models.MerchantRule{{MerchantName: "NETFLIX", Category: "Travel"}}
	require.NoError(t, s.Load())
	assert.Len(t, s.Rules(), 1)

	rs.SaveRulesError = errors.New("read-only")
	assert.ErrorContains(t, s.Save(), "read-only")

	assert.NoError(t, newState(t, nil).Save())
}

func TestState_RulesSerialization(t *testing.T) {
	s := newState(t, nil)
	s.SetTransactions(sampleTransactions())
	_, err := s.AddMerchantRule("NETFLIX", "Meals & entertainment")
	require.NoError(t, err)

	data, err := s.MarshalRules()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "AMAZON.COM")
	assert.Contains(t, string(data), "NETFLIX")

	other := newState(t, nil)
	require.NoError(t, other.UnmarshalRules(data))
	require.Len(t, other.Rules(), 1)
	assert.Equal(t, "Meals & entertainment", other.Rules()[0].Category)

	require.NoError(t, other.UnmarshalRules([]byte(`{"rules":[{"merchantName":"","category":"X"},{"merchantName":"UBER","category":"Travel"}]}`)))
	require.Len(t, other.Rules(), 1)
	assert.Equal(t, "UBER", other.Rules()[0].MerchantName)

	assert.Error(t, other.UnmarshalRules([]byte("{")))
}

func TestState_RemoveMerchantRule(t *testing.T) {
	s := newState(t, nil)
	_, err := s.AddMerchantRule("Netflix", "Meals & entertainment")
	require.NoError(t, err)

	assert.True(t, s.RemoveMerchantRule("NETFLIX"))
	assert.False(t, s.RemoveMerchantRule("NETFLIX"))
}
