// Package models provides the data structures shared by the conversion,
// categorization and reporting layers.
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionType is the optional debit/credit tag of a transaction.
type TransactionType string

const (
	TypeDebit  TransactionType = "debit"
	TypeCredit TransactionType = "credit"
)

// ParseTransactionType accepts "debit"/"credit" in any case, plus the
// DBIT/CRDT codes used by ISO 20022 statements. Anything else is untyped.
func ParseTransactionType(s string) TransactionType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBIT", "DBIT", "DR":
		return TypeDebit
	case "CREDIT", "CRDT", "CR":
		return TypeCredit
	default:
		return ""
	}
}

// TypeFromAmount derives a type from the sign of amount; zero stays untyped.
func TypeFromAmount(amount decimal.Decimal) TransactionType {
	switch amount.Sign() {
	case -1:
		return TypeDebit
	case 1:
		return TypeCredit
	default:
		return ""
	}
}

// Source records which strategy produced a transaction's category.
type Source string

const (
	SourceUserHistory Source = "user_history"
	// SourceManual marks a category the user chose or approved by hand.
	SourceManual        Source = "manual"
	SourceMCC           Source = "mcc"
	SourceKeyword       Source = "keyword"
	SourcePattern       Source = "pattern"
	SourceAI            Source = "ai"
	SourceUncategorized Source = "uncategorized"
	// SourceFailed marks transactions whose AI lookup was attempted and failed.
	SourceFailed Source = "failed"
)

// Transaction is one ledger entry. ID, Date, Description, Amount, Type and
// MCC are set at conversion time; the remaining fields are owned by the
// classifier and by review actions.
type Transaction struct {
	ID          string          `csv:"ID" json:"id"`
	Date        string          `csv:"Date" json:"date"`
	Description string          `csv:"Description" json:"description"`
	Amount      decimal.Decimal `csv:"Amount" json:"amount"`
	Type        TransactionType `csv:"Type" json:"type,omitempty"`
	MCC         int             `csv:"MCC" json:"mcc,omitempty"`
	Category    string          `csv:"Category" json:"category,omitempty"`
	Confidence  float64         `csv:"Confidence" json:"confidence"`
	Source      Source          `csv:"Source" json:"source,omitempty"`
	NeedsReview bool            `csv:"NeedsReview" json:"needsReview"`
}

// IsUserConfirmed reports whether the category was approved by the user.
// Confirmed transactions are never recategorized automatically; rule matches
// are, so a replaced or removed rule takes effect on the next run.
func (t Transaction) IsUserConfirmed() bool {
	return t.Source == SourceManual && !t.NeedsReview && t.Category != ""
}

// IsUnresolved reports whether the transaction still needs a category.
func (t Transaction) IsUnresolved() bool {
	return t.NeedsReview || t.Category == "" || t.Category == CategoryUncategorized
}

// CategoryOrDefault returns the category, or Uncategorized when none is set.
func (t Transaction) CategoryOrDefault() string {
	if strings.TrimSpace(t.Category) == "" {
		return CategoryUncategorized
	}
	return t.Category
}

// Apply copies a categorization decision onto the transaction.
func (t *Transaction) Apply(r CategorizationResult) {
	t.Category = r.Category
	t.Confidence = r.Confidence
	t.Source = r.Source
	t.NeedsReview = r.NeedsReview
}

// Patch is a partial update of a transaction's mutable fields. Nil fields are
// left untouched.
type Patch struct {
	Category    *string  `json:"category,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
	Source      *Source  `json:"source,omitempty"`
	NeedsReview *bool    `json:"needsReview,omitempty"`
}

// ApplyPatch applies the non-nil fields of p.
func (t *Transaction) ApplyPatch(p Patch) {
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Confidence != nil {
		t.Confidence = *p.Confidence
	}
	if p.Source != nil {
		t.Source = *p.Source
	}
	if p.NeedsReview != nil {
		t.NeedsReview = *p.NeedsReview
	}
}
