package models

// Category names the pipeline refers to directly.
const (
	CategoryUncategorized = "Uncategorized"
	CategoryIncome        = "Income"
	CategoryFees          = "Fees & Charges"
	CategoryShopping      = "Shopping"
)

// Confidence levels assigned by the fixed tiers of the classifier.
const (
	ConfidenceUser           = 1.0
	ConfidenceMCC            = 0.95
	ConfidenceKeywordFloor   = 0.7
	ConfidenceKeywordCeiling = 0.9
	ConfidenceIncomePattern  = 0.85
	ConfidencePaymentPattern = 0.6
	ConfidenceAIDefault      = 0.85

	// DefaultReviewThreshold flags results below it for manual review.
	DefaultReviewThreshold = 0.8
)

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
