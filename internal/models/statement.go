package models

// StatementMetadata describes a converted statement.
type StatementMetadata struct {
	Bank              string `json:"bank,omitempty"`
	StatementType     string `json:"statement_type,omitempty"`
	TotalTransactions int    `json:"total_transactions"`
	SafetyCheckPassed bool   `json:"safety_check_passed"`
}

// Statement is the output of every conversion adapter.
type Statement struct {
	Transactions []Transaction     `json:"transactions"`
	Metadata     StatementMetadata `json:"metadata"`
}
