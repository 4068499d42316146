package models

import (
	"fjacquet/statement-categorizer/internal/logging"
)

// CategorizationStats summarizes the outcome of a categorization run.
type CategorizationStats struct {
	Total             int            `json:"total"`
	Categorized       int            `json:"categorized"`
	NeedsReview       int            `json:"needsReview"`
	AverageConfidence float64        `json:"averageConfidence"`
	BySource          map[Source]int `json:"bySource,omitempty"`
}

// ComputeStats counts categorized (anything but Uncategorized) and flagged
// transactions and averages their confidence.
func ComputeStats(txs []Transaction) CategorizationStats {
	stats := CategorizationStats{Total: len(txs), BySource: make(map[Source]int)}
	if len(txs) == 0 {
		return stats
	}

	var sum float64
	for _, tx := range txs {
		if tx.Category != "" && tx.Category != CategoryUncategorized {
			stats.Categorized++
		}
		if tx.NeedsReview {
			stats.NeedsReview++
		}
		if tx.Source != "" {
			stats.BySource[tx.Source]++
		}
		sum += tx.Confidence
	}
	stats.AverageConfidence = sum / float64(len(txs))
	return stats
}

// SuccessRate is the categorized share in percent.
func (cs CategorizationStats) SuccessRate() float64 {
	if cs.Total == 0 {
		return 0
	}
	return float64(cs.Categorized) / float64(cs.Total) * 100
}

// LogSummary logs the statistics at info level.
func (cs CategorizationStats) LogSummary(logger logging.Logger, operation string) {
	if logger == nil {
		return
	}
	logger.Info("Categorization summary",
		logging.F(logging.FieldOperation, operation),
		logging.F("total_transactions", cs.Total),
		logging.F("categorized", cs.Categorized),
		logging.F("needs_review", cs.NeedsReview),
		logging.F("average_confidence", cs.AverageConfidence),
		logging.F("success_rate", cs.SuccessRate()),
	)
}
