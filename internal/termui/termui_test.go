package termui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/report"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionsTable(t *testing.T) {
	out := TransactionsTable([]models.Transaction{
		{ID: "0123456789abcdef", Date: "2024-01-02", Description: strings.Repeat("A", 60),
			Amount: decimal.RequireFromString("-12.5"), Category: "Gas", Confidence: 0.9, Source: models.SourceKeyword},
	})

	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789")
	assert.Contains(t, out, "-12.50")
	assert.Contains(t, out, "…")
	assert.Contains(t, out, "keyword")
}

func TestRulesTable(t *testing.T) {
	out := RulesTable([]models.MerchantRule{
		{MerchantName: "OYATO", Category: "Grocery", Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	})
	assert.Contains(t, out, "OYATO")
	assert.Contains(t, out, "Grocery")
	assert.Contains(t, out, "Merchant")
}

func TestReportSummary(t *testing.T) {
	r := report.Aggregate([]models.Transaction{
		{ID: "1", Date: "2024-01-01", Amount: decimal.NewFromInt(100), Type: models.TypeCredit, Category: "Income"},
		{ID: "2", Date: "2024-01-02", Amount: decimal.NewFromInt(-30), Type: models.TypeDebit, Category: "Gas"},
	}, "", "")

	out := ReportSummary(r)
	assert.Contains(t, out, "70.00")
	assert.Contains(t, out, "Income")
	assert.Less(t, strings.Index(out, "Income"), strings.Index(out, "Gas"))
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "Looking up merchants")

	p.Update(0, 0)
	assert.Empty(t, buf.String())

	p.Update(1, 2)
	p.Update(2, 2)
	p.Finish()
	assert.Contains(t, buf.String(), "Looking up merchants")
}

func TestStatsLine(t *testing.T) {
	s := models.CategorizationStats{Total: 3, Categorized: 2, NeedsReview: 1, AverageConfidence: 0.5}
	assert.Equal(t, "3 transactions, 2 categorized, 1 need review, average confidence 0.50", StatsLine(s))
}
