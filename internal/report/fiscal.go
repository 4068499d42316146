package report

import (
	"sort"
	"time"

	"fjacquet/statement-categorizer/internal/dateutils"
	"fjacquet/statement-categorizer/internal/models"

	"github.com/shopspring/decimal"
)

// FiscalMonthOrder returns the twelve months of a fiscal year starting at
// startMonth. Out-of-range values start in January.
func FiscalMonthOrder(startMonth int) []time.Month {
	if startMonth < 1 || startMonth > 12 {
		startMonth = 1
	}
	months := make([]time.Month, 12)
	for i := range months {
		months[i] = time.Month((startMonth-1+i)%12 + 1)
	}
	return months
}

// Monthly is a category × month grid of signed amounts. Row slices follow
// Months.
type Monthly struct {
	Months     []time.Month
	Categories []string
	Rows       map[string][]decimal.Decimal
	Totals     []decimal.Decimal
	// Undated counts transactions left out for lack of a parseable date.
	Undated int
}

// MonthlyBreakdown spreads txs over fiscal months. Years are folded
// together, so a statement spanning more than twelve months sums the same
// month of each year.
func MonthlyBreakdown(txs []models.Transaction, startMonth int) Monthly {
	months := FiscalMonthOrder(startMonth)
	column := make(map[time.Month]int, 12)
	for i, m := range months {
		column[m] = i
	}

	m := Monthly{
		Months: months,
		Rows:   make(map[string][]decimal.Decimal),
		Totals: zeros(12),
	}
	for _, tx := range txs {
		month, ok := dateutils.MonthOf(tx.Date)
		if !ok {
			m.Undated++
			continue
		}
		name := tx.CategoryOrDefault()
		row, ok := m.Rows[name]
		if !ok {
			row = zeros(12)
			m.Rows[name] = row
			m.Categories = append(m.Categories, name)
		}
		col := column[month]
		row[col] = row[col].Add(tx.Amount)
		m.Totals[col] = m.Totals[col].Add(tx.Amount)
	}
	sort.Strings(m.Categories)
	return m
}

func zeros(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}
