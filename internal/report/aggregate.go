// Package report aggregates categorized transactions into a CorporateReport
// and renders it. The aggregation is a pure function of its input.
package report

import (
	"sort"
	"strings"
	"time"

	"fjacquet/statement-categorizer/internal/dateutils"
	"fjacquet/statement-categorizer/internal/models"

	"github.com/shopspring/decimal"
)

// Aggregate groups txs by category and computes the headline totals.
//
// Revenue counts every transaction typed credit OR with a positive amount;
// expenses every transaction typed debit OR with a negative amount. A
// transaction whose type contradicts its sign lands in both. An untyped
// zero amount lands in neither.
//
// Blank period bounds are filled from the earliest and latest dates.
func Aggregate(txs []models.Transaction, periodStart, periodEnd string) *models.CorporateReport {
	categories := make(map[string]*models.CategoryTotals)
	revenue := decimal.Zero
	expenses := decimal.Zero

	for _, tx := range txs {
		name := tx.CategoryOrDefault()
		group, ok := categories[name]
		if !ok {
			group = &models.CategoryTotals{Amount: decimal.Zero}
			categories[name] = group
		}
		group.Amount = group.Amount.Add(tx.Amount)
		group.Count++
		group.Transactions = append(group.Transactions, tx)

		if tx.Type == models.TypeCredit || tx.Amount.IsPositive() {
			revenue = revenue.Add(tx.Amount.Abs())
		}
		if tx.Type == models.TypeDebit || tx.Amount.IsNegative() {
			expenses = expenses.Add(tx.Amount.Abs())
		}
	}

	period := PeriodOf(txs)
	if strings.TrimSpace(periodStart) != "" {
		period.Start = periodStart
	}
	if strings.TrimSpace(periodEnd) != "" {
		period.End = periodEnd
	}

	return &models.CorporateReport{
		Period: period,
		Summary: models.ReportSummary{
			TotalRevenue:  revenue,
			TotalExpenses: expenses,
			NetIncome:     revenue.Sub(expenses),
		},
		Categories:           categories,
		FiscalYearStartMonth: 1,
	}
}

// PeriodOf returns the earliest and latest parseable transaction dates in
// ISO form. Both are blank when no date parses.
func PeriodOf(txs []models.Transaction) models.Period {
	var first, last time.Time
	found := false
	for _, tx := range txs {
		t, _, err := dateutils.ParseDate(tx.Date)
		if err != nil {
			continue
		}
		if !found || t.Before(first) {
			first = t
		}
		if !found || t.After(last) {
			last = t
		}
		found = true
	}
	if !found {
		return models.Period{}
	}
	return models.Period{Start: dateutils.ToISODate(first), End: dateutils.ToISODate(last)}
}

// CategoryEntry is one named group of a report.
type CategoryEntry struct {
	Name   string
	Totals *models.CategoryTotals
}

// SortedCategories lists the report's groups by descending absolute
// amount, then by name.
func SortedCategories(r *models.CorporateReport) []CategoryEntry {
	entries := make([]CategoryEntry, 0, len(r.Categories))
	for name, totals := range r.Categories {
		entries = append(entries, CategoryEntry{Name: name, Totals: totals})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if c := entries[i].Totals.Amount.Abs().Cmp(entries[j].Totals.Amount.Abs()); c != 0 {
			return c > 0
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// SortedTransactions returns every transaction of the report ordered by
// date, then id.
func SortedTransactions(r *models.CorporateReport) []models.Transaction {
	var txs []models.Transaction
	for _, group := range r.Categories {
		txs = append(txs, group.Transactions...)
	}
	sort.SliceStable(txs, func(i, j int) bool {
		if c := dateutils.CompareDateStrings(txs[i].Date, txs[j].Date); c != 0 {
			return c < 0
		}
		return txs[i].ID < txs[j].ID
	})
	return txs
}
