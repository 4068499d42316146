package models

import "github.com/shopspring/decimal"

// Period is an inclusive date range in ISO form.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ReportSummary holds the headline totals of a report.
type ReportSummary struct {
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"`
}

// CategoryTotals is one category group of a report.
type CategoryTotals struct {
	Amount       decimal.Decimal `json:"amount"`
	Count        int             `json:"count"`
	Transactions []Transaction   `json:"transactions"`
}

// Average returns Amount divided by Count, or zero for an empty group.
func (c CategoryTotals) Average() decimal.Decimal {
	if c.Count == 0 {
		return decimal.Zero
	}
	return c.Amount.Div(decimal.NewFromInt(int64(c.Count)))
}

// CorporateReport is derived from a transaction set on demand and never
// persisted.
type CorporateReport struct {
	Title      string                     `json:"title,omitempty"`
	Period     Period                     `json:"period"`
	Summary    ReportSummary              `json:"summary"`
	Categories map[string]*CategoryTotals `json:"categories"`
	// FiscalYearStartMonth drives month ordering in exports (1..12).
	FiscalYearStartMonth int `json:"fiscalYearStartMonth,omitempty"`
}
