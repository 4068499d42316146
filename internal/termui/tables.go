package termui

import (
	"fmt"
	"strconv"

	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/report"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const maxDescriptionWidth = 40

// Table renders rows under headers. Columns listed in numeric are right
// aligned.
func Table(headers []string, rows [][]string, numeric ...int) string {
	right := make(map[int]bool, len(numeric))
	for _, c := range numeric {
		right[c] = true
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return HeaderStyle
			case right[col]:
				return AmountStyle
			default:
				return CellStyle
			}
		}).
		String()
}

// TransactionsTable lists transactions with their classification.
func TransactionsTable(txs []models.Transaction) string {
	rows := make([][]string, len(txs))
	for i, tx := range txs {
		rows[i] = []string{
			shortID(tx.ID),
			tx.Date,
			truncate(tx.Description, maxDescriptionWidth),
			models.FormatAmount(tx.Amount),
			tx.CategoryOrDefault(),
			strconv.FormatFloat(tx.Confidence, 'f', 2, 64),
			string(tx.Source),
		}
	}
	return Table([]string{"ID", "Date", "Description", "Amount", "Category", "Conf.", "Source"}, rows, 3, 5)
}

// RulesTable lists merchant rules.
func RulesTable(rules []models.MerchantRule) string {
	rows := make([][]string, len(rules))
	for i, r := range rules {
		updated := ""
		if !r.Timestamp.IsZero() {
			updated = r.Timestamp.Local().Format("2006-01-02 15:04")
		}
		rows[i] = []string{r.MerchantName, r.Category, updated}
	}
	return Table([]string{"Merchant", "Category", "Updated"}, rows)
}

// ReportSummary renders the headline totals and the category breakdown.
func ReportSummary(r *models.CorporateReport) string {
	head := fmt.Sprintf("Period: %s to %s\nRevenue:  %s\nExpenses: %s\nNet:      %s",
		r.Period.Start, r.Period.End,
		models.FormatAmount(r.Summary.TotalRevenue),
		models.FormatAmount(r.Summary.TotalExpenses),
		models.FormatAmount(r.Summary.NetIncome))

	categories := report.SortedCategories(r)
	rows := make([][]string, len(categories))
	for i, c := range categories {
		rows[i] = []string{
			c.Name,
			models.FormatAmount(c.Totals.Amount),
			strconv.Itoa(c.Totals.Count),
			models.FormatAmount(c.Totals.Average()),
		}
	}

	title := r.Title
	if title == "" {
		title = "Report"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		RenderBox(title, head),
		Table([]string{"Category", "Amount", "Count", "Average"}, rows, 1, 2, 3))
}

// StatsLine summarizes categorization statistics on one line.
func StatsLine(s models.CategorizationStats) string {
	return fmt.Sprintf("%d transactions, %d categorized, %d need review, average confidence %.2f",
		s.Total, s.Categorized, s.NeedsReview, s.AverageConfidence)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
