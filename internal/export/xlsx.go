package export

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/report"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet      = "Summary"
	transactionsSheet = "Transactions"
	monthlySheet      = "Monthly"

	maxCategorySheets = 10
	maxSheetNameRunes = 31
)

var sheetNameReplacer = strings.NewReplacer(":", "", `\`, "", "/", "", "?", "", "*", "", "[", "", "]", "")

// XLSXWriter builds a workbook with a summary, the transactions, one sheet
// per top category and a fiscal-month breakdown.
type XLSXWriter struct {
	opts Options
}

// NewXLSXWriter creates an XLSXWriter.
func NewXLSXWriter(opts Options) *XLSXWriter {
	return &XLSXWriter{opts: opts}
}

// Extension implements FileWriter.
func (x *XLSXWriter) Extension() string { return ".xlsx" }

type workbook struct {
	f      *excelize.File
	bold   int
	amount int
}

// Write implements FileWriter.
func (x *XLSXWriter) Write(w io.Writer, r *models.CorporateReport) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	wb := &workbook{f: f}
	var err error
	if wb.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}
	if wb.amount, err = f.NewStyle(&excelize.Style{NumFmt: 2}); err != nil {
		return fmt.Errorf("error creating amount style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("error naming summary sheet: %w", err)
	}

	title := r.Title
	if title == "" {
		title = reportTitle(x.opts)
	}
	categories := report.SortedCategories(r)
	steps := []func() error{
		func() error { return wb.summary(r, categories, title) },
		func() error { return wb.transactions(r) },
		func() error { return wb.categorySheets(categories) },
		func() error { return wb.monthly(r, x.fiscalStart(r)) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func (x *XLSXWriter) fiscalStart(r *models.CorporateReport) int {
	if x.opts.FiscalYearStartMonth != 0 {
		return x.opts.FiscalYearStartMonth
	}
	return r.FiscalYearStartMonth
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// row writes values starting at column A of row.
func (wb *workbook) row(sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := wb.f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("error writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func (wb *workbook) style(sheet string, fromCol, fromRow, toCol, toRow, style int) error {
	from, err := excelize.CoordinatesToCellName(fromCol, fromRow)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(toCol, toRow)
	if err != nil {
		return err
	}
	return wb.f.SetCellStyle(sheet, from, to, style)
}

func (wb *workbook) widths(sheet string, widths ...float64) error {
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := wb.f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func (wb *workbook) summary(r *models.CorporateReport, categories []report.CategoryEntry, title string) error {
	rows := [][]interface{}{
		{title},
		{},
		{"Period:", fmt.Sprintf("%s to %s", r.Period.Start, r.Period.End)},
		{},
		{"FINANCIAL SUMMARY"},
		{"Total Revenue", money(r.Summary.TotalRevenue)},
		{"Total Expenses", money(r.Summary.TotalExpenses)},
		{"Net Income", money(r.Summary.NetIncome)},
		{},
		{"CATEGORY BREAKDOWN"},
		{"Category", "Amount", "Count", "Average"},
	}
	for _, c := range categories {
		rows = append(rows, []interface{}{c.Name, money(c.Totals.Amount), c.Totals.Count, money(c.Totals.Average())})
	}
	for i, values := range rows {
		if err := wb.row(summarySheet, i+1, values...); err != nil {
			return err
		}
	}

	for _, headerRow := range []int{1, 5, 10, 11} {
		if err := wb.style(summarySheet, 1, headerRow, 4, headerRow, wb.bold); err != nil {
			return err
		}
	}
	if err := wb.style(summarySheet, 2, 6, 2, 8, wb.amount); err != nil {
		return err
	}
	if len(categories) > 0 {
		if err := wb.style(summarySheet, 2, 12, 2, 11+len(categories), wb.amount); err != nil {
			return err
		}
		if err := wb.style(summarySheet, 4, 12, 4, 11+len(categories), wb.amount); err != nil {
			return err
		}
	}
	return wb.widths(summarySheet, 25, 15, 10, 15)
}

func (wb *workbook) transactions(r *models.CorporateReport) error {
	if _, err := wb.f.NewSheet(transactionsSheet); err != nil {
		return fmt.Errorf("error creating transactions sheet: %w", err)
	}
	if err := wb.row(transactionsSheet, 1, "Date", "Description", "Category", "Amount", "Type", "Confidence"); err != nil {
		return err
	}
	txs := report.SortedTransactions(r)
	for i, tx := range txs {
		err := wb.row(transactionsSheet, i+2,
			tx.Date, tx.Description, tx.CategoryOrDefault(), money(tx.Amount), string(tx.Type), tx.Confidence)
		if err != nil {
			return err
		}
	}
	if err := wb.style(transactionsSheet, 1, 1, 6, 1, wb.bold); err != nil {
		return err
	}
	if len(txs) > 0 {
		if err := wb.style(transactionsSheet, 4, 2, 4, len(txs)+1, wb.amount); err != nil {
			return err
		}
	}
	return wb.widths(transactionsSheet, 12, 40, 20, 12, 10, 12)
}

func (wb *workbook) categorySheets(categories []report.CategoryEntry) error {
	used := map[string]bool{
		strings.ToLower(summarySheet):      true,
		strings.ToLower(transactionsSheet): true,
		strings.ToLower(monthlySheet):      true,
	}
	if len(categories) > maxCategorySheets {
		categories = categories[:maxCategorySheets]
	}

	for _, c := range categories {
		name := SheetName(c.Name, used)
		if _, err := wb.f.NewSheet(name); err != nil {
			return fmt.Errorf("error creating sheet %q: %w", name, err)
		}
		rows := [][]interface{}{
			{strings.ToUpper(c.Name)},
			{},
			{"Total:", money(c.Totals.Amount)},
			{"Count:", c.Totals.Count},
			{"Average:", money(c.Totals.Average())},
			{},
			{"Date", "Description", "Amount"},
		}
		for _, tx := range c.Totals.Transactions {
			rows = append(rows, []interface{}{tx.Date, tx.Description, money(tx.Amount)})
		}
		for i, values := range rows {
			if err := wb.row(name, i+1, values...); err != nil {
				return err
			}
		}
		if err := wb.style(name, 1, 7, 3, 7, wb.bold); err != nil {
			return err
		}
		if err := wb.widths(name, 12, 40, 12); err != nil {
			return err
		}
	}
	return nil
}

func (wb *workbook) monthly(r *models.CorporateReport, fiscalStart int) error {
	var txs []models.Transaction
	for _, group := range r.Categories {
		txs = append(txs, group.Transactions...)
	}
	m := report.MonthlyBreakdown(txs, fiscalStart)

	if _, err := wb.f.NewSheet(monthlySheet); err != nil {
		return fmt.Errorf("error creating monthly sheet: %w", err)
	}

	header := []interface{}{"Category"}
	for _, month := range m.Months {
		header = append(header, month.String()[:3])
	}
	header = append(header, "Total")
	if err := wb.row(monthlySheet, 1, header...); err != nil {
		return err
	}

	line := func(label string, amounts []decimal.Decimal) []interface{} {
		values := []interface{}{label}
		total := decimal.Zero
		for _, a := range amounts {
			values = append(values, money(a))
			total = total.Add(a)
		}
		return append(values, money(total))
	}
	for i, name := range m.Categories {
		if err := wb.row(monthlySheet, i+2, line(name, m.Rows[name])...); err != nil {
			return err
		}
	}
	last := len(m.Categories) + 2
	if err := wb.row(monthlySheet, last, line("Total", m.Totals)...); err != nil {
		return err
	}

	if err := wb.style(monthlySheet, 1, 1, 14, 1, wb.bold); err != nil {
		return err
	}
	if err := wb.style(monthlySheet, 1, last, 14, last, wb.bold); err != nil {
		return err
	}
	return wb.widths(monthlySheet, 25)
}

// SheetName turns a category into a valid, unused worksheet name and
// records it in used. Excel forbids : \ / ? * [ ] and limits names to 31
// characters; names compare case-insensitively.
func SheetName(category string, used map[string]bool) string {
	base := strings.Trim(strings.TrimSpace(sheetNameReplacer.Replace(category)), "'")
	if base == "" {
		base = "Category"
	}
	base = truncate(base, maxSheetNameRunes)

	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, maxSheetNameRunes-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) > max {
		return string(r[:max])
	}
	return s
}
