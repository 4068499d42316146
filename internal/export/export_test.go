package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/report"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *models.CorporateReport {
	txs := []models.Transaction{
		{ID: "b", Date: "2024-02-10", Description: "SHELL 123", Amount: decimal.RequireFromString("-40.5"), Type: models.TypeDebit, Category: "Gas", Confidence: 0.9},
		{ID: "a", Date: "2024-01-05", Description: "CLIENT PAYMENT", Amount: decimal.RequireFromString("1000"), Type: models.TypeCredit, Category: "Income", Confidence: 1},
		{ID: "c", Date: "2024-02-10", Description: "PETRO CANADA", Amount: decimal.RequireFromString("-20"), Type: models.TypeDebit, Category: "Gas", Confidence: 0.756},
	}
	return report.Aggregate(txs, "", "")
}

func TestNewFileWriter(t *testing.T) {
	for format, ext := range map[string]string{"csv": ".csv", "XLSX": ".xlsx", "json": ".json"} {
		w, err := NewFileWriter(format, Options{}, logging.NewMockLogger())
		require.NoError(t, err, format)
		assert.Equal(t, ext, w.Extension())
	}

	_, err := NewFileWriter("pdf", Options{}, nil)
	assert.Error(t, err)
}

func TestTransactionRows(t *testing.T) {
	rows := TransactionRows(sampleReport())
	require.Len(t, rows, 3)

	assert.Equal(t, "2024-01-05", rows[0].Date)
	assert.Equal(t, "1000.00", rows[0].Amount)
	assert.Equal(t, "SHELL 123", rows[1].Description)
	assert.Equal(t, "-40.50", rows[1].Amount)
	assert.Equal(t, "0.90", rows[1].Confidence)
	assert.Equal(t, "0.76", rows[2].Confidence)
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(Options{}).Write(&buf, sampleReport()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Date,Description,Category,Amount,Type,Confidence", lines[0])
	assert.Equal(t, "2024-01-05,CLIENT PAYMENT,Income,1000.00,credit,1.00", lines[1])
	assert.Equal(t, "2024-02-10,SHELL 123,Gas,-40.50,debit,0.90", lines[2])
}

func TestCSVWriter_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(Options{Delimiter: ';'}).Write(&buf, report.Aggregate(nil, "", "")))
	assert.Equal(t, "Date;Description;Category;Amount;Type;Confidence\n", buf.String())
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter(nil).Write(&buf, sampleReport()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "summary")
	assert.Contains(t, decoded, "categories")
	assert.Contains(t, buf.String(), "\n  ")
}

func TestXLSXWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewXLSXWriter(Options{CompanyName: "Acme", FiscalYearStartMonth: 2})
	require.NoError(t, w.Write(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Summary", "Transactions", "Income", "Gas", "Monthly"}, f.GetSheetList())

	title, err := f.GetCellValue("Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "ACME - CORPORATE BUSINESS REPORT", title)

	first, err := f.GetCellValue("Summary", "A12")
	require.NoError(t, err)
	assert.Equal(t, "Income", first)

	desc, err := f.GetCellValue("Transactions", "B2")
	require.NoError(t, err)
	assert.Equal(t, "CLIENT PAYMENT", desc)

	firstMonth, err := f.GetCellValue("Monthly", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Feb", firstMonth)
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{"summary": true}

	assert.Equal(t, "Repairs maintenance", SheetName("Repairs/ maintenance", used))
	assert.Equal(t, "Summary (2)", SheetName("Summary", used))
	assert.Equal(t, "Category", SheetName("[*]", used))

	long := SheetName(strings.Repeat("x", 40), used)
	assert.Len(t, long, 31)
	again := SheetName(strings.Repeat("X", 40), used)
	assert.Len(t, again, 31)
	assert.True(t, strings.HasSuffix(again, " (2)"))
}

type fakeSheets struct {
	created []string
	ranges  []string
	rows    int
	failAt  int
}

func (f *fakeSheets) Create(_ context.Context, title string) (string, error) {
	f.created = append(f.created, title)
	return "new-id", nil
}

func (f *fakeSheets) Update(_ context.Context, _ string, rangeA1 string, values [][]interface{}) error {
	f.ranges = append(f.ranges, rangeA1)
	if f.failAt > 0 && len(f.ranges) == f.failAt {
		return errors.New("quota exceeded")
	}
	f.rows += len(values)
	return nil
}

func TestSheetsWriter_CreatesAndBatches(t *testing.T) {
	api := &fakeSheets{}
	w := NewSheetsWriter(api, SheetsConfig{BatchSize: 2}, logging.NewMockLogger())

	id, err := w.Write(context.Background(), sampleReport())
	require.NoError(t, err)

	assert.Equal(t, "new-id", id)
	assert.Equal(t, []string{"Statement Report"}, api.created)
	assert.Equal(t, []string{"A1", "A3"}, api.ranges)
	assert.Equal(t, 4, api.rows)
}

func TestSheetsWriter_ExistingSpreadsheet(t *testing.T) {
	api := &fakeSheets{failAt: 1}
	w := NewSheetsWriter(api, SheetsConfig{SpreadsheetID: "abc"}, nil)

	id, err := w.Write(context.Background(), sampleReport())
	assert.Error(t, err)
	assert.Equal(t, "abc", id)
	assert.Empty(t, api.created)
}

func TestNewGoogleSheets_NoCredentials(t *testing.T) {
	_, err := NewGoogleSheets(context.Background(), SheetsConfig{})
	assert.Error(t, err)
}
