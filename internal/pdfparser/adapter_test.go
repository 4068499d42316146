package pdfparser

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_Parse(t *testing.T) {
	extractor := NewMockExtractor(visaStatement, nil)
	logger := logging.NewMockLogger()
	adapter := NewAdapter(logger, extractor, 2023)

	stmt, err := adapter.Parse(context.Background(), strings.NewReader("%PDF-1.7 fake"))
	require.NoError(t, err)

	assert.Equal(t, "pdf", adapter.Format())
	assert.Len(t, stmt.Transactions, 3)
	assert.Equal(t, "2023-01-05", stmt.Transactions[0].Date)
	assert.True(t, logger.HasEntry("INFO", "Statement converted"))

	require.Len(t, extractor.Paths, 1)
	_, statErr := os.Stat(extractor.Paths[0])
	assert.True(t, os.IsNotExist(statErr), "temporary file should be removed")
}

func TestAdapter_ExtractionFailure(t *testing.T) {
	adapter := NewAdapter(logging.NewMockLogger(), NewMockExtractor("", errors.New("broken xref")), 2024)

	_, err := adapter.Parse(context.Background(), strings.NewReader("not a pdf"))
	require.Error(t, err)

	var inv *parsererror.InvalidFormatError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "PDF", inv.ExpectedFormat)
	assert.Contains(t, err.Error(), "broken xref")
}

func TestAdapter_EmptyStatement(t *testing.T) {
	adapter := NewAdapter(logging.NewMockLogger(), NewMockExtractor("VISA\n", nil), 2024)

	_, err := adapter.Parse(context.Background(), strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, parsererror.ErrNoTransactions)
	assert.True(t, parsererror.IsConversion(err))
}

func TestNewAdapter_DefaultExtractor(t *testing.T) {
	adapter := NewAdapter(nil, nil, 0)
	assert.IsType(t, &LibraryExtractor{}, adapter.extractor)
}

func TestPdftotextExtractor_MissingBinary(t *testing.T) {
	e := &PdftotextExtractor{Binary: "definitely-not-a-real-pdftotext"}
	_, err := e.ExtractText(context.Background(), "missing.pdf")
	assert.Error(t, err)
}

func TestLibraryExtractor_NotAPDF(t *testing.T) {
	path := t.TempDir() + "/bad.pdf"
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0600))

	_, err := NewLibraryExtractor().ExtractText(context.Background(), path)
	assert.Error(t, err)
}
