// Package pdfparser converts PDF bank statements into transactions. Text is
// pulled out by an Extractor and then scraped line by line.
package pdfparser

import (
	"context"
	"fmt"
	"io"
	"os"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parser"
	"fjacquet/statement-categorizer/internal/parsererror"
)

// Adapter implements parser.Parser for PDF statements.
type Adapter struct {
	parser.BaseParser
	extractor Extractor
	year      int
}

// NewAdapter creates a PDF adapter. A nil extractor means LibraryExtractor;
// year zero means the current year.
func NewAdapter(logger logging.Logger, extractor Extractor, year int) *Adapter {
	if extractor == nil {
		extractor = NewLibraryExtractor()
	}
	return &Adapter{
		BaseParser: parser.NewBaseParser(logger),
		extractor:  extractor,
		year:       year,
	}
}

// Format implements parser.Parser.
func (a *Adapter) Format() string {
	return "pdf"
}

// Parse spools r to a temporary file, extracts its text and scrapes it.
func (a *Adapter) Parse(ctx context.Context, r io.Reader) (*models.Statement, error) {
	logger := a.GetLogger()

	tempFile, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary PDF file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			logger.WithError(err).Warn("Failed to remove temporary file", logging.F(logging.FieldFile, tempPath))
		}
	}()

	_, copyErr := io.Copy(tempFile, r)
	closeErr := tempFile.Close()
	if copyErr != nil {
		return nil, fmt.Errorf("failed to write temporary PDF file: %w", copyErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close temporary PDF file: %w", closeErr)
	}

	text, err := a.extractor.ExtractText(ctx, tempPath)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			FilePath:       tempPath,
			ExpectedFormat: "PDF",
			Msg:            fmt.Sprintf("text extraction failed: %v", err),
		}
	}
	logger.Debug("Extracted PDF text", logging.F("chars", len(text)))

	stmt, err := ParseStatementText(text, a.year)
	if err != nil {
		logger.WithError(err).Warn("PDF statement rejected")
		return nil, err
	}
	return a.Finish(stmt.Transactions, stmt.Metadata), nil
}
