// Package factory builds the statement adapter for a given input format.
package factory

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/statement-categorizer/internal/camtparser"
	"fjacquet/statement-categorizer/internal/csvparser"
	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/ofxparser"
	"fjacquet/statement-categorizer/internal/parser"
	"fjacquet/statement-categorizer/internal/pdfparser"
)

// ParserType names an input format.
type ParserType string

const (
	PDF  ParserType = "pdf"
	CSV  ParserType = "csv"
	CAMT ParserType = "camt"
	OFX  ParserType = "ofx"
)

// Types lists every supported format.
var Types = []ParserType{PDF, CSV, CAMT, OFX}

// Options carries the format-specific settings adapters need.
type Options struct {
	Logger    logging.Logger
	Extractor pdfparser.Extractor
	Year      int
	Delimiter rune
}

// GetParser returns the adapter for parserType.
func GetParser(parserType ParserType, opts Options) (parser.Parser, error) {
	switch parserType {
	case PDF:
		return pdfparser.NewAdapter(opts.Logger, opts.Extractor, opts.Year), nil
	case CSV:
		return csvparser.NewAdapter(opts.Logger, opts.Delimiter), nil
	case CAMT:
		return camtparser.NewAdapter(opts.Logger), nil
	case OFX:
		return ofxparser.NewAdapter(opts.Logger), nil
	default:
		return nil, fmt.Errorf("unknown parser type: %s", parserType)
	}
}

// DetectFormat guesses the format from the file extension, falling back to
// the leading bytes of the content.
func DetectFormat(filename string, head []byte) (ParserType, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDF, nil
	case ".csv":
		return CSV, nil
	case ".ofx", ".qfx":
		return OFX, nil
	case ".xml", ".camt", ".053":
		return CAMT, nil
	}

	trimmed := bytes.TrimSpace(head)
	switch {
	case bytes.HasPrefix(trimmed, []byte("%PDF")):
		return PDF, nil
	case bytes.HasPrefix(trimmed, []byte("OFXHEADER")), bytes.Contains(trimmed, []byte("<OFX>")):
		return OFX, nil
	case bytes.Contains(trimmed, []byte("BkToCstmrStmt")):
		return CAMT, nil
	case bytes.HasPrefix(trimmed, []byte("Date")):
		return CSV, nil
	}
	return "", fmt.Errorf("cannot detect statement format of %s", filename)
}
