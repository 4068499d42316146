// Package parsererror defines the typed errors shared by the conversion,
// categorization and lookup layers.
package parsererror

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedStatement is returned when a statement's layout is not
	// one of the supported account types.
	ErrUnrecognizedStatement = errors.New("Not a recognized RBC statement format")
	// ErrNoTransactions is returned when a statement parses but holds no rows.
	ErrNoTransactions = errors.New("No transactions found in statement")
	// ErrTransactionNotFound is returned by state updates on unknown ids.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrAIUnavailable signals that no merchant lookup is configured.
	ErrAIUnavailable = errors.New("AI categorization not configured")
)

// ParseError represents a field that could not be parsed.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v", e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents rejected input, such as an upload of the wrong
// type or a transaction without a description.
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.FilePath == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}

// CategorizationError represents a failure while categorizing one transaction.
type CategorizationError struct {
	Transaction string
	Strategy    string
	Err         error
}

func (e *CategorizationError) Error() string {
	return fmt.Sprintf("categorization failed for %s using %s: %v", e.Transaction, e.Strategy, e.Err)
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}

// LookupError represents a failed or malformed external merchant lookup.
type LookupError struct {
	Merchant string
	Provider string
	Err      error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s lookup failed for %q: %v", e.Provider, e.Merchant, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents input that does not conform to the format a
// converter expects.
type InvalidFormatError struct {
	FilePath             string
	ExpectedFormat       string
	ActualContentSnippet string
	Msg                  string
}

func (e *InvalidFormatError) Error() string {
	if e.ActualContentSnippet != "" {
		return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s. Content snippet: '%s'",
			e.FilePath, e.Msg, e.ExpectedFormat, e.ActualContentSnippet)
	}
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

// DataExtractionError represents required data missing from an otherwise
// well-formed file.
type DataExtractionError struct {
	FilePath  string
	FieldName string
	Reason    string
	Err       error
}

func (e *DataExtractionError) Error() string {
	return fmt.Sprintf("data extraction failed in file '%s' for field '%s': %s", e.FilePath, e.FieldName, e.Reason)
}

func (e *DataExtractionError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConversion reports whether err describes a statement that could not be
// turned into transactions.
func IsConversion(err error) bool {
	var inv *InvalidFormatError
	var ext *DataExtractionError
	var parse *ParseError
	return errors.Is(err, ErrUnrecognizedStatement) ||
		errors.Is(err, ErrNoTransactions) ||
		errors.As(err, &inv) ||
		errors.As(err, &ext) ||
		errors.As(err, &parse)
}
