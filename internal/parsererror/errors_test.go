package parsererror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	cause := errors.New("bad digit")
	err := &ParseError{Parser: "PDF", Field: "amount", Value: "1.2x", Err: cause}

	assert.Equal(t, "PDF: failed to parse amount='1.2x': bad digit", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsConversion(fmt.Errorf("wrapped: %w", err)))
}

func TestValidationError(t *testing.T) {
	assert.Equal(t, "validation failed for a.txt: only PDF files are allowed",
		(&ValidationError{FilePath: "a.txt", Reason: "only PDF files are allowed"}).Error())
	assert.Equal(t, "validation failed: missing description",
		(&ValidationError{Reason: "missing description"}).Error())

	assert.True(t, IsValidation(fmt.Errorf("upload: %w", &ValidationError{Reason: "x"})))
	assert.False(t, IsValidation(errors.New("plain")))
}

func TestLookupError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &LookupError{Merchant: "ACME", Provider: "anthropic", Err: cause}

	assert.Contains(t, err.Error(), `anthropic lookup failed for "ACME"`)
	assert.ErrorIs(t, err, cause)
}

func TestCategorizationError(t *testing.T) {
	cause := errors.New("panic")
	err := &CategorizationError{Transaction: "tx-1", Strategy: "keyword", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "tx-1")
}

func TestIsConversion(t *testing.T) {
	assert.True(t, IsConversion(ErrNoTransactions))
	assert.True(t, IsConversion(fmt.Errorf("pdf: %w", ErrUnrecognizedStatement)))
	assert.True(t, IsConversion(&InvalidFormatError{FilePath: "x", ExpectedFormat: "PDF", Msg: "bad"}))
	assert.True(t, IsConversion(&DataExtractionError{FilePath: "x", FieldName: "date", Reason: "missing"}))
	assert.False(t, IsConversion(errors.New("disk full")))
}
