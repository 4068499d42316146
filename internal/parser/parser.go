// Package parser defines the conversion adapter contract shared by every
// statement format and the base implementation the adapters embed.
package parser

import (
	"context"
	"io"

	"fjacquet/statement-categorizer/internal/models"
)

// Parser converts one statement into transactions.
type Parser interface {
	// Parse reads a statement from r. Implementations return
	// *parsererror.InvalidFormatError for input in the wrong format,
	// parsererror.ErrNoTransactions for statements without rows, and
	// *parsererror.DataExtractionError when a required field is missing.
	Parse(ctx context.Context, r io.Reader) (*models.Statement, error)

	// Format returns the format name, e.g. "pdf" or "csv".
	Format() string
}
