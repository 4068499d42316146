// Package validation sanitizes user-supplied fields and validates uploads,
// paths and output formats before they reach the pipeline.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/statement-categorizer/internal/dateutils"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parsererror"

	"github.com/shopspring/decimal"
)

// Field length limits, in runes.
const (
	MaxDescriptionLength = 500
	MaxCategoryLength    = 100
	MaxFileNameLength    = 255
)

// Upload formats accepted by ValidateUpload.
const (
	UploadPDF = "pdf"
	UploadCSV = "csv"
)

// OutputFormats lists the report formats IsValidOutputFormat accepts.
var OutputFormats = []string{"csv", "xlsx", "json", "sheets"}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) > max {
		return string(r[:max])
	}
	return s
}

// SanitizeDescription drops angle brackets, trims and caps the length.
func SanitizeDescription(s string) string {
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	return truncateRunes(strings.TrimSpace(s), MaxDescriptionLength)
}

// SanitizeCategory trims and caps a category name; blank becomes
// Uncategorized.
func SanitizeCategory(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.CategoryUncategorized
	}
	return truncateRunes(s, MaxCategoryLength)
}

// SanitizeAmount clamps an amount to the accepted range.
func SanitizeAmount(d decimal.Decimal) decimal.Decimal {
	return models.ClampAmount(d)
}

// SanitizeFileName keeps ASCII letters, digits, dot, underscore and dash,
// replacing everything else with an underscore.
func SanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return truncateRunes(b.String(), MaxFileNameLength)
}

// ValidateUpload checks an uploaded statement and returns its format.
// PDFs are recognized by content type or extension, CSVs likewise.
func ValidateUpload(name string, size int64, contentType string, maxBytes int64) (string, error) {
	if size <= 0 {
		return "", &parsererror.ValidationError{FilePath: name, Reason: "file is empty"}
	}
	if maxBytes > 0 && size > maxBytes {
		return "", &parsererror.ValidationError{
			FilePath: name,
			Reason:   fmt.Sprintf("file exceeds the %d byte limit", maxBytes),
		}
	}

	ext := strings.ToLower(filepath.Ext(name))
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch {
	case ct == "application/pdf" || ext == ".pdf":
		return UploadPDF, nil
	case ct == "text/csv" || ext == ".csv":
		return UploadCSV, nil
	default:
		return "", &parsererror.ValidationError{FilePath: name, Reason: "only PDF and CSV statements are accepted"}
	}
}

// ValidateTransaction rejects transactions that cannot be categorized or
// placed in time.
func ValidateTransaction(tx models.Transaction) error {
	if strings.TrimSpace(tx.Description) == "" {
		return &parsererror.ValidationError{Reason: fmt.Sprintf("transaction %s has no description", tx.ID)}
	}
	if _, _, err := dateutils.ParseDate(tx.Date); err != nil {
		return &parsererror.ValidationError{Reason: fmt.Sprintf("transaction %s: %v", tx.ID, err)}
	}
	return nil
}

// IsValidPath checks that an absolute path exists and is a regular file or
// directory.
func IsValidPath(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}
	if !info.IsDir() && !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is neither a file nor a directory", path)
	}
	return nil
}

// IsValidOutputFormat checks a report format name.
func IsValidOutputFormat(format string) error {
	for _, f := range OutputFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format: %s. Supported formats are %s", format, strings.Join(OutputFormats, ", "))
}

// IsValidFilePermissions rejects modes that grant anything to others. It
// guards credential files such as service-account keys.
func IsValidFilePermissions(mode os.FileMode) error {
	if mode&0007 != 0 {
		return fmt.Errorf("file permissions are too permissive: %s. Recommended 0600 or 0640", mode.String())
	}
	return nil
}
