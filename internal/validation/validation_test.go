package validation_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/parsererror"
	"fjacquet/statement-categorizer/internal/validation"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeDescription(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script COFFEE", validation.SanitizeDescription("  <script>alert(1)</script> COFFEE "))
	assert.Equal(t, "", validation.SanitizeDescription("   "))

	long := strings.Repeat("é", 600)
	assert.Len(t, []rune(validation.SanitizeDescription(long)), validation.MaxDescriptionLength)
}

func TestSanitizeCategory(t *testing.T) {
	assert.Equal(t, models.CategoryUncategorized, validation.SanitizeCategory(" "))
	assert.Equal(t, "Travel", validation.SanitizeCategory(" Travel "))
	assert.Len(t, []rune(validation.SanitizeCategory(strings.Repeat("x", 150))), validation.MaxCategoryLength)
}

func TestSanitizeAmount(t *testing.T) {
	assert.Equal(t, "1000000", validation.SanitizeAmount(decimal.NewFromInt(5_000_000)).String())
	assert.Equal(t, "-1000000", validation.SanitizeAmount(decimal.NewFromInt(-2_000_000)).String())
	assert.Equal(t, "12.34", validation.SanitizeAmount(decimal.RequireFromString("12.34")).String())
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "my_statement__2024_.pdf", validation.SanitizeFileName("my statement (2024).pdf"))
	assert.Equal(t, ".._.._etc_passwd", validation.SanitizeFileName("../../etc/passwd"))
	assert.Len(t, validation.SanitizeFileName(strings.Repeat("a", 300)), validation.MaxFileNameLength)
}

func TestValidateUpload(t *testing.T) {
	const max = 10 << 20
	tests := []struct {
		name        string
		file        string
		size        int64
		contentType string
		want        string
		wantErr     string
	}{
		{"pdf by type", "upload", 100, "application/pdf", validation.UploadPDF, ""},
		{"pdf by extension", "Statement.PDF", 100, "application/octet-stream", validation.UploadPDF, ""},
		{"csv", "export.csv", 100, "text/csv; charset=utf-8", validation.UploadCSV, ""},
		{"empty", "a.pdf", 0, "application/pdf", "", "empty"},
		{"too large", "a.pdf", max + 1, "application/pdf", "", "limit"},
		{"wrong type", "photo.png", 100, "image/png", "", "only PDF and CSV"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validation.ValidateUpload(tt.file, tt.size, tt.contentType, max)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, parsererror.IsValidation(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateTransaction(t *testing.T) {
	assert.NoError(t, validation.ValidateTransaction(models.Transaction{ID: "1", Date: "2024-01-02", Description: "COFFEE"}))

	err := validation.ValidateTransaction(models.Transaction{ID: "2", Date: "2024-01-02", Description: " "})
	assert.True(t, parsererror.IsValidation(err))

	err = validation.ValidateTransaction(models.Transaction{ID: "3", Date: "someday", Description: "COFFEE"})
	assert.True(t, parsererror.IsValidation(err))
}

func TestIsValidPath(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("test"), 0600))

	assert.NoError(t, validation.IsValidPath(testFile))
	assert.NoError(t, validation.IsValidPath(tmpDir))

	err := validation.IsValidPath("/nonexistent/path/to/file.txt")
	assert.ErrorContains(t, err, "path does not exist")
}

func TestIsValidOutputFormat(t *testing.T) {
	for _, f := range []string{"csv", "xlsx", "json", "sheets"} {
		assert.NoError(t, validation.IsValidOutputFormat(f), f)
	}
	for _, f := range []string{"", "xml", "JSON"} {
		assert.ErrorContains(t, validation.IsValidOutputFormat(f), "unsupported output format", f)
	}
}

func TestIsValidFilePermissions(t *testing.T) {
	tests := []struct {
		mode        os.FileMode
		expectError bool
	}{
		{0600, false},
		{0640, false},
		{0750, false},
		{0644, true},
		{0755, true},
		{0777, true},
		{0701, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			err := validation.IsValidFilePermissions(tt.mode)
			if tt.expectError {
				assert.ErrorContains(t, err, "too permissive")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
