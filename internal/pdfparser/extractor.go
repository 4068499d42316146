package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dslipak/pdf"
)

// Extractor turns a PDF file into plain text, one visual line per text line.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// LibraryExtractor reads PDFs in-process with github.com/dslipak/pdf.
type LibraryExtractor struct{}

// NewLibraryExtractor creates a LibraryExtractor.
func NewLibraryExtractor() *LibraryExtractor {
	return &LibraryExtractor{}
}

// ExtractText rebuilds each page row by row. Fragments on the same row are
// joined with a space when they are visibly apart.
func (e *LibraryExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	f, err := os.Open(pdfPath) // #nosec G304 -- path is a temp file or user-provided statement
	if err != nil {
		return "", fmt.Errorf("error opening PDF: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("error reading PDF size: %w", err)
	}

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("error reading PDF: %w", err)
	}

	var out strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("error reading page %d: %w", i, err)
		}
		for _, row := range rows {
			out.WriteString(joinRow(row.Content))
			out.WriteByte('\n')
		}
	}
	return out.String(), nil
}

func joinRow(texts pdf.TextHorizontal) string {
	var b strings.Builder
	for i, t := range texts {
		if i > 0 {
			prev := texts[i-1]
			if t.X-(prev.X+prev.W) > t.FontSize*0.2 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
	}
	return strings.TrimSpace(b.String())
}

// PdftotextExtractor shells out to poppler's pdftotext, keeping the layout.
type PdftotextExtractor struct {
	// Binary defaults to "pdftotext" on the PATH.
	Binary string
}

// NewPdftotextExtractor creates a PdftotextExtractor.
func NewPdftotextExtractor() *PdftotextExtractor {
	return &PdftotextExtractor{Binary: "pdftotext"}
}

// ExtractText runs "pdftotext -layout <path> -" and returns its stdout.
func (e *PdftotextExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	bin := e.Binary
	if bin == "" {
		bin = "pdftotext"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-layout", pdfPath, "-") // #nosec G204 -- fixed binary, path argument only
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("error running pdftotext: %w: %s", err, msg)
		}
		return "", fmt.Errorf("error running pdftotext: %w", err)
	}
	return stdout.String(), nil
}

// MockExtractor returns canned text. It records the paths it was asked for.
type MockExtractor struct {
	Text  string
	Err   error
	Paths []string
}

// NewMockExtractor creates a MockExtractor.
func NewMockExtractor(text string, err error) *MockExtractor {
	return &MockExtractor{Text: text, Err: err}
}

// ExtractText returns the canned text or error.
func (e *MockExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	e.Paths = append(e.Paths, pdfPath)
	if e.Err != nil {
		return "", e.Err
	}
	return e.Text, nil
}
