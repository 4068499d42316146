package export

import (
	"fmt"
	"io"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/report"
)

// JSONWriter writes the indented report.
type JSONWriter struct {
	generator *report.ReportGenerator
}

// NewJSONWriter creates a JSONWriter.
func NewJSONWriter(logger logging.Logger) *JSONWriter {
	return &JSONWriter{generator: report.NewReportGenerator(logger)}
}

// Extension implements FileWriter.
func (j *JSONWriter) Extension() string { return ".json" }

// Write implements FileWriter.
func (j *JSONWriter) Write(w io.Writer, r *models.CorporateReport) error {
	data, err := j.generator.GenerateReport(r, "json")
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("error writing JSON export: %w", err)
	}
	return nil
}
