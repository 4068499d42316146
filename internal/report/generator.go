package report

import (
	"encoding/json"
	"fmt"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
)

// ReportGenerator renders a CorporateReport as JSON.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	return &ReportGenerator{logger: logging.OrDefault(logger).WithField("component", "ReportGenerator")}
}

// GenerateReport renders report in format. Only "json" is supported.
func (g *ReportGenerator) GenerateReport(report *models.CorporateReport, format string) ([]byte, error) {
	switch format {
	case "json":
		return g.generateJSONReport(report)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *ReportGenerator) generateJSONReport(report *models.CorporateReport) ([]byte, error) {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return out, nil
}
