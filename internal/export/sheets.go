package export

import (
	"context"
	"errors"
	"fmt"
	"os"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/validation"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultSheetsBatchSize is the number of rows sent per Values.Update call.
const DefaultSheetsBatchSize = 500

// SheetsConfig locates the target spreadsheet and its credentials. A
// service account file takes precedence over the OAuth refresh token.
type SheetsConfig struct {
	SpreadsheetID      string
	SpreadsheetName    string
	ServiceAccountPath string
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	BatchSize          int
}

// SheetsAPI is the subset of the Sheets service the writer needs.
type SheetsAPI interface {
	Create(ctx context.Context, title string) (string, error)
	Update(ctx context.Context, spreadsheetID, rangeA1 string, values [][]interface{}) error
}

// SheetsWriter uploads the transaction rows of a report to a spreadsheet.
type SheetsWriter struct {
	api    SheetsAPI
	config SheetsConfig
	logger logging.Logger
}

// NewSheetsWriter creates a writer backed by api.
func NewSheetsWriter(api SheetsAPI, config SheetsConfig, logger logging.Logger) *SheetsWriter {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultSheetsBatchSize
	}
	if config.SpreadsheetName == "" {
		config.SpreadsheetName = "Statement Report"
	}
	return &SheetsWriter{api: api, config: config, logger: logging.OrDefault(logger)}
}

// Write uploads the report and returns the spreadsheet id it wrote to.
func (w *SheetsWriter) Write(ctx context.Context, r *models.CorporateReport) (string, error) {
	id := w.config.SpreadsheetID
	if id == "" {
		created, err := w.api.Create(ctx, w.config.SpreadsheetName)
		if err != nil {
			return "", fmt.Errorf("unable to create spreadsheet: %w", err)
		}
		id = created
		w.logger.Info("Created spreadsheet", logging.F("spreadsheet_id", id))
	}

	header := make([]interface{}, len(TransactionHeader))
	for i, h := range TransactionHeader {
		header[i] = h
	}
	values := [][]interface{}{header}
	for _, row := range TransactionRows(r) {
		values = append(values, row.Values())
	}

	size := w.config.BatchSize
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		rangeA1 := fmt.Sprintf("A%d", start+1)
		if err := w.api.Update(ctx, id, rangeA1, values[start:end]); err != nil {
			return id, fmt.Errorf("failed to write batch starting at row %d: %w", start+1, err)
		}
		w.logger.Debug("Wrote batch", logging.F("start_row", start+1), logging.F(logging.FieldCount, end-start))
	}

	w.logger.Info("Report uploaded to Google Sheets",
		logging.F("spreadsheet_id", id), logging.F(logging.FieldCount, len(values)-1))
	return id, nil
}

// GoogleSheets implements SheetsAPI with the Google Sheets v4 service.
type GoogleSheets struct {
	service *sheets.Service
}

// NewGoogleSheets authenticates with a service account key file or an OAuth
// refresh token.
func NewGoogleSheets(ctx context.Context, config SheetsConfig) (*GoogleSheets, error) {
	var tokenSource oauth2.TokenSource

	switch {
	case config.ServiceAccountPath != "":
		info, err := os.Stat(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		if err := validation.IsValidFilePermissions(info.Mode().Perm()); err != nil {
			return nil, err
		}
		jsonKey, err := os.ReadFile(config.ServiceAccountPath) // #nosec G304 -- path comes from configuration
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	case config.RefreshToken != "":
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		tokenSource = client.TokenSource(ctx, &oauth2.Token{RefreshToken: config.RefreshToken, TokenType: "Bearer"})
	default:
		return nil, errors.New("google sheets export needs a service account file or an OAuth refresh token")
	}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return &GoogleSheets{service: service}, nil
}

// Create implements SheetsAPI.
func (g *GoogleSheets) Create(ctx context.Context, title string) (string, error) {
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: transactionsSheet}},
		},
	}
	created, err := g.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.SpreadsheetId, nil
}

// Update implements SheetsAPI.
func (g *GoogleSheets) Update(ctx context.Context, spreadsheetID, rangeA1 string, values [][]interface{}) error {
	_, err := g.service.Spreadsheets.Values.Update(spreadsheetID, rangeA1, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}
