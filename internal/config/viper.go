// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Rule store backends.
const (
	RulesBackendYAML   = "yaml"
	RulesBackendSQLite = "sqlite"
)

// AI providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderHeuristic = "heuristic"
)

// PDF text extractors.
const (
	ExtractorLibrary   = "library"
	ExtractorPdftotext = "pdftotext"
)

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CSVConfig tunes working-CSV I/O.
type CSVConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// CategorizationConfig tunes the classification engine.
type CategorizationConfig struct {
	ReviewThreshold float64 `mapstructure:"review_threshold" yaml:"review_threshold"`
	CategoriesFile  string  `mapstructure:"categories_file" yaml:"categories_file"`
}

// RulesConfig selects where merchant rules are persisted.
type RulesConfig struct {
	Backend    string `mapstructure:"backend" yaml:"backend"`
	File       string `mapstructure:"file" yaml:"file"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

// AIConfig configures merchant lookups. Keys are never serialized.
type AIConfig struct {
	Enabled           bool    `mapstructure:"enabled" yaml:"enabled"`
	Provider          string  `mapstructure:"provider" yaml:"provider"`
	Model             string  `mapstructure:"model" yaml:"model"`
	RequestsPerMinute int     `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxBatchMerchants int     `mapstructure:"max_batch_merchants" yaml:"max_batch_merchants"`
	DefaultConfidence float64 `mapstructure:"default_confidence" yaml:"default_confidence"`
	GeminiAPIKey      string  `mapstructure:"gemini_api_key" yaml:"-"`
	AnthropicAPIKey   string  `mapstructure:"anthropic_api_key" yaml:"-"`
}

// APIKey returns the key of the configured provider.
func (a AIConfig) APIKey() string {
	switch a.Provider {
	case ProviderGemini:
		return a.GeminiAPIKey
	case ProviderAnthropic:
		return a.AnthropicAPIKey
	default:
		return ""
	}
}

// PDFConfig selects the text extractor and the statement year.
type PDFConfig struct {
	Extractor     string `mapstructure:"extractor" yaml:"extractor"`
	StatementYear int    `mapstructure:"statement_year" yaml:"statement_year"`
}

// ReportConfig holds report presentation settings.
type ReportConfig struct {
	FiscalYearStartMonth int    `mapstructure:"fiscal_year_start_month" yaml:"fiscal_year_start_month"`
	CompanyName          string `mapstructure:"company_name" yaml:"company_name"`
}

// SheetsConfig locates the Google Sheets export target.
type SheetsConfig struct {
	SpreadsheetID      string `mapstructure:"spreadsheet_id" yaml:"spreadsheet_id"`
	SpreadsheetName    string `mapstructure:"spreadsheet_name" yaml:"spreadsheet_name"`
	ServiceAccountPath string `mapstructure:"service_account_path" yaml:"service_account_path"`
	ClientID           string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret       string `mapstructure:"client_secret" yaml:"-"`
	RefreshToken       string `mapstructure:"refresh_token" yaml:"-"`
	BatchSize          int    `mapstructure:"batch_size" yaml:"batch_size"`
}

// ExportConfig groups export targets.
type ExportConfig struct {
	Sheets SheetsConfig `mapstructure:"sheets" yaml:"sheets"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr                    string `mapstructure:"addr" yaml:"addr"`
	APIRequestsPerMinute    int    `mapstructure:"api_requests_per_minute" yaml:"api_requests_per_minute"`
	UploadRequestsPerMinute int    `mapstructure:"upload_requests_per_minute" yaml:"upload_requests_per_minute"`
	MaxUploadMB             int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

// MaxUploadBytes returns the upload limit in bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// Config represents the complete application configuration
type Config struct {
	Log            LogConfig            `mapstructure:"log" yaml:"log"`
	CSV            CSVConfig            `mapstructure:"csv" yaml:"csv"`
	Categorization CategorizationConfig `mapstructure:"categorization" yaml:"categorization"`
	Rules          RulesConfig          `mapstructure:"rules" yaml:"rules"`
	AI             AIConfig             `mapstructure:"ai" yaml:"ai"`
	PDF            PDFConfig            `mapstructure:"pdf" yaml:"pdf"`
	Report         ReportConfig         `mapstructure:"report" yaml:"report"`
	Export         ExportConfig         `mapstructure:"export" yaml:"export"`
	Server         ServerConfig         `mapstructure:"server" yaml:"server"`
}

// Delimiter returns the CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.CSV.Delimiter)
	return r
}

// InitializeConfig loads defaults, then the config file, then STMTCAT_*
// environment variables. An explicit configFile must exist; otherwise
// config.yaml is searched in $HOME/.stmtcat, .stmtcat and the working
// directory.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.stmtcat")
		v.AddConfigPath(".stmtcat")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("STMTCAT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Secrets come from the conventional unprefixed variables.
	if err := v.BindEnv("ai.gemini_api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}
	if err := v.BindEnv("ai.anthropic_api_key", "ANTHROPIC_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind ANTHROPIC_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Defaults returns the configuration with every default applied and no
// file or environment overrides.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("config defaults do not decode: %v", err))
	}
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("categorization.review_threshold", 0.8)
	v.SetDefault("categorization.categories_file", "")

	v.SetDefault("rules.backend", RulesBackendYAML)
	v.SetDefault("rules.file", "rules.yaml")
	v.SetDefault("rules.sqlite_path", "rules.db")

	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.provider", ProviderAnthropic)
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.requests_per_minute", 10)
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.max_batch_merchants", 20)
	v.SetDefault("ai.default_confidence", 0.85)
	v.SetDefault("ai.gemini_api_key", "")
	v.SetDefault("ai.anthropic_api_key", "")

	v.SetDefault("pdf.extractor", ExtractorLibrary)
	v.SetDefault("pdf.statement_year", 0)

	v.SetDefault("report.fiscal_year_start_month", 1)
	v.SetDefault("report.company_name", "")

	v.SetDefault("export.sheets.spreadsheet_id", "")
	v.SetDefault("export.sheets.spreadsheet_name", "Statement Report")
	v.SetDefault("export.sheets.service_account_path", "")
	v.SetDefault("export.sheets.client_id", "")
	v.SetDefault("export.sheets.client_secret", "")
	v.SetDefault("export.sheets.refresh_token", "")
	v.SetDefault("export.sheets.batch_size", 500)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.api_requests_per_minute", 10)
	v.SetDefault("server.upload_requests_per_minute", 5)
	v.SetDefault("server.max_upload_mb", 10)
}

// validateConfig validates the configuration values. A missing AI key is
// not an error: escalation is then skipped.
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if utf8.RuneCountInString(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %q", config.CSV.Delimiter)
	}

	if t := config.Categorization.ReviewThreshold; t < 0 || t > 1 {
		return fmt.Errorf("categorization.review_threshold must be between 0.0 and 1.0, got: %f", t)
	}

	switch config.Rules.Backend {
	case RulesBackendYAML, RulesBackendSQLite:
	default:
		return fmt.Errorf("unknown rules.backend: %s (must be 'yaml' or 'sqlite')", config.Rules.Backend)
	}

	switch config.AI.Provider {
	case ProviderAnthropic, ProviderGemini, ProviderHeuristic:
	default:
		return fmt.Errorf("unknown ai.provider: %s", config.AI.Provider)
	}

	if rpm := config.AI.RequestsPerMinute; rpm < 1 || rpm > 1000 {
		return fmt.Errorf("ai.requests_per_minute must be between 1 and 1000, got: %d", rpm)
	}

	if n := config.AI.MaxBatchMerchants; n < 1 || n > 100 {
		return fmt.Errorf("ai.max_batch_merchants must be between 1 and 100, got: %d", n)
	}

	if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
		return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
	}

	if c := config.AI.DefaultConfidence; c <= 0 || c > 1 {
		return fmt.Errorf("ai.default_confidence must be in (0, 1], got: %f", c)
	}

	switch config.PDF.Extractor {
	case ExtractorLibrary, ExtractorPdftotext:
	default:
		return fmt.Errorf("unknown pdf.extractor: %s (must be 'library' or 'pdftotext')", config.PDF.Extractor)
	}

	if m := config.Report.FiscalYearStartMonth; m < 1 || m > 12 {
		return fmt.Errorf("report.fiscal_year_start_month must be between 1 and 12, got: %d", m)
	}

	if config.Server.APIRequestsPerMinute < 1 || config.Server.UploadRequestsPerMinute < 1 {
		return errors.New("server request limits must be at least 1 per minute")
	}

	if config.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be at least 1, got: %d", config.Server.MaxUploadMB)
	}

	return nil
}
