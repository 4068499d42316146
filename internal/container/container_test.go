package container

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/statement-categorizer/internal/categorizer"
	"fjacquet/statement-categorizer/internal/config"
	"fjacquet/statement-categorizer/internal/factory"
	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/pdfparser"
	"fjacquet/statement-categorizer/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Log:            config.LogConfig{Level: "info", Format: "text"},
		CSV:            config.CSVConfig{Delimiter: ";"},
		Categorization: config.CategorizationConfig{ReviewThreshold: 0.8},
		Rules: config.RulesConfig{
			Backend:    config.RulesBackendYAML,
			File:       filepath.Join(dir, "rules.yaml"),
			SQLitePath: filepath.Join(dir, "rules.db"),
		},
		AI: config.AIConfig{
			Enabled:           true,
			Provider:          config.ProviderAnthropic,
			RequestsPerMinute: 10,
			TimeoutSeconds:    30,
			MaxBatchMerchants: 20,
			DefaultConfidence: 0.85,
		},
		PDF:    config.PDFConfig{Extractor: config.ExtractorLibrary, StatementYear: 2024},
		Report: config.ReportConfig{FiscalYearStartMonth: 4, CompanyName: "Acme"},
		Export: config.ExportConfig{Sheets: config.SheetsConfig{SpreadsheetID: "sheet", BatchSize: 100}},
	}
}

func TestNewContainer_NilConfig(t *testing.T) {
	_, err := NewContainer(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration cannot be nil")
}

func TestNewContainer_AIProviders(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*config.Config)
		enabled  bool
		provider string
	}{
		{"disabled", func(c *config.Config) { c.AI.Enabled = false }, false, ""},
		{"anthropic without key", func(c *config.Config) {}, false, ""},
		{"anthropic with key", func(c *config.Config) { c.AI.AnthropicAPIKey = "sk-test" }, true, categorizer.ProviderAnthropic},
		{"heuristic needs no key", func(c *config.Config) { c.AI.Provider = config.ProviderHeuristic }, true, categorizer.ProviderHeuristic},
		{"gemini without key", func(c *config.Config) { c.AI.Provider = config.ProviderGemini }, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.modify(cfg)

			c, err := NewContainer(context.Background(), cfg, WithLogger(logging.NewMockLogger()))
			require.NoError(t, err)
			defer func() { assert.NoError(t, c.Close()) }()

			esc := c.GetEscalator()
			require.NotNil(t, esc)
			assert.Equal(t, tt.enabled, esc.Enabled())
			if tt.enabled {
				assert.Equal(t, tt.provider, esc.Lookup().Provider())
			}
		})
	}
}

func TestNewContainer_Wiring(t *testing.T) {
	cfg := testConfig(t)
	extractor := pdfparser.NewMockExtractor("", nil)

	c, err := NewContainer(context.Background(), cfg, WithLogger(logging.NewMockLogger()), WithExtractor(extractor))
	require.NoError(t, err)

	assert.Same(t, cfg, c.GetConfig())
	assert.NotNil(t, c.GetLogger())
	assert.NotNil(t, c.GetCategorizer())
	assert.Greater(t, c.GetRegistry().Len(), 20)

	opts := c.ParserOptions()
	assert.Equal(t, ';', opts.Delimiter)
	assert.Equal(t, 2024, opts.Year)
	assert.Same(t, extractor, opts.Extractor)

	p, err := c.GetParser(factory.OFX)
	require.NoError(t, err)
	assert.Equal(t, "ofx", p.Format())

	assert.Equal(t, 4, c.ExportOptions().FiscalYearStartMonth)
	assert.Equal(t, "Acme", c.ExportOptions().CompanyName)
	assert.Equal(t, "sheet", c.SheetsConfig().SpreadsheetID)
	assert.Equal(t, 100, c.SheetsConfig().BatchSize)

	_, err = c.GetState().AddMerchantRule("OYATO", "Grocery")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = os.Stat(cfg.Rules.File)
	require.NoError(t, err, "rules are persisted on close")

	reopened, err := NewContainer(context.Background(), cfg, WithLogger(logging.NewMockLogger()))
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	require.Len(t, reopened.GetState().Rules(), 1)
	assert.Equal(t, "Grocery", reopened.GetState().Rules()[0].Category)
}

func TestNewContainer_SQLiteBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Rules.Backend = config.RulesBackendSQLite

	c, err := NewContainer(context.Background(), cfg, WithLogger(logging.NewMockLogger()))
	require.NoError(t, err)
	_, ok := c.GetRuleStore().(*store.SQLiteRuleStore)
	assert.True(t, ok)
	require.NoError(t, c.Close())
}

func TestNewContainer_CategoriesFile(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`categories:
  - name: Food
    keywords: [market]
  - name: Uncategorized
`), 0600))
	cfg.Categorization.CategoriesFile = path

	c, err := NewContainer(context.Background(), cfg, WithLogger(logging.NewMockLogger()))
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	assert.Equal(t, 2, c.GetRegistry().Len())

	res := c.GetCategorizer().Categorize("CORNER MARKET", models.Transaction{}, nil)
	assert.Equal(t, "Food", res.Category)
}

func TestNewContainer_Errors(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: Food\n- name: food\n"), 0600))
	cfg.Categorization.CategoriesFile = path

	_, err := NewContainer(context.Background(), cfg, WithLogger(logging.NewMockLogger()))
	assert.Error(t, err)

	cfg = testConfig(t)
	rs := &store.MockRuleStore{LoadRulesError: errors.New("disk gone")}
	_, err = NewContainer(context.Background(), cfg, WithLogger(logging.NewMockLogger()), WithRuleStore(rs))
	assert.Error(t, err)
}

func TestContainer_CloseReportsSaveErrors(t *testing.T) {
	rs := &store.MockRuleStore{SaveRulesError: errors.New("read-only")}
	c, err := NewContainer(context.Background(), testConfig(t), WithLogger(logging.NewMockLogger()), WithRuleStore(rs))
	require.NoError(t, err)
	assert.Error(t, c.Close())
}
