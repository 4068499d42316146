// Package container provides dependency injection for the statement
// categorizer. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"fjacquet/statement-categorizer/internal/categorizer"
	"fjacquet/statement-categorizer/internal/config"
	"fjacquet/statement-categorizer/internal/export"
	"fjacquet/statement-categorizer/internal/factory"
	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/parser"
	"fjacquet/statement-categorizer/internal/pdfparser"
	"fjacquet/statement-categorizer/internal/ratelimit"
	"fjacquet/statement-categorizer/internal/registry"
	"fjacquet/statement-categorizer/internal/session"
	"fjacquet/statement-categorizer/internal/store"
)

// Container holds all application dependencies. It is immutable after
// creation; collaborators are reached through getters.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	registry    *registry.Registry
	ruleStore   store.RuleStore
	lookup      categorizer.MerchantLookup
	dispatcher  *ratelimit.Dispatcher
	categorizer *categorizer.Categorizer
	escalator   *categorizer.Escalator
	extractor   pdfparser.Extractor
	state       *session.State
}

// Option overrides a dependency, mostly for tests.
type Option func(*options)

type options struct {
	logger    logging.Logger
	ruleStore store.RuleStore
	lookup    categorizer.MerchantLookup
	extractor pdfparser.Extractor
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRuleStore replaces the configured rule store backend.
func WithRuleStore(rs store.RuleStore) Option {
	return func(o *options) { o.ruleStore = rs }
}

// WithLookup replaces the configured merchant lookup.
func WithLookup(lookup categorizer.MerchantLookup) Option {
	return func(o *options) { o.lookup = lookup }
}

// WithExtractor replaces the configured PDF text extractor.
func WithExtractor(extractor pdfparser.Extractor) Option {
	return func(o *options) { o.extractor = extractor }
}

// NewContainer creates and wires all application dependencies and loads the
// persisted merchant rules.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = config.NewLogger(cfg)
	}

	reg, err := loadRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}

	ruleStore := o.ruleStore
	if ruleStore == nil {
		if ruleStore, err = newRuleStore(cfg, logger); err != nil {
			return nil, err
		}
	}

	lookup := o.lookup
	if lookup == nil {
		if lookup, err = newLookup(ctx, cfg, reg, logger); err != nil {
			_ = ruleStore.Close()
			return nil, err
		}
	}

	extractor := o.extractor
	if extractor == nil {
		extractor = newExtractor(cfg)
	}

	engine := categorizer.NewEngine(reg, categorizer.WithThreshold(cfg.Categorization.ReviewThreshold))
	cat := categorizer.NewCategorizer(engine, logger)
	dispatcher := ratelimit.NewDispatcher(cfg.AI.RequestsPerMinute)
	escalator := categorizer.NewEscalator(lookup, dispatcher, reg, categorizer.EscalationConfig{
		MaxMerchants:      cfg.AI.MaxBatchMerchants,
		Threshold:         cfg.Categorization.ReviewThreshold,
		DefaultConfidence: cfg.AI.DefaultConfidence,
	}, logger)

	state := session.New(cat, ruleStore, logger)
	if err := state.Load(); err != nil {
		_ = ruleStore.Close()
		return nil, err
	}

	provider := "none"
	if lookup != nil {
		provider = lookup.Provider()
	}
	logger.Debug("Container initialized",
		logging.F("categories", reg.Len()),
		logging.F("rules", len(state.Rules())),
		logging.F("ai_provider", provider))

	return &Container{
		logger:      logger,
		config:      cfg,
		registry:    reg,
		ruleStore:   ruleStore,
		lookup:      lookup,
		dispatcher:  dispatcher,
		categorizer: cat,
		escalator:   escalator,
		extractor:   extractor,
		state:       state,
	}, nil
}

func loadRegistry(cfg *config.Config, logger logging.Logger) (*registry.Registry, error) {
	categories, err := store.NewCategoryStore(cfg.Categorization.CategoriesFile, logger).LoadCategories()
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return registry.Default(), nil
	}
	reg, err := registry.New(categories)
	if err != nil {
		return nil, fmt.Errorf("invalid categories file: %w", err)
	}
	return reg, nil
}

func newRuleStore(cfg *config.Config, logger logging.Logger) (store.RuleStore, error) {
	switch cfg.Rules.Backend {
	case config.RulesBackendSQLite:
		return store.NewSQLiteRuleStore(cfg.Rules.SQLitePath, logger)
	default:
		return store.NewYAMLRuleStore(cfg.Rules.File, logger), nil
	}
}

// newLookup returns nil when AI is disabled or the provider has no key.
func newLookup(ctx context.Context, cfg *config.Config, reg *registry.Registry, logger logging.Logger) (categorizer.MerchantLookup, error) {
	if !cfg.AI.Enabled {
		logger.Debug("AI categorization disabled")
		return nil, nil
	}

	switch cfg.AI.Provider {
	case config.ProviderHeuristic:
		return categorizer.NewHeuristicLookup(), nil
	case config.ProviderGemini, config.ProviderAnthropic:
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.AI.Provider)
	}

	key := cfg.AI.APIKey()
	if key == "" {
		logger.Debug("AI categorization disabled: no API key", logging.F("provider", cfg.AI.Provider))
		return nil, nil
	}

	if cfg.AI.Provider == config.ProviderGemini {
		lookup, err := categorizer.NewGeminiLookup(ctx, key, cfg.AI.Model, reg.Names(), logger)
		if err != nil {
			return nil, fmt.Errorf("error creating Gemini lookup: %w", err)
		}
		return lookup, nil
	}

	lookup, err := categorizer.NewAnthropicLookup(categorizer.AnthropicConfig{
		APIKey:     key,
		Model:      cfg.AI.Model,
		Timeout:    time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		Categories: reg.Names(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating Anthropic lookup: %w", err)
	}
	return lookup, nil
}

func newExtractor(cfg *config.Config) pdfparser.Extractor {
	if cfg.PDF.Extractor == config.ExtractorPdftotext {
		return pdfparser.NewPdftotextExtractor()
	}
	return pdfparser.NewLibraryExtractor()
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger { return c.logger }

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config { return c.config }

// GetRegistry returns the category registry.
func (c *Container) GetRegistry() *registry.Registry { return c.registry }

// GetCategorizer returns the batch categorizer.
func (c *Container) GetCategorizer() *categorizer.Categorizer { return c.categorizer }

// GetEscalator returns the AI escalator. It is never nil; check Enabled.
func (c *Container) GetEscalator() *categorizer.Escalator { return c.escalator }

// GetState returns the session state holding the merchant rules.
func (c *Container) GetState() *session.State { return c.state }

// GetRuleStore returns the rule persistence backend.
func (c *Container) GetRuleStore() store.RuleStore { return c.ruleStore }

// ParserOptions returns the settings every statement adapter is built with.
func (c *Container) ParserOptions() factory.Options {
	return factory.Options{
		Logger:    c.logger,
		Extractor: c.extractor,
		Year:      c.config.PDF.StatementYear,
		Delimiter: c.config.Delimiter(),
	}
}

// GetParser returns the adapter for pt.
func (c *Container) GetParser(pt factory.ParserType) (parser.Parser, error) {
	return factory.GetParser(pt, c.ParserOptions())
}

// ExportOptions returns the report rendering options.
func (c *Container) ExportOptions() export.Options {
	return export.Options{
		CompanyName:          c.config.Report.CompanyName,
		FiscalYearStartMonth: c.config.Report.FiscalYearStartMonth,
		Delimiter:            c.config.Delimiter(),
	}
}

// SheetsConfig returns the Google Sheets export settings.
func (c *Container) SheetsConfig() export.SheetsConfig {
	s := c.config.Export.Sheets
	return export.SheetsConfig{
		SpreadsheetID:      s.SpreadsheetID,
		SpreadsheetName:    s.SpreadsheetName,
		ServiceAccountPath: s.ServiceAccountPath,
		ClientID:           s.ClientID,
		ClientSecret:       s.ClientSecret,
		RefreshToken:       s.RefreshToken,
		BatchSize:          s.BatchSize,
	}
}

// Close persists the merchant rules and releases the rule store and lookup.
func (c *Container) Close() error {
	var errs []error
	if err := c.state.Save(); err != nil {
		errs = append(errs, err)
	}
	if err := c.ruleStore.Close(); err != nil {
		errs = append(errs, err)
	}
	if closer, ok := c.lookup.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.logger.Debug("Container closed")
	return errors.Join(errs...)
}
