package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"

	"gopkg.in/yaml.v3"
)

// RuleStore persists the merchant rule set. SaveRules replaces the stored
// set with rules.
type RuleStore interface {
	LoadRules() ([]models.MerchantRule, error)
	SaveRules(rules []models.MerchantRule) error
	Close() error
}

// YAMLRuleStore keeps rules in a YAML file.
type YAMLRuleStore struct {
	path   string
	logger logging.Logger
}

// NewYAMLRuleStore stores rules at path.
func NewYAMLRuleStore(path string, logger logging.Logger) *YAMLRuleStore {
	return &YAMLRuleStore{path: path, logger: logging.OrDefault(logger)}
}

type rulesFile struct {
	Rules []models.MerchantRule `yaml:"rules"`
}

// Path returns the file location.
func (s *YAMLRuleStore) Path() string {
	return s.path
}

// LoadRules returns no rules when the file does not exist yet.
func (s *YAMLRuleStore) LoadRules() ([]models.MerchantRule, error) {
	data, err := os.ReadFile(s.path) // #nosec G304 -- path comes from configuration
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("Rules file not found, starting empty", logging.F(logging.FieldFile, s.path))
			return nil, nil
		}
		return nil, fmt.Errorf("error reading rules file: %w", err)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing rules file %s: %w", s.path, err)
	}
	s.logger.Debug("Loaded merchant rules", logging.F(logging.FieldFile, s.path), logging.F(logging.FieldCount, len(f.Rules)))
	return f.Rules, nil
}

// SaveRules writes the file through a temporary file and rename.
func (s *YAMLRuleStore) SaveRules(rules []models.MerchantRule) error {
	if err := os.MkdirAll(filepath.Dir(s.path), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := yaml.Marshal(rulesFile{Rules: rules})
	if err != nil {
		return fmt.Errorf("error marshaling rules: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, models.PermissionConfigFile); err != nil {
		return fmt.Errorf("error writing rules: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("error replacing rules file: %w", err)
	}

	s.logger.Debug("Saved merchant rules", logging.F(logging.FieldFile, s.path), logging.F(logging.FieldCount, len(rules)))
	return nil
}

// Close is a no-op.
func (s *YAMLRuleStore) Close() error {
	return nil
}
