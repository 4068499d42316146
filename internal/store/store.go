// Package store provides persistence for merchant rules and loading of the
// optional category file.
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

// CategoryStore loads category definitions from a YAML file.
type CategoryStore struct {
	CategoriesFile string
	logger         logging.Logger
}

// NewCategoryStore creates a store reading categoriesFile.
func NewCategoryStore(categoriesFile string, logger logging.Logger) *CategoryStore {
	return &CategoryStore{
		CategoriesFile: categoriesFile,
		logger:         logging.OrDefault(logger),
	}
}

// FindConfigFile looks for filename as given, under ./config and under
// $HOME/.stmtcat.
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".stmtcat", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

type categoriesFile struct {
	Categories []models.Category `yaml:"categories"`
}

// LoadCategories reads the category file. It accepts either a top-level
// "categories:" list or a bare list. No configured or existing file yields
// nil without error, meaning the built-in table applies.
func (s *CategoryStore) LoadCategories() ([]models.Category, error) {
	if s.CategoriesFile == "" {
		return nil, nil
	}

	path, err := s.FindConfigFile(s.CategoriesFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Categories file not found, using built-in categories",
				logging.F(logging.FieldFile, s.CategoriesFile))
			return nil, nil
		}
		return nil, fmt.Errorf("error resolving categories file: %w", err)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("error reading categories file: %w", err)
	}

	var wrapped categoriesFile
	if err := yaml.Unmarshal(data, &wrapped); err == nil && len(wrapped.Categories) > 0 {
		s.logger.Debug("Loaded categories", logging.F(logging.FieldFile, path), logging.F(logging.FieldCount, len(wrapped.Categories)))
		return wrapped.Categories, nil
	}

	var list []models.Category
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("error parsing categories file %s: %w", path, err)
	}
	s.logger.Debug("Loaded categories", logging.F(logging.FieldFile, path), logging.F(logging.FieldCount, len(list)))
	return list, nil
}
