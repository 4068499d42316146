// Package registry holds the category registry: the static table of category
// definitions the classifier matches against.
package registry

import (
	"fmt"
	"strings"

	"fjacquet/statement-categorizer/internal/models"
)

// Registry is an immutable, ordered set of categories with unique names.
type Registry struct {
	categories []models.Category
	byName     map[string]int
}

// New validates and indexes categories. Names must be non-empty and unique
// ignoring case; keywords are lower-cased and blanks dropped.
func New(categories []models.Category) (*Registry, error) {
	r := &Registry{
		categories: make([]models.Category, 0, len(categories)),
		byName:     make(map[string]int, len(categories)),
	}

	for i, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("category #%d has no name", i)
		}
		key := strings.ToLower(name)
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("duplicate category name %q", name)
		}

		cat := models.Category{
			ID:       c.ID,
			Name:     name,
			MCCCodes: append([]int(nil), c.MCCCodes...),
		}
		if cat.ID == "" {
			cat.ID = slug(name)
		}
		for _, kw := range c.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				cat.Keywords = append(cat.Keywords, kw)
			}
		}

		r.byName[key] = len(r.categories)
		r.categories = append(r.categories, cat)
	}

	return r, nil
}

// Default returns the built-in registry.
func Default() *Registry {
	r, err := New(defaultCategories)
	if err != nil {
		panic(fmt.Sprintf("built-in category table is invalid: %v", err))
	}
	return r
}

// Categories returns the categories in registry order. Callers must not
// modify the returned slice.
func (r *Registry) Categories() []models.Category {
	return r.categories
}

// Names returns the category names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.categories))
	for i, c := range r.categories {
		names[i] = c.Name
	}
	return names
}

// Lookup finds a category by name, ignoring case.
func (r *Registry) Lookup(name string) (models.Category, bool) {
	i, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return models.Category{}, false
	}
	return r.categories[i], true
}

// Canonical returns the registered spelling of name.
func (r *Registry) Canonical(name string) (string, bool) {
	c, ok := r.Lookup(name)
	return c.Name, ok
}

// ByMCC returns the first category whose code set contains code.
func (r *Registry) ByMCC(code int) (models.Category, bool) {
	if code <= 0 {
		return models.Category{}, false
	}
	for _, c := range r.categories {
		if c.HasMCC(code) {
			return c, true
		}
	}
	return models.Category{}, false
}

// Len returns the number of categories.
func (r *Registry) Len() int {
	return len(r.categories)
}

func slug(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, ch := range strings.ToLower(name) {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			b.WriteRune(ch)
			lastUnderscore = false
		case !lastUnderscore && b.Len() > 0:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
