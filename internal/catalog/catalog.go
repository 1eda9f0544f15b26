// Package catalog holds the static security checklist shared by every audit.
// The catalog is loaded once at process start from the embedded definition
// and is immutable afterwards; its item set defines the universe of checks
// for every audit created while it is live.
package catalog

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/sorobanhub/registry/internal/common"
	"github.com/sorobanhub/registry/internal/model"
)

//go:embed checklist.yaml
var checklistYAML []byte

// Catalog is the immutable, ordered set of checklist items. Safe for
// concurrent use; nothing mutates it after construction.
type Catalog struct {
	byID  map[string]model.ChecklistItem
	items []model.ChecklistItem
}

// Load parses the embedded checklist definition. Any integrity violation is
// fatal: the process must refuse to start rather than audit against a broken
// catalog.
func Load() (*Catalog, error) {
	var def struct {
		Items []model.ChecklistItem `yaml:"items"`
	}
	if err := yaml.Unmarshal(checklistYAML, &def); err != nil {
		return nil, fmt.Errorf("%w: parsing embedded checklist: %v", common.ErrCatalogIntegrity, err)
	}
	return New(def.Items)
}

// New builds a catalog from the given items, checking every integrity
// invariant eagerly: unique ids, known categories and severities, non-empty
// compilable pattern lists on pattern-based items, no patterns on manual ones.
func New(items []model.ChecklistItem) (*Catalog, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: checklist has no items", common.ErrCatalogIntegrity)
	}

	byID := make(map[string]model.ChecklistItem, len(items))
	for _, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("%w: item with empty id", common.ErrCatalogIntegrity)
		}
		if _, dup := byID[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %q", common.ErrCatalogIntegrity, item.ID)
		}
		if !item.Category.Valid() {
			return nil, fmt.Errorf("%w: item %q has unknown category %q", common.ErrCatalogIntegrity, item.ID, item.Category)
		}
		if !item.Severity.Valid() {
			return nil, fmt.Errorf("%w: item %q has unknown severity %q", common.ErrCatalogIntegrity, item.ID, item.Severity)
		}

		switch item.Detection.Type {
		case model.DetectionAutomatic, model.DetectionSemiAutomatic:
			if len(item.Detection.Patterns) == 0 {
				return nil, fmt.Errorf("%w: %s item %q has no patterns", common.ErrCatalogIntegrity, item.Detection.Type, item.ID)
			}
			for _, p := range item.Detection.Patterns {
				if _, err := regexp.Compile(p); err != nil {
					return nil, fmt.Errorf("%w: item %q pattern %q: %v", common.ErrCatalogIntegrity, item.ID, p, err)
				}
			}
		case model.DetectionManual:
			if len(item.Detection.Patterns) > 0 {
				return nil, fmt.Errorf("%w: manual item %q carries patterns", common.ErrCatalogIntegrity, item.ID)
			}
		default:
			return nil, fmt.Errorf("%w: item %q has unknown detection type %q", common.ErrCatalogIntegrity, item.ID, item.Detection.Type)
		}

		byID[item.ID] = item
	}

	return &Catalog{
		items: items,
		byID:  byID,
	}, nil
}

// Items returns every checklist item in catalog order.
func (c *Catalog) Items() []model.ChecklistItem {
	out := make([]model.ChecklistItem, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the item with the given id.
func (c *Catalog) Get(id string) (model.ChecklistItem, error) {
	item, ok := c.byID[id]
	if !ok {
		return model.ChecklistItem{}, fmt.Errorf("%w: checklist item %q", common.ErrNotFound, id)
	}
	return item, nil
}

// Has reports whether an item with the given id exists.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// ByCategory returns the items in the given category, in catalog order.
func (c *Catalog) ByCategory(category model.CheckCategory) []model.ChecklistItem {
	var out []model.ChecklistItem
	for _, item := range c.items {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}

// Len returns the number of items in the catalog.
func (c *Catalog) Len() int {
	return len(c.items)
}
