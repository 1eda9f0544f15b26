package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorobanhub/registry/internal/common"
	"github.com/sorobanhub/registry/internal/model"
)

func validItem(id string) model.ChecklistItem {
	return model.ChecklistItem{
		ID:          id,
		Category:    model.CategoryReentrancy,
		Title:       "No external calls before state updates",
		Description: "Calls out before persisting state let the callee re-enter.",
		Severity:    model.SeverityHigh,
		Detection: model.DetectionMethod{
			Type:     model.DetectionAutomatic,
			Patterns: []string{"external_call_before_state_update"},
		},
		Remediation: "Persist state before invoking.",
	}
}

func TestLoad_EmbeddedCatalog(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)
	require.NotZero(t, cat.Len())

	// Every category has at least one item.
	for _, category := range model.Categories {
		assert.NotEmpty(t, cat.ByCategory(category), "category %s has no items", category)
	}

	item, err := cat.Get("reentrancy-001")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryReentrancy, item.Category)
	assert.Equal(t, model.SeverityHigh, item.Severity)
	assert.Equal(t, model.DetectionAutomatic, item.Detection.Type)
	assert.Equal(t, []string{"external_call_before_state_update"}, item.Detection.Patterns)
}

func TestNew_IntegrityViolations(t *testing.T) {
	tests := []struct {
		mutate  func(item *model.ChecklistItem)
		name    string
		empty   bool
		dup     bool
		wantErr bool
	}{
		{
			name:    "valid item",
			wantErr: false,
		},
		{
			name:    "empty catalog",
			empty:   true,
			wantErr: true,
		},
		{
			name:    "duplicate id",
			dup:     true,
			wantErr: true,
		},
		{
			name:    "empty id",
			mutate:  func(item *model.ChecklistItem) { item.ID = "" },
			wantErr: true,
		},
		{
			name:    "unknown category",
			mutate:  func(item *model.ChecklistItem) { item.Category = "black_magic" },
			wantErr: true,
		},
		{
			name:    "unknown severity",
			mutate:  func(item *model.ChecklistItem) { item.Severity = "apocalyptic" },
			wantErr: true,
		},
		{
			name: "automatic item without patterns",
			mutate: func(item *model.ChecklistItem) {
				item.Detection = model.DetectionMethod{Type: model.DetectionAutomatic}
			},
			wantErr: true,
		},
		{
			name: "semi-automatic item without patterns",
			mutate: func(item *model.ChecklistItem) {
				item.Detection = model.DetectionMethod{Type: model.DetectionSemiAutomatic}
			},
			wantErr: true,
		},
		{
			name: "manual item with patterns",
			mutate: func(item *model.ChecklistItem) {
				item.Detection = model.DetectionMethod{
					Type:     model.DetectionManual,
					Patterns: []string{"leftover"},
				}
			},
			wantErr: true,
		},
		{
			name: "pattern does not compile",
			mutate: func(item *model.ChecklistItem) {
				item.Detection.Patterns = []string{"unclosed("}
			},
			wantErr: true,
		},
		{
			name: "unknown detection type",
			mutate: func(item *model.ChecklistItem) {
				item.Detection = model.DetectionMethod{Type: "psychic"}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var items []model.ChecklistItem
			switch {
			case tt.empty:
			case tt.dup:
				items = []model.ChecklistItem{validItem("r-1"), validItem("r-1")}
			default:
				item := validItem("r-1")
				if tt.mutate != nil {
					tt.mutate(&item)
				}
				items = []model.ChecklistItem{item}
			}

			cat, err := New(items)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrCatalogIntegrity)
				assert.Nil(t, cat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(items), cat.Len())
		})
	}
}

func TestCatalog_Lookup(t *testing.T) {
	first := validItem("r-1")
	second := validItem("r-2")
	second.Severity = model.SeverityCritical
	third := validItem("a-1")
	third.Category = model.CategoryAccessControl

	cat, err := New([]model.ChecklistItem{first, second, third})
	require.NoError(t, err)

	t.Run("get returns the item", func(t *testing.T) {
		item, err := cat.Get("r-2")
		require.NoError(t, err)
		assert.Equal(t, model.SeverityCritical, item.Severity)
	})

	t.Run("get unknown id is not found", func(t *testing.T) {
		_, err := cat.Get("missing")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("has", func(t *testing.T) {
		assert.True(t, cat.Has("a-1"))
		assert.False(t, cat.Has("missing"))
	})

	t.Run("by category preserves definition order", func(t *testing.T) {
		items := cat.ByCategory(model.CategoryReentrancy)
		require.Len(t, items, 2)
		assert.Equal(t, "r-1", items[0].ID)
		assert.Equal(t, "r-2", items[1].ID)
	})

	t.Run("items returns a copy", func(t *testing.T) {
		items := cat.Items()
		items[0].ID = "mutated"
		fresh, err := cat.Get("r-1")
		require.NoError(t, err)
		assert.Equal(t, "r-1", fresh.ID)
	})
}
