package route_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/route"
)

func TestDerive(t *testing.T) {
	byID := route.Config{ReservedCategoryWord: "category"}
	byName := route.Config{UseCategoryName: true, ReservedCategoryWord: "category"}

	tests := []struct {
		name     string
		path     string
		cfg      route.Config
		want     map[string]string
		category bool
	}{
		{"year and month", "2024/05", byID, map[string]string{"year": "2024", "month": "05"}, false},
		{"full date", "/2024/05/17/", byID, map[string]string{"year": "2024", "month": "05", "day": "17"}, false},
		{"entry id", "42", byID, map[string]string{"entry_id": "42"}, false},
		{"entry id after segments", "blog/view/42", byID, map[string]string{"entry_id": "42"}, false},
		{"url title", "news", byID, map[string]string{"url_title": "news"}, false},
		{"category id", "C7", byID, map[string]string{"category_id": "7"}, true},
		{"category id nested", "blog/C12", byID, map[string]string{"category_id": "12"}, true},
		{"category id ignored in name mode", "C7", byName, map[string]string{"url_title": "C7"}, false},
		{"category name", "blog/category/recipes", byName, map[string]string{"category_name": "recipes"}, true},
		{"reserved word ignored in id mode", "category/recipes", byID, map[string]string{"url_title": "recipes"}, false},
		{"date wins over numeric", "2024/05/01", byID, map[string]string{"year": "2024", "month": "05", "day": "01"}, false},
		{"numeric wins over category name", "category/42", byName, map[string]string{"entry_id": "42"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := route.Derive(tt.path, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Values)
			assert.Equal(t, tt.category, got.CategoryRequest)
			assert.False(t, got.SingleEntry)
			assert.True(t, got.Dynamic)
		})
	}
}

func TestDerive_EmptyPath(t *testing.T) {
	got, err := route.Derive("/", route.Config{})
	require.NoError(t, err)
	assert.True(t, got.Empty())

	_, err = route.RequireMatch(route.Derive("", route.Config{}))
	assert.ErrorIs(t, err, core.ErrNoMatch)
}

func TestDerive_RelatedCategoriesMode(t *testing.T) {
	cfg := route.Config{RelatedCategoriesMode: true}

	t.Run("numeric segment looks up by id", func(t *testing.T) {
		got, err := route.Derive("blog/42", cfg)
		require.NoError(t, err)
		assert.True(t, got.SingleEntry)
		assert.False(t, got.Dynamic)
		assert.Equal(t, map[string]string{"related_entry_id": "42"}, got.Values)
	})

	t.Run("fallback looks up by title", func(t *testing.T) {
		got, err := route.Derive("blog/hello-world", cfg)
		require.NoError(t, err)
		assert.True(t, got.SingleEntry)
		assert.Equal(t, map[string]string{"related_url_title": "hello-world"}, got.Values)
	})

	t.Run("category path is not a single entry", func(t *testing.T) {
		_, err := route.Derive("C7", cfg)
		assert.ErrorIs(t, err, core.ErrNoMatch)
	})

	t.Run("date path is not a single entry", func(t *testing.T) {
		_, err := route.Derive("2024/05", cfg)
		assert.ErrorIs(t, err, core.ErrNoMatch)
	})
}

func TestStripPagination(t *testing.T) {
	tests := []struct {
		in     string
		path   string
		offset int
	}{
		{"/blog/P20", "/blog", 20},
		{"/blog/P20/", "/blog", 20},
		{"P5", "", 5},
		{"/blog/C7", "/blog/C7", 0},
		{"/blog/Pasta", "/blog/Pasta", 0},
	}
	for _, tt := range tests {
		path, offset := route.StripPagination(tt.in)
		assert.Equal(t, tt.path, path, tt.in)
		assert.Equal(t, tt.offset, offset, tt.in)
	}
}
