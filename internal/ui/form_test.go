package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/stockroom/internal/api"
)

var testCategories = []api.Category{{ID: 1, Name: "Fasteners"}, {ID: 2, Name: "Tools"}}

func TestBuildCategoryInput(t *testing.T) {
	in, err := buildCategoryInput([]string{"  Paint "})
	require.NoError(t, err)
	assert.Equal(t, api.CategoryInput{Name: "Paint"}, in)

	_, err = buildCategoryInput([]string{"   "})
	assert.EqualError(t, err, "name is required")
}

func TestBuildProductInput(t *testing.T) {
	in, err := buildProductInput([]string{"Hammer", "tools", "TL-1", "$14.50", "3", " steel "}, testCategories)
	require.NoError(t, err)
	assert.Equal(t, api.ProductInput{Name: "Hammer", CategoryID: 2, SKU: "TL-1", Price: 14.5, Qty: 3, Description: "steel"}, in)

	in, err = buildProductInput([]string{"Hammer", "#7", "TL-1", "1", "0", ""}, testCategories)
	require.NoError(t, err)
	assert.Equal(t, int64(7), in.CategoryID)

	cases := []struct {
		name   string
		values []string
		want   string
	}{
		{"missing name", []string{"", "1", "S", "1", "1", ""}, "name is required"},
		{"unknown category", []string{"X", "Paint", "S", "1", "1", ""}, `unknown category "Paint"`},
		{"missing sku", []string{"X", "1", " ", "1", "1", ""}, "sku is required"},
		{"bad price", []string{"X", "1", "S", "abc", "1", ""}, "price must be a number"},
		{"negative price", []string{"X", "1", "S", "-1", "1", ""}, "price must not be negative"},
		{"fractional qty", []string{"X", "1", "S", "1", "1.5", ""}, "qty must be a whole number"},
		{"missing qty", []string{"X", "1", "S", "1", "", ""}, "qty is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := buildProductInput(tc.values, testCategories)
			assert.EqualError(t, err, tc.want)
		})
	}
}

func TestBuildLineInputComputesTotal(t *testing.T) {
	in, err := buildLineInput([]string{"Bolts", "40", "0.5"})
	require.NoError(t, err)
	assert.Equal(t, "Bolts", in.Item)
	assert.Equal(t, 40, in.Qty)
	assert.InDelta(t, 20.0, in.Total, 1e-9)

	_, err = buildLineInput([]string{"Bolts", "0", "1"})
	assert.EqualError(t, err, "qty must be at least 1")
	_, err = buildLineInput([]string{"", "1", "1"})
	assert.EqualError(t, err, "item is required")
}

func TestResolveCategory(t *testing.T) {
	id, err := resolveCategory("FASTENERS", testCategories)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = resolveCategory("nails", testCategories)
	assert.True(t, errors.Is(err, errUnknownCategory))

	_, err = resolveCategory("", nil)
	assert.EqualError(t, err, "category is required")
}

func TestLinePreview(t *testing.T) {
	assert.Equal(t, "Total $43.50", linePreview([]string{"x", "3", "14.5"}))
	assert.Equal(t, "", linePreview([]string{"x", "three", "14.5"}))
}

func TestFormFocusAndSubmit(t *testing.T) {
	views := resourceViews()
	f := newForm(views[tabSales], 0, views[tabSales].fields(nil, emptySnapshot(), 0))
	assert.Equal(t, "Add sale", f.title)
	assert.Equal(t, 0, f.focus)

	f, _, submit := f.update(keyMsg("enter"))
	assert.False(t, submit)
	assert.Equal(t, 1, f.focus)

	f, _, _ = f.update(keyMsg("shift+tab"))
	f, _, _ = f.update(keyMsg("shift+tab"))
	assert.Equal(t, 2, f.focus, "focus wraps backwards")

	_, _, submit = f.update(keyMsg("enter"))
	assert.True(t, submit, "enter on the last field submits")
}
