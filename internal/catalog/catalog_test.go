package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThemeDescriptionKnown(t *testing.T) {
	c := New()
	assert.Equal(t, "Fraud, scam, or rugpull accusations", c.ThemeDescription("scam_accusations"))
	assert.True(t, c.KnownTheme("scam_accusations"))
}

func TestThemeDescriptionHumanizesUnknown(t *testing.T) {
	c := New()
	assert.Equal(t, "Some New Theme", c.ThemeDescription("some_new_theme"))
	assert.False(t, c.KnownTheme("some_new_theme"))
}

func TestAlertCategoryPatternBeatsTheme(t *testing.T) {
	c := New()
	// The pattern table is more specific than the theme table.
	got := c.AlertCategory("scam_accusations", []string{"slippage"})
	assert.Equal(t, "[EXECUTION]", got)
}

func TestAlertCategoryFallsBackToTheme(t *testing.T) {
	c := New()
	got := c.AlertCategory("scam_accusations", []string{"not_a_pattern"})
	assert.Equal(t, "[SCAM]", got)
}

func TestAlertCategoryGeneralFallback(t *testing.T) {
	c := New()
	assert.Equal(t, CategoryGeneral, c.AlertCategory("roi_confirmation", nil))
}

func TestProductsCopyIsIsolated(t *testing.T) {
	c := New()
	products := c.Products()
	assert.Len(t, products, 5)
	products[0].Label = "mutated"
	assert.Equal(t, "Mobile App", c.Products()[0].Label)
}

func TestKnownProduct(t *testing.T) {
	c := New()
	assert.True(t, c.KnownProduct("trading"))
	assert.False(t, c.KnownProduct("derivatives"))
}
