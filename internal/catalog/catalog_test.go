package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurveFactor_Profiles(t *testing.T) {
	noon := 12 * 60
	midnight := 0

	assert.Equal(t, 1.0, CurveFlat.Factor(noon))
	assert.Equal(t, 1.0, CurveFlat.Factor(midnight))

	assert.Greater(t, CurveWork.Factor(noon), CurveWork.Factor(midnight))
	assert.Greater(t, CurveOffHours.Factor(midnight), CurveOffHours.Factor(noon))
	assert.Greater(t, CurveMorning.Factor(8*60), CurveMorning.Factor(20*60))
	assert.Greater(t, CurveEvening.Factor(20*60), CurveEvening.Factor(8*60))

	// Unknown curves behave as flat.
	assert.Equal(t, 1.0, Curve("bogus").Factor(noon))
}

func TestCurveFactor_AlwaysPositive(t *testing.T) {
	curves := []Curve{CurveFlat, CurveWork, CurveMorning, CurveEvening, CurveOffHours}
	for _, c := range curves {
		for minute := 0; minute < 1440; minute += 15 {
			assert.Greater(t, c.Factor(minute), 0.0, "curve %s at minute %d", c, minute)
		}
	}
}

func TestSellableProducts_FiltersOffered(t *testing.T) {
	cat := Default()
	sellable := cat.SellableProducts()
	require.NotEmpty(t, sellable)
	for _, p := range sellable {
		assert.True(t, p.Sellable)
	}
	assert.Less(t, len(sellable), len(cat.Products), "default catalog keeps one retired product")
}

func TestDefault_TemplatesReferenceSellableSKUs(t *testing.T) {
	cat := Default()
	offered := make(map[string]bool)
	for _, p := range cat.SellableProducts() {
		offered[p.SKU] = true
	}
	for _, tpl := range cat.Orders {
		require.NotEmpty(t, tpl.LineItems, "template %s", tpl.ID)
		for _, li := range tpl.LineItems {
			assert.True(t, offered[li.SKU], "template %s references unsellable sku %s", tpl.ID, li.SKU)
		}
	}
}

func TestLoadFile_ParsesTemplates(t *testing.T) {
	raw := `
messages:
  - id: msg-test
    type: email
    weight: 5
    subject: hello
    time_of_day: work
    weekend_factor: 0.5
orders:
  - id: ord-test
    weight: 2
    customer: someone
    line_items:
      - sku: thing-1
        quantity: 2
    time_of_day: morning
products:
  - sku: thing-1
    name: Thing
    price: 12.5
    sellable: true
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	cat, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cat.Messages, 1)
	assert.Equal(t, CurveWork, cat.Messages[0].TimeOfDay)
	require.Len(t, cat.Orders, 1)
	assert.Equal(t, 2, cat.Orders[0].LineItems[0].Quantity)
	require.Len(t, cat.Products, 1)
	assert.Equal(t, 12.5, cat.Products[0].Price)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
