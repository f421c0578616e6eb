package form

import (
	"testing"

	"github.com/diewo77/invoice-editor/internal/catalog"
	"github.com/diewo77/invoice-editor/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testCatalog() []catalog.Entry {
	return []catalog.Entry{
		{ID: 1, Reference: "PLT-001", Designation: "Plateau Mezze", PriceHT: dec("45"), VATPercent: dec("10"), StockManaged: true, Stock: ptr(3)},
		{ID: 2, Reference: "SERV-003", Designation: "Livraison", PriceHT: dec("10"), VATPercent: dec("20")},
		{ID: 3, Designation: "Houmous", PriceHT: dec("8.5"), VATPercent: dec("5.5"), StockManaged: true, Stock: ptr(0)},
	}
}

func assertTotals(t *testing.T, c *Controller, ht, vat, ttc string) {
	t.Helper()
	assert.Equal(t, map[string]string{"total_ht": ht, "total_tva": vat, "total_ttc": ttc}, c.Totals().Fields())
}

func TestNew_CreationModeStartsWithOneLine(t *testing.T) {
	c := New(testCatalog())
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].ID)
	assert.Nil(t, lines[0].ProductID)
	assert.Equal(t, "1", lines[0].Quantity)
	assert.Equal(t, "0.00", lines[0].UnitPrice)
	assert.Equal(t, "20.00", lines[0].VATRate)
	assert.Equal(t, "0", lines[0].Discount)
	assertTotals(t, c, "0.00", "0.00", "0.00")
}

func TestNew_EditModeLoadsExistingLines(t *testing.T) {
	c := New(testCatalog(),
		Line{ProductID: ptr(uint(1)), Designation: "PLT-001 - Plateau Mezze", Quantity: "2", UnitPrice: "45.00", VATRate: "10.00", Discount: "0"},
		Line{ProductID: ptr(uint(2)), Designation: "SERV-003 - Livraison", Quantity: "1", UnitPrice: "10.00", VATRate: "20.00", Discount: "0"},
	)
	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, []int{1, 2}, []int{lines[0].ID, lines[1].ID})
	assertTotals(t, c, "100.00", "11.00", "111.00")

	assert.Equal(t, 3, c.AddLine())
}

func TestLinesFromInvoice(t *testing.T) {
	lines := LinesFromInvoice([]models.InvoiceItem{
		{ProductID: ptr(uint(1)), Designation: "PLT-001 - Plateau Mezze", Quantity: dec("2"), UnitPrice: dec("45"), VATPercent: dec("10"), Discount: dec("5")},
	})
	require.Len(t, lines, 1)
	assert.Equal(t, "2", lines[0].Quantity)
	assert.Equal(t, "45.00", lines[0].UnitPrice)
	assert.Equal(t, "10.00", lines[0].VATRate)
	assert.Equal(t, "5", lines[0].Discount)

	c := New(testCatalog(), lines...)
	assertTotals(t, c, "85.50", "8.55", "94.05")
}

func TestRemoveLine_KeepsAtLeastOneLine(t *testing.T) {
	c := New(testCatalog())
	second := c.AddLine()
	require.NoError(t, c.RemoveLine(1))
	require.Len(t, c.Lines(), 1)
	assert.Equal(t, second, c.Lines()[0].ID)

	require.NoError(t, c.RemoveLine(second))
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].ID, "row ids are never reused")
	assert.Equal(t, DefaultQuantity, lines[0].Quantity)

	assert.ErrorIs(t, c.RemoveLine(42), ErrLineNotFound)
}

func TestSelectProduct_FillsFields(t *testing.T) {
	c := New(testCatalog())
	require.NoError(t, c.SelectProduct(1, 1))

	l := c.Lines()[0]
	require.NotNil(t, l.ProductID)
	assert.Equal(t, uint(1), *l.ProductID)
	assert.Equal(t, "45.00", l.UnitPrice)
	assert.Equal(t, "10.00", l.VATRate)
	assert.Equal(t, "PLT-001 - Plateau Mezze", l.Designation)
	assertTotals(t, c, "45.00", "4.50", "49.50")

	require.NoError(t, c.SelectProduct(1, 3))
	assert.Equal(t, "Houmous", c.Lines()[0].Designation)
	assert.Equal(t, "5.50", c.Lines()[0].VATRate)
}

func TestSelectProduct_ClearKeepsFields(t *testing.T) {
	c := New(testCatalog())
	require.NoError(t, c.SelectProduct(1, 2))
	require.NoError(t, c.SelectProduct(1, 0))

	l := c.Lines()[0]
	assert.Nil(t, l.ProductID)
	assert.Equal(t, "10.00", l.UnitPrice)
	assertTotals(t, c, "10.00", "2.00", "12.00")
}

func TestSelectProduct_Errors(t *testing.T) {
	c := New(testCatalog())
	assert.ErrorIs(t, c.SelectProduct(1, 99), ErrUnknownProduct)
	assert.ErrorIs(t, c.SelectProduct(7, 1), ErrLineNotFound)
}

func TestEdits_RecomputeTotals(t *testing.T) {
	c := New(testCatalog())
	require.NoError(t, c.SelectProduct(1, 2))
	require.NoError(t, c.SetQuantity(1, "2"))
	assertTotals(t, c, "20.00", "4.00", "24.00")

	require.NoError(t, c.SetDiscount(1, "10"))
	assertTotals(t, c, "18.00", "3.60", "21.60")

	second := c.AddLine()
	require.NoError(t, c.SetUnitPrice(second, "100"))
	require.NoError(t, c.SetVATRate(second, "10"))
	require.NoError(t, c.SetDiscount(1, "0"))
	c.SetGlobalDiscount("10")
	// (20 + 100) * 0.9 and (4 + 10) * 0.9
	assertTotals(t, c, "108.00", "12.60", "120.60")

	c.SetGlobalDiscount("100")
	assertTotals(t, c, "0.00", "0.00", "0.00")

	assert.ErrorIs(t, c.SetQuantity(99, "1"), ErrLineNotFound)
}

func TestEdits_FailOpenParsing(t *testing.T) {
	c := New(testCatalog())
	require.NoError(t, c.SetUnitPrice(1, "12,50"))
	require.NoError(t, c.SetQuantity(1, "2 pièces"))
	assertTotals(t, c, "25.00", "5.00", "30.00")

	require.NoError(t, c.SetQuantity(1, "abc"))
	assertTotals(t, c, "0.00", "0.00", "0.00")
	assert.Equal(t, "abc", c.Lines()[0].Quantity, "raw text is kept")

	require.NoError(t, c.SetQuantity(1, "1"))
	c.SetGlobalDiscount("")
	assertTotals(t, c, "12.50", "2.50", "15.00")
}

func TestOnRecalculate(t *testing.T) {
	c := New(testCatalog())
	calls := 0
	c.OnRecalculate(func() { calls++ })

	c.AddLine()
	require.NoError(t, c.SetQuantity(1, "3"))
	require.NoError(t, c.RemoveLine(2))
	c.SetGlobalDiscount("5")
	assert.Equal(t, 4, calls)
}

func TestSnapshot(t *testing.T) {
	c := New(testCatalog())
	require.NoError(t, c.SelectProduct(1, 1))
	require.NoError(t, c.SetQuantity(1, "2"))

	v := c.Snapshot()
	require.Len(t, v.Lines, 1)
	row := v.Lines[0]
	assert.Equal(t, "90.00", row.TotalHT)
	assert.Contains(t, row.TotalDisplay, "90,00")
	assert.Equal(t, StockOK, row.Stock)
	assert.Empty(t, row.StockMessage)
	assert.Equal(t, "99.00", v.Fields["total_ttc"])
	assert.Contains(t, v.Display.TotalTTC, "99,00")
	assert.False(t, v.StockConfirmation)

	c.SetLang("en")
	assert.Contains(t, c.Snapshot().Display.TotalTTC, "99.00")
}
