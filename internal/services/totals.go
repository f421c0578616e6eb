package services

import (
	"github.com/diewo77/invoice-editor/internal/money"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// LineItem holds the four inputs of one invoice line. Percentages are in
// the 0..100 range (20 = 20%).
type LineItem struct {
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	VATPercent      decimal.Decimal
	DiscountPercent decimal.Decimal
}

// Totals are the document-level amounts of an invoice.
type Totals struct {
	TotalHT  decimal.Decimal `json:"total_ht"`
	TotalVAT decimal.Decimal `json:"total_tva"`
	TotalTTC decimal.Decimal `json:"total_ttc"`
}

// Fields returns the hidden submission fields, two fraction digits each.
func (t Totals) Fields() map[string]string {
	return map[string]string{
		"total_ht":  money.Fixed(t.TotalHT),
		"total_tva": money.Fixed(t.TotalVAT),
		"total_ttc": money.Fixed(t.TotalTTC),
	}
}

// ComputeLineTotal returns the pre-tax total of a line. A zero discount
// leaves quantity*unitPrice untouched; nothing is rounded here.
func ComputeLineTotal(quantity, unitPrice, discountPercent decimal.Decimal) decimal.Decimal {
	total := quantity.Mul(unitPrice)
	if discountPercent.IsPositive() {
		total = total.Mul(one.Sub(money.Percent(discountPercent)))
	}
	return total
}

// LineTotal is ComputeLineTotal applied to l.
func (l LineItem) LineTotal() decimal.Decimal {
	return ComputeLineTotal(l.Quantity, l.UnitPrice, l.DiscountPercent)
}

// ComputeInvoiceTotals sums line totals and line VAT in slice order, then
// applies the global discount. The discount reduces the aggregate VAT by
// the same ratio as the pre-tax total instead of recomputing it per rate,
// which only equals the per-rate result when every line shares one rate.
func ComputeInvoiceTotals(lines []LineItem, globalDiscountPercent decimal.Decimal) Totals {
	totalHT := decimal.Zero
	totalVAT := decimal.Zero
	for _, l := range lines {
		lineHT := l.LineTotal()
		totalHT = totalHT.Add(lineHT)
		totalVAT = totalVAT.Add(lineHT.Mul(money.Percent(l.VATPercent)))
	}

	if globalDiscountPercent.IsPositive() {
		ratio := money.Percent(globalDiscountPercent)
		totalHT = totalHT.Sub(totalHT.Mul(ratio))
		totalVAT = totalVAT.Mul(one.Sub(ratio))
	}

	return Totals{
		TotalHT:  totalHT,
		TotalVAT: totalVAT,
		TotalTTC: totalHT.Add(totalVAT),
	}
}
