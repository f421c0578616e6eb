package form

import (
	"github.com/diewo77/invoice-editor/i18n"
	"github.com/diewo77/invoice-editor/internal/catalog"
	"github.com/shopspring/decimal"
)

// StockWarning is the stock state of a row for its quantity.
type StockWarning string

const (
	StockOK           StockWarning = "ok"
	StockLast         StockWarning = "last"         // informational
	StockInsufficient StockWarning = "insufficient" // blocks submission until confirmed
)

// Blocking reports whether the warning needs confirmation before submit.
func (w StockWarning) Blocking() bool {
	return w == StockInsufficient
}

// CheckStock compares a quantity with the stock of a product. Products that
// are not stock-managed never warn.
func CheckStock(p catalog.Entry, qty decimal.Decimal) StockWarning {
	if !p.StockManaged || p.Stock == nil {
		return StockOK
	}
	stock := decimal.NewFromInt(int64(*p.Stock))
	switch {
	case qty.GreaterThan(stock):
		return StockInsufficient
	case qty.Equal(stock):
		return StockLast
	default:
		return StockOK
	}
}

// stockOf returns the warning of l and its localized message.
func (c *Controller) stockOf(l *Line) (StockWarning, string) {
	p, ok := c.product(l)
	if !ok {
		return StockOK, ""
	}
	switch w := CheckStock(p, quantity(l)); w {
	case StockInsufficient:
		return w, i18n.T(c.lang, "stock_insufficient", *p.Stock)
	case StockLast:
		return w, i18n.T(c.lang, "stock_last", *p.Stock)
	default:
		return w, ""
	}
}

// NeedsStockConfirmation reports whether any row asks for more than the
// available stock.
func (c *Controller) NeedsStockConfirmation() bool {
	for _, l := range c.lines {
		if w, _ := c.stockOf(l); w.Blocking() {
			return true
		}
	}
	return false
}
