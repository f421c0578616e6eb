// Package form implements the server side of the invoice line editor. A
// Controller owns the rows of one form and recomputes the totals after
// every edit.
package form

import (
	"errors"
	"time"

	"github.com/diewo77/invoice-editor/i18n"
	"github.com/diewo77/invoice-editor/internal/catalog"
	"github.com/diewo77/invoice-editor/internal/models"
	"github.com/diewo77/invoice-editor/internal/money"
	"github.com/diewo77/invoice-editor/internal/services"
	"github.com/shopspring/decimal"
)

var (
	ErrLineNotFound   = errors.New("line not found")
	ErrUnknownProduct = errors.New("unknown product")
)

// Defaults of a freshly added row.
const (
	DefaultQuantity  = "1"
	DefaultUnitPrice = "0.00"
	DefaultVATRate   = "20.00"
	DefaultDiscount  = "0"
)

// Line is one row of the form. Numeric fields keep the text as typed; they
// are parsed only when totals are computed.
type Line struct {
	ID          int
	ProductID   *uint
	Designation string
	Quantity    string
	UnitPrice   string
	VATRate     string
	Discount    string
}

func (l *Line) item() services.LineItem {
	return services.LineItem{
		Quantity:        money.Parse(l.Quantity),
		UnitPrice:       money.Parse(l.UnitPrice),
		VATPercent:      money.Parse(l.VATRate),
		DiscountPercent: money.Parse(l.Discount),
	}
}

// LinesFromInvoice rebuilds form rows from stored invoice items.
func LinesFromInvoice(items []models.InvoiceItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{
			ProductID:   it.ProductID,
			Designation: it.Designation,
			Quantity:    it.Quantity.String(),
			UnitPrice:   money.Fixed(it.UnitPrice),
			VATRate:     money.Fixed(it.VATPercent),
			Discount:    it.Discount.String(),
		})
	}
	return lines
}

// Controller holds the state of one invoice form. It is not safe for
// concurrent use; Store serializes access per form.
type Controller struct {
	products       map[uint]catalog.Entry
	lines          []*Line
	counter        int
	globalDiscount string
	lang           string
	totals         services.Totals
	onRecalculate  func()
	invoiceID      uint
	header         *Header
}

// New starts a form over a catalog snapshot. With existing rows the form is
// in edit mode and loads them as is; otherwise it starts with one blank row.
func New(products []catalog.Entry, existing ...Line) *Controller {
	c := &Controller{
		products:       make(map[uint]catalog.Entry, len(products)),
		globalDiscount: DefaultDiscount,
		lang:           i18n.DefaultLang,
	}
	for _, p := range products {
		c.products[p.ID] = p
	}
	for _, l := range existing {
		c.counter++
		row := l
		row.ID = c.counter
		c.lines = append(c.lines, &row)
	}
	if len(c.lines) == 0 {
		c.AddLine()
		return c
	}
	c.recalculate()
	return c
}

// SetLang selects the language of stock messages and display amounts.
func (c *Controller) SetLang(lang string) {
	c.lang = i18n.Normalize(lang)
}

// EditInvoice marks the form as editing inv. Its global discount is loaded
// and its header becomes the base of the submission.
func (c *Controller) EditInvoice(inv *models.Invoice) {
	c.invoiceID = inv.ID
	h := HeaderFromInvoice(inv)
	c.header = &h
	c.SetGlobalDiscount(inv.GlobalDiscount.String())
}

// InvoiceID is the invoice being edited, 0 for a new invoice.
func (c *Controller) InvoiceID() uint {
	return c.invoiceID
}

// Header is the header a submission starts from: the stored one in edit
// mode, the defaults for now otherwise.
func (c *Controller) Header(now time.Time) Header {
	if c.header != nil {
		return *c.header
	}
	return DefaultHeader(now, c.lang)
}

// OnRecalculate registers fn to run after every totals recomputation.
func (c *Controller) OnRecalculate(fn func()) {
	c.onRecalculate = fn
}

// AddLine appends a row with default values and returns its id.
func (c *Controller) AddLine() int {
	c.counter++
	c.lines = append(c.lines, &Line{
		ID:        c.counter,
		Quantity:  DefaultQuantity,
		UnitPrice: DefaultUnitPrice,
		VATRate:   DefaultVATRate,
		Discount:  DefaultDiscount,
	})
	c.recalculate()
	return c.counter
}

// RemoveLine deletes a row. The form always keeps at least one row, so
// removing the last one adds a fresh blank row.
func (c *Controller) RemoveLine(id int) error {
	i := c.index(id)
	if i < 0 {
		return ErrLineNotFound
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	if len(c.lines) == 0 {
		c.AddLine()
		return nil
	}
	c.recalculate()
	return nil
}

// SelectProduct fills the row from a catalog product: unit price and VAT
// rate with two decimals, and the selector label as designation. A zero
// productID clears the selection and leaves the fields as they are.
func (c *Controller) SelectProduct(id int, productID uint) error {
	l, err := c.line(id)
	if err != nil {
		return err
	}
	if productID == 0 {
		l.ProductID = nil
		c.recalculate()
		return nil
	}
	p, ok := c.products[productID]
	if !ok {
		return ErrUnknownProduct
	}
	pid := p.ID
	l.ProductID = &pid
	l.UnitPrice = money.Fixed(p.PriceHT)
	l.VATRate = money.Fixed(p.VATPercent)
	l.Designation = p.Label()
	c.recalculate()
	return nil
}

func (c *Controller) SetQuantity(id int, raw string) error {
	return c.set(id, func(l *Line) { l.Quantity = raw })
}

func (c *Controller) SetUnitPrice(id int, raw string) error {
	return c.set(id, func(l *Line) { l.UnitPrice = raw })
}

func (c *Controller) SetVATRate(id int, raw string) error {
	return c.set(id, func(l *Line) { l.VATRate = raw })
}

func (c *Controller) SetDiscount(id int, raw string) error {
	return c.set(id, func(l *Line) { l.Discount = raw })
}

// SetGlobalDiscount sets the document discount percentage.
func (c *Controller) SetGlobalDiscount(raw string) {
	c.globalDiscount = raw
	c.recalculate()
}

// Totals returns the totals of the last recomputation.
func (c *Controller) Totals() services.Totals {
	return c.totals
}

// Lines returns a copy of the rows in display order.
func (c *Controller) Lines() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		out[i] = *l
	}
	return out
}

func (c *Controller) set(id int, apply func(*Line)) error {
	l, err := c.line(id)
	if err != nil {
		return err
	}
	apply(l)
	c.recalculate()
	return nil
}

func (c *Controller) recalculate() {
	items := make([]services.LineItem, len(c.lines))
	for i, l := range c.lines {
		items[i] = l.item()
	}
	c.totals = services.ComputeInvoiceTotals(items, money.Parse(c.globalDiscount))
	if c.onRecalculate != nil {
		c.onRecalculate()
	}
}

func (c *Controller) index(id int) int {
	for i, l := range c.lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) line(id int) (*Line, error) {
	i := c.index(id)
	if i < 0 {
		return nil, ErrLineNotFound
	}
	return c.lines[i], nil
}

// product returns the catalog entry selected on l, if any.
func (c *Controller) product(l *Line) (catalog.Entry, bool) {
	if l.ProductID == nil {
		return catalog.Entry{}, false
	}
	p, ok := c.products[*l.ProductID]
	return p, ok
}

// quantity is the parsed quantity of l.
func quantity(l *Line) decimal.Decimal {
	return money.Parse(l.Quantity)
}
