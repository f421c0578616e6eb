package form

import (
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/invoice-editor/i18n"
	"github.com/diewo77/invoice-editor/internal/models"
	"github.com/diewo77/invoice-editor/internal/money"
	"github.com/diewo77/invoice-editor/internal/services"
	"github.com/diewo77/invoice-editor/validation"
	"github.com/shopspring/decimal"
)

var (
	ErrNoLines                   = errors.New("invoice has no lines")
	ErrStockConfirmationRequired = errors.New("stock confirmation required")
)

// ValidationError lists the fields rejected at submission.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid form: %d field(s)", len(e.Violations))
}

// Header holds the invoice fields outside the line table.
type Header struct {
	IssueDate    time.Time
	DueDate      *time.Time
	PaymentTerms string
	Notes        string
}

// DefaultHeader issues the invoice today, due 30 days later.
func DefaultHeader(now time.Time, lang string) Header {
	issue := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	due := issue.AddDate(0, 0, 30)
	return Header{
		IssueDate:    issue,
		DueDate:      &due,
		PaymentTerms: i18n.T(lang, "payment_terms_default"),
	}
}

// HeaderFromInvoice copies the header of a stored invoice.
func HeaderFromInvoice(inv *models.Invoice) Header {
	return Header{
		IssueDate:    inv.IssueDate,
		DueDate:      inv.DueDate,
		PaymentTerms: inv.PaymentTerms,
		Notes:        inv.Notes,
	}
}

// Submission is a form that passed validation.
type Submission struct {
	Lines          []services.DraftLine
	GlobalDiscount decimal.Decimal
	Totals         services.Totals

	// Fields are the hidden total fields sent with the form.
	Fields map[string]string
}

// Draft combines the submission with header fields for persistence.
func (s *Submission) Draft(h Header) services.Draft {
	return services.Draft{
		IssueDate:      h.IssueDate,
		DueDate:        h.DueDate,
		PaymentTerms:   h.PaymentTerms,
		Notes:          h.Notes,
		GlobalDiscount: s.GlobalDiscount,
		Lines:          s.Lines,
	}
}

// Upper bounds follow the invoice columns: decimal(10,2) for line fields and
// decimal(12,2) for totals.
type lineCheck struct {
	ProductID *uint           `json:"produit_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantite" validate:"dgte=0.01,dlte=99999999.99,scale=2"`
	UnitPrice decimal.Decimal `json:"prix_unitaire_ht" validate:"dgte=0,dlte=99999999.99,scale=2"`
	VATRate   decimal.Decimal `json:"taux_tva" validate:"dgte=0,dlte=100,scale=2"`
	Discount  decimal.Decimal `json:"remise_ligne" validate:"dgte=0,dlte=100,scale=2"`
	Total     decimal.Decimal `json:"total_ht" validate:"dlte=9999999999.99"`
}

type formCheck struct {
	Lines          []lineCheck     `json:"lignes" validate:"dive"`
	GlobalDiscount decimal.Decimal `json:"remise_globale" validate:"dgte=0,dlte=100,scale=2"`
	TotalTTC       decimal.Decimal `json:"total_ttc" validate:"dlte=9999999999.99"`
}

// Submit runs the checks done before sending the form: at least one row,
// valid field values, and confirmation when a row exceeds the stock.
func (c *Controller) Submit(confirmed bool) (*Submission, error) {
	if len(c.lines) == 0 {
		return nil, ErrNoLines
	}

	check := formCheck{
		GlobalDiscount: money.Parse(c.globalDiscount),
		TotalTTC:       c.totals.TotalTTC,
	}
	for _, l := range c.lines {
		it := l.item()
		check.Lines = append(check.Lines, lineCheck{
			ProductID: l.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			VATRate:   it.VATPercent,
			Discount:  it.DiscountPercent,
			Total:     it.LineTotal(),
		})
	}
	violations, err := validation.Struct(check)
	if err != nil {
		return nil, err
	}
	for i, l := range c.lines {
		field := fmt.Sprintf("lignes[%d].produit_id", i)
		if violations[field] == "required" {
			violations[field] = "product_required"
		}
		if _, ok := c.product(l); l.ProductID != nil && !ok {
			violations.Add(field, "invalid")
		}
	}
	if !violations.Empty() {
		return nil, &ValidationError{Violations: violations}
	}

	if !confirmed && c.NeedsStockConfirmation() {
		return nil, ErrStockConfirmationRequired
	}

	sub := &Submission{
		GlobalDiscount: check.GlobalDiscount,
		Totals:         c.totals,
		Fields:         c.totals.Fields(),
	}
	for _, l := range c.lines {
		designation := l.Designation
		if p, ok := c.product(l); ok && designation == "" {
			designation = p.Label()
		}
		sub.Lines = append(sub.Lines, services.DraftLine{
			ProductID:   l.ProductID,
			Designation: designation,
			LineItem:    l.item(),
		})
	}
	return sub, nil
}
