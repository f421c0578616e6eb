package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/invoice-editor/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when an invoice does not exist.
	ErrNotFound = errors.New("invoice not found")
	// ErrNotEditable is returned when updating an invoice that left draft.
	ErrNotEditable = errors.New("invoice is not editable")
)

// NumberPrefix starts every invoice number.
const NumberPrefix = "FAC"

// DraftLine is one submitted line. Designation is the label captured on the
// form; ProductID is nil for free-text lines.
type DraftLine struct {
	ProductID   *uint
	Designation string
	LineItem
}

// Draft is a validated invoice form ready to be persisted.
type Draft struct {
	IssueDate      time.Time
	DueDate        *time.Time
	PaymentTerms   string
	Notes          string
	GlobalDiscount decimal.Decimal
	Lines          []DraftLine
}

// Totals recomputes the document totals of the draft.
func (d Draft) Totals() Totals {
	items := make([]LineItem, len(d.Lines))
	for i, l := range d.Lines {
		items[i] = l.LineItem
	}
	return ComputeInvoiceTotals(items, d.GlobalDiscount)
}

type InvoiceService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db, now: time.Now}
}

// Create persists a draft as a new invoice with its items. Totals are
// recomputed here and never taken from the client.
func (s *InvoiceService) Create(ctx context.Context, draft Draft) (*models.Invoice, error) {
	if draft.IssueDate.IsZero() {
		draft.IssueDate = s.now()
	}
	inv := models.Invoice{Status: models.InvoiceStatusDraft}
	apply(&inv, draft)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextNumber(tx, draft.IssueDate.Year())
		if err != nil {
			return err
		}
		inv.Number = number
		return tx.Create(&inv).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return &inv, nil
}

// Update replaces the header, lines and totals of a draft invoice. The
// number and status are kept.
func (s *InvoiceService) Update(ctx context.Context, id uint, draft Draft) (*models.Invoice, error) {
	if draft.IssueDate.IsZero() {
		draft.IssueDate = s.now()
	}
	var inv models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&inv, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !inv.IsEditable() {
			return ErrNotEditable
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		apply(&inv, draft)
		for i := range inv.Items {
			inv.Items[i].InvoiceID = inv.ID
		}
		if err := tx.Omit("Items").Save(&inv).Error; err != nil {
			return err
		}
		if len(inv.Items) == 0 {
			return nil
		}
		return tx.Create(&inv.Items).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotEditable) {
			return nil, err
		}
		return nil, fmt.Errorf("update invoice %d: %w", id, err)
	}
	return &inv, nil
}

// apply copies the draft and its recomputed totals onto inv. Amounts are
// stored with two decimals.
func apply(inv *models.Invoice, draft Draft) {
	totals := draft.Totals()
	inv.IssueDate = draft.IssueDate
	inv.DueDate = draft.DueDate
	inv.PaymentTerms = draft.PaymentTerms
	inv.Notes = draft.Notes
	inv.GlobalDiscount = draft.GlobalDiscount
	inv.TotalHT = totals.TotalHT.Round(2)
	inv.TotalVAT = totals.TotalVAT.Round(2)
	inv.TotalTTC = totals.TotalTTC.Round(2)
	inv.Items = make([]models.InvoiceItem, 0, len(draft.Lines))
	for i, l := range draft.Lines {
		inv.Items = append(inv.Items, models.InvoiceItem{
			ProductID:   l.ProductID,
			Designation: l.Designation,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			VATPercent:  l.VATPercent,
			Discount:    l.DiscountPercent,
			TotalHT:     l.LineTotal().Round(2),
			Position:    i,
		})
	}
}

// Get loads an invoice with its items in form order.
func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&inv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice %d: %w", id, err)
	}
	return &inv, nil
}

// nextNumber takes the next number of year from its sequence row. The row is
// locked until the surrounding transaction ends. A missing row starts from
// the highest number already stored for that year.
func nextNumber(tx *gorm.DB, year int) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", NumberPrefix, year)
	seq, err := lockSequence(tx, year)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		last, err := highestNumber(tx, prefix)
		if err != nil {
			return "", err
		}
		err = tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.InvoiceSequence{Year: year, Last: last}).Error
		if err != nil {
			return "", err
		}
		seq, err = lockSequence(tx, year)
		if err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	seq.Last++
	if err := tx.Model(seq).Update("last", seq.Last).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, seq.Last), nil
}

func lockSequence(tx *gorm.DB, year int) (*models.InvoiceSequence, error) {
	var seq models.InvoiceSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("year = ?", year).
		Take(&seq).Error
	if err != nil {
		return nil, err
	}
	return &seq, nil
}

// highestNumber returns the largest sequence among stored numbers with
// prefix, compared numerically.
func highestNumber(tx *gorm.DB, prefix string) (int, error) {
	var numbers []string
	err := tx.Unscoped().Model(&models.Invoice{}).
		Where("number LIKE ?", prefix+"%").
		Pluck("number", &numbers).Error
	if err != nil {
		return 0, err
	}
	highest := 0
	for _, number := range numbers {
		n, err := strconv.Atoi(strings.TrimPrefix(number, prefix))
		if err != nil {
			return 0, fmt.Errorf("malformed invoice number %q: %w", number, err)
		}
		highest = max(highest, n)
	}
	return highest, nil
}
