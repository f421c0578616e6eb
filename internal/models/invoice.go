package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus represents the status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "brouillon"
	InvoiceStatusSent  InvoiceStatus = "envoyee"
	InvoiceStatusPaid  InvoiceStatus = "payee"
)

// Invoice is a submitted invoice form.
type Invoice struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Number format: FAC-YYYY-NNNNN
	Number string        `gorm:"size:50;uniqueIndex;not null" json:"numero"`
	Status InvoiceStatus `gorm:"size:20;default:'brouillon'" json:"statut"`

	IssueDate    time.Time  `gorm:"not null" json:"date_emission"`
	DueDate      *time.Time `json:"date_echeance,omitempty"`
	PaidDate     *time.Time `json:"date_paiement,omitempty"`
	PaymentTerms string     `gorm:"type:text" json:"conditions_paiement,omitempty"`
	Notes        string     `gorm:"type:text" json:"notes,omitempty"`

	// GlobalDiscount is a percentage of the pre-tax total.
	GlobalDiscount decimal.Decimal `gorm:"type:decimal(10,2)" json:"remise_globale"`

	TotalHT  decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_ht"`
	TotalVAT decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_tva"`
	TotalTTC decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_ttc"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lignes,omitempty"`
}

// IsEditable returns true while the invoice is still a draft.
func (i *Invoice) IsEditable() bool {
	return i.Status == InvoiceStatusDraft || i.Status == ""
}

// InvoiceItem is one line of an invoice.
type InvoiceItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	InvoiceID uint     `gorm:"index;not null" json:"invoice_id"`
	Invoice   *Invoice `gorm:"foreignKey:InvoiceID" json:"-"`

	// Optional product reference; nil for free-text lines.
	ProductID *uint    `gorm:"index" json:"produit_id,omitempty"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"-"`

	// Line details are copied from the product at submission time.
	Designation string          `gorm:"type:text;not null" json:"designation"`
	Quantity    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"quantite"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"prix_unitaire_ht"`
	VATPercent  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"taux_tva"`
	Discount    decimal.Decimal `gorm:"type:decimal(10,2)" json:"remise_ligne"`
	TotalHT     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_ht"`

	// Position keeps the order lines had on the form.
	Position int `gorm:"default:0" json:"ordre"`
}

// InvoiceSequence holds the last invoice number issued for a year. The row is
// locked while a number is taken, so concurrent submissions are serialized.
type InvoiceSequence struct {
	Year      int `gorm:"primaryKey;autoIncrement:false"`
	Last      int `gorm:"not null;default:0"`
	UpdatedAt time.Time
}
