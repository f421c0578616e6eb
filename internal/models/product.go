package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock statuses reported by Product.StockStatus.
const (
	StockNotManaged = "non_gere"
	StockOut        = "rupture"
	StockLow        = "alerte"
	StockOK         = "ok"
)

// Product is a catalog entry offered on invoice lines.
type Product struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Reference is optional but unique when set.
	Reference   *string `gorm:"size:50;uniqueIndex" json:"reference,omitempty"`
	Designation string  `gorm:"size:200;not null" json:"designation"`
	Description string  `gorm:"type:text" json:"description,omitempty"`

	PriceHT decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"prix_ht"`
	// VATPercent is stored as a percentage (20 = 20%).
	VATPercent decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"taux_tva"`

	Unit     string `gorm:"size:20;default:'piece'" json:"unite"` // piece, kg, heure, forfait, m2, litre
	Category string `gorm:"size:100" json:"categorie,omitempty"`

	StockManaged bool `gorm:"default:false" json:"gerer_stock"`
	CurrentStock *int `json:"stock_actuel,omitempty"`
	MinimumStock *int `json:"stock_minimum,omitempty"`

	Active bool `gorm:"default:true" json:"actif"`
}

// PriceTTC returns the unit price including VAT.
func (p *Product) PriceTTC() decimal.Decimal {
	return p.PriceHT.Add(p.PriceHT.Mul(p.VATPercent).Div(decimal.NewFromInt(100)))
}

// StockStatus classifies the current stock level.
func (p *Product) StockStatus() string {
	if !p.StockManaged {
		return StockNotManaged
	}
	if p.CurrentStock == nil || *p.CurrentStock == 0 {
		return StockOut
	}
	if p.MinimumStock != nil && *p.MinimumStock > 0 && *p.CurrentStock <= *p.MinimumStock {
		return StockLow
	}
	return StockOK
}
