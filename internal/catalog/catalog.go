// Package catalog serves the product snapshot the invoice form works from.
package catalog

import (
	"context"
	"fmt"

	"github.com/diewo77/invoice-editor/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Entry is one selectable product as the form sees it. Stock is nil unless
// the product is stock-managed.
type Entry struct {
	ID           uint            `json:"id"`
	Reference    string          `json:"reference"`
	Designation  string          `json:"designation"`
	PriceHT      decimal.Decimal `json:"prix_ht"`
	VATPercent   decimal.Decimal `json:"taux_tva"`
	PriceTTC     decimal.Decimal `json:"prix_ttc"`
	StockManaged bool            `json:"gerer_stock"`
	Stock        *int            `json:"stock_actuel"`
	StockStatus  string          `json:"statut_stock"`
}

// Label is the text shown in the product selector.
func (e Entry) Label() string {
	if e.Reference != "" {
		return e.Reference + " - " + e.Designation
	}
	return e.Designation
}

// FromProduct converts a catalog row.
func FromProduct(p models.Product) Entry {
	e := Entry{
		ID:           p.ID,
		Designation:  p.Designation,
		PriceHT:      p.PriceHT,
		VATPercent:   p.VATPercent,
		PriceTTC:     p.PriceTTC(),
		StockManaged: p.StockManaged,
		StockStatus:  p.StockStatus(),
	}
	if p.Reference != nil {
		e.Reference = *p.Reference
	}
	if p.StockManaged {
		stock := 0
		if p.CurrentStock != nil {
			stock = *p.CurrentStock
		}
		e.Stock = &stock
	}
	return e
}

// Source lists the products offered on invoice lines.
type Source interface {
	Products(ctx context.Context) ([]Entry, error)
}

// GormSource reads active products ordered by designation.
type GormSource struct {
	db *gorm.DB
}

func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{db: db}
}

func (s *GormSource) Products(ctx context.Context) ([]Entry, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("designation").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	entries := make([]Entry, 0, len(products))
	for _, p := range products {
		entries = append(entries, FromProduct(p))
	}
	return entries, nil
}
