package db

import (
	"fmt"

	"github.com/diewo77/invoice-editor/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedProduct struct {
	Reference   string
	Designation string
	PriceHT     string
	VATPercent  string
	Unit        string
	Category    string
	Stock       *int
	Minimum     *int
}

func stock(v int) *int { return &v }

// demoCatalog is a small catering catalog with a mix of stock-managed and
// unmanaged products and two VAT rates.
var demoCatalog = []seedProduct{
	{"PLT-001", "Plateau Mezze", "45.00", "10", "piece", "Plateaux", stock(15), stock(5)},
	{"PLT-004", "Plateau Fruits de Mer", "65.00", "10", "piece", "Plateaux", stock(3), stock(2)},
	{"PLAT-001", "Couscous Royal (10 pers)", "120.00", "10", "forfait", "Plats", nil, nil},
	{"ENT-001", "Houmous Maison", "8.50", "10", "piece", "Entrées", stock(25), stock(10)},
	{"ENT-004", "Taboulé Libanais", "8.00", "10", "piece", "Entrées", stock(0), stock(10)},
	{"DES-003", "Loukoums Assortis", "12.00", "10", "piece", "Desserts", stock(2), stock(5)},
	{"BOIS-001", "Thé à la Menthe (1L)", "5.00", "10", "litre", "Boissons", stock(40), stock(20)},
	{"SERV-001", "Service Traiteur (par personne)", "25.00", "10", "piece", "Services", nil, nil},
	{"SERV-002", "Location Vaisselle (service complet)", "15.00", "20", "forfait", "Services", nil, nil},
	{"SERV-003", "Livraison Marseille", "10.00", "20", "forfait", "Services", nil, nil},
}

// Seed inserts the demo catalog. Products are matched by reference, so
// running it twice creates nothing new.
func Seed(db *gorm.DB) error {
	for _, sp := range demoCatalog {
		ref := sp.Reference
		p := models.Product{
			Reference:    &ref,
			Designation:  sp.Designation,
			PriceHT:      decimal.RequireFromString(sp.PriceHT),
			VATPercent:   decimal.RequireFromString(sp.VATPercent),
			Unit:         sp.Unit,
			Category:     sp.Category,
			StockManaged: sp.Stock != nil,
			CurrentStock: sp.Stock,
			MinimumStock: sp.Minimum,
			Active:       true,
		}
		// Use FirstOrCreate to avoid duplicates
		if err := db.Where("reference = ?", ref).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("seed product %s: %w", ref, err)
		}
	}
	return nil
}
