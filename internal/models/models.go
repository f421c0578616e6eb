// Package models holds the gorm models behind the invoice form: the product
// catalog and submitted invoices.
package models

// All lists every model handled by AutoMigrate, in dependency order.
func All() []any {
	return []any{
		&Product{},
		&Invoice{},
		&InvoiceItem{},
		&InvoiceSequence{},
	}
}
