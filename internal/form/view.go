package form

import (
	"github.com/diewo77/invoice-editor/internal/money"
	"github.com/diewo77/invoice-editor/internal/services"
)

// Row is the rendered state of one line.
type Row struct {
	ID           int          `json:"id"`
	ProductID    *uint        `json:"produit_id"`
	Designation  string       `json:"designation"`
	Quantity     string       `json:"quantite"`
	UnitPrice    string       `json:"prix_unitaire_ht"`
	VATRate      string       `json:"taux_tva"`
	Discount     string       `json:"remise_ligne"`
	TotalHT      string       `json:"total_ht"`
	TotalDisplay string       `json:"total_ht_affiche"`
	Stock        StockWarning `json:"stock"`
	StockMessage string       `json:"stock_message,omitempty"`
}

// Display holds the totals formatted for the user's language.
type Display struct {
	TotalHT  string `json:"total_ht"`
	TotalVAT string `json:"total_tva"`
	TotalTTC string `json:"total_ttc"`
}

// View is a full snapshot of the form after the last edit.
type View struct {
	Lines          []Row             `json:"lignes"`
	GlobalDiscount string            `json:"remise_globale"`
	Fields         map[string]string `json:"fields"`
	Display        Display           `json:"display"`

	// StockConfirmation is set while any row exceeds the available stock.
	StockConfirmation bool `json:"stock_confirmation_required"`
}

// Snapshot renders the current rows and totals.
func (c *Controller) Snapshot() View {
	v := View{
		Lines:          make([]Row, 0, len(c.lines)),
		GlobalDiscount: c.globalDiscount,
		Fields:         c.totals.Fields(),
		Display:        display(c.lang, c.totals),
	}
	for _, l := range c.lines {
		total := l.item().LineTotal()
		w, msg := c.stockOf(l)
		if w.Blocking() {
			v.StockConfirmation = true
		}
		v.Lines = append(v.Lines, Row{
			ID:           l.ID,
			ProductID:    l.ProductID,
			Designation:  l.Designation,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			VATRate:      l.VATRate,
			Discount:     l.Discount,
			TotalHT:      money.Fixed(total),
			TotalDisplay: money.Format(c.lang, total),
			Stock:        w,
			StockMessage: msg,
		})
	}
	return v
}

func display(lang string, t services.Totals) Display {
	return Display{
		TotalHT:  money.Format(lang, t.TotalHT),
		TotalVAT: money.Format(lang, t.TotalVAT),
		TotalTTC: money.Format(lang, t.TotalTTC),
	}
}
