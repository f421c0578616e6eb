package handlers

import (
	"net/http"

	"github.com/diewo77/invoice-editor/httpx"
	"github.com/diewo77/invoice-editor/internal/catalog"
	"github.com/diewo77/invoice-editor/internal/logger"
)

// ProductHandler serves the catalog the form picks products from.
type ProductHandler struct {
	products catalog.Source
	log      *logger.Logger
}

func NewProductHandler(products catalog.Source, log *logger.Logger) *ProductHandler {
	return &ProductHandler{products: products, log: log}
}

// List returns active products ordered by designation.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.products.Products(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list products")
		writeError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}
