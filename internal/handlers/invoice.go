package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/invoice-editor/httpx"
	"github.com/diewo77/invoice-editor/internal/logger"
	"github.com/diewo77/invoice-editor/internal/services"
)

type InvoiceHandler struct {
	svc *services.InvoiceService
	log *logger.Logger
}

func NewInvoiceHandler(svc *services.InvoiceService, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, log: log}
}

// View returns a stored invoice with its lines.
func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		writeError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	inv, err := h.svc.Get(r.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Uint("invoice_id", id).Msg("get invoice")
		writeError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}
