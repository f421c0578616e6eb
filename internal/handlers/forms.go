package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/diewo77/invoice-editor/httpx"
	"github.com/diewo77/invoice-editor/i18n"
	"github.com/diewo77/invoice-editor/internal/catalog"
	"github.com/diewo77/invoice-editor/internal/form"
	"github.com/diewo77/invoice-editor/internal/logger"
	"github.com/diewo77/invoice-editor/internal/metrics"
	"github.com/diewo77/invoice-editor/internal/models"
	"github.com/diewo77/invoice-editor/internal/services"
	"github.com/diewo77/invoice-editor/validation"
	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

// FormHandler exposes the line editor over JSON. Each open form lives in
// the store under a random id until it is submitted or expires.
type FormHandler struct {
	store    *form.Store
	products catalog.Source
	invoices *services.InvoiceService
	metrics  *metrics.Metrics
	log      *logger.Logger
	now      func() time.Time
}

func NewFormHandler(store *form.Store, products catalog.Source, invoices *services.InvoiceService, m *metrics.Metrics, log *logger.Logger) *FormHandler {
	return &FormHandler{
		store:    store,
		products: products,
		invoices: invoices,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

type formResponse struct {
	ID     string    `json:"id"`
	LineID int       `json:"line_id,omitempty"`
	Form   form.View `json:"form"`
}

// Create opens a form. With {"invoice_id": N} it edits that draft invoice.
func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InvoiceID uint `json:"invoice_id"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	products, err := h.products.Products(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("load catalog for form")
		writeError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	var inv *models.Invoice
	if req.InvoiceID != 0 {
		inv, err = h.invoices.Get(r.Context(), req.InvoiceID)
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "not_found", nil)
			return
		}
		if err != nil {
			h.log.Error().Err(err).Uint("invoice_id", req.InvoiceID).Msg("load invoice for edit")
			writeError(w, r, http.StatusInternalServerError, "internal_error", nil)
			return
		}
		if !inv.IsEditable() {
			writeError(w, r, http.StatusConflict, "not_editable", nil)
			return
		}
	}

	var c *form.Controller
	if inv != nil {
		c = form.New(products, form.LinesFromInvoice(inv.Items)...)
		c.EditInvoice(inv)
	} else {
		c = form.New(products)
	}
	c.SetLang(i18n.LangFromContext(r.Context()))
	c.OnRecalculate(h.metrics.Recalculated)

	id := h.store.Add(c)
	h.log.Debug().Str("form_id", id).Uint("invoice_id", req.InvoiceID).Msg("form opened")
	httpx.JSON(w, http.StatusCreated, formResponse{ID: id, Form: c.Snapshot()})
}

// Get returns the current state of a form.
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, http.StatusOK, func(c *form.Controller) (int, error) { return 0, nil })
}

// AddLine appends a blank row.
func (h *FormHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, http.StatusCreated, func(c *form.Controller) (int, error) {
		return c.AddLine(), nil
	})
}

// RemoveLine deletes a row; the last row is replaced by a blank one.
func (h *FormHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	line, ok := intParam(r, "line")
	if !ok {
		writeError(w, r, http.StatusNotFound, "line_not_found", nil)
		return
	}
	h.edit(w, r, http.StatusOK, func(c *form.Controller) (int, error) {
		return 0, c.RemoveLine(line)
	})
}

type lineUpdate struct {
	ProductID *uint     `json:"product_id"`
	Quantity  *rawField `json:"quantite"`
	UnitPrice *rawField `json:"prix_unitaire_ht"`
	VATRate   *rawField `json:"taux_tva"`
	Discount  *rawField `json:"remise_ligne"`
}

// UpdateLine applies field edits to a row. Product selection runs first so
// explicit price or rate values in the same request override the catalog.
// A product_id of 0 clears the selection.
func (h *FormHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	line, ok := intParam(r, "line")
	if !ok {
		writeError(w, r, http.StatusNotFound, "line_not_found", nil)
		return
	}
	var req lineUpdate
	if err := httpx.Decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	h.edit(w, r, http.StatusOK, func(c *form.Controller) (int, error) {
		if req.ProductID != nil {
			if err := c.SelectProduct(line, *req.ProductID); err != nil {
				return 0, err
			}
		}
		setters := []struct {
			val *rawField
			set func(int, string) error
		}{
			{req.Quantity, c.SetQuantity},
			{req.UnitPrice, c.SetUnitPrice},
			{req.VATRate, c.SetVATRate},
			{req.Discount, c.SetDiscount},
		}
		for _, s := range setters {
			if s.val == nil {
				continue
			}
			if err := s.set(line, string(*s.val)); err != nil {
				return 0, err
			}
		}
		return 0, nil
	})
}

// Update edits document level fields.
func (h *FormHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GlobalDiscount *rawField `json:"remise_globale"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	h.edit(w, r, http.StatusOK, func(c *form.Controller) (int, error) {
		if req.GlobalDiscount != nil {
			c.SetGlobalDiscount(string(*req.GlobalDiscount))
		}
		return 0, nil
	})
}

type submitRequest struct {
	Confirm      bool    `json:"confirm"`
	IssueDate    string  `json:"date_emission"`
	DueDate      string  `json:"date_echeance"`
	PaymentTerms *string `json:"conditions_paiement"`
	Notes        *string `json:"notes"`
}

// header overrides the fields of base that the request carries.
func (req submitRequest) header(base form.Header) (form.Header, validation.Violations) {
	h := base
	v := make(validation.Violations)
	if req.IssueDate != "" {
		t, err := time.Parse(dateLayout, req.IssueDate)
		if err != nil {
			v.Add("date_emission", "invalid")
		}
		h.IssueDate = t
	}
	if req.DueDate != "" {
		t, err := time.Parse(dateLayout, req.DueDate)
		if err != nil {
			v.Add("date_echeance", "invalid")
		}
		h.DueDate = &t
	}
	if req.PaymentTerms != nil && *req.PaymentTerms != "" {
		h.PaymentTerms = *req.PaymentTerms
	}
	if req.Notes != nil {
		h.Notes = *req.Notes
	}
	return h, v
}

// Submit validates the form and stores the invoice. A row exceeding the
// stock answers 409 until the request carries "confirm": true. When editing,
// header fields missing from the request keep their stored values.
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req submitRequest
	if err := httpx.Decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	lang := i18n.LangFromContext(r.Context())

	var (
		inv  *models.Invoice
		view form.View
	)
	err := h.store.With(id, func(c *form.Controller) error {
		header, violations := req.header(c.Header(h.now()))
		if !violations.Empty() {
			return &form.ValidationError{Violations: violations}
		}
		sub, err := c.Submit(req.Confirm)
		if err != nil {
			view = c.Snapshot()
			return err
		}
		draft := sub.Draft(header)
		if c.InvoiceID() != 0 {
			inv, err = h.invoices.Update(r.Context(), c.InvoiceID(), draft)
		} else {
			inv, err = h.invoices.Create(r.Context(), draft)
		}
		if err != nil {
			return err
		}
		h.store.Delete(id)
		return nil
	})

	var verr *form.ValidationError
	switch {
	case err == nil:
		h.metrics.Submitted(metrics.OutcomeCreated)
		h.log.Info().Str("form_id", id).Str("number", inv.Number).Str("total_ttc", inv.TotalTTC.StringFixed(2)).Msg("invoice saved")
		httpx.JSON(w, http.StatusCreated, inv)
	case errors.Is(err, form.ErrSessionNotFound):
		writeError(w, r, http.StatusNotFound, "form_not_found", nil)
	case errors.Is(err, form.ErrNoLines):
		h.metrics.Submitted(metrics.OutcomeNoLines)
		writeError(w, r, http.StatusUnprocessableEntity, "no_lines", nil)
	case errors.As(err, &verr):
		h.metrics.Submitted(metrics.OutcomeInvalid)
		writeError(w, r, http.StatusUnprocessableEntity, "validation_failed", verr.Violations)
	case errors.Is(err, form.ErrStockConfirmationRequired):
		h.metrics.Submitted(metrics.OutcomeNeedsConfirmation)
		httpx.JSONError(w, http.StatusConflict, "stock_confirmation_required", i18n.T(lang, "stock_confirm"), view)
	case errors.Is(err, services.ErrNotEditable):
		h.metrics.Submitted(metrics.OutcomeError)
		writeError(w, r, http.StatusConflict, "not_editable", nil)
	default:
		h.metrics.Submitted(metrics.OutcomeError)
		h.log.Error().Err(err).Str("form_id", id).Msg("submit form")
		writeError(w, r, http.StatusInternalServerError, "internal_error", nil)
	}
}

// edit runs fn on the form and answers with its snapshot. fn returns the id
// of a row it created, if any.
func (h *FormHandler) edit(w http.ResponseWriter, r *http.Request, status int, fn func(*form.Controller) (int, error)) {
	id := chi.URLParam(r, "id")
	var resp formResponse
	err := h.store.With(id, func(c *form.Controller) error {
		line, err := fn(c)
		if err != nil {
			return err
		}
		resp = formResponse{ID: id, LineID: line, Form: c.Snapshot()}
		return nil
	})
	switch {
	case err == nil:
		httpx.JSON(w, status, resp)
	case errors.Is(err, form.ErrSessionNotFound):
		writeError(w, r, http.StatusNotFound, "form_not_found", nil)
	case errors.Is(err, form.ErrLineNotFound):
		writeError(w, r, http.StatusNotFound, "line_not_found", nil)
	case errors.Is(err, form.ErrUnknownProduct):
		writeError(w, r, http.StatusUnprocessableEntity, "unknown_product", nil)
	default:
		h.log.Error().Err(err).Str("form_id", id).Msg("edit form")
		writeError(w, r, http.StatusInternalServerError, "internal_error", nil)
	}
}
