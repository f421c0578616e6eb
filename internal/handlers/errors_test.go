package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/invoice-editor/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawFieldKeepsText(t *testing.T) {
	var req lineUpdate
	body := `{"quantite": "12,5", "prix_unitaire_ht": 12.50, "taux_tva": null}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	require.NotNil(t, req.Quantity)
	assert.Equal(t, rawField("12,5"), *req.Quantity)
	require.NotNil(t, req.UnitPrice)
	assert.Equal(t, rawField("12.50"), *req.UnitPrice)
	assert.Nil(t, req.Discount)
}

func TestWriteErrorTranslates(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(i18n.WithLang(r.Context(), i18n.EN))
	w := httptest.NewRecorder()

	writeError(w, r, http.StatusNotFound, "line_not_found", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "line_not_found", body["error"])
	assert.Equal(t, i18n.T(i18n.EN, "line_not_found"), body["message"])
}
