package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusCreated, map[string]int{"id": 4})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":4}`, w.Body.String())

	w = httptest.NewRecorder()
	JSON(w, http.StatusOK, nil)
	assert.Equal(t, "null", w.Body.String())
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(w, http.StatusUnprocessableEntity, "validation_failed", "Le formulaire contient des erreurs", map[string]string{"quantite": "required"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"validation_failed","message":"Le formulaire contient des erreurs","details":{"quantite":"required"}}`, w.Body.String())
}

func TestDecode(t *testing.T) {
	var dst struct {
		Confirm bool `json:"confirm"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"confirm":true}`))
	require.NoError(t, Decode(r, &dst))
	assert.True(t, dst.Confirm)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.NoError(t, Decode(r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	assert.Error(t, Decode(r, &dst))
}
