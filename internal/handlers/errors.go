package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/diewo77/invoice-editor/httpx"
	"github.com/diewo77/invoice-editor/i18n"
	"github.com/go-chi/chi/v5"
)

// writeError answers with an error code and its message in the request language.
func writeError(w http.ResponseWriter, r *http.Request, status int, code string, details any) {
	httpx.JSONError(w, status, code, i18n.T(i18n.LangFromContext(r.Context()), code), details)
}

// rawField accepts a JSON string or number and keeps its text, so "12,5"
// and 12.5 are both passed to the form untouched.
type rawField string

func (f *rawField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = rawField(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	*f = rawField(data)
	return nil
}

func uintParam(r *http.Request, name string) (uint, bool) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func intParam(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, false
	}
	return v, true
}
