package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLine struct {
	ProductID *uint           `json:"produit_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantite" validate:"dgte=0.01,scale=2"`
	Price     decimal.Decimal `json:"prix_unitaire_ht" validate:"dgte=0"`
	VAT       decimal.Decimal `json:"taux_tva" validate:"dgte=0,dlte=100"`
}

type testForm struct {
	Lines []testLine `json:"lignes" validate:"required,min=1,dive"`
}

func TestStructValid(t *testing.T) {
	id := uint(1)
	v, err := Struct(testForm{Lines: []testLine{{
		ProductID: &id,
		Quantity:  decimal.RequireFromString("0.01"),
		Price:     decimal.Zero,
		VAT:       decimal.NewFromInt(100),
	}}})
	require.NoError(t, err)
	assert.True(t, v.Empty())
}

func TestStructViolations(t *testing.T) {
	v, err := Struct(testForm{Lines: []testLine{{
		Quantity: decimal.RequireFromString("0.001"),
		Price:    decimal.NewFromInt(-1),
		VAT:      decimal.RequireFromString("100.5"),
	}}})
	require.NoError(t, err)
	assert.Equal(t, Violations{
		"lignes[0].produit_id":       "required",
		"lignes[0].quantite":         "too_small",
		"lignes[0].prix_unitaire_ht": "must_be_positive",
		"lignes[0].taux_tva":         "out_of_range",
	}, v)
}

func TestStructDecimalRulesAreExact(t *testing.T) {
	id := uint(1)
	tests := []struct {
		name     string
		quantity string
		want     string
	}{
		{"just below minimum", "0.0099999999999999999", "too_small"},
		{"minimum", "0.01", ""},
		{"three fraction digits", "1.005", "too_precise"},
		{"trailing zeros", "1.500", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Struct(testForm{Lines: []testLine{{
				ProductID: &id,
				Quantity:  decimal.RequireFromString(tt.quantity),
			}}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, v["lignes[0].quantite"])
		})
	}
}

func TestStructEmptySlice(t *testing.T) {
	v, err := Struct(testForm{})
	require.NoError(t, err)
	assert.Equal(t, "required", v["lignes"])
}

func TestAddKeepsFirstCode(t *testing.T) {
	v := make(Violations)
	v.Add("quantite", "required")
	v.Add("quantite", "invalid")
	assert.Equal(t, "required", v["quantite"])
	assert.False(t, v.Empty())
}
