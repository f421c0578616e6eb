// Package validation turns struct tag validation failures into a flat map of
// field name to error code.
package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has one.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	for tag, fn := range map[string]validator.Func{
		"dgt":   decimalCompare(func(d, p decimal.Decimal) bool { return d.GreaterThan(p) }),
		"dgte":  decimalCompare(func(d, p decimal.Decimal) bool { return d.GreaterThanOrEqual(p) }),
		"dlt":   decimalCompare(func(d, p decimal.Decimal) bool { return d.LessThan(p) }),
		"dlte":  decimalCompare(func(d, p decimal.Decimal) bool { return d.LessThanOrEqual(p) }),
		"scale": decimalScale,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// decimalCompare builds an exact comparison rule for decimal.Decimal fields,
// e.g. `dgte=0.01`. Other field types fail the rule.
func decimalCompare(cmp func(d, param decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		p, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return cmp(d, p)
	}
}

// decimalScale limits the number of fraction digits, e.g. `scale=2`.
func decimalScale(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	n, err := strconv.ParseInt(fl.Param(), 10, 32)
	if err != nil {
		return false
	}
	return d.Equal(d.Truncate(int32(n)))
}

// Struct validates s and returns its violations, keyed by the JSON path of
// each field (e.g. "lignes[0].quantite"). A nil error yields no violations.
func Struct(s any) (Violations, error) {
	v := make(Violations)
	err := validate.Struct(s)
	if err == nil {
		return v, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	for _, fe := range verrs {
		v.Add(fieldPath(fe.Namespace()), code(fe))
	}
	return v, nil
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func code(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "gte", "gt", "min", "dgte", "dgt":
		if fe.Param() == "0" {
			return "must_be_positive"
		}
		return "too_small"
	case "lte", "lt", "max", "dlte", "dlt":
		return "out_of_range"
	case "scale":
		return "too_precise"
	default:
		return "invalid"
	}
}
