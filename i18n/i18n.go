// Package i18n holds the French and English messages of the invoice form.
package i18n

import (
	"context"
	"fmt"

	"golang.org/x/text/language"
)

const (
	FR          = "fr"
	EN          = "en"
	DefaultLang = FR
)

var (
	supported = []string{FR, EN}
	matcher   = language.NewMatcher([]language.Tag{language.French, language.English})
)

var messages = map[string]map[string]string{
	FR: {
		"required":              "Requis",
		"invalid":               "Valeur invalide",
		"out_of_range":          "Valeur hors des limites autorisées",
		"too_precise":           "Deux décimales au maximum",
		"must_be_positive":      "Doit être positif",
		"too_small":             "Valeur inférieure au minimum autorisé",
		"product_required":      "Sélectionnez un produit",
		"no_lines":              "Veuillez ajouter au moins une ligne à la facture.",
		"stock_insufficient":    "Stock insuffisant ! Disponible : %d",
		"stock_last":            "Attention : dernier(s) article(s) en stock (%d)",
		"stock_confirm":         "Attention : certains produits ont un stock insuffisant. Voulez-vous continuer quand même ?",
		"validation_failed":     "Le formulaire contient des erreurs",
		"not_found":             "Introuvable",
		"form_not_found":        "Formulaire introuvable",
		"line_not_found":        "Ligne introuvable",
		"unknown_product":       "Produit inconnu",
		"invalid_json":          "Requête invalide",
		"internal_error":        "Erreur interne",
		"payment_terms_default": "Paiement à 30 jours",
		"not_editable":          "Cette facture n'est plus modifiable",
	},
	EN: {
		"required":              "Required",
		"invalid":               "Invalid value",
		"out_of_range":          "Value is outside the allowed range",
		"too_precise":           "At most two decimal places",
		"must_be_positive":      "Must be positive",
		"too_small":             "Value is below the allowed minimum",
		"product_required":      "Select a product",
		"no_lines":              "Please add at least one line to the invoice.",
		"stock_insufficient":    "Insufficient stock! Available: %d",
		"stock_last":            "Warning: last item(s) in stock (%d)",
		"stock_confirm":         "Warning: some products do not have enough stock. Continue anyway?",
		"validation_failed":     "The form contains errors",
		"not_found":             "Not found",
		"form_not_found":        "Form not found",
		"line_not_found":        "Line not found",
		"unknown_product":       "Unknown product",
		"invalid_json":          "Invalid request",
		"internal_error":        "Internal error",
		"payment_terms_default": "Payment within 30 days",
		"not_editable":          "This invoice can no longer be edited",
	},
}

// DetectLanguage picks a supported language from an Accept-Language header.
// Anything unsupported or unparsable falls back to French.
func DetectLanguage(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLang
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLang
	}
	return supported[idx]
}

// Normalize maps a cookie or query value to a supported language.
func Normalize(lang string) string {
	if _, ok := messages[lang]; ok {
		return lang
	}
	return DetectLanguage(lang)
}

// T translates code. Unknown languages use French; unknown codes are
// returned as is. Args are applied with fmt.Sprintf.
func T(lang, code string, args ...any) string {
	table, ok := messages[lang]
	if !ok {
		table = messages[DefaultLang]
	}
	msg, ok := table[code]
	if !ok {
		msg, ok = messages[DefaultLang][code]
		if !ok {
			return code
		}
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

type ctxKey struct{}

// WithLang stores the request language.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFromContext returns the request language, French when unset.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}
