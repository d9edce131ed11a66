package normalize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// DefaultCurrency is used when no code or symbol identifies the currency.
const DefaultCurrency = "USD"

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// ParsePrice strips every character that is not a digit or a decimal
// point and parses the rest. It returns 0 when nothing parseable remains,
// including dotted thousands such as "1.234.567".
// Known currency symbols are removed first so the dot of "S/." is not
// read as a decimal point.
func ParsePrice(s string) float64 {
	for _, c := range currencySymbols {
		s = strings.ReplaceAll(s, c.symbol, " ")
	}
	cleaned := nonNumeric.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}

// Amount coerces a decoded JSON value into a price amount. Strings go
// through ParsePrice; a list yields its first element's amount.
func Amount(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return ParsePrice(t.String())
	case string:
		return ParsePrice(t)
	case []any:
		if len(t) == 0 {
			return 0
		}
		return Amount(t[0])
	case []string:
		if len(t) == 0 {
			return 0
		}
		return ParsePrice(t[0])
	default:
		return 0
	}
}

// currencySymbols is checked in order; the first symbol found in the
// input wins, so longer symbols sharing a suffix ("US$", "R$") come
// before the bare "$".
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"S/.", "PEN"},
	{"S/", "PEN"},
	{"PEN", "PEN"},
	{"US$", "USD"},
	{"USD", "USD"},
	{"R$", "BRL"},
	{"CLP", "CLP"},
	{"COP", "COP"},
	{"MXN", "MXN"},
	{"€", "EUR"},
	{"EUR", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
	{"$", "USD"},
}

// CurrencyFromSymbol infers an ISO currency code from a price-like string
// using a fixed symbol table. It returns fallback when nothing matches, or
// DefaultCurrency when fallback is empty.
func CurrencyFromSymbol(s, fallback string) string {
	upper := strings.ToUpper(s)
	for _, c := range currencySymbols {
		if strings.Contains(upper, c.symbol) {
			return c.code
		}
	}
	if fallback == "" {
		return DefaultCurrency
	}
	return fallback
}

// Currency resolves a currency from an explicit code when present, else
// from the symbol found in symbol or priceText, else fallback.
func Currency(code, priceText, fallback string) string {
	if c := strings.ToUpper(strings.TrimSpace(code)); isCurrencyCode(c) {
		return c
	}
	return CurrencyFromSymbol(code+" "+priceText, fallback)
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
