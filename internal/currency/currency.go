// Package currency selects the display currency of a shopper and converts USD catalog prices.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultCode    = "USD"
	DefaultCountry = "US"
)

type Currency struct {
	Code   string          `json:"code"`
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"` // units per USD
}

// Currencies is the fixed conversion table.
var Currencies = map[string]Currency{
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar", Rate: decimal.NewFromInt(1)},
	"GHS": {Code: "GHS", Symbol: "₵", Name: "Ghanaian Cedi", Rate: decimal.RequireFromString("15.2")},
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro", Rate: decimal.RequireFromString("0.93")},
	"GBP": {Code: "GBP", Symbol: "£", Name: "British Pound", Rate: decimal.RequireFromString("0.8")},
}

var countryCurrency = map[string]string{
	"US": "USD",
	"GH": "GHS",
	"NG": "NGN",
	"GB": "GBP",
	"DE": "EUR",
	"FR": "EUR",
	"IT": "EUR",
}

// Lookup returns the currency for code, or USD when the code is not in the table.
func Lookup(code string) Currency {
	if c, ok := Currencies[strings.ToUpper(code)]; ok {
		return c
	}
	return Currencies[DefaultCode]
}

// ForCountry maps an ISO country code to a supported currency. Countries whose currency has no
// rate in the table get USD.
func ForCountry(country string) Currency {
	code, ok := countryCurrency[strings.ToUpper(strings.TrimSpace(country))]
	if !ok {
		return Currencies[DefaultCode]
	}
	return Lookup(code)
}

func Convert(amountUSD decimal.Decimal, code string) decimal.Decimal {
	return amountUSD.Mul(Lookup(code).Rate)
}

var printer = message.NewPrinter(language.English)

// Format renders amount with the currency symbol and two grouped decimals, e.g. "€1,234.50".
func Format(amount decimal.Decimal, code string) string {
	c := Lookup(code)
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + c.Symbol + printer.Sprintf("%.2f", rounded.InexactFloat64())
}
