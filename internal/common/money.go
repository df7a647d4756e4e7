package common

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatAmount renders a whole-unit amount with thousands separators,
// e.g. FormatAmount("₹", 12345.6) is "₹12,346".
func FormatAmount(symbol string, amount float64) string {
	p := message.NewPrinter(language.English)
	return symbol + p.Sprintf("%.0f", amount)
}
