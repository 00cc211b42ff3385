package view

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vench/salesdash"
)

const missingValue = "-"

var printer = message.NewPrinter(language.English)

// Currency renders a whole-dollar amount with thousands separators.
func Currency(n salesdash.NullNumber) string {
	if !n.Valid {
		return missingValue
	}
	return printer.Sprintf("$%.0f", n.Float64)
}

// CurrencyCents renders a dollar amount with cents.
func CurrencyCents(n salesdash.NullNumber) string {
	if !n.Valid {
		return missingValue
	}
	return printer.Sprintf("$%.2f", n.Float64)
}

// Count renders an integer with thousands separators.
func Count(n int64) string {
	return printer.Sprintf("%d", n)
}
