// Package money converts between the major units used across the service
// (dollars, as decimals) and the minor units the payment provider expects.
package money

import (
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency is the only currency campaigns accept.
const Currency = "usd"

// ToMinor converts a major-unit amount to minor units, rounding half away from zero.
func ToMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// ToMajor converts minor units back to a major-unit amount.
func ToMajor(minor int64) float64 {
	return float64(minor) / 100
}

// Round2 rounds a major-unit amount to whole cents.
func Round2(amount float64) float64 {
	return ToMajor(ToMinor(amount))
}

var printer = message.NewPrinter(language.AmericanEnglish)

// Display renders a major-unit amount for people, e.g. "$ 25.50".
func Display(amount float64) string {
	return printer.Sprint(currency.Symbol(currency.USD.Amount(Round2(amount))))
}
