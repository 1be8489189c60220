// Package pricing holds the money math for the storefront: display
// formatting, discount badges, volume-range totals and the shipping rule.
// Everything here is a pure function over whole-rupee integer amounts.
package pricing

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// FreeShippingThreshold is inclusive: a subtotal of exactly 2000 ships free.
	FreeShippingThreshold int64 = 2000

	// FlatShippingFee applies to every order below the threshold.
	FlatShippingFee int64 = 150
)

var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatPrice renders a whole-rupee amount as a localized currency string
// with zero decimal places, e.g. 123456 -> "₹1,23,456". Negative input is
// clamped to 0.
func FormatPrice(amount int64) string {
	if amount < 0 {
		amount = 0
	}
	return inr.Sprintf("₹%v", number.Decimal(amount))
}

// DiscountPercent is the rounded percentage saved buying at current instead
// of original. A non-positive original yields 0.
func DiscountPercent(current, original int64) int {
	if original <= 0 {
		return 0
	}
	return int(math.Round((1 - float64(current)/float64(original)) * 100))
}

// RangePrice is the total for a "volumes 1..count" selection. The per-unit
// price is a flat multiplier; there is no bundle discount curve.
func RangePrice(perUnit int64, count int) int64 {
	if count < 1 {
		count = 1
	}
	return perUnit * int64(count)
}

// ShippingCost for a given subtotal.
func ShippingCost(subtotal int64) int64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// AmountToFreeShipping is how much more the shopper must add to ship free.
func AmountToFreeShipping(subtotal int64) int64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return FreeShippingThreshold - subtotal
}
