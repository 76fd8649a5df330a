// Package money implements integer minor-unit arithmetic for prices and
// totals. Amounts are int64 cents throughout; floats never touch money.
package money

import "fmt"

// VATRateBasisPoints is the fixed 19% VAT applied to every receipt,
// expressed in basis points.
const VATRateBasisPoints = 1900

// LineSubtotal returns quantity * unitPrice. Both inputs must be
// non-negative; violating that is a programming error, not a user error.
func LineSubtotal(quantity int, unitPrice int64) int64 {
	if quantity < 0 {
		panic(fmt.Sprintf("money: negative quantity %d", quantity))
	}
	if unitPrice < 0 {
		panic(fmt.Sprintf("money: negative unit price %d", unitPrice))
	}
	return int64(quantity) * unitPrice
}

// Tax returns the tax on subtotal at the given rate in basis points,
// truncated toward zero (floor for the non-negative inputs we accept).
func Tax(subtotal, rateBasisPoints int64) int64 {
	if subtotal < 0 {
		panic(fmt.Sprintf("money: negative subtotal %d", subtotal))
	}
	if rateBasisPoints < 0 {
		panic(fmt.Sprintf("money: negative tax rate %d", rateBasisPoints))
	}
	return subtotal * rateBasisPoints / 10000
}

// VAT returns the fixed-rate tax for a subtotal.
func VAT(subtotal int64) int64 {
	return Tax(subtotal, VATRateBasisPoints)
}

// Total returns subtotal plus its fixed-rate tax.
func Total(subtotal int64) int64 {
	return subtotal + VAT(subtotal)
}
