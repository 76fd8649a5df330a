package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineSubtotal(t *testing.T) {
	assert.Equal(t, int64(0), LineSubtotal(0, 2500))
	assert.Equal(t, int64(2500), LineSubtotal(1, 2500))
	assert.Equal(t, int64(7500), LineSubtotal(3, 2500))
	assert.Equal(t, int64(0), LineSubtotal(5, 0))
}

func TestLineSubtotalPanicsOnNegativeInput(t *testing.T) {
	assert.Panics(t, func() { LineSubtotal(-1, 100) })
	assert.Panics(t, func() { LineSubtotal(1, -100) })
}

func TestTaxTruncatesTowardZero(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		expected int64
	}{
		{"zero subtotal", 0, 0},
		{"one cent truncates to zero", 1, 0},
		{"99 cents", 99, 18},        // 18.81 truncated
		{"2500 is exact", 2500, 475}, // 19% of 25.00
		{"10000 is exact", 10000, 1900},
		{"odd amount truncates", 10001, 1900}, // 1900.19 truncated
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, VAT(tt.subtotal))
		})
	}
}

func TestTaxWithCustomRate(t *testing.T) {
	assert.Equal(t, int64(1000), Tax(10000, 1000)) // 10%
	assert.Equal(t, int64(0), Tax(10000, 0))
}

func TestTaxPanicsOnNegativeInput(t *testing.T) {
	assert.Panics(t, func() { Tax(-1, VATRateBasisPoints) })
	assert.Panics(t, func() { Tax(100, -1) })
}

func TestTotal(t *testing.T) {
	assert.Equal(t, int64(2975), Total(2500))
	assert.Equal(t, int64(0), Total(0))
	// Total always equals subtotal plus VAT, never an independent sum
	assert.Equal(t, int64(10001)+VAT(10001), Total(10001))
}
