// Package shipping computes delivery fees for orders.
package shipping

// Default rates in VND.
const (
	DefaultFlatRate      int64 = 50_000
	DefaultFreeThreshold int64 = 5_000_000
)

// Calculator computes the shipping fee for an order subtotal.
type Calculator interface {
	Fee(subtotal int64) int64
}

// FlatRateCalculator charges a single flat rate, waived once the subtotal
// reaches the free-shipping threshold.
type FlatRateCalculator struct {
	rate          int64
	freeThreshold int64
}

// NewFlatRateCalculator creates a flat-rate calculator.
func NewFlatRateCalculator(rate, freeThreshold int64) *FlatRateCalculator {
	return &FlatRateCalculator{rate: rate, freeThreshold: freeThreshold}
}

// NewDefaultCalculator creates a calculator with the standard VND rates.
func NewDefaultCalculator() *FlatRateCalculator {
	return NewFlatRateCalculator(DefaultFlatRate, DefaultFreeThreshold)
}

// Fee returns the shipping fee for the given subtotal. Orders at or above
// the free-shipping threshold ship free.
func (c *FlatRateCalculator) Fee(subtotal int64) int64 {
	if subtotal >= c.freeThreshold {
		return 0
	}
	return c.rate
}
