package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatRateFee(t *testing.T) {
	calc := NewDefaultCalculator()

	tests := []struct {
		name     string
		subtotal int64
		want     int64
	}{
		{"small order pays flat rate", 300_000, 50_000},
		{"one below threshold pays flat rate", 4_999_999, 50_000},
		{"exactly at threshold ships free", 5_000_000, 0},
		{"above threshold ships free", 12_500_000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calc.Fee(tt.subtotal))
		})
	}
}
