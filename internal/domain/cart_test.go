package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCartComputeTotals(t *testing.T) {
	cart := &Cart{
		Items: []CartLine{
			{ProductID: uuid.New(), Quantity: 2, Price: 1_500_000},
			{ProductID: uuid.New(), Quantity: 1, Price: 300_000},
		},
	}

	cart.ComputeTotals()

	assert.Equal(t, int32(3), cart.TotalItems)
	assert.Equal(t, int64(3_300_000), cart.TotalPrice)
}

func TestCartComputeTotalsEmpty(t *testing.T) {
	cart := &Cart{TotalItems: 5, TotalPrice: 999}

	cart.ComputeTotals()

	assert.Zero(t, cart.TotalItems)
	assert.Zero(t, cart.TotalPrice)
}
