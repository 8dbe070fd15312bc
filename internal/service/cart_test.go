package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietart/artmarket/internal/domain"
)

func testProduct(price int64, stock int32) *domain.Product {
	return &domain.Product{
		ID:          uuid.New(),
		Title:       "Sunset Over Halong Bay",
		PriceValue:  price,
		Currency:    "VND",
		Images:      []string{"https://cdn.example.com/halong.jpg"},
		ArtistID:    uuid.New(),
		ArtistName:  "Tran Minh",
		IsAvailable: true,
		Stock:       stock,
	}
}

func newCartFixture(products ...*domain.Product) (*CartService, *memCartStore, *memProductStore) {
	cartStore := newMemCartStore()
	productStore := newMemProductStore(products...)
	svc := NewCartService(cartStore, productStore, loggerForTest(), metricsForTest())
	return svc, cartStore, productStore
}

func TestAddLineCapturesPriceAtAdd(t *testing.T) {
	product := testProduct(2_000_000, 10)
	svc, _, productStore := newCartFixture(product)
	userID := uuid.New()

	view, err := svc.AddLine(context.Background(), userID, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(2_000_000), view.Items[0].Price)

	// A later price change must not touch the committed line price.
	newPrice := int64(3_500_000)
	_, err = productStore.Update(context.Background(), product.ID, domain.UpdateProductParams{PriceValue: &newPrice})
	require.NoError(t, err)

	view, err = svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2_000_000), view.Items[0].Price)
	assert.Equal(t, newPrice, view.Items[0].Product.PriceValue)
	assert.Equal(t, int64(4_000_000), view.TotalPrice)
}

func TestAddLineMergesIntoSingleLine(t *testing.T) {
	product := testProduct(500_000, 10)
	svc, _, _ := newCartFixture(product)
	userID := uuid.New()

	_, err := svc.AddLine(context.Background(), userID, product.ID, 2)
	require.NoError(t, err)
	view, err := svc.AddLine(context.Background(), userID, product.ID, 3)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, int32(5), view.Items[0].Quantity)
	assert.Equal(t, int32(5), view.TotalItems)
	assert.Equal(t, int64(2_500_000), view.TotalPrice)
}

func TestAddLineMergedQuantityExceedsStock(t *testing.T) {
	product := testProduct(500_000, 5)
	svc, _, _ := newCartFixture(product)
	userID := uuid.New()

	_, err := svc.AddLine(context.Background(), userID, product.ID, 4)
	require.NoError(t, err)

	// 4 + 2 = 6 exceeds stock 5; nothing may be written.
	_, err = svc.AddLine(context.Background(), userID, product.ID, 2)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Contains(t, domain.ErrorMessage(err), "Available: 5")

	view, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int32(4), view.Items[0].Quantity)
}

func TestAddLineQuantityBounds(t *testing.T) {
	product := testProduct(500_000, 200)
	svc, _, _ := newCartFixture(product)
	userID := uuid.New()

	_, err := svc.AddLine(context.Background(), userID, product.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.AddLine(context.Background(), userID, product.ID, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	// 99 is the cap; merging past it fails even with stock to spare.
	_, err = svc.AddLine(context.Background(), userID, product.ID, 99)
	require.NoError(t, err)
	_, err = svc.AddLine(context.Background(), userID, product.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestAddLineUnavailableProduct(t *testing.T) {
	product := testProduct(500_000, 10)
	product.IsAvailable = false
	svc, _, _ := newCartFixture(product)

	_, err := svc.AddLine(context.Background(), uuid.New(), product.ID, 1)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Contains(t, domain.ErrorMessage(err), "not available")
}

func TestAddLineUnknownProduct(t *testing.T) {
	svc, _, _ := newCartFixture()

	_, err := svc.AddLine(context.Background(), uuid.New(), uuid.New(), 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestUpdateLineZeroRemoves(t *testing.T) {
	product := testProduct(500_000, 10)
	svc, _, _ := newCartFixture(product)
	userID := uuid.New()

	_, err := svc.AddLine(context.Background(), userID, product.ID, 2)
	require.NoError(t, err)

	view, err := svc.UpdateLine(context.Background(), userID, product.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.TotalItems)
	assert.Zero(t, view.TotalPrice)
}

func TestUpdateLineBoundedByStock(t *testing.T) {
	product := testProduct(500_000, 3)
	svc, _, _ := newCartFixture(product)
	userID := uuid.New()

	_, err := svc.AddLine(context.Background(), userID, product.ID, 2)
	require.NoError(t, err)

	_, err = svc.UpdateLine(context.Background(), userID, product.ID, 5)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	view, err := svc.UpdateLine(context.Background(), userID, product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int32(3), view.Items[0].Quantity)
}

func TestRemoveLineMissing(t *testing.T) {
	product := testProduct(500_000, 10)
	svc, _, _ := newCartFixture(product)
	userID := uuid.New()

	_, err := svc.AddLine(context.Background(), userID, product.ID, 1)
	require.NoError(t, err)

	_, err = svc.RemoveLine(context.Background(), userID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound)
}

func TestClearCartIdempotent(t *testing.T) {
	svc, _, _ := newCartFixture()
	userID := uuid.New()

	view, err := svc.ClearCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	view, err = svc.ClearCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCartViewSurvivesDeletedProduct(t *testing.T) {
	product := testProduct(500_000, 10)
	svc, _, productStore := newCartFixture(product)
	userID := uuid.New()

	_, err := svc.AddLine(context.Background(), userID, product.ID, 2)
	require.NoError(t, err)

	require.NoError(t, productStore.Delete(context.Background(), product.ID))

	view, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Nil(t, view.Items[0].Product)
	assert.Equal(t, int64(500_000), view.Items[0].Price)
}
