package services_test

import (
	"testing"

	"vapestore/internal/repositories"
	"vapestore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartFixture(t *testing.T) (*services.CartService, *repositories.MockProductRepository) {
	t.Helper()
	productRepo := repositories.NewMockProductRepository()
	return services.NewCartService(repositories.NewMockCartRepository(), productRepo), productRepo
}

func TestCartService_AddItem(t *testing.T) {
	svc, productRepo := newCartFixture(t)
	seedProduct(t, productRepo, "p1", "Arctic Mint", 10.0, 5)

	cart, err := svc.AddItem("user-1", "p1", "mint", 3, "")
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 1, cart[0].Quantity)
	assert.Equal(t, "Arctic Mint.jpg", cart[0].SelectedImage)

	// Same variant tuple increments the existing line.
	cart, err = svc.AddItem("user-1", "p1", "mint", 3, "")
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)

	// A different variant is a separate line.
	cart, err = svc.AddItem("user-1", "p1", "mango", 3, "")
	require.NoError(t, err)
	assert.Len(t, cart, 2)
}

func TestCartService_AddItem_Validation(t *testing.T) {
	svc, productRepo := newCartFixture(t)
	seedProduct(t, productRepo, "p1", "Arctic Mint", 10.0, 5)

	_, err := svc.AddItem("user-1", "missing", "mint", 3, "")
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = svc.AddItem("user-1", "p1", "licorice", 3, "")
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = svc.AddItem("user-1", "p1", "mint", 99, "")
	assert.ErrorIs(t, err, services.ErrConflict)

	cart, err := svc.GetCart("user-1")
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestCartService_RemoveItem(t *testing.T) {
	svc, productRepo := newCartFixture(t)
	seedProduct(t, productRepo, "p1", "Arctic Mint", 10.0, 5)

	_, err := svc.AddItem("user-1", "p1", "mint", 3, "")
	require.NoError(t, err)
	_, err = svc.AddItem("user-1", "p1", "mint", 3, "")
	require.NoError(t, err)

	// Decrements first, deletes at zero.
	cart, err := svc.RemoveItem("user-1", "p1", "mint", 3)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 1, cart[0].Quantity)

	cart, err = svc.RemoveItem("user-1", "p1", "mint", 3)
	require.NoError(t, err)
	assert.Empty(t, cart)

	// Removing an absent line is an error.
	_, err = svc.RemoveItem("user-1", "p1", "mint", 3)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Contains(t, err.Error(), "item not found in cart")
}

func TestCartService_OwnersAreIsolated(t *testing.T) {
	svc, productRepo := newCartFixture(t)
	seedProduct(t, productRepo, "p1", "Arctic Mint", 10.0, 5)

	_, err := svc.AddItem("user-1", "p1", "mint", 3, "")
	require.NoError(t, err)
	_, err = svc.AddItem("user-2", "p1", "mint", 3, "")
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart("user-1"))

	cart, err := svc.GetCart("user-1")
	require.NoError(t, err)
	assert.Empty(t, cart)

	cart, err = svc.GetCart("user-2")
	require.NoError(t, err)
	assert.Len(t, cart, 1)
}
