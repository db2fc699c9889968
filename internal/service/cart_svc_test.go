package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/api/dto"
	"storefront/internal/model"
)

func TestCartService_CreateEmpty(t *testing.T) {
	svc := newServices(t, nil)

	cart, err := svc.carts.Create(context.Background())
	require.NoError(t, err)

	_, err = uuid.Parse(cart.ID)
	assert.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0.00", cart.TotalPrice().StringFixed(2))
}

func TestCartService_AddItemMerges(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()
	col := svc.seedCollection(t, "Kitchen")
	mug := svc.seedProduct(t, col.ID, "Mug", "5.00")

	cart, err := svc.carts.Create(ctx)
	require.NoError(t, err)

	first, err := svc.carts.AddItem(ctx, cart.ID, &dto.AddCartItemRequest{ProductID: mug.ID, Quantity: 2})
	require.NoError(t, err)
	second, err := svc.carts.AddItem(ctx, cart.ID, &dto.AddCartItemRequest{ProductID: mug.ID, Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "同一商品应合并为一行")
	assert.Equal(t, 5, second.Quantity)

	got, err := svc.carts.Get(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "25.00", got.Items[0].TotalPrice().StringFixed(2))
	assert.Equal(t, "25.00", got.TotalPrice().StringFixed(2))
}

func TestCartService_TotalsFollowCurrentPrice(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()
	col := svc.seedCollection(t, "Kitchen")
	mug := svc.seedProduct(t, col.ID, "Mug", "5.00")
	bowl := svc.seedProduct(t, col.ID, "Bowl", "2.50")
	cartID := svc.cartWith(t, map[int64]int{mug.ID: 1, bowl.ID: 2})

	got, err := svc.carts.Get(ctx, cartID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.TotalPrice().StringFixed(2))

	_, err = svc.products.SetPrice(ctx, mug.ID, mustDecimal("7.00"))
	require.NoError(t, err)

	got, err = svc.carts.Get(ctx, cartID)
	require.NoError(t, err)
	assert.Equal(t, "12.00", got.TotalPrice().StringFixed(2))
}

func TestCartService_AddItemUnknownProduct(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()
	cart, err := svc.carts.Create(ctx)
	require.NoError(t, err)

	_, err = svc.carts.AddItem(ctx, cart.ID, &dto.AddCartItemRequest{ProductID: 404, Quantity: 1})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Product with given ID was not found", ve.Fields["product_id"])
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_NotFound(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		id   string
	}{
		{"非法 UUID", "not-a-uuid"},
		{"不存在", uuid.NewString()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.carts.Get(ctx, tt.id)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, svc.carts.Delete(ctx, tt.id), ErrNotFound)
			_, err = svc.carts.ListItems(ctx, tt.id)
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = svc.carts.AddItem(ctx, tt.id, &dto.AddCartItemRequest{ProductID: 1, Quantity: 1})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestCartService_ItemsScopedToCart(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()
	col := svc.seedCollection(t, "Kitchen")
	mug := svc.seedProduct(t, col.ID, "Mug", "5.00")
	mine := svc.cartWith(t, map[int64]int{mug.ID: 1})
	other := svc.cartWith(t, map[int64]int{})

	items, err := svc.carts.ListItems(ctx, mine)
	require.NoError(t, err)
	require.Len(t, items, 1)
	itemID := items[0].ID

	_, err = svc.carts.GetItem(ctx, other, itemID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.carts.UpdateItem(ctx, other, itemID, 9)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.carts.DeleteItem(ctx, other, itemID), ErrNotFound)

	updated, err := svc.carts.UpdateItem(ctx, mine, itemID, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Quantity)

	require.NoError(t, svc.carts.DeleteItem(ctx, mine, itemID))
	items, err = svc.carts.ListItems(ctx, mine)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartService_DeleteCascadesItems(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()
	col := svc.seedCollection(t, "Kitchen")
	mug := svc.seedProduct(t, col.ID, "Mug", "5.00")
	cartID := svc.cartWith(t, map[int64]int{mug.ID: 3})

	require.NoError(t, svc.carts.Delete(ctx, cartID))

	var count int64
	svc.db.Model(&model.CartItem{}).Where("cart_id = ?", cartID).Count(&count)
	assert.Zero(t, count)
}

func TestCartService_CleanupStale(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()
	col := svc.seedCollection(t, "Kitchen")
	mug := svc.seedProduct(t, col.ID, "Mug", "5.00")

	stale := svc.cartWith(t, map[int64]int{mug.ID: 1})
	fresh := svc.cartWith(t, map[int64]int{mug.ID: 1})
	require.NoError(t, svc.db.Model(&model.Cart{}).Where("id = ?", stale).
		Update("created_at", time.Now().Add(-45*24*time.Hour)).Error)

	removed, err := svc.carts.CleanupStale(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = svc.carts.Get(ctx, stale)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.carts.Get(ctx, fresh)
	assert.NoError(t, err)
}
