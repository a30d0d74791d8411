package cart_test

import (
	"context"
	"errors"
	"testing"

	"eshop/cart"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewView(t *testing.T) {
	snap := &cart.Snapshot{
		UserID: "alice",
		Lines: []cart.SnapshotLine{
			{LineID: 1, ProductID: 10, Name: "mug", ImageURL: "/m.jpg", Price: decimal.RequireFromString("7.50"), Quantity: 2, StockQuantity: 9},
			{LineID: 2, ProductID: 11, Name: cart.UnknownProductName, ImageURL: "/images/placeholder.jpg", Price: decimal.Zero, Quantity: 3, Defunct: true},
		},
	}

	view := cart.NewView(snap)
	require.Len(t, view.Items, 2)
	assert.False(t, view.IsEmpty())
	assert.Equal(t, 5, view.Count)
	assert.True(t, decimal.NewFromInt(15).Equal(view.Total), view.Total.String())

	mug := view.Items[0]
	assert.Equal(t, int64(1), mug.ID)
	assert.Equal(t, "mug", mug.ProductName)
	assert.True(t, decimal.NewFromInt(15).Equal(mug.Total))
	assert.True(t, mug.Available)

	gone := view.Items[1]
	assert.False(t, gone.Available)
	assert.True(t, gone.Total.IsZero())
}

func TestNewView_Empty(t *testing.T) {
	view := cart.NewView(nil)
	assert.True(t, view.IsEmpty())
	assert.NotNil(t, view.Items)
	assert.True(t, view.Total.IsZero())
}

type countFunc func(ctx context.Context, userID string) (int, error)

func (f countFunc) GetItemCount(ctx context.Context, userID string) (int, error) {
	return f(ctx, userID)
}

func TestCountBadge(t *testing.T) {
	badge, err := cart.CountBadge(context.Background(), countFunc(func(_ context.Context, userID string) (int, error) {
		assert.Equal(t, "alice", userID)
		return 4, nil
	}), "alice")
	require.NoError(t, err)
	assert.Equal(t, 4, badge.Count)
	assert.Equal(t, "4", badge.Label())
	assert.False(t, badge.Empty())

	assert.Equal(t, "99+", cart.Badge{Count: 120}.Label())
	assert.True(t, cart.Badge{}.Empty())

	_, err = cart.CountBadge(context.Background(), countFunc(func(context.Context, string) (int, error) {
		return 0, cart.ErrStorageUnavailable
	}), "alice")
	assert.True(t, errors.Is(err, cart.ErrStorageUnavailable))
}
