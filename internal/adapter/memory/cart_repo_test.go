package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askhat-dev/storefront/internal/domain/entity"
)

func TestCartRepository_MissingCartIsEmptyCart(t *testing.T) {
	repo := NewCartRepository()

	cart, err := repo.GetByUserID(context.Background(), "user1")
	require.NoError(t, err)
	assert.Equal(t, "user1", cart.UserID)
	assert.True(t, cart.IsEmpty())
}

func TestCartRepository_SaveAndGet(t *testing.T) {
	repo := NewCartRepository()
	ctx := context.Background()

	cart := entity.NewCart("user1")
	require.NoError(t, cart.AddLine("p1", "Keyboard", 10000, 2))
	require.NoError(t, repo.Save(ctx, cart, time.Hour))

	got, err := repo.GetByUserID(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "p1", got.Lines[0].ProductID)
	assert.Equal(t, 2, got.Lines[0].Quantity)
	assert.Equal(t, int64(10000), got.Lines[0].UnitPrice)
}

func TestCartRepository_SaveRejectsInvalid(t *testing.T) {
	repo := NewCartRepository()
	ctx := context.Background()

	assert.Error(t, repo.Save(ctx, nil, time.Hour))
	assert.Error(t, repo.Save(ctx, &entity.Cart{}, time.Hour))
}

func TestCartRepository_SavedStateIsIsolatedFromCaller(t *testing.T) {
	repo := NewCartRepository()
	ctx := context.Background()

	cart := entity.NewCart("user1")
	require.NoError(t, cart.AddLine("p1", "Keyboard", 10000, 2))
	require.NoError(t, repo.Save(ctx, cart, time.Hour))

	// Mutating the caller's cart after Save must not affect the stored copy.
	require.NoError(t, cart.UpdateQuantity("p1", 99))

	got, err := repo.GetByUserID(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Lines[0].Quantity)
}

func TestCartRepository_Delete(t *testing.T) {
	repo := NewCartRepository()
	ctx := context.Background()

	cart := entity.NewCart("user1")
	require.NoError(t, cart.AddLine("p1", "Keyboard", 10000, 2))
	require.NoError(t, repo.Save(ctx, cart, time.Hour))

	require.NoError(t, repo.DeleteByUserID(ctx, "user1"))

	got, err := repo.GetByUserID(ctx, "user1")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	// Deleting an absent cart is a no-op.
	assert.NoError(t, repo.DeleteByUserID(ctx, "user1"))
}

func TestCartRepository_CartsAreKeyedByUser(t *testing.T) {
	repo := NewCartRepository()
	ctx := context.Background()

	first := entity.NewCart("user1")
	require.NoError(t, first.AddLine("p1", "Keyboard", 10000, 1))
	require.NoError(t, repo.Save(ctx, first, time.Hour))

	second := entity.NewCart("user2")
	require.NoError(t, second.AddLine("p2", "Mouse", 5000, 3))
	require.NoError(t, repo.Save(ctx, second, time.Hour))

	got, err := repo.GetByUserID(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "p1", got.Lines[0].ProductID)
}
