package repository

import (
	"context"
	"time"

	"github.com/askhat-dev/storefront/internal/domain/entity"
)

// CartRepository stores the session-scoped cart per user. Implementations that
// do not expire entries may ignore the TTL.
type CartRepository interface {
	GetByUserID(ctx context.Context, userID string) (*entity.Cart, error)
	Save(ctx context.Context, cart *entity.Cart, ttl time.Duration) error
	DeleteByUserID(ctx context.Context, userID string) error
}
