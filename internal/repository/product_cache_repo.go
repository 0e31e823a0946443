package repository

import (
	"context"
	"time"

	"github.com/askhat-dev/storefront/internal/domain/entity"
)

// ProductDetailCache caches remote product records for display paths. The
// checkout flow never reads it; validation and stock writes always go to the
// live service.
type ProductDetailCache interface {
	Get(ctx context.Context, productID string) (*entity.Product, error)
	Set(ctx context.Context, productID string, product *entity.Product, ttl time.Duration) error
	Delete(ctx context.Context, productID string) error
}
