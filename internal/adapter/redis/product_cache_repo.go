package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/askhat-dev/storefront/internal/domain/entity"
	"github.com/askhat-dev/storefront/internal/repository"
	"github.com/redis/go-redis/v9"
)

const productDetailKeyPrefix = "product_detail:"

type productDetailCacheRepository struct {
	client *redis.Client
}

func NewProductDetailCacheRepository(client *redis.Client) repository.ProductDetailCache {
	return &productDetailCacheRepository{client: client}
}

func (r *productDetailCacheRepository) productDetailKey(productID string) string {
	return productDetailKeyPrefix + productID
}

func (r *productDetailCacheRepository) Get(ctx context.Context, productID string) (*entity.Product, error) {
	val, err := r.client.Get(ctx, r.productDetailKey(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product detail for productID %s from redis: %w", productID, err)
	}

	var product entity.Product
	if err := json.Unmarshal(val, &product); err != nil {
		// A corrupt entry is worse than a miss.
		_ = r.Delete(ctx, productID)
		return nil, fmt.Errorf("failed to unmarshal product detail data for productID %s: %w", productID, err)
	}
	return &product, nil
}

func (r *productDetailCacheRepository) Set(ctx context.Context, productID string, product *entity.Product, ttl time.Duration) error {
	if product == nil || productID == "" {
		return errors.New("cannot cache nil product or product with empty productID")
	}

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product detail for productID %s: %w", productID, err)
	}

	if err := r.client.Set(ctx, r.productDetailKey(productID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set product detail for productID %s to redis: %w", productID, err)
	}
	return nil
}

func (r *productDetailCacheRepository) Delete(ctx context.Context, productID string) error {
	if err := r.client.Del(ctx, r.productDetailKey(productID)).Err(); err != nil {
		return fmt.Errorf("failed to delete product detail for productID %s from redis: %w", productID, err)
	}
	return nil
}
