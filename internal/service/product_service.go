package service

import (
	"context"
	"errors"
	"time"

	"github.com/askhat-dev/storefront/internal/adapter/client"
	"github.com/askhat-dev/storefront/internal/domain/entity"
	"github.com/askhat-dev/storefront/internal/platform/logger"
	"github.com/askhat-dev/storefront/internal/repository"
)

// ProductService serves the browsing path: product details read through the
// redis cache. Checkout never uses this path.
type ProductService interface {
	GetProduct(ctx context.Context, productID string) (*entity.Product, error)
}

type productService struct {
	productCache  repository.ProductDetailCache
	productClient client.ProductServiceClient
	log           logger.Logger
	cacheTTL      time.Duration
}

func NewProductService(
	productCache repository.ProductDetailCache,
	productClient client.ProductServiceClient,
	log logger.Logger,
	cacheTTL time.Duration,
) ProductService {
	if cacheTTL <= 0 {
		cacheTTL = defaultProductCacheTTL
	}
	return &productService{
		productCache:  productCache,
		productClient: productClient,
		log:           log,
		cacheTTL:      cacheTTL,
	}
}

func (s *productService) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	if s.productCache != nil {
		cached, err := s.productCache.Get(ctx, productID)
		if err == nil && cached != nil {
			s.log.Debugf("Product %s found in cache", productID)
			return cached, nil
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.log.Warnf("Error getting product %s from cache: %v. Fetching from service.", productID, err)
		}
	}

	product, err := s.productClient.FetchProduct(ctx, productID)
	if err != nil {
		s.log.Errorf("Failed to fetch product %s: %v", productID, err)
		return nil, err
	}

	if s.productCache != nil {
		if errSet := s.productCache.Set(ctx, productID, product, s.cacheTTL); errSet != nil {
			s.log.Warnf("Failed to set product %s to cache: %v", productID, errSet)
		}
	}
	return product, nil
}
