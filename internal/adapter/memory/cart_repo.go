// Package memory holds the default cart backend: plain in-process state, gone
// when the process exits. Matches the session-scoped cart contract; the redis
// backend exists for multi-instance deployments.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/askhat-dev/storefront/internal/domain/entity"
	"github.com/askhat-dev/storefront/internal/repository"
)

type cartRepository struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewCartRepository() repository.CartRepository {
	return &cartRepository{
		carts: make(map[string][]byte),
	}
}

func (r *cartRepository) GetByUserID(ctx context.Context, userID string) (*entity.Cart, error) {
	r.mu.RLock()
	data, ok := r.carts[userID]
	r.mu.RUnlock()

	if !ok {
		return entity.NewCart(userID), nil
	}

	var cart entity.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Save stores a deep copy so later mutations of the caller's cart do not leak
// into the repository. The TTL is ignored; memory carts live until cleared or
// process exit.
func (r *cartRepository) Save(ctx context.Context, cart *entity.Cart, ttl time.Duration) error {
	if cart == nil || cart.UserID == "" {
		return errors.New("cannot save nil cart or cart with empty userID")
	}

	cart.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.carts[cart.UserID] = data
	r.mu.Unlock()
	return nil
}

func (r *cartRepository) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	delete(r.carts, userID)
	r.mu.Unlock()
	return nil
}
