package service

import (
	"context"
	"fmt"
	"time"

	"github.com/askhat-dev/storefront/internal/adapter/client"
	"github.com/askhat-dev/storefront/internal/domain/entity"
	"github.com/askhat-dev/storefront/internal/platform/logger"
	"github.com/askhat-dev/storefront/internal/repository"
)

const (
	defaultCartTTL         = 24 * time.Hour
	defaultProductCacheTTL = 5 * time.Minute
)

// CartLineView is a cart line plus its computed line total, ready for display.
type CartLineView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

type CartView struct {
	UserID   string         `json:"user_id"`
	Lines    []CartLineView `json:"lines"`
	Subtotal int64          `json:"subtotal"`
	Shipping int64          `json:"shipping"`
	Total    int64          `json:"total"`
	Count    int            `json:"count"`
}

type CartSummary struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Total    int64 `json:"total"`
	Count    int   `json:"count"`
}

type CartService interface {
	AddItem(ctx context.Context, userID, productID string, quantity int) (*CartView, error)
	UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, productID string) (*CartView, error)
	GetCart(ctx context.Context, userID string) (*CartView, error)
	Summary(ctx context.Context, userID string) (*CartSummary, error)
	ClearCart(ctx context.Context, userID string) error
}

type cartService struct {
	cartRepo        repository.CartRepository
	productCache    repository.ProductDetailCache
	productClient   client.ProductServiceClient
	log             logger.Logger
	cartTTL         time.Duration
	productCacheTTL time.Duration
}

type CartServiceConfig struct {
	CartTTL         time.Duration
	ProductCacheTTL time.Duration
}

func NewCartService(
	cartRepo repository.CartRepository,
	productCache repository.ProductDetailCache,
	productClient client.ProductServiceClient,
	log logger.Logger,
	cfg CartServiceConfig,
) CartService {
	cartTTL := cfg.CartTTL
	if cartTTL <= 0 {
		cartTTL = defaultCartTTL
	}
	productCacheTTL := cfg.ProductCacheTTL
	if productCacheTTL <= 0 {
		productCacheTTL = defaultProductCacheTTL
	}

	return &cartService{
		cartRepo:        cartRepo,
		productCache:    productCache,
		productClient:   productClient,
		log:             log,
		cartTTL:         cartTTL,
		productCacheTTL: productCacheTTL,
	}
}

func viewFromCart(cart *entity.Cart) *CartView {
	view := &CartView{
		UserID: cart.UserID,
		Lines:  make([]CartLineView, 0, len(cart.Lines)),
	}
	for _, line := range cart.Lines {
		view.Lines = append(view.Lines, CartLineView{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.UnitPrice * int64(line.Quantity),
		})
	}
	view.Subtotal = cart.Total()
	view.Shipping = entity.ShippingFee(view.Subtotal)
	view.Total = view.Subtotal + view.Shipping
	view.Count = cart.Count()
	return view
}

// fetchLiveProduct always hits the remote service. The stock guard must see
// current stock, not a cached snapshot. The result refreshes the display
// cache on the way out.
func (s *cartService) fetchLiveProduct(ctx context.Context, productID string) (*entity.Product, error) {
	product, err := s.productClient.FetchProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if s.productCache != nil {
		if errSet := s.productCache.Set(ctx, productID, product, s.productCacheTTL); errSet != nil {
			s.log.Warnf("Failed to set product %s to cache: %v", productID, errSet)
		}
	}
	return product, nil
}

func (s *cartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*CartView, error) {
	s.log.Infof("Adding item to cart: UserID=%s, ProductID=%s, Quantity=%d", userID, productID, quantity)
	if quantity < 1 {
		return nil, entity.ErrQuantityNotPositive
	}

	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.log.Errorf("Error getting cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve cart: %w", err)
	}

	product, err := s.fetchLiveProduct(ctx, productID)
	if err != nil {
		s.log.Errorf("Failed to get product %s for add item check: %v", productID, err)
		return nil, err
	}

	requested := quantity
	if line, _ := cart.Line(productID); line != nil {
		requested += line.Quantity
	}
	if requested > product.Stock {
		s.log.Warnf("Rejected add to cart for product %s: requested=%d, stock=%d", productID, requested, product.Stock)
		return nil, &entity.StockInsufficientError{
			ProductID: product.ID,
			Name:      product.Name,
			Available: product.Stock,
			Requested: requested,
		}
	}

	if err := cart.AddLine(product.ID, product.Name, product.Price, quantity); err != nil {
		s.log.Errorf("Error adding item %s to cart for user %s: %v", productID, userID, err)
		return nil, fmt.Errorf("could not add item to cart: %w", err)
	}
	if err := s.cartRepo.Save(ctx, cart, s.cartTTL); err != nil {
		s.log.Errorf("Error saving cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not save cart: %w", err)
	}
	s.log.Infof("Item added to cart successfully for user %s", userID)
	return viewFromCart(cart), nil
}

// UpdateItemQuantity sets an existing line's quantity. The change is checked
// against current remote stock first; this guard is independent of, and not
// synchronized with, checkout-time validation.
func (s *cartService) UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (*CartView, error) {
	s.log.Infof("Updating item quantity: UserID=%s, ProductID=%s, NewQuantity=%d", userID, productID, quantity)
	if quantity < 1 {
		return nil, entity.ErrQuantityNotPositive
	}

	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.log.Errorf("Error getting cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve cart: %w", err)
	}
	if line, _ := cart.Line(productID); line == nil {
		return nil, entity.ErrLineNotFound
	}

	product, err := s.fetchLiveProduct(ctx, productID)
	if err != nil {
		s.log.Errorf("Failed to get product %s for quantity change check: %v", productID, err)
		return nil, err
	}
	if quantity > product.Stock {
		s.log.Warnf("Rejected quantity change for product %s: requested=%d, stock=%d", productID, quantity, product.Stock)
		return nil, &entity.StockInsufficientError{
			ProductID: product.ID,
			Name:      product.Name,
			Available: product.Stock,
			Requested: quantity,
		}
	}

	if err := cart.UpdateQuantity(productID, quantity); err != nil {
		s.log.Errorf("Error updating quantity of item %s for user %s: %v", productID, userID, err)
		return nil, fmt.Errorf("could not update item quantity: %w", err)
	}
	if err := s.cartRepo.Save(ctx, cart, s.cartTTL); err != nil {
		s.log.Errorf("Error saving cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not save cart: %w", err)
	}
	s.log.Infof("Item quantity updated successfully for user %s", userID)
	return viewFromCart(cart), nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID string) (*CartView, error) {
	s.log.Infof("Removing item from cart: UserID=%s, ProductID=%s", userID, productID)
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.log.Errorf("Error getting cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve cart: %w", err)
	}

	cart.RemoveLine(productID)

	if err := s.cartRepo.Save(ctx, cart, s.cartTTL); err != nil {
		s.log.Errorf("Error saving cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not save cart: %w", err)
	}
	s.log.Infof("Item removed from cart for user %s", userID)
	return viewFromCart(cart), nil
}

func (s *cartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.log.Errorf("Error getting cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve cart: %w", err)
	}
	return viewFromCart(cart), nil
}

func (s *cartService) Summary(ctx context.Context, userID string) (*CartSummary, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.log.Errorf("Error getting cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve cart: %w", err)
	}
	subtotal := cart.Total()
	shipping := entity.ShippingFee(subtotal)
	return &CartSummary{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal + shipping,
		Count:    cart.Count(),
	}, nil
}

func (s *cartService) ClearCart(ctx context.Context, userID string) error {
	s.log.Infof("Clearing cart for user: UserID=%s", userID)
	if err := s.cartRepo.DeleteByUserID(ctx, userID); err != nil {
		s.log.Errorf("Error deleting cart for user %s: %v", userID, err)
		return fmt.Errorf("could not clear cart: %w", err)
	}
	s.log.Infof("Cart cleared successfully for user %s", userID)
	return nil
}
