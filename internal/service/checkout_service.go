package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/askhat-dev/storefront/internal/adapter/client"
	"github.com/askhat-dev/storefront/internal/adapter/nats"
	"github.com/askhat-dev/storefront/internal/domain/entity"
	"github.com/askhat-dev/storefront/internal/platform/logger"
	"github.com/askhat-dev/storefront/internal/repository"
)

const natsSubjectCheckoutCompleted = "order.checkout.completed"

var (
	ErrEmptyCart          = errors.New("cannot check out an empty cart")
	ErrCheckoutInProgress = errors.New("a checkout is already in progress for this user")
)

// CheckoutService converts a cart into a confirmed order and decrements
// remote stock accordingly.
//
// Per invocation the flow runs Validating then Decrementing, each walking the
// cart lines in order with sequential remote calls. There is no locking
// between the validation read and the decrement read/write: two concurrent
// checkouts for the same product can both pass validation and both decrement,
// which is why the decrement clamps at zero instead of rejecting. Failures
// during Decrementing are not compensated; stock already decremented for
// earlier lines stays decremented and the cart is left untouched for retry.
type CheckoutService interface {
	Checkout(ctx context.Context, userID string) (*entity.Order, error)
}

type checkoutService struct {
	cartService   CartService
	productClient client.ProductServiceClient
	userRepo      repository.UserRepository
	publisher     nats.MessagePublisher
	receipts      ReceiptService
	log           logger.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewCheckoutService(
	cartService CartService,
	productClient client.ProductServiceClient,
	userRepo repository.UserRepository,
	publisher nats.MessagePublisher,
	receipts ReceiptService,
	log logger.Logger,
) CheckoutService {
	return &checkoutService{
		cartService:   cartService,
		productClient: productClient,
		userRepo:      userRepo,
		publisher:     publisher,
		receipts:      receipts,
		log:           log,
		inFlight:      make(map[string]bool),
	}
}

// begin is the per-user busy flag: a second checkout while one is in flight is
// rejected rather than queued.
func (s *checkoutService) begin(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[userID] {
		return ErrCheckoutInProgress
	}
	s.inFlight[userID] = true
	return nil
}

func (s *checkoutService) end(userID string) {
	s.mu.Lock()
	delete(s.inFlight, userID)
	s.mu.Unlock()
}

func (s *checkoutService) Checkout(ctx context.Context, userID string) (*entity.Order, error) {
	if err := s.begin(userID); err != nil {
		s.log.Warnf("Rejected concurrent checkout for user %s", userID)
		return nil, err
	}
	defer s.end(userID)

	cart, err := s.cartService.GetCart(ctx, userID)
	if err != nil {
		s.log.Errorf("Failed to get cart for user %s at checkout: %v", userID, err)
		return nil, fmt.Errorf("failed to retrieve cart for checkout: %w", err)
	}
	if len(cart.Lines) == 0 {
		s.log.Warnf("User %s attempted to check out an empty cart", userID)
		return nil, ErrEmptyCart
	}

	s.log.Infof("Checkout validating %d cart lines for user %s", len(cart.Lines), userID)
	if err := s.validateStock(ctx, cart); err != nil {
		return nil, err
	}

	order, err := s.buildOrder(userID, cart)
	if err != nil {
		s.log.Errorf("Failed to build order snapshot for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to prepare order: %w", err)
	}

	s.log.Infof("Checkout decrementing stock for order %s (user %s)", order.ID, userID)
	if err := s.decrementStock(ctx, cart); err != nil {
		return nil, err
	}

	// All decrements succeeded; only now does the cart go away.
	if err := s.cartService.ClearCart(ctx, userID); err != nil {
		s.log.Warnf("Failed to clear cart for user %s after checkout %s: %v", userID, order.ID, err)
	}

	s.notifyCompleted(ctx, order)

	s.log.Infof("Checkout %s completed for user %s, total %d", order.ID, userID, order.Total)
	return order, nil
}

// validateStock walks cart lines in order and stops at the first line whose
// requested quantity exceeds remote stock. Only the first violation is
// reported.
func (s *checkoutService) validateStock(ctx context.Context, cart *CartView) error {
	for _, line := range cart.Lines {
		product, err := s.productClient.FetchProduct(ctx, line.ProductID)
		if err != nil {
			s.log.Errorf("Checkout validation failed fetching product %s: %v", line.ProductID, err)
			return fmt.Errorf("checkout validation failed for product %s: %w", line.ProductID, err)
		}
		if product.Stock < line.Quantity {
			s.log.Warnf("Checkout blocked: product %s stock=%d, requested=%d", line.ProductID, product.Stock, line.Quantity)
			return &entity.StockInsufficientError{
				ProductID: product.ID,
				Name:      product.Name,
				Available: product.Stock,
				Requested: line.Quantity,
			}
		}
	}
	return nil
}

func (s *checkoutService) buildOrder(userID string, cart *CartView) (*entity.Order, error) {
	lines := make([]entity.OrderLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		orderLine, err := entity.NewOrderLine(line.ProductID, line.Name, line.UnitPrice, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("invalid cart line for product %s: %w", line.ProductID, err)
		}
		lines = append(lines, *orderLine)
	}
	return entity.NewOrder(userID, lines)
}

// decrementStock re-fetches each product and writes back the clamped new
// stock, one line at a time in cart order. The re-fetch is independent of the
// validation read; stock may have moved in between. A failed call aborts
// immediately and earlier decrements stay applied.
func (s *checkoutService) decrementStock(ctx context.Context, cart *CartView) error {
	for _, line := range cart.Lines {
		product, err := s.productClient.FetchProduct(ctx, line.ProductID)
		if err != nil {
			s.log.Errorf("Checkout aborted fetching product %s for decrement: %v", line.ProductID, err)
			return fmt.Errorf("checkout failed while updating stock: %w", err)
		}

		newStock := product.Stock - line.Quantity
		if newStock < 0 {
			newStock = 0
		}

		if _, err := s.productClient.UpdateStock(ctx, line.ProductID, newStock); err != nil {
			s.log.Errorf("Checkout aborted updating stock of product %s: %v", line.ProductID, err)
			return fmt.Errorf("checkout failed while updating stock: %w", err)
		}
	}
	return nil
}

// notifyCompleted fires the post-checkout side effects. Both are best-effort;
// a failure is logged and never fails the checkout.
func (s *checkoutService) notifyCompleted(ctx context.Context, order *entity.Order) {
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, natsSubjectCheckoutCompleted, order); err != nil {
			s.log.Warnf("Failed to publish checkout completed event for order %s: %v", order.ID, err)
		}
	}

	if s.receipts == nil || s.userRepo == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, order.UserID)
	if err != nil {
		s.log.Warnf("Could not load user %s for receipt email: %v", order.UserID, err)
		return
	}
	if err := s.receipts.SendOrderReceipt(ctx, order, user.Email); err != nil {
		s.log.Warnf("Failed to send receipt for order %s: %v", order.ID, err)
	}
}
