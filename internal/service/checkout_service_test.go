package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/askhat-dev/storefront/internal/adapter/client"
	"github.com/askhat-dev/storefront/internal/adapter/memory"
	"github.com/askhat-dev/storefront/internal/domain/entity"
	"github.com/askhat-dev/storefront/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stockUpdate struct {
	ProductID string
	Stock     int
}

// stubProductClient is a scriptable in-memory stand-in for the remote product
// service. fetchSeq lets a test vary the stock returned by successive fetches
// of the same product, which is how the no-snapshot-isolation window between
// validation and decrement gets simulated.
type stubProductClient struct {
	mu          sync.Mutex
	products    map[string]*entity.Product
	fetchSeq    map[string][]int
	updateErrAt int // 1-based index of the UpdateStock call that fails; 0 = never
	updates     []stockUpdate

	fetchStarted chan struct{}
	fetchRelease chan struct{}
}

func newStubProductClient(products ...*entity.Product) *stubProductClient {
	s := &stubProductClient{
		products: make(map[string]*entity.Product),
		fetchSeq: make(map[string][]int),
	}
	for _, p := range products {
		cp := *p
		s.products[p.ID] = &cp
	}
	return s
}

func (s *stubProductClient) FetchProduct(ctx context.Context, productID string) (*entity.Product, error) {
	if s.fetchStarted != nil {
		s.fetchStarted <- struct{}{}
	}
	if s.fetchRelease != nil {
		<-s.fetchRelease
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, client.ErrProductNotFound
	}
	cp := *p
	if seq := s.fetchSeq[productID]; len(seq) > 0 {
		cp.Stock = seq[0]
		s.fetchSeq[productID] = seq[1:]
	}
	return &cp, nil
}

func (s *stubProductClient) UpdateStock(ctx context.Context, productID string, stock int) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updates = append(s.updates, stockUpdate{ProductID: productID, Stock: stock})
	if s.updateErrAt > 0 && len(s.updates) == s.updateErrAt {
		return nil, &client.TransportError{Op: "update stock", Err: errors.New("connection reset")}
	}

	p, ok := s.products[productID]
	if !ok {
		return nil, client.ErrProductNotFound
	}
	p.Stock = stock
	cp := *p
	return &cp, nil
}

func (s *stubProductClient) recordedUpdates() []stockUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stockUpdate(nil), s.updates...)
}

func (s *stubProductClient) stockOf(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].Stock
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (f *fakePublisher) Publish(ctx context.Context, subject string, message interface{}) error {
	f.mu.Lock()
	f.subjects = append(f.subjects, subject)
	f.mu.Unlock()
	return nil
}

// checkoutFixture wires a real cart service over the memory repository with
// the stubbed product client, which is what the orchestrator sees in
// production minus the network.
func checkoutFixture(t *testing.T, stub *stubProductClient) (CartService, CheckoutService) {
	t.Helper()
	cartService := NewCartService(memory.NewCartRepository(), nil, stub, logger.NoOp(), CartServiceConfig{})
	checkout := NewCheckoutService(cartService, stub, nil, nil, nil, logger.NoOp())
	return cartService, checkout
}

func TestCheckout_EmptyCartIgnored(t *testing.T) {
	stub := newStubProductClient()
	_, checkout := checkoutFixture(t, stub)

	_, err := checkout.Checkout(context.Background(), "user1")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, stub.recordedUpdates())
}

func TestCheckout_ValidationFailureShortCircuits(t *testing.T) {
	stub := newStubProductClient(
		&entity.Product{ID: "p1", Name: "Keyboard", Price: 10000, Stock: 5},
		&entity.Product{ID: "p2", Name: "Mouse", Price: 5000, Stock: 5},
	)
	carts, checkout := checkoutFixture(t, stub)

	ctx := context.Background()
	_, err := carts.AddItem(ctx, "user1", "p1", 2)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, "user1", "p2", 3)
	require.NoError(t, err)

	// Another buyer drains p2 before this checkout runs.
	stub.mu.Lock()
	stub.products["p2"].Stock = 1
	stub.mu.Unlock()

	_, err = checkout.Checkout(ctx, "user1")

	var stockErr *entity.StockInsufficientError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "p2", stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Available)

	// No decrement was issued and the cart survived for retry.
	assert.Empty(t, stub.recordedUpdates())
	view, err := carts.GetCart(ctx, "user1")
	require.NoError(t, err)
	assert.Len(t, view.Lines, 2)
}

func TestCheckout_SuccessDecrementsInCartOrderAndClearsCart(t *testing.T) {
	stub := newStubProductClient(
		&entity.Product{ID: "p1", Name: "Keyboard", Price: 10000, Stock: 5},
		&entity.Product{ID: "p2", Name: "Mouse", Price: 5000, Stock: 4},
	)
	carts, checkout := checkoutFixture(t, stub)

	ctx := context.Background()
	_, err := carts.AddItem(ctx, "user1", "p1", 2)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, "user1", "p2", 1)
	require.NoError(t, err)

	order, err := checkout.Checkout(ctx, "user1")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusConfirmed, order.Status)
	assert.Equal(t, int64(25000), order.Subtotal)
	assert.Equal(t, int64(30000), order.Total)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, int64(20000), order.Lines[0].Subtotal)

	// Exactly one decrement per line, in cart order.
	assert.Equal(t, []stockUpdate{{"p1", 3}, {"p2", 3}}, stub.recordedUpdates())

	view, err := carts.GetCart(ctx, "user1")
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestCheckout_WorkedExample(t *testing.T) {
	// cart = [{id:1, price:10000, qty:2}], remote stock = 5
	stub := newStubProductClient(&entity.Product{ID: "1", Name: "Widget", Price: 10000, Stock: 5})
	carts, checkout := checkoutFixture(t, stub)

	ctx := context.Background()
	_, err := carts.AddItem(ctx, "user1", "1", 2)
	require.NoError(t, err)

	order, err := checkout.Checkout(ctx, "user1")
	require.NoError(t, err)

	assert.Equal(t, 3, stub.stockOf("1"))
	assert.Equal(t, int64(20000), order.Subtotal)
	assert.Equal(t, int64(5000), order.Shipping)
	assert.Equal(t, int64(25000), order.Total)
}

func TestCheckout_MidDecrementFailureLeavesEarlierDecrementsApplied(t *testing.T) {
	stub := newStubProductClient(
		&entity.Product{ID: "p1", Name: "Keyboard", Price: 10000, Stock: 5},
		&entity.Product{ID: "p2", Name: "Mouse", Price: 5000, Stock: 5},
		&entity.Product{ID: "p3", Name: "Cable", Price: 1000, Stock: 5},
	)
	stub.updateErrAt = 2
	carts, checkout := checkoutFixture(t, stub)

	ctx := context.Background()
	for _, id := range []string{"p1", "p2", "p3"} {
		_, err := carts.AddItem(ctx, "user1", id, 1)
		require.NoError(t, err)
	}

	_, err := checkout.Checkout(ctx, "user1")
	require.Error(t, err)
	var transportErr *client.TransportError
	assert.ErrorAs(t, err, &transportErr)

	// The first decrement stuck, the second failed, the third never ran.
	// Nothing is rolled back.
	assert.Equal(t, 4, stub.stockOf("p1"))
	assert.Equal(t, 5, stub.stockOf("p2"))
	assert.Equal(t, 5, stub.stockOf("p3"))
	assert.Len(t, stub.recordedUpdates(), 2)

	view, err := carts.GetCart(ctx, "user1")
	require.NoError(t, err)
	assert.Len(t, view.Lines, 3, "cart must stay intact after a failed checkout")
}

func TestCheckout_StockChangedBetweenPhasesClampsAtZero(t *testing.T) {
	stub := newStubProductClient(&entity.Product{ID: "p1", Name: "Keyboard", Price: 10000, Stock: 10})
	carts, checkout := checkoutFixture(t, stub)

	ctx := context.Background()
	_, err := carts.AddItem(ctx, "user1", "p1", 3)
	require.NoError(t, err)

	// The validation read sees 3 in stock, the decrement re-read sees only 1:
	// a concurrent checkout won the race. The write clamps at zero instead of
	// going negative.
	stub.mu.Lock()
	stub.fetchSeq["p1"] = []int{3, 1}
	stub.mu.Unlock()

	order, err := checkout.Checkout(ctx, "user1")
	require.NoError(t, err)
	assert.NotNil(t, order)

	assert.Equal(t, []stockUpdate{{"p1", 0}}, stub.recordedUpdates())
}

func TestCheckout_SecondCheckoutWhileInFlightRejected(t *testing.T) {
	stub := newStubProductClient(&entity.Product{ID: "p1", Name: "Keyboard", Price: 10000, Stock: 5})
	carts, checkout := checkoutFixture(t, stub)

	ctx := context.Background()
	_, err := carts.AddItem(ctx, "user1", "p1", 1)
	require.NoError(t, err)

	// Block the first checkout inside its validation fetch.
	stub.fetchStarted = make(chan struct{}, 1)
	stub.fetchRelease = make(chan struct{})

	firstDone := make(chan error, 1)
	go func() {
		_, errFirst := checkout.Checkout(ctx, "user1")
		firstDone <- errFirst
	}()

	<-stub.fetchStarted
	_, err = checkout.Checkout(ctx, "user1")
	assert.ErrorIs(t, err, ErrCheckoutInProgress)

	close(stub.fetchRelease)
	require.NoError(t, <-firstDone)

	stub.fetchStarted = nil
	stub.fetchRelease = nil

	// Once the first finishes, the flag is released again.
	_, err = checkout.Checkout(ctx, "user1")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_PublishesCompletionEvent(t *testing.T) {
	stub := newStubProductClient(&entity.Product{ID: "p1", Name: "Keyboard", Price: 10000, Stock: 5})
	cartService := NewCartService(memory.NewCartRepository(), nil, stub, logger.NoOp(), CartServiceConfig{})
	pub := &fakePublisher{}
	checkout := NewCheckoutService(cartService, stub, nil, pub, nil, logger.NoOp())

	ctx := context.Background()
	_, err := cartService.AddItem(ctx, "user1", "p1", 1)
	require.NoError(t, err)

	_, err = checkout.Checkout(ctx, "user1")
	require.NoError(t, err)

	assert.Equal(t, []string{"order.checkout.completed"}, pub.subjects)
}

func TestCheckout_OrderIDsAreTimestampDerived(t *testing.T) {
	stub := newStubProductClient(&entity.Product{ID: "p1", Name: "Keyboard", Price: 10000, Stock: 50})
	carts, checkout := checkoutFixture(t, stub)

	ctx := context.Background()
	_, err := carts.AddItem(ctx, "user1", "p1", 1)
	require.NoError(t, err)
	first, err := checkout.Checkout(ctx, "user1")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	_, err = carts.AddItem(ctx, "user1", "p1", 1)
	require.NoError(t, err)
	second, err := checkout.Checkout(ctx, "user1")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Contains(t, first.ID, "ORD-")
}
