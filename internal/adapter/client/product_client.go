package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/askhat-dev/storefront/internal/domain/entity"
)

var ErrProductNotFound = errors.New("product not found")

// TransportError wraps a network or service failure talking to the remote
// product service. Callers surface it as a generic retry-suggesting message;
// no automatic retry is attempted.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("product service unavailable (%s): %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProductServiceClient is the contract the storefront consumes from the
// remote product service. The service itself is an opaque collaborator; it
// makes no transactional guarantee against concurrent stock updates by other
// clients.
type ProductServiceClient interface {
	FetchProduct(ctx context.Context, productID string) (*entity.Product, error)
	UpdateStock(ctx context.Context, productID string, stock int) (*entity.Product, error)
}

type httpProductClient struct {
	baseURL string
	http    *http.Client
}

type HTTPProductClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

func NewHTTPProductClient(cfg HTTPProductClientConfig) (ProductServiceClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("product service base URL must be configured")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpProductClient{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *httpProductClient) FetchProduct(ctx context.Context, productID string) (*entity.Product, error) {
	url := fmt.Sprintf("%s/products/%s", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Op: "fetch product", Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "fetch product", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, &TransportError{Op: "fetch product", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var product entity.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, &TransportError{Op: "fetch product", Err: fmt.Errorf("decode response: %w", err)}
	}
	return &product, nil
}

func (c *httpProductClient) UpdateStock(ctx context.Context, productID string, stock int) (*entity.Product, error) {
	if stock < 0 {
		return nil, fmt.Errorf("stock cannot be negative: %d", stock)
	}

	body, err := json.Marshal(map[string]int{"stock": stock})
	if err != nil {
		return nil, fmt.Errorf("marshal stock update for product %s: %w", productID, err)
	}

	url := fmt.Sprintf("%s/products/%s", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "update stock", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "update stock", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		// Drain so the connection can be reused before reporting the failure.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &TransportError{Op: "update stock", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var product entity.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, &TransportError{Op: "update stock", Err: fmt.Errorf("decode response: %w", err)}
	}
	return &product, nil
}
