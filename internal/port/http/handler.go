package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/askhat-dev/storefront/internal/adapter/client"
	"github.com/askhat-dev/storefront/internal/domain/entity"
	"github.com/askhat-dev/storefront/internal/platform/logger"
	"github.com/askhat-dev/storefront/internal/repository"
	"github.com/askhat-dev/storefront/internal/service"
	"github.com/askhat-dev/storefront/internal/validation"
)

type Handler struct {
	cart     service.CartService
	checkout service.CheckoutService
	auth     service.AuthService
	products service.ProductService
	log      logger.Logger
}

func NewHandler(
	cart service.CartService,
	checkout service.CheckoutService,
	auth service.AuthService,
	products service.ProductService,
	log logger.Logger,
) *Handler {
	return &Handler{
		cart:     cart,
		checkout: checkout,
		auth:     auth,
		products: products,
		log:      log,
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.log.Errorf("Failed to encode response body: %v", err)
		}
	}
}

type errorResponse struct {
	Error  string            `json:"error,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// respondError maps the service error taxonomy onto HTTP statuses. Field
// validation errors keep their per-field map so the UI can render all of them
// inline at once.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var fieldErrs validation.FieldErrors
	var stockErr *entity.StockInsufficientError
	var transportErr *client.TransportError

	switch {
	case errors.As(err, &fieldErrs):
		h.respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Fields: fieldErrs,
		})
	case errors.As(err, &stockErr):
		h.respondJSON(w, http.StatusConflict, errorResponse{Error: stockErr.Error()})
	case errors.Is(err, service.ErrCheckoutInProgress):
		h.respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, entity.ErrQuantityNotPositive):
		h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthorized):
		h.respondJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrLineNotFound),
		errors.Is(err, client.ErrProductNotFound),
		errors.Is(err, repository.ErrNotFound):
		h.respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, repository.ErrAlreadyExists):
		h.respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.As(err, &transportErr):
		h.respondJSON(w, http.StatusBadGateway, errorResponse{
			Error: "a dependent service is unavailable, please try again",
		})
	default:
		h.log.Errorf("Unhandled error in HTTP handler: %v", err)
		h.respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.log.Warnf("Failed to decode request body: %v", err)
		h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}
