package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if productID == "" {
		h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "product ID is required"})
		return
	}

	product, err := h.products.GetProduct(r.Context(), productID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, product)
}
