package http

import "net/http"

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	order, err := h.checkout.Checkout(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.log.Infof("HTTP checkout processed: order %s for user %s", order.ID, userID)
	h.respondJSON(w, http.StatusOK, order)
}
