package http

import (
	"net/http"

	"github.com/askhat-dev/storefront/internal/validation"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var form validation.RegistrationForm
	if !h.decodeBody(w, r, &form) {
		return
	}

	user, err := h.auth.Register(r.Context(), form)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.log.Infof("HTTP Register request processed for user %s", user.ID)
	h.respondJSON(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var form validation.LoginForm
	if !h.decodeBody(w, r, &form) {
		return
	}

	token, err := h.auth.Login(r.Context(), form)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

type passwordStrengthRequest struct {
	Password string `json:"password"`
}

type passwordStrengthResponse struct {
	Score int    `json:"score"`
	Label string `json:"label"`
}

// PasswordStrength is advisory feedback for the registration form; it never
// gates anything.
func (h *Handler) PasswordStrength(w http.ResponseWriter, r *http.Request) {
	var req passwordStrengthRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	score, label := validation.PasswordStrength(req.Password)
	h.respondJSON(w, http.StatusOK, passwordStrengthResponse{Score: score, Label: label})
}
