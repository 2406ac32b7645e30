package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/scissors/internal/auth"
	"github.com/mmeshcher/scissors/internal/models"
	"github.com/mmeshcher/scissors/internal/service"
)

func (h *Handler) RegisterHandler(rw http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(rw, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password, req.PasswordConfirm)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields), errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrPasswordMismatch):
			http.Error(rw, err.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrUserExists):
			http.Error(rw, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("Failed to register user", zap.Error(err))
			http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(rw, http.StatusCreated, user)
}

// TokenHandler logs in with JSON or form credentials and sets the session cookie.
func (h *Handler) TokenHandler(rw http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest

	if isJSON(r) {
		if err := decodeJSON(r, &req); err != nil {
			http.Error(rw, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(rw, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(rw, err.Error(), http.StatusUnauthorized)
			return
		}
		h.logger.Error("Failed to authenticate user", zap.Error(err))
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	token, expiresAt, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.logger.Error("Failed to issue token", zap.Error(err))
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	auth.SetCookie(rw, token, expiresAt)
	h.writeJSON(rw, http.StatusOK, models.Token{
		AccessToken: token,
		TokenType:   auth.TokenType,
	})
}

func (h *Handler) LogoutHandler(rw http.ResponseWriter, r *http.Request) {
	auth.ClearCookie(rw)
	h.writeDetail(rw, http.StatusOK, "Logout successfully")
}
