package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mmeshcher/scissors/internal/models"
	"github.com/mmeshcher/scissors/internal/service"
)

// CreateLinkHandler accepts JSON from API clients and form posts from the
// browser; the latter are sent back to the link list.
func (h *Handler) CreateLinkHandler(rw http.ResponseWriter, r *http.Request) {
	var req models.CreateLinkRequest

	jsonRequest := isJSON(r)
	if jsonRequest {
		if err := decodeJSON(r, &req); err != nil {
			http.Error(rw, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(rw, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		req.TargetURL = r.PostForm.Get("target_url")
		req.CustomKey = r.PostForm.Get("custom_key")
	}

	link, err := h.service.CreateLink(r.Context(), sessionUserID(r), req.TargetURL, req.CustomKey)
	if err != nil {
		h.writeCreateError(rw, err)
		return
	}

	if !jsonRequest {
		http.Redirect(rw, r, "/", http.StatusFound)
		return
	}

	h.writeJSON(rw, http.StatusCreated, h.service.Info(*link))
}

func (h *Handler) writeCreateError(rw http.ResponseWriter, err error) {
	var conflict *service.ConflictError

	switch {
	case errors.As(err, &conflict):
		http.Error(rw, "Custom URL already exists. URL already shortened as: "+conflict.ShortURL, http.StatusConflict)
	case errors.Is(err, service.ErrConflict):
		http.Error(rw, "Custom URL already exists", http.StatusConflict)
	case errors.Is(err, service.ErrInvalidURL):
		http.Error(rw, "Your provided URL is not valid", http.StatusBadRequest)
	case errors.Is(err, service.ErrTooLong):
		http.Error(rw, "Custom URL cannot be longer than 20 characters", http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidCharacters):
		http.Error(rw, "Custom URL can only contain alphanumeric characters", http.StatusBadRequest)
	case errors.Is(err, service.ErrReservedKey):
		http.Error(rw, "Custom URL is reserved", http.StatusBadRequest)
	case errors.Is(err, service.ErrUnauthenticated):
		http.Error(rw, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	case errors.Is(err, service.ErrGenerationExhausted):
		http.Error(rw, "Could not generate a free short key, try again", http.StatusServiceUnavailable)
	default:
		h.logger.Error("Failed to create link", zap.Error(err))
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) ListLinksHandler(rw http.ResponseWriter, r *http.Request) {
	links, err := h.service.ListLinks(r.Context(), sessionUserID(r))
	if err != nil {
		h.logger.Error("Failed to list links", zap.Error(err))
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(links) == 0 {
		rw.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(rw, http.StatusOK, lo.Map(links, func(link models.Link, _ int) models.LinkInfo {
		return h.service.Info(link)
	}))
}

func (h *Handler) LinkDetailsHandler(rw http.ResponseWriter, r *http.Request) {
	secretKey := chi.URLParam(r, "secretKey")

	details, err := h.service.LinkDetails(r.Context(), sessionUserID(r), secretKey)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.notFound(rw, r)
			return
		}
		h.logger.Error("Failed to load link details", zap.Error(err))
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(rw, http.StatusOK, details)
}
