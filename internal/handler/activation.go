package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/scissors/internal/service"
)

func (h *Handler) ActivateHandler(rw http.ResponseWriter, r *http.Request) {
	h.setActive(rw, r, true)
}

func (h *Handler) DeactivateHandler(rw http.ResponseWriter, r *http.Request) {
	h.setActive(rw, r, false)
}

func (h *Handler) setActive(rw http.ResponseWriter, r *http.Request, active bool) {
	secretKey := chi.URLParam(r, "secretKey")

	link, err := h.service.SetActive(r.Context(), sessionUserID(r), secretKey, active)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.notFound(rw, r)
			return
		}
		h.logger.Error("Failed to change link state", zap.Error(err))
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	verb := "deactivated"
	if active {
		verb = "activated"
	}
	h.writeDetail(rw, http.StatusOK, fmt.Sprintf("Successfully %s shortened URL for '%s'", verb, link.TargetURL))
}

func (h *Handler) ActivateRedirectHandler(rw http.ResponseWriter, r *http.Request) {
	h.setActiveAndReturn(rw, r, true)
}

func (h *Handler) DeactivateRedirectHandler(rw http.ResponseWriter, r *http.Request) {
	h.setActiveAndReturn(rw, r, false)
}

// setActiveAndReturn backs the browser buttons: an unknown or foreign secret
// key changes nothing and the user lands on the link list either way.
func (h *Handler) setActiveAndReturn(rw http.ResponseWriter, r *http.Request, active bool) {
	secretKey := chi.URLParam(r, "secretKey")

	if _, err := h.service.SetActive(r.Context(), sessionUserID(r), secretKey, active); err != nil && !errors.Is(err, service.ErrNotFound) {
		h.logger.Error("Failed to change link state", zap.Error(err))
	}

	http.Redirect(rw, r, "/", http.StatusFound)
}
