package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/scissors/internal/service"
)

func (h *Handler) RedirectHandler(rw http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	link, err := h.service.Resolve(r.Context(), key, clientIP(r))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.notFound(rw, r)
			return
		}
		h.logger.Error("Failed to resolve key", zap.String("key", key), zap.Error(err))
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rw.Header().Set("Location", link.TargetURL)
	rw.WriteHeader(http.StatusTemporaryRedirect)
}

func (h *Handler) notFound(rw http.ResponseWriter, r *http.Request) {
	http.Error(rw, fmt.Sprintf("URL '%s' doesn't exist", requestedURL(r)), http.StatusNotFound)
}
