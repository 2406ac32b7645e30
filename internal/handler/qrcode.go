package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/mmeshcher/scissors/internal/service"
)

const qrCodeSize = 256

// QRCodeHandler renders the short URL of an active link as a PNG. It does not
// count as a click.
func (h *Handler) QRCodeHandler(rw http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	link, err := h.service.Lookup(r.Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.notFound(rw, r)
			return
		}
		h.logger.Error("Failed to look up key", zap.String("key", key), zap.Error(err))
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	png, err := qrcode.Encode(h.service.ShortURL(link.Key), qrcode.Medium, qrCodeSize)
	if err != nil {
		h.logger.Error("Failed to generate QR code", zap.String("key", key), zap.Error(err))
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rw.Header().Set("Content-Type", "image/png")
	rw.Header().Set("Content-Disposition", "inline; filename=qrcode.png")
	rw.WriteHeader(http.StatusOK)
	rw.Write(png)
}
