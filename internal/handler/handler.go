package handler

import (
	"encoding/json"
	"mime"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/scissors/internal/auth"
	"github.com/mmeshcher/scissors/internal/middleware"
	"github.com/mmeshcher/scissors/internal/models"
	"github.com/mmeshcher/scissors/internal/service"
)

type Handler struct {
	service *service.ShortenerService
	tokens  *auth.TokenManager
	auth    *middleware.AuthMiddleware
	logger  *zap.Logger
}

func NewHandler(service *service.ShortenerService, tokens *auth.TokenManager, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		tokens:  tokens,
		auth:    middleware.NewAuthMiddleware(tokens, logger),
		logger:  logger,
	}
}

func (h *Handler) writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	if err := json.NewEncoder(rw).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeDetail(rw http.ResponseWriter, status int, detail string) {
	h.writeJSON(rw, status, models.DetailResponse{Detail: detail})
}

// sessionUserID is only meaningful behind RequireUser; elsewhere it yields 0,
// which the service rejects as unauthenticated.
func sessionUserID(r *http.Request) int64 {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return 0
	}
	return session.UserID
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// clientIP expects RemoteAddr to be already rewritten by chi's RealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// requestedURL rebuilds the absolute URL the client asked for.
func requestedURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
