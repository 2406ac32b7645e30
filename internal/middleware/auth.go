package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/scissors/internal/auth"
)

type contextKey string

const sessionKey contextKey = "session"

type AuthMiddleware struct {
	tokens *auth.TokenManager
	logger *zap.Logger
}

func NewAuthMiddleware(tokens *auth.TokenManager, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		logger: logger,
	}
}

// RequireUser rejects requests without a valid session token with 401 and
// stores the session in the request context otherwise.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			http.Error(w, "Not authenticated", http.StatusUnauthorized)
			return
		}

		session, err := m.tokens.Parse(token)
		if err != nil {
			m.logger.Debug("Rejected session token", zap.Error(err))
			http.Error(w, auth.ErrInvalidToken.Error(), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tokenFromRequest prefers the session cookie and falls back to a bearer header.
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, auth.TokenType) {
		return ""
	}
	return strings.TrimSpace(token)
}

func SessionFromContext(ctx context.Context) (*auth.Session, bool) {
	session, ok := ctx.Value(sessionKey).(*auth.Session)
	return session, ok
}
