package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/scissors/internal/auth"
	"github.com/mmeshcher/scissors/internal/keygen"
	"github.com/mmeshcher/scissors/internal/models"
	"github.com/mmeshcher/scissors/internal/repository"
	"github.com/mmeshcher/scissors/internal/service"
)

const testBaseURL = "http://localhost:8080"

type testEnv struct {
	router  *chi.Mux
	service *service.ShortenerService
	repo    *repository.MemoryRepository
	tokens  *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()

	repo, err := repository.NewMemoryRepository("", logger)
	require.NoError(t, err)

	svc := service.NewShortenerService(repo, keygen.NewGenerator(keygen.DefaultKeyLength, keygen.DefaultMaxAttempts), testBaseURL, logger)
	tokens := auth.NewTokenManager("test-secret-key", time.Hour)

	return &testEnv{
		router:  NewHandler(svc, tokens, logger).SetupRouter(),
		service: svc,
		repo:    repo,
		tokens:  tokens,
	}
}

// login registers username and returns its id with a session cookie.
func (e *testEnv) login(t *testing.T, username string) (int64, *http.Cookie) {
	t.Helper()

	user, err := e.service.Register(context.Background(), username, username+"@example.com", "password", "")
	require.NoError(t, err)

	token, expiresAt, err := e.tokens.Issue(user.ID, user.Username)
	require.NoError(t, err)

	return user.ID, &http.Cookie{Name: auth.CookieName, Value: token, Expires: expiresAt}
}

func (e *testEnv) createLink(t *testing.T, userID int64, targetURL, customKey string) *models.Link {
	t.Helper()

	link, err := e.service.CreateLink(context.Background(), userID, targetURL, customKey)
	require.NoError(t, err)
	return link
}

func (e *testEnv) serve(r *http.Request) (*http.Response, string) {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)

	result := w.Result()
	body, _ := io.ReadAll(result.Body)
	result.Body.Close()

	return result, string(body)
}
