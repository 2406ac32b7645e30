package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/scissors/internal/keygen"
	"github.com/mmeshcher/scissors/internal/repository"
)

var (
	ErrInvalidURL          = errors.New("invalid url")
	ErrTooLong             = errors.New("custom key is too long")
	ErrInvalidCharacters   = errors.New("custom key contains invalid characters")
	ErrReservedKey         = errors.New("custom key is reserved")
	ErrConflict            = repository.ErrConflict
	ErrNotFound            = repository.ErrNotFound
	ErrGenerationExhausted = keygen.ErrGenerationExhausted
	ErrUnauthenticated     = errors.New("unauthenticated")

	ErrMissingFields      = errors.New("username, email and password are required")
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrPasswordMismatch   = errors.New("passwords don't match")
	ErrUserExists         = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ConflictError reports a custom key the caller already owns, together with
// the short URL it is reachable under.
type ConflictError struct {
	ShortURL string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("custom key already exists, url already shortened as: %s", e.ShortURL)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

type ShortenerService struct {
	repo    repository.Repository
	keys    *keygen.Generator
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

func NewShortenerService(repo repository.Repository, keys *keygen.Generator, baseURL string, logger *zap.Logger) *ShortenerService {
	return &ShortenerService{
		repo:    repo,
		keys:    keys,
		baseURL: baseURL,
		logger:  logger,
		now:     time.Now,
	}
}

// ShortURL is the public address that resolves key.
func (s *ShortenerService) ShortURL(key string) string {
	fullURL, err := url.JoinPath(s.baseURL, key)
	if err != nil {
		return s.baseURL + "/" + key
	}
	return fullURL
}

// AdminURL is the owner-only address that describes the link behind secretKey.
func (s *ShortenerService) AdminURL(secretKey string) string {
	fullURL, err := url.JoinPath(s.baseURL, "admin", secretKey)
	if err != nil {
		return s.baseURL + "/admin/" + secretKey
	}
	return fullURL
}

func (s *ShortenerService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// authorize is the single gate in front of every owner-scoped operation.
func (s *ShortenerService) authorize(userID int64) error {
	if userID <= 0 {
		s.logger.Warn("Owner-scoped operation without a session user")
		return ErrUnauthenticated
	}
	return nil
}
