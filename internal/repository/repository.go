package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mmeshcher/scissors/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Repository is the persistent store of users, links and clicks.
type Repository interface {
	KeyExists(ctx context.Context, key string) (bool, error)
	CustomKeyExists(ctx context.Context, customKey string) (bool, error)

	CreateLink(ctx context.Context, link *models.Link) error
	GetLinkByKey(ctx context.Context, key string) (*models.Link, error)
	GetLinkBySecretKey(ctx context.Context, userID int64, secretKey string) (*models.Link, error)
	GetLinkByCustomKey(ctx context.Context, userID int64, customKey string) (*models.Link, error)
	ListLinks(ctx context.Context, userID int64) ([]models.Link, error)
	SetLinkActive(ctx context.Context, userID int64, secretKey string, active bool) (*models.Link, error)

	// RecordClick increments the clicks of the active link with key and appends
	// click in one atomic step.
	RecordClick(ctx context.Context, key string, click models.Click) (*models.Link, error)
	ListClicks(ctx context.Context, linkID int64) ([]models.Click, error)

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UserExists(ctx context.Context, username, email string) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}

// Open picks PostgreSQL when a DSN is configured and the in-memory store otherwise.
func Open(ctx context.Context, databaseDSN, storagePath string, logger *zap.Logger) (Repository, error) {
	if databaseDSN != "" {
		pgRepo, err := NewPostgresRepository(ctx, databaseDSN, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Using PostgreSQL repository")
		return pgRepo, nil
	}

	memRepo, err := NewMemoryRepository(storagePath, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Using in-memory repository", zap.String("file_storage_path", storagePath))
	return memRepo, nil
}
