package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/scissors/internal/models"
)

// Runs only against a disposable database named by TEST_DATABASE_DSN.
func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	ctx := context.Background()
	repo, err := NewPostgresRepository(ctx, dsn, zap.NewNop())
	require.NoError(t, err)
	defer repo.Close()

	suffix := fmt.Sprintf("%d", time.Now().UnixNano()%1_000_000_000)

	user := &models.User{
		Username:       "pg" + suffix,
		Email:          "pg" + suffix + "@example.com",
		HashedPassword: "hash",
	}
	require.NoError(t, repo.CreateUser(ctx, user))
	require.ErrorIs(t, repo.CreateUser(ctx, &models.User{
		Username: user.Username, Email: "x" + user.Email, HashedPassword: "hash",
	}), ErrConflict)

	link := &models.Link{
		Key:       "k" + suffix,
		SecretKey: "k" + suffix + "_SECRET01",
		TargetURL: "https://example.com",
		UserID:    user.ID,
	}
	require.NoError(t, repo.CreateLink(ctx, link))
	assert.True(t, link.IsActive)

	exists, err := repo.KeyExists(ctx, link.Key)
	require.NoError(t, err)
	assert.True(t, exists)

	updated, err := repo.RecordClick(ctx, link.Key, models.Click{Timestamp: time.Now().UTC(), IPAddress: "192.0.2.10"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Clicks)

	clicks, err := repo.ListClicks(ctx, link.ID)
	require.NoError(t, err)
	require.Len(t, clicks, 1)
	assert.Equal(t, "192.0.2.10", clicks[0].IPAddress)

	_, err = repo.SetLinkActive(ctx, user.ID+1, link.SecretKey, false)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = repo.SetLinkActive(ctx, user.ID, link.SecretKey, false)
	require.NoError(t, err)

	_, err = repo.RecordClick(ctx, link.Key, models.Click{Timestamp: time.Now().UTC()})
	require.ErrorIs(t, err, ErrNotFound)
}
