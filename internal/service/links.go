package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/scissors/internal/models"
)

// CreateLink shortens targetURL for the user, under customKey when one is given.
func (s *ShortenerService) CreateLink(ctx context.Context, userID int64, targetURL, customKey string) (*models.Link, error) {
	if err := s.authorize(userID); err != nil {
		return nil, err
	}

	targetURL = strings.TrimSpace(targetURL)
	customKey = strings.TrimSpace(customKey)

	if err := validateTargetURL(targetURL); err != nil {
		s.logger.Warn("Invalid URL provided", zap.String("url", targetURL))
		return nil, err
	}

	if customKey == "" {
		return s.createRandomLink(ctx, userID, targetURL)
	}

	return s.createCustomLink(ctx, userID, targetURL, customKey)
}

func (s *ShortenerService) createRandomLink(ctx context.Context, userID int64, targetURL string) (*models.Link, error) {
	key, err := s.keys.UniqueKey(ctx, s.repo)
	if err != nil {
		if errors.Is(err, ErrGenerationExhausted) {
			s.logger.Error("Failed to generate unique key after max attempts", zap.Error(err))
		}
		return nil, err
	}

	return s.insertLink(ctx, userID, targetURL, key, "")
}

func (s *ShortenerService) createCustomLink(ctx context.Context, userID int64, targetURL, customKey string) (*models.Link, error) {
	if err := validateCustomKey(customKey); err != nil {
		s.logger.Warn("Rejected custom key",
			zap.String("custom_key", customKey),
			zap.Error(err))
		return nil, err
	}

	// Fast path for a readable message only; the unique constraints decide.
	taken, err := s.customKeyTaken(ctx, customKey)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, s.conflict(ctx, userID, customKey)
	}

	link, err := s.insertLink(ctx, userID, targetURL, customKey, customKey)
	if errors.Is(err, ErrConflict) {
		return nil, s.conflict(ctx, userID, customKey)
	}
	return link, err
}

// customKeyTaken checks globally, a custom key also becomes the public key.
func (s *ShortenerService) customKeyTaken(ctx context.Context, customKey string) (bool, error) {
	exists, err := s.repo.CustomKeyExists(ctx, customKey)
	if err != nil {
		return false, fmt.Errorf("check custom key: %w", err)
	}
	if exists {
		return true, nil
	}

	exists, err = s.repo.KeyExists(ctx, customKey)
	if err != nil {
		return false, fmt.Errorf("check key: %w", err)
	}
	return exists, nil
}

func (s *ShortenerService) conflict(ctx context.Context, userID int64, customKey string) error {
	owned, err := s.repo.GetLinkByCustomKey(ctx, userID, customKey)
	if err == nil {
		return &ConflictError{ShortURL: s.ShortURL(owned.Key)}
	}
	return ErrConflict
}

func (s *ShortenerService) insertLink(ctx context.Context, userID int64, targetURL, key, customKey string) (*models.Link, error) {
	secretKey, err := s.keys.SecretKey(key)
	if err != nil {
		return nil, err
	}

	link := &models.Link{
		Key:       key,
		SecretKey: secretKey,
		CustomKey: customKey,
		TargetURL: targetURL,
		UserID:    userID,
	}

	if err := s.repo.CreateLink(ctx, link); err != nil {
		s.logger.Error("Failed to save link",
			zap.String("key", key),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Link created",
		zap.Int64("id", link.ID),
		zap.String("key", link.Key),
		zap.Int64("user_id", userID))

	return link, nil
}

// Resolve records one click on the active link behind key and returns it.
func (s *ShortenerService) Resolve(ctx context.Context, key, ipAddress string) (*models.Link, error) {
	click := models.Click{
		Timestamp: s.now().UTC(),
		IPAddress: ipAddress,
	}

	link, err := s.repo.RecordClick(ctx, key, click)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("Failed to record click", zap.String("key", key), zap.Error(err))
		}
		return nil, err
	}

	return link, nil
}

// Lookup returns the active link behind key without counting a click.
func (s *ShortenerService) Lookup(ctx context.Context, key string) (*models.Link, error) {
	return s.repo.GetLinkByKey(ctx, key)
}

// SetActive toggles the user's link identified by secretKey. Repeating the
// same call leaves the link unchanged.
func (s *ShortenerService) SetActive(ctx context.Context, userID int64, secretKey string, active bool) (*models.Link, error) {
	if err := s.authorize(userID); err != nil {
		return nil, err
	}

	link, err := s.repo.SetLinkActive(ctx, userID, secretKey, active)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("Failed to update link state",
				zap.Int64("user_id", userID),
				zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("Link state changed",
		zap.Int64("id", link.ID),
		zap.Bool("is_active", link.IsActive))

	return link, nil
}

func (s *ShortenerService) ListLinks(ctx context.Context, userID int64) ([]models.Link, error) {
	if err := s.authorize(userID); err != nil {
		return nil, err
	}
	return s.repo.ListLinks(ctx, userID)
}

// LinkDetails returns the user's link behind secretKey with its click history.
func (s *ShortenerService) LinkDetails(ctx context.Context, userID int64, secretKey string) (*models.LinkDetails, error) {
	if err := s.authorize(userID); err != nil {
		return nil, err
	}

	link, err := s.repo.GetLinkBySecretKey(ctx, userID, secretKey)
	if err != nil {
		return nil, err
	}

	clicks, err := s.repo.ListClicks(ctx, link.ID)
	if err != nil {
		return nil, fmt.Errorf("list clicks: %w", err)
	}

	return &models.LinkDetails{
		LinkInfo: s.Info(*link),
		Events:   clicks,
	}, nil
}

func (s *ShortenerService) Info(link models.Link) models.LinkInfo {
	return models.LinkInfo{
		Link:     link,
		URL:      s.ShortURL(link.Key),
		AdminURL: s.AdminURL(link.SecretKey),
	}
}
