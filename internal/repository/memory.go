package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mmeshcher/scissors/internal/models"
)

// MemoryRepository keeps everything in maps guarded by one lock. When a storage
// path is set the whole state is written to it as JSON after every mutation.
type MemoryRepository struct {
	mu     sync.RWMutex
	saveMu sync.Mutex

	links  map[int64]*models.Link
	clicks map[int64][]models.Click
	users  map[int64]*models.User

	byKey       map[string]int64
	bySecretKey map[string]int64
	byCustomKey map[string]int64

	nextLinkID  int64
	nextClickID int64
	nextUserID  int64

	storagePath string
	logger      *zap.Logger
}

type snapshot struct {
	Links  []models.Link  `json:"links"`
	Clicks []models.Click `json:"clicks"`
	Users  []snapshotUser `json:"users"`
}

// snapshotUser exists because models.User hides the password hash from JSON.
type snapshotUser struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"hashed_password"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewMemoryRepository(storagePath string, logger *zap.Logger) (*MemoryRepository, error) {
	r := &MemoryRepository{
		links:       make(map[int64]*models.Link),
		clicks:      make(map[int64][]models.Click),
		users:       make(map[int64]*models.User),
		byKey:       make(map[string]int64),
		bySecretKey: make(map[string]int64),
		byCustomKey: make(map[string]int64),
		storagePath: storagePath,
		logger:      logger,
	}

	if storagePath != "" {
		if err := r.loadFromFile(); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *MemoryRepository) KeyExists(_ context.Context, key string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byKey[key]
	return ok, nil
}

func (r *MemoryRepository) CustomKeyExists(_ context.Context, customKey string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byCustomKey[customKey]
	return ok, nil
}

func (r *MemoryRepository) CreateLink(_ context.Context, link *models.Link) error {
	r.mu.Lock()
	if _, ok := r.byKey[link.Key]; ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: key %q", ErrConflict, link.Key)
	}
	if _, ok := r.bySecretKey[link.SecretKey]; ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: secret key", ErrConflict)
	}
	if link.CustomKey != "" {
		if _, ok := r.byCustomKey[link.CustomKey]; ok {
			r.mu.Unlock()
			return fmt.Errorf("%w: custom key %q", ErrConflict, link.CustomKey)
		}
	}

	r.nextLinkID++
	link.ID = r.nextLinkID
	link.IsActive = true
	link.Clicks = 0

	stored := *link
	r.links[stored.ID] = &stored
	r.byKey[stored.Key] = stored.ID
	r.bySecretKey[stored.SecretKey] = stored.ID
	if stored.CustomKey != "" {
		r.byCustomKey[stored.CustomKey] = stored.ID
	}
	r.mu.Unlock()

	r.saveToFile()
	return nil
}

func (r *MemoryRepository) GetLinkByKey(_ context.Context, key string) (*models.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.lookup(r.byKey, key)
	if !ok || !link.IsActive {
		return nil, ErrNotFound
	}
	copied := *link
	return &copied, nil
}

func (r *MemoryRepository) GetLinkBySecretKey(_ context.Context, userID int64, secretKey string) (*models.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.lookup(r.bySecretKey, secretKey)
	if !ok || link.UserID != userID {
		return nil, ErrNotFound
	}
	copied := *link
	return &copied, nil
}

func (r *MemoryRepository) GetLinkByCustomKey(_ context.Context, userID int64, customKey string) (*models.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.lookup(r.byCustomKey, customKey)
	if !ok || link.UserID != userID {
		return nil, ErrNotFound
	}
	copied := *link
	return &copied, nil
}

func (r *MemoryRepository) ListLinks(_ context.Context, userID int64) ([]models.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owned := lo.FilterMap(lo.Values(r.links), func(link *models.Link, _ int) (models.Link, bool) {
		return *link, link.UserID == userID
	})
	sort.Slice(owned, func(i, j int) bool { return owned[i].ID < owned[j].ID })

	return owned, nil
}

func (r *MemoryRepository) SetLinkActive(_ context.Context, userID int64, secretKey string, active bool) (*models.Link, error) {
	r.mu.Lock()
	link, ok := r.lookup(r.bySecretKey, secretKey)
	if !ok || link.UserID != userID {
		r.mu.Unlock()
		return nil, ErrNotFound
	}
	link.IsActive = active
	copied := *link
	r.mu.Unlock()

	r.saveToFile()
	return &copied, nil
}

func (r *MemoryRepository) RecordClick(_ context.Context, key string, click models.Click) (*models.Link, error) {
	r.mu.Lock()
	link, ok := r.lookup(r.byKey, key)
	if !ok || !link.IsActive {
		r.mu.Unlock()
		return nil, ErrNotFound
	}

	r.nextClickID++
	click.ID = r.nextClickID
	click.URLID = link.ID
	r.clicks[link.ID] = append(r.clicks[link.ID], click)
	link.Clicks++
	copied := *link
	r.mu.Unlock()

	r.saveToFile()
	return &copied, nil
}

func (r *MemoryRepository) ListClicks(_ context.Context, linkID int64) ([]models.Click, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]models.Click{}, r.clicks[linkID]...), nil
}

func (r *MemoryRepository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			r.mu.Unlock()
			return fmt.Errorf("%w: username %q", ErrConflict, user.Username)
		}
		if existing.Email == user.Email {
			r.mu.Unlock()
			return fmt.Errorf("%w: email %q", ErrConflict, user.Email)
		}
	}

	r.nextUserID++
	user.ID = r.nextUserID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	stored := *user
	r.users[stored.ID] = &stored
	r.mu.Unlock()

	r.saveToFile()
	return nil
}

func (r *MemoryRepository) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := lo.Find(lo.Values(r.users), func(u *models.User) bool {
		return u.Username == username
	})
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *MemoryRepository) UserExists(_ context.Context, username, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.SomeBy(lo.Values(r.users), func(u *models.User) bool {
		return u.Username == username || u.Email == email
	}), nil
}

func (r *MemoryRepository) Ping(_ context.Context) error {
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}

// lookup must be called with r.mu held.
func (r *MemoryRepository) lookup(index map[string]int64, value string) (*models.Link, bool) {
	id, ok := index[value]
	if !ok {
		return nil, false
	}
	link, ok := r.links[id]
	return link, ok
}

func (r *MemoryRepository) saveToFile() {
	if r.storagePath == "" {
		return
	}

	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	r.mu.RLock()
	snap := snapshot{
		Links:  make([]models.Link, 0, len(r.links)),
		Clicks: make([]models.Click, 0),
		Users:  make([]snapshotUser, 0, len(r.users)),
	}
	for _, link := range r.links {
		snap.Links = append(snap.Links, *link)
	}
	for _, clicks := range r.clicks {
		snap.Clicks = append(snap.Clicks, clicks...)
	}
	for _, u := range r.users {
		snap.Users = append(snap.Users, snapshotUser{
			ID:             u.ID,
			Email:          u.Email,
			Username:       u.Username,
			HashedPassword: u.HashedPassword,
			CreatedAt:      u.CreatedAt,
		})
	}
	r.mu.RUnlock()

	sort.Slice(snap.Links, func(i, j int) bool { return snap.Links[i].ID < snap.Links[j].ID })
	sort.Slice(snap.Clicks, func(i, j int) bool { return snap.Clicks[i].ID < snap.Clicks[j].ID })
	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].ID < snap.Users[j].ID })

	jsonData, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		r.logger.Error("Failed to marshal data for saving", zap.Error(err))
		return
	}

	if err := os.WriteFile(r.storagePath, jsonData, 0o644); err != nil {
		r.logger.Error("Failed to write storage file",
			zap.String("path", r.storagePath),
			zap.Error(err))
	}
}

func (r *MemoryRepository) loadFromFile() error {
	data, err := os.ReadFile(r.storagePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read storage file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse storage file: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range snap.Users {
		r.users[u.ID] = &models.User{
			ID:             u.ID,
			Email:          u.Email,
			Username:       u.Username,
			HashedPassword: u.HashedPassword,
			CreatedAt:      u.CreatedAt,
		}
		r.nextUserID = max(r.nextUserID, u.ID)
	}

	for i := range snap.Links {
		link := snap.Links[i]
		r.links[link.ID] = &link
		r.byKey[link.Key] = link.ID
		r.bySecretKey[link.SecretKey] = link.ID
		if link.CustomKey != "" {
			r.byCustomKey[link.CustomKey] = link.ID
		}
		r.nextLinkID = max(r.nextLinkID, link.ID)
	}

	for _, click := range snap.Clicks {
		r.clicks[click.URLID] = append(r.clicks[click.URLID], click)
		r.nextClickID = max(r.nextClickID, click.ID)
	}

	r.logger.Info("Loaded storage file",
		zap.String("path", r.storagePath),
		zap.Int("links", len(snap.Links)),
		zap.Int("users", len(snap.Users)))

	return nil
}
