package models

import "time"

// Link is one shortened URL. Key and SecretKey are globally unique, CustomKey too when set.
type Link struct {
	ID        int64  `json:"id"`
	Key       string `json:"key"`
	SecretKey string `json:"secret_key"`
	CustomKey string `json:"custom_key,omitempty"`
	TargetURL string `json:"target_url"`
	IsActive  bool   `json:"is_active"`
	Clicks    int64  `json:"clicks"`
	UserID    int64  `json:"user_id"`
}

// Click is one resolution of a Link.
type Click struct {
	ID        int64     `json:"id"`
	URLID     int64     `json:"url_id"`
	Timestamp time.Time `json:"timestamp"`
	IPAddress string    `json:"ip_address,omitempty"`
}

type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

type CreateLinkRequest struct {
	TargetURL string `json:"target_url"`
	CustomKey string `json:"custom_key,omitempty"`
}

type LinkInfo struct {
	Link
	URL      string `json:"url"`
	AdminURL string `json:"admin_url"`
}

type LinkDetails struct {
	LinkInfo
	Events []Click `json:"events"`
}

type RegisterRequest struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"omitempty,eqfield=Password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
}
