package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/scissors/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Register creates an account. confirm is optional; when given it must match password.
func (s *ShortenerService) Register(ctx context.Context, username, email, password, confirm string) (*models.User, error) {
	req := models.RegisterRequest{
		Username:        strings.TrimSpace(username),
		Email:           strings.TrimSpace(email),
		Password:        password,
		PasswordConfirm: confirm,
	}

	if err := validateRegistration(req); err != nil {
		return nil, err
	}
	username, email = req.Username, req.Email

	exists, err := s.repo.UserExists(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		HashedPassword: string(hashed),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.Int64("id", user.ID), zap.String("username", user.Username))

	return user, nil
}

func (s *ShortenerService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// validateRegistration reports missing fields first, then a malformed email,
// then a password confirmation that does not match.
func validateRegistration(req models.RegisterRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate registration: %w", err)
	}

	tags := make(map[string]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		tags[fe.Tag()] = true
	}

	switch {
	case tags["required"]:
		return ErrMissingFields
	case tags["email"]:
		return ErrInvalidEmail
	case tags["eqfield"]:
		return ErrPasswordMismatch
	default:
		return ErrMissingFields
	}
}
