package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/cliptide/cliptide/internal/auth/domain"
	"github.com/cliptide/cliptide/internal/auth/store"
	"github.com/cliptide/cliptide/pkg/cryptox"
	"github.com/cliptide/cliptide/pkg/idx"
)

var (
	// ErrInvalidArgument reports registration input that fails validation.
	ErrInvalidArgument = errors.New("invalid_argument")

	// ErrAccountExists reports a username or email collision.
	ErrAccountExists = errors.New("account_exists")
)

// UserService handles account creation and lookups for the request gate.
type UserService struct {
	Store store.Store
	Hash  cryptox.Params
}

type RegisterParams struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	AvatarURL   string
	CoverURL    string
}

// Register creates a new account. Usernames are normalized to lowercase so
// logins are case-insensitive.
func (s *UserService) Register(ctx context.Context, p RegisterParams) (domain.Profile, error) {
	p.Username = strings.ToLower(strings.TrimSpace(p.Username))
	p.Email = strings.TrimSpace(p.Email)
	p.DisplayName = strings.TrimSpace(p.DisplayName)

	if p.Username == "" || p.Email == "" || p.Password == "" || p.DisplayName == "" {
		return domain.Profile{}, fmt.Errorf("%w: all fields are required", ErrInvalidArgument)
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return domain.Profile{}, fmt.Errorf("%w: malformed email", ErrInvalidArgument)
	}
	if len(p.Password) < 8 {
		return domain.Profile{}, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidArgument)
	}

	hash, err := cryptox.HashPassword(p.Password, s.Hash)
	if err != nil {
		return domain.Profile{}, err
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Username:     p.Username,
		Email:        p.Email,
		DisplayName:  p.DisplayName,
		PasswordHash: hash,
		AvatarURL:    p.AvatarURL,
		CoverURL:     p.CoverURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Profile{}, ErrAccountExists
		}
		return domain.Profile{}, fmt.Errorf("create user: %w", err)
	}

	return u.Profile(), nil
}

// GetProfile returns the sanitized identity for a user ID. Used by the
// request gate and the current-user endpoint.
func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrUnknownIdentity
		}
		return domain.Profile{}, fmt.Errorf("profile lookup: %w", err)
	}
	return u.Profile(), nil
}
