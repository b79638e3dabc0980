package repository

import (
	"context"

	authdomain "taskboard-backend/internal/auth/domain"
)

// UserRepository defines the interface for user and refresh token storage.
// Lookups return nil, nil when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *authdomain.User) error
	FindByEmail(ctx context.Context, email string) (*authdomain.User, error)
	FindByID(ctx context.Context, id string) (*authdomain.User, error)
	Update(ctx context.Context, user *authdomain.User) error

	// ReplaceRefreshToken stores token and drops the user's expired ones
	ReplaceRefreshToken(ctx context.Context, token *authdomain.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*authdomain.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
}
