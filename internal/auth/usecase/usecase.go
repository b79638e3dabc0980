package usecase

import (
	"context"

	authdomain "taskboard-backend/internal/auth/domain"
	authdto "taskboard-backend/internal/auth/dto"
)

// AuthUsecase defines the interface for authentication business logic
type AuthUsecase interface {
	Login(ctx context.Context, req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*authdto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error

	// ValidateToken resolves an access token to the current state of its user
	ValidateToken(ctx context.Context, accessToken string) (*authdomain.User, error)

	// SeedUser creates the user or updates name, role and password of an
	// existing account with the same email
	SeedUser(ctx context.Context, req *authdto.SeedUserRequest) (user *authdomain.User, created bool, err error)
}
