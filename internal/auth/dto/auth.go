package dto

import authdomain "taskboard-backend/internal/auth/domain"

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
	User         *authdomain.User `json:"user"`
}

// SeedUserRequest creates or updates an account from the command line.
type SeedUserRequest struct {
	Email    string
	Password string
	Name     string
	Role     string
}
