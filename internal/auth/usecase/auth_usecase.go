package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	authdomain "taskboard-backend/internal/auth/domain"
	authdto "taskboard-backend/internal/auth/dto"
	"taskboard-backend/internal/auth/repository"
	"taskboard-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo repository.UserRepository
	config   *config.Config
	logger   *log.Logger
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, cfg *config.Config, logger *log.Logger) AuthUsecase {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &authUsecase{
		userRepo: userRepo,
		config:   cfg,
		logger:   logger,
	}
}

func (u *authUsecase) Login(ctx context.Context, req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if user == nil || !repository.CheckPasswordHash(req.Password, user.Password) {
		u.logger.WithField("email", authdomain.NormalizeEmail(req.Email)).Info("[AuthUsecase] login rejected")
		return nil, authdomain.ErrInvalidCredentials
	}

	return u.generateTokens(ctx, user)
}

func (u *authUsecase) RefreshToken(ctx context.Context, refreshToken string) (*authdto.TokenResponse, error) {
	claims, err := u.parseToken(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	// Check if token exists in repository
	storedToken, err := u.userRepo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if storedToken == nil || storedToken.ExpiresAt.Before(time.Now()) {
		return nil, authdomain.ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authdomain.ErrUserNotFound
	}

	// Rotate: the presented token cannot be used twice.
	if err := u.userRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return u.generateTokens(ctx, user)
}

func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	return u.userRepo.DeleteRefreshToken(ctx, refreshToken)
}

func (u *authUsecase) ValidateToken(ctx context.Context, accessToken string) (*authdomain.User, error) {
	claims, err := u.parseToken(accessToken, tokenTypeAccess)
	if err != nil {
		return nil, err
	}

	userID, _ := claims["user_id"].(string)
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authdomain.ErrUserNotFound
	}
	return user, nil
}

func (u *authUsecase) SeedUser(ctx context.Context, req *authdto.SeedUserRequest) (*authdomain.User, bool, error) {
	email := authdomain.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, false, errors.New("email and password are required")
	}

	hashedPassword, err := repository.HashPassword(req.Password)
	if err != nil {
		return nil, false, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = email
	}
	role := authdomain.ParseRole(req.Role)

	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		existing.Name = name
		existing.Role = role
		existing.Password = hashedPassword
		if err := u.userRepo.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	user := &authdomain.User{
		Email:    email,
		Password: hashedPassword,
		Name:     name,
		Role:     role,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (u *authUsecase) generateTokens(ctx context.Context, user *authdomain.User) (*authdto.TokenResponse, error) {
	// Generate access token
	accessToken, err := u.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	// Generate refresh token
	refreshToken, err := u.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	// Store refresh token
	refreshTokenEntity := &authdomain.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(u.config.JWTRefreshExpiry),
	}
	if err := u.userRepo.ReplaceRefreshToken(ctx, refreshTokenEntity); err != nil {
		return nil, err
	}

	return &authdto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (u *authUsecase) generateAccessToken(user *authdomain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(authdomain.ParseRole(string(user.Role))),
		"type":    tokenTypeAccess,
		"exp":     time.Now().Add(u.config.JWTAccessExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) generateRefreshToken(user *authdomain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"token_id": uuid.New().String(),
		"type":     tokenTypeRefresh,
		"exp":      time.Now().Add(u.config.JWTRefreshExpiry).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

// parseToken verifies signature, expiry and token type.
func (u *authUsecase) parseToken(tokenString, tokenType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", authdomain.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, authdomain.ErrInvalidToken
	}
	if t, _ := claims["type"].(string); t != tokenType {
		return nil, authdomain.ErrInvalidToken
	}
	if id, _ := claims["user_id"].(string); id == "" {
		return nil, authdomain.ErrInvalidToken
	}
	return claims, nil
}
