package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	authdomain "taskboard-backend/internal/auth/domain"
	authdto "taskboard-backend/internal/auth/dto"
	"taskboard-backend/internal/auth/repository"
	"taskboard-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus/hooks/test"
)

type fakeUserRepository struct {
	mu     sync.Mutex
	users  map[string]*authdomain.User
	tokens map[string]*authdomain.RefreshToken
	seq    int
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		users:  make(map[string]*authdomain.User),
		tokens: make(map[string]*authdomain.RefreshToken),
	}
}

func (r *fakeUserRepository) Create(_ context.Context, user *authdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.Email = authdomain.NormalizeEmail(user.Email)
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepository) FindByEmail(_ context.Context, email string) (*authdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == authdomain.NormalizeEmail(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepository) FindByID(_ context.Context, id string) (*authdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepository) Update(_ context.Context, user *authdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepository) ReplaceRefreshToken(_ context.Context, token *authdomain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeUserRepository) FindRefreshToken(_ context.Context, token string) (*authdomain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens[token], nil
}

func (r *fakeUserRepository) DeleteRefreshToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
	}
}

func newTestAuth(t *testing.T) (AuthUsecase, *fakeUserRepository) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	repo := newFakeUserRepository()
	uc := NewAuthUsecase(repo, testConfig(), logger)
	_, created, err := uc.SeedUser(context.Background(), &authdto.SeedUserRequest{
		Email: "Intern@X.com", Password: "secret123", Name: "Intern", Role: "intern",
	})
	if err != nil || !created {
		t.Fatalf("seed: created=%v err=%v", created, err)
	}
	return uc, repo
}

func TestLoginAndValidate(t *testing.T) {
	uc, _ := newTestAuth(t)
	ctx := context.Background()

	resp, err := uc.Login(ctx, &authdto.LoginRequest{Email: " intern@x.com ", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.User.Email != "intern@x.com" || resp.User.Role != authdomain.RoleMember {
		t.Fatalf("unexpected user %+v", resp.User)
	}

	user, err := uc.ValidateToken(ctx, resp.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if user.ID != resp.User.ID {
		t.Fatalf("token resolved to %s, want %s", user.ID, resp.User.ID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	uc, _ := newTestAuth(t)
	ctx := context.Background()

	cases := map[string]authdto.LoginRequest{
		"wrong password": {Email: "intern@x.com", Password: "nope"},
		"unknown email":  {Email: "ghost@x.com", Password: "secret123"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := uc.Login(ctx, &req); !errors.Is(err, authdomain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestValidateTokenRejects(t *testing.T) {
	uc, _ := newTestAuth(t)
	ctx := context.Background()
	resp, err := uc.Login(ctx, &authdto.LoginRequest{Email: "intern@x.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": resp.User.ID,
		"type":    tokenTypeAccess,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	expiredToken, _ := expired.SignedString([]byte("test-secret"))

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": resp.User.ID,
		"type":    tokenTypeAccess,
		"exp":     time.Now().Add(time.Minute).Unix(),
	})
	forgedToken, _ := forged.SignedString([]byte("other-secret"))

	cases := map[string]string{
		"garbage":           "not-a-token",
		"refresh as access": resp.RefreshToken,
		"expired":           expiredToken,
		"wrong secret":      forgedToken,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := uc.ValidateToken(ctx, token); !errors.Is(err, authdomain.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestValidateTokenSeesRoleChange(t *testing.T) {
	uc, _ := newTestAuth(t)
	ctx := context.Background()
	resp, _ := uc.Login(ctx, &authdto.LoginRequest{Email: "intern@x.com", Password: "secret123"})

	if _, _, err := uc.SeedUser(ctx, &authdto.SeedUserRequest{Email: "intern@x.com", Password: "secret123", Role: "admin"}); err != nil {
		t.Fatalf("promote: %v", err)
	}
	user, err := uc.ValidateToken(ctx, resp.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !user.Identity().IsAdmin() {
		t.Fatalf("role change not visible through an existing token")
	}
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	uc, repo := newTestAuth(t)
	ctx := context.Background()
	resp, _ := uc.Login(ctx, &authdto.LoginRequest{Email: "intern@x.com", Password: "secret123"})

	next, err := uc.RefreshToken(ctx, resp.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := uc.RefreshToken(ctx, resp.RefreshToken); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Fatalf("old refresh token must be rejected, got %v", err)
	}
	if _, err := uc.RefreshToken(ctx, next.AccessToken); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Fatalf("access token must not refresh, got %v", err)
	}

	if err := uc.Logout(ctx, next.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if tok, _ := repo.FindRefreshToken(ctx, next.RefreshToken); tok != nil {
		t.Fatalf("refresh token still stored after logout")
	}
	if _, err := uc.RefreshToken(ctx, next.RefreshToken); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Fatalf("logged out token must be rejected, got %v", err)
	}
}

func TestSeedUserUpdatesExisting(t *testing.T) {
	uc, repo := newTestAuth(t)
	ctx := context.Background()

	user, created, err := uc.SeedUser(ctx, &authdto.SeedUserRequest{Email: "INTERN@x.com", Password: "changed1", Name: "Renamed"})
	if err != nil || created {
		t.Fatalf("seed existing: created=%v err=%v", created, err)
	}
	stored, _ := repo.FindByID(ctx, user.ID)
	if stored.Name != "Renamed" || !repository.CheckPasswordHash("changed1", stored.Password) {
		t.Fatalf("existing user not updated: %+v", stored)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected one user, got %d", len(repo.users))
	}

	if _, _, err := uc.SeedUser(ctx, &authdto.SeedUserRequest{Email: " ", Password: "x"}); err == nil {
		t.Fatalf("expected error for empty email")
	}
}
