package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	authdomain "taskboard-backend/internal/auth/domain"
	authdto "taskboard-backend/internal/auth/dto"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// stubAuthUsecase maps access tokens to users.
type stubAuthUsecase struct {
	users   map[string]*authdomain.User
	failErr error
}

func (s *stubAuthUsecase) Login(_ context.Context, req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	if req.Password != "secret123" {
		return nil, authdomain.ErrInvalidCredentials
	}
	return &authdto.TokenResponse{AccessToken: "admin-token", RefreshToken: "r1", User: s.users["admin-token"]}, nil
}

func (s *stubAuthUsecase) RefreshToken(_ context.Context, token string) (*authdto.TokenResponse, error) {
	if token != "r1" {
		return nil, authdomain.ErrInvalidToken
	}
	return &authdto.TokenResponse{AccessToken: "admin-token", RefreshToken: "r2"}, nil
}

func (s *stubAuthUsecase) Logout(context.Context, string) error { return nil }

func (s *stubAuthUsecase) ValidateToken(_ context.Context, token string) (*authdomain.User, error) {
	if s.failErr != nil {
		return nil, s.failErr
	}
	u, ok := s.users[token]
	if !ok {
		return nil, authdomain.ErrInvalidToken
	}
	return u, nil
}

func (s *stubAuthUsecase) SeedUser(context.Context, *authdto.SeedUserRequest) (*authdomain.User, bool, error) {
	return nil, false, errors.New("not supported")
}

func newStub() *stubAuthUsecase {
	return &stubAuthUsecase{users: map[string]*authdomain.User{
		"admin-token":  {ID: "u1", Email: "admin@x.com", Role: authdomain.RoleAdmin},
		"intern-token": {ID: "u2", Email: "intern@x.com", Role: "intern"},
	}}
}

func newTestRouter(uc *stubAuthUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(uc)
	r.POST("/login", h.Login)
	r.POST("/refresh", h.RefreshToken)
	r.GET("/me", AuthMiddleware(uc), h.Me)
	r.DELETE("/admin", AuthMiddleware(uc), AdminOnly(), func(c *gin.Context) {
		identity, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": identity.ID})
	})
	return r
}

func doRequest(r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newTestRouter(newStub())

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer intern-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareStoreFailure(t *testing.T) {
	stub := newStub()
	stub.failErr = errors.New("db down")
	w := doRequest(newTestRouter(stub), http.MethodGet, "/me", "admin-token", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestAdminOnly(t *testing.T) {
	r := newTestRouter(newStub())

	if w := doRequest(r, http.MethodDelete, "/admin", "intern-token", nil); w.Code != http.StatusForbidden {
		t.Fatalf("member: status = %d, want 403", w.Code)
	}
	w := doRequest(r, http.MethodDelete, "/admin", "admin-token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", w.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["id"] != "u1" {
		t.Fatalf("identity not propagated: %v", body)
	}
}

func TestLoginHandler(t *testing.T) {
	r := newTestRouter(newStub())

	if w := doRequest(r, http.MethodPost, "/login", "", map[string]string{"email": "admin@x.com"}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing password: status = %d, want 400", w.Code)
	}
	if w := doRequest(r, http.MethodPost, "/login", "", map[string]string{"email": "admin@x.com", "password": "bad"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: status = %d, want 401", w.Code)
	}

	w := doRequest(r, http.MethodPost, "/login", "", map[string]string{"email": "admin@x.com", "password": "secret123"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d, want 200", w.Code)
	}
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["accessToken"] != "admin-token" || resp["refreshToken"] != "r1" {
		t.Fatalf("unexpected body %v", resp)
	}
	user, _ := resp["user"].(map[string]interface{})
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password must not be serialized")
	}
}

func TestRefreshHandler(t *testing.T) {
	r := newTestRouter(newStub())
	if w := doRequest(r, http.MethodPost, "/refresh", "", map[string]string{"refreshToken": "r1"}); w.Code != http.StatusOK {
		t.Fatalf("refresh: status = %d", w.Code)
	}
	if w := doRequest(r, http.MethodPost, "/refresh", "", map[string]string{"refreshToken": "stale"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("stale refresh: status = %d", w.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/missing/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	doRequest(r, http.MethodGet, "/missing/7", "", nil)

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatalf("expected a log entry")
	}
	if entry.Level != log.WarnLevel || entry.Data["status"] != http.StatusNotFound || entry.Data["path"] != "/missing/:id" {
		t.Fatalf("unexpected entry %v %v", entry.Level, entry.Data)
	}
}
