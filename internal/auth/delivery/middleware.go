package delivery

import (
	"errors"
	"net/http"
	"strings"
	"time"

	authdomain "taskboard-backend/internal/auth/domain"
	"taskboard-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	contextKeyUser     = "user"
	contextKeyIdentity = "identity"
	contextKeyUserID   = "userID"
)

func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		token := parts[1]
		user, err := authUsecase.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, authdomain.ErrInvalidToken) && !errors.Is(err, authdomain.ErrUserNotFound) {
				log.WithError(err).Error("[AuthMiddleware] token validation failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				c.Abort()
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(contextKeyUser, user)
		c.Set(contextKeyIdentity, user.Identity())
		c.Set(contextKeyUserID, user.ID)
		c.Next()
	}
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok || !identity.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the principal set by AuthMiddleware.
func IdentityFrom(c *gin.Context) (authdomain.Identity, bool) {
	v, ok := c.Get(contextKeyIdentity)
	if !ok {
		return authdomain.Identity{}, false
	}
	identity, ok := v.(authdomain.Identity)
	return identity, ok
}

// RequestLogger writes one structured line per request.
func RequestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if id := c.GetString(contextKeyUserID); id != "" {
			entry = entry.WithField("user_id", id)
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("[HTTP] request")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("[HTTP] request")
		default:
			entry.Info("[HTTP] request")
		}
	}
}
