package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/vollmed/clinic-api/internal/handler"
	"github.com/vollmed/clinic-api/pkg/auth"
)

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"

	claimsCacheTTL = 5 * time.Minute
)

type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*auth.TokenClaims, error)
}

type AuthMiddleware struct {
	validator TokenValidator
	cache     *gocache.Cache
}

func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		cache:     gocache.New(claimsCacheTTL, 10*time.Minute),
	}
}

// Authenticate verifies the bearer token and puts the caller's identity in
// the request context. Validated claims are cached briefly so repeated calls
// with the same token skip signature verification.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}
		token := parts[1]

		claims, err := m.lookup(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID.String())
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

func (m *AuthMiddleware) lookup(ctx context.Context, token string) (*auth.TokenClaims, error) {
	if cached, ok := m.cache.Get(token); ok {
		return cached.(*auth.TokenClaims), nil
	}

	claims, err := m.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	m.cache.Set(token, claims, claimsCacheTTL)
	return claims, nil
}
