package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/nitn/phd-admission/internal/app/models"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
	"github.com/nitn/phd-admission/internal/pkg/auth"
)

// Cookie and context keys
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	ContextUserID = "userID"
	ContextUser   = "user"
)

// Authenticator resolves an access token to its user
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// AuthMiddleware for authentication
type AuthMiddleware struct {
	authenticator Authenticator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// AccessToken reads the token from the accessToken cookie, then the Authorization header
func AccessToken(c *gin.Context) string {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token
	}
	if token, err := auth.ExtractBearerToken(c.GetHeader("Authorization")); err == nil {
		return token
	}
	return ""
}

// JWTAuth rejects requests without a valid access token for an existing user
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.authenticator.Authenticate(c.Request.Context(), AccessToken(c))
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUser, user)
		c.Next()
	}
}

// CurrentUser returns the user set by JWTAuth
func CurrentUser(c *gin.Context) (*models.User, error) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, apperrors.NewUnauthorizedError(apperrors.ErrUnauthorized, "Unauthorized request")
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		return nil, apperrors.NewUnauthorizedError(apperrors.ErrUnauthorized, "Unauthorized request")
	}
	return user, nil
}

// CurrentUserID returns the id set by JWTAuth
func CurrentUserID(c *gin.Context) (int64, error) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return 0, apperrors.NewUnauthorizedError(apperrors.ErrUnauthorized, "Unauthorized request")
	}
	userID, ok := id.(int64)
	if !ok || userID <= 0 {
		return 0, apperrors.NewUnauthorizedError(apperrors.ErrUnauthorized, "Unauthorized request")
	}
	return userID, nil
}
