package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AC-trading/ac-trading/pkg/jwt"
	"github.com/AC-trading/ac-trading/pkg/response"
)

const (
	MemberUUIDKey = "member_uuid"
	NicknameKey   = "nickname"
	ProviderKey   = "provider"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// AuthMiddleware validates bearer tokens issued by pkg/jwt.
type AuthMiddleware struct {
	manager *jwt.Manager
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(manager *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{manager: manager}
}

// RequireAuth rejects requests without a valid access token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.parse(c)
		if !ok {
			c.Abort()
			return
		}
		if claims.Type != jwt.TypeAccess {
			response.Unauthorized(c, "access token required")
			c.Abort()
			return
		}

		c.Set(MemberUUIDKey, claims.MemberUUID)
		c.Set(NicknameKey, claims.Nickname)
		c.Set(ProviderKey, claims.Provider)
		c.Next()
	}
}

// OptionalAuth populates actor info when a valid token is present but
// lets anonymous requests through. Public feed and post detail use it.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			c.Next()
			return
		}
		if claims, err := m.validateHeader(authHeader); err == nil && claims.Type == jwt.TypeAccess {
			c.Set(MemberUUIDKey, claims.MemberUUID)
			c.Set(NicknameKey, claims.Nickname)
			c.Set(ProviderKey, claims.Provider)
		}
		c.Next()
	}
}

func (m *AuthMiddleware) parse(c *gin.Context) (*jwt.Claims, bool) {
	authHeader := c.GetHeader(AuthHeaderKey)
	if authHeader == "" {
		response.Unauthorized(c, "missing authorization header")
		return nil, false
	}
	claims, err := m.validateHeader(authHeader)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return nil, false
	}
	return claims, true
}

func (m *AuthMiddleware) validateHeader(authHeader string) (*jwt.Claims, error) {
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return nil, jwt.ErrInvalidToken
	}
	return m.manager.Validate(strings.TrimPrefix(authHeader, BearerPrefix))
}

// MemberUUID extracts the authenticated member UUID from the context.
// Empty string means anonymous.
func MemberUUID(c *gin.Context) string {
	if id, exists := c.Get(MemberUUIDKey); exists {
		return id.(string)
	}
	return ""
}

// Nickname extracts the authenticated nickname from the context.
func Nickname(c *gin.Context) string {
	if nickname, exists := c.Get(NicknameKey); exists {
		return nickname.(string)
	}
	return ""
}
