package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anandpskerala/ArticleHubBackend/internal/domain"
	pkgmw "github.com/anandpskerala/ArticleHubBackend/pkg/middleware"
	"github.com/anandpskerala/ArticleHubBackend/pkg/response"
)

const (
	// ContextKeyEmail holds the caller's email once the gate passes
	ContextKeyEmail = "email"

	accessTokenCookie = "accessToken"
	bearerPrefix      = "Bearer "
)

// AccessVerifier checks access tokens
type AccessVerifier interface {
	VerifyAccess(token string) (*domain.AccessClaims, error)
}

// RequireAuth admits requests carrying a valid access token in the
// accessToken cookie or, failing that, a Bearer header.
func RequireAuth(verifier AccessVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized(domain.ErrNotAuthenticated.Message))
			return
		}

		claims, err := verifier.VerifyAccess(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Forbidden(domain.ErrInvalidToken.Message))
			return
		}

		c.Set(pkgmw.ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Next()
	}
}

// UserID returns the authenticated caller's id
func UserID(c *gin.Context) (string, bool) {
	return pkgmw.GetUserID(c)
}

// Email returns the authenticated caller's email
func Email(c *gin.Context) (string, bool) {
	email := c.GetString(ContextKeyEmail)
	return email, email != ""
}

func extractToken(c *gin.Context) string {
	if v, err := c.Cookie(accessTokenCookie); err == nil && v != "" {
		return v
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	return ""
}
