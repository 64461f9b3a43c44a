package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Session cookie names shared with the frontend
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CookieOptions holds the flags applied to both session cookies
type CookieOptions struct {
	Domain string
	Secure bool
}

// CookieTransport carries session tokens in HttpOnly cookies on a gin request
type CookieTransport struct {
	c    *gin.Context
	opts CookieOptions
}

// NewCookieTransport binds a transport to c
func NewCookieTransport(c *gin.Context, opts CookieOptions) *CookieTransport {
	return &CookieTransport{c: c, opts: opts}
}

func (t *CookieTransport) SetAccessCookie(token string, maxAge time.Duration) {
	t.set(AccessTokenCookie, token, int(maxAge/time.Second))
}

func (t *CookieTransport) SetRefreshCookie(token string, maxAge time.Duration) {
	t.set(RefreshTokenCookie, token, int(maxAge/time.Second))
}

func (t *CookieTransport) ClearAccessCookie() {
	t.set(AccessTokenCookie, "", -1)
}

func (t *CookieTransport) ClearRefreshCookie() {
	t.set(RefreshTokenCookie, "", -1)
}

func (t *CookieTransport) ReadRefreshCookie() (string, bool) {
	v, err := t.c.Cookie(RefreshTokenCookie)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (t *CookieTransport) set(name, value string, maxAge int) {
	t.c.SetSameSite(http.SameSiteNoneMode)
	t.c.SetCookie(name, value, maxAge, "/", t.opts.Domain, t.opts.Secure, true)
}
