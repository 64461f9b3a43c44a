package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anandpskerala/ArticleHubBackend/internal/domain"
	"github.com/anandpskerala/ArticleHubBackend/internal/dto"
	"github.com/anandpskerala/ArticleHubBackend/internal/middleware"
	"github.com/anandpskerala/ArticleHubBackend/internal/service"
	"github.com/anandpskerala/ArticleHubBackend/pkg/response"
)

// AuthHandler handles session HTTP requests
type AuthHandler struct {
	sessions service.SessionManager
	cookies  CookieOptions
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessions service.SessionManager, cookies CookieOptions) *AuthHandler {
	return &AuthHandler{sessions: sessions, cookies: cookies}
}

// Register handles user registration
// POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if valid, msg := req.ValidateEmail(); !valid {
		c.JSON(http.StatusBadRequest, response.Error("INVALID_EMAIL", msg))
		return
	}
	if valid, msg := req.ValidatePhone(); !valid {
		c.JSON(http.StatusBadRequest, response.Error("INVALID_PHONE", msg))
		return
	}

	result, err := h.sessions.Register(c.Request.Context(), h.transport(c), &req)
	h.write(c, result, err)
}

// Login handles email-or-phone login
// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.sessions.Login(c.Request.Context(), h.transport(c), &req)
	h.write(c, result, err)
}

// Refresh re-mints the access cookie from the refresh cookie
// POST /api/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	result, err := h.sessions.Refresh(c.Request.Context(), h.transport(c))
	h.write(c, result, err)
}

// Verify returns the authenticated user
// POST /api/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	result, err := h.sessions.Verify(c.Request.Context(), userID)
	h.write(c, result, err)
}

// Logout clears the session cookies
// DELETE /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	result, err := h.sessions.Logout(c.Request.Context(), h.transport(c))
	h.write(c, result, err)
}

// UpdateProfile changes profile fields and optionally the password of the caller
// PUT /api/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req dto.ChangeCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	email, _ := middleware.Email(c)
	if req.Email == "" {
		req.Email = email
	} else if domain.NormalizeEmail(req.Email) != domain.NormalizeEmail(email) {
		writeError(c, domain.ErrEmailMismatch)
		return
	}

	result, err := h.sessions.ChangeCredentials(c.Request.Context(), &req)
	h.write(c, result, err)
}

func (h *AuthHandler) transport(c *gin.Context) *CookieTransport {
	return NewCookieTransport(c, h.cookies)
}

func (h *AuthHandler) write(c *gin.Context, result *dto.SessionResult, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	var data interface{}
	if result.User != nil {
		data = gin.H{"user": result.User}
	}
	c.JSON(httpStatus(result.Status), response.SuccessWithMessage(result.Message, data))
}
