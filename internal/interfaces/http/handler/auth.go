package handler

import (
	"github.com/gin-gonic/gin"
	authapp "github.com/webstack/backend/internal/application/auth"
	"github.com/webstack/backend/internal/infrastructure/logger"
	"github.com/webstack/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AuthHandler handles token issuing and logout
type AuthHandler struct {
	BaseHandler
	authService *authapp.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *authapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Token issues an access token for HTTP Basic credentials or a JSON {username,password} body.
// POST /auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var input authapp.LoginInput
	if username, password, ok := c.Request.BasicAuth(); ok {
		input = authapp.LoginInput{Username: username, Password: password}
	} else if !h.bindJSON(c, &input) {
		return
	}

	token, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	h.Success(c, token)
}

// Logout revokes the bearer token of the request, if any. It always answers 204.
// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		logger.GetGinLogger(c).Error("Failed to revoke access token", zap.Error(err))
	}
	h.NoContent(c)
}
