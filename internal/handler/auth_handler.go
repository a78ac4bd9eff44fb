package handler

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"triplog/internal/middleware"
	"triplog/pkg/response"
)

// AuthHandler issues API tokens from the shared secret.
type AuthHandler struct {
	secret string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(secret string) *AuthHandler {
	return &AuthHandler{secret: secret}
}

type tokenRequest struct {
	Secret string `json:"secret" binding:"required"`
}

// IssueToken handles POST /api/v1/auth/token
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Missing secret")
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.secret)) != 1 {
		response.Unauthorized(c, "Invalid secret")
		return
	}

	token, err := middleware.IssueToken(h.secret)
	if err != nil {
		response.InternalError(c, "Failed to issue token")
		return
	}

	response.Success(c, gin.H{
		"token":      token,
		"expires_in": int(middleware.TokenTTL.Seconds()),
	})
}
