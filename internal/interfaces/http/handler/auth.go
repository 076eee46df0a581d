package handler

import (
	"github.com/gin-gonic/gin"

	identityapp "github.com/outpost-commerce/backend/internal/application/identity"
)

// AuthHandler handles registration and login endpoints
type AuthHandler struct {
	BaseHandler
	identityService *identityapp.Service
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(identityService *identityapp.Service) *AuthHandler {
	return &AuthHandler{identityService: identityService}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.identityService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.identityService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
