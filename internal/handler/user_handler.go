package handler

import (
	"errors"

	"art-market/internal/service"
	"art-market/pkg/jwt"
	"art-market/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// Register POST /api/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role"`
		City     string `json:"city"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, token, err := h.service.Register(r.Name, r.Email, r.Password, r.Role, r.City)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, "internal error")
		return
	}
	response.Created(c, gin.H{"user": user, "token": token})
}

// Login POST /api/auth/login
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, token, err := h.service.Login(r.Email, r.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, err.Error())
		case errors.Is(err, service.ErrAccountSuspended):
			response.Forbidden(c, err.Error())
		default:
			response.InternalError(c, "internal error")
		}
		return
	}
	response.OK(c, gin.H{"user": user, "token": token})
}

// Me GET /api/auth/me
func (h *UserHandler) Me(c *gin.Context) {
	userID := jwt.GetUserID(c)

	user, artist, err := h.service.Profile(userID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, gin.H{"user": response.NewUserView(user, artist)})
}
