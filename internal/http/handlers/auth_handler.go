package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ecopulse/ecopulse-backend/internal/dto"
	"github.com/ecopulse/ecopulse-backend/internal/http/handlers/common"
	"github.com/ecopulse/ecopulse-backend/internal/http/response"
	"github.com/ecopulse/ecopulse-backend/internal/service"
)

// AuthHandler предоставляет HTTP слой для регистрации и логина.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register обрабатывает POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		City:         req.City,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "регистрация прошла успешно", authBody(result))
}

// Login обрабатывает POST /api/auth/login. Поле username принимает и email.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{Login: req.Username, Password: req.Password})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "", authBody(result))
}

// Refresh обрабатывает POST /api/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := common.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "", authBody(result))
}

// Me обрабатывает GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "", gin.H{"user": dto.NewUserResponse(user, true)})
}

func authBody(result *service.AuthResult) gin.H {
	return gin.H{
		"user":   dto.NewUserResponse(result.User, true),
		"tokens": result.TokenPair,
	}
}
