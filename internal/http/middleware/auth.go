package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/domain/repository"
	"github.com/ecopulse/ecopulse-backend/internal/http/response"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
	ContextUserKey   = "user"
)

// TokenParser проверяет access токен.
type TokenParser interface {
	ParseAccess(token string) (uuid.UUID, string, error)
}

// AuthMiddleware проверяет JWT access токен.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "требуется авторизация")
			c.Abort()
			return
		}

		userID, role, err := tokens.ParseAccess(raw)
		if err != nil || userID == uuid.Nil {
			response.Unauthorized(c, "токен невалиден")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

// RequireAdmin перечитывает пользователя из базы: роль в токене могла устареть.
func RequireAdmin(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.Get(ContextUserIDKey)
		if !ok {
			response.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID.(uuid.UUID))
		if apperror.IsNotFound(err) {
			response.Abort(c, apperror.ErrUnauthorized)
			return
		}
		if err != nil {
			response.Abort(c, err)
			return
		}
		if !user.IsAdmin {
			response.Abort(c, apperror.ErrForbidden)
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token != "" {
		return token, true
	}
	// браузерный WebSocket не умеет передавать заголовки
	if token := c.Query("token"); token != "" && c.IsWebsocket() {
		return token, true
	}
	return "", false
}
