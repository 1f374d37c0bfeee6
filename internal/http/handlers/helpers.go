package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecopulse/ecopulse-backend/internal/http/handlers/common"
	"github.com/ecopulse/ecopulse-backend/internal/http/response"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

// actorAndID читает текущего пользователя и параметр :id. При ошибке ответ уже отправлен.
func actorAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

func parseUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, field+" должен быть валидным UUID")
	}
	return id, nil
}
