package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

func render(t *testing.T, fn func(c *gin.Context)) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestSuccess_MergesData(t *testing.T) {
	code, body := render(t, func(c *gin.Context) {
		Success(c, "готово", gin.H{"points": 15})
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "готово", body["message"])
	assert.Equal(t, float64(15), body["points"])
}

func TestError_MapsAppError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"already assigned", apperror.ErrAlreadyAssigned, http.StatusConflict, "ALREADY_ASSIGNED"},
		{"not assignee", apperror.ErrNotAssignee, http.StatusForbidden, "NOT_ASSIGNEE"},
		{"insufficient", apperror.ErrInsufficientBalance, http.StatusBadRequest, "INSUFFICIENT_BALANCE"},
		{"not found", apperror.ErrProblemNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"plain error", errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := render(t, func(c *gin.Context) { Error(c, tt.err) })
			assert.Equal(t, tt.status, code)
			assert.Equal(t, "error", body["status"])
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestError_HidesInternalDetails(t *testing.T) {
	_, body := render(t, func(c *gin.Context) {
		Error(c, apperror.Wrap(errors.New("pq: deadlock"), apperror.ErrCodeDatabaseError, "ошибка базы"))
	})
	assert.Equal(t, "внутренняя ошибка сервера", body["message"])
	assert.Equal(t, "DATABASE_ERROR", body["code"])
}
