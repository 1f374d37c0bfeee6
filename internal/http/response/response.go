// Package response формирует ответы API вида {status, ...данные, message}.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ecopulse/ecopulse-backend/internal/logger"
	"github.com/ecopulse/ecopulse-backend/internal/pkg/apperror"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Success отвечает 200 и дописывает поля data к телу ответа.
func Success(c *gin.Context, message string, data gin.H) {
	write(c, http.StatusOK, StatusSuccess, message, data)
}

// Created отвечает 201.
func Created(c *gin.Context, message string, data gin.H) {
	write(c, http.StatusCreated, StatusSuccess, message, data)
}

// Fail отвечает ошибкой с явным статусом и кодом.
func Fail(c *gin.Context, httpStatus int, code apperror.ErrorCode, message string) {
	write(c, httpStatus, StatusError, message, gin.H{"code": string(code)})
}

// Error переводит ошибку сценария в HTTP ответ. Текст внутренних ошибок клиенту не отдаётся.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError {
		Fail(c, appErr.HTTPStatus, appErr.Code, appErr.Message)
		return
	}

	code := apperror.ErrCodeInternal
	if appErr != nil {
		code = appErr.Code
	}
	logger.WithComponent("http").WithFields(logrus.Fields{
		"error":  err.Error(),
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
	}).Error("request error")
	Fail(c, http.StatusInternalServerError, code, "внутренняя ошибка сервера")
}

// Abort отвечает ошибкой и прерывает цепочку middleware.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, apperror.ErrCodeBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "требуется авторизация"
	}
	Fail(c, http.StatusUnauthorized, apperror.ErrCodeUnauthorized, message)
}

func write(c *gin.Context, httpStatus int, status, message string, data gin.H) {
	body := gin.H{}
	for k, v := range data {
		body[k] = v
	}
	body["status"] = status
	if message != "" {
		body["message"] = message
	}
	c.JSON(httpStatus, body)
}
