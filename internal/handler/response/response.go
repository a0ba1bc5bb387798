// Package response writes the JSON envelope shared by every HTTP handler.
package response

import (
	"errors"
	"net/http"
	"strconv"

	"commercial-file-service/pkg/apperr"
	"commercial-file-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message})
}

// StatusOf maps a service error to an HTTP status code.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with its mapped status. Internal errors are logged and
// their text is not sent to the client.
func Error(c *gin.Context, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		logger.GetLogger(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
		Fail(c, status, "internal server error")
		return
	}
	Fail(c, status, err.Error())
}

// UUIDParam parses a uuid path parameter, writing a 400 when it is malformed.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		Fail(c, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func Int64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

func UintParam(c *gin.Context, name string) (uint32, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		Fail(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint32(v), true
}

func IntParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		Fail(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

// Recovery turns a panic into a 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.GetLogger(c.Request.Context()).Error("panic recovered",
			zap.String("path", c.FullPath()), zap.Any("panic", recovered))
		Fail(c, http.StatusInternalServerError, "internal server error")
	})
}
