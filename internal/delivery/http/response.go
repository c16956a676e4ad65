package http

import (
	"errors"
	"fmt"
	"net/http"

	"kursus-backend/internal/domain"
	"kursus-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Every JSON response uses the same envelope:
//
//	{"status": "success"|"fail"|"error", "message": "...", "data": ...}
//
// "fail" is a client error (4xx), "error" a server fault (5xx).

func respondSuccess(c *gin.Context, code int, message string, data interface{}) {
	body := gin.H{"status": "success", "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(code, body)
}

func respondFail(c *gin.Context, code int, message string, data interface{}) {
	body := gin.H{"status": "fail", "message": message}
	if data != nil {
		body["data"] = data
	}
	c.AbortWithStatusJSON(code, body)
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a usecase error onto the envelope. Unclassified errors
// are logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		logger.Log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Internal server error",
		})
		return
	}

	var data interface{}
	if len(de.Reasons) > 0 {
		data = gin.H{"reasons": de.Reasons}
	}
	respondFail(c, statusForKind(de.Kind), de.Message, data)
}

func respondBindError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make(map[string]string, len(ve))
		for _, f := range ve {
			details[f.Field()] = fmt.Sprintf("failed on the '%s' rule", f.Tag())
		}
		respondFail(c, http.StatusBadRequest, "Validation failed", gin.H{"errors": details})
		return
	}
	respondFail(c, http.StatusBadRequest, "Invalid request body", nil)
}
