package v1

import (
	"net/http"
	"strconv"

	"talentlink-appointments/internal/domain"
	"talentlink-appointments/pkg/apperror"
	"talentlink-appointments/pkg/logger"
	"talentlink-appointments/pkg/validation"

	"github.com/gin-gonic/gin"
)

// currentUserID returns the id AuthMiddleware extracted from the token
func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(string(domain.KeyUserID))
}

// bindJSON decodes and validates the body, reporting field errors as a 400
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.Error(apperror.BadRequest(validation.Message(err)))
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.BadRequest("Invalid " + name))
		return 0, false
	}
	return id, true
}

// failOperation logs the typed error and answers with a generic message.
// Server-side failures keep their 5xx code; everything else keeps its 4xx code.
func failOperation(c *gin.Context, op string, err error, message string) {
	code := apperror.CodeOf(err)
	logger.Log.Warn("operation failed",
		"op", op,
		"request_id", c.GetString(string(domain.KeyRequestID)),
		"user_id", currentUserID(c),
		"status", code,
		"error", err,
	)
	if code >= http.StatusInternalServerError {
		c.Error(err)
		return
	}
	c.Error(apperror.New(code, message, err))
}
