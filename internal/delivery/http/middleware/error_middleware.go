package middleware

import (
	"errors"
	"net/http"

	"talentlink-appointments/internal/delivery/http/response"
	"talentlink-appointments/internal/domain"
	"talentlink-appointments/pkg/apperror"
	"talentlink-appointments/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("request failed",
					"request_id", c.GetString(string(domain.KeyRequestID)),
					"path", c.FullPath(),
					"status", appErr.Code,
					"error", err,
				)
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		// Internal details stay in the logs.
		logger.Log.Error("unhandled error",
			"request_id", c.GetString(string(domain.KeyRequestID)),
			"path", c.FullPath(),
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
