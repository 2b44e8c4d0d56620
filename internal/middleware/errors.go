package middleware

import (
	"io"
	"log/slog"
	"net/http"

	"Social_Hub/internal/errs"

	"github.com/gin-gonic/gin"
)

// Errors renders the last error attached with c.Error as
// {success: false, message}. Server side failures are logged with their
// cause; clients only see the public message.
func Errors(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		e := errs.From(err)
		status := e.Kind.HTTPStatus()
		if status >= http.StatusInternalServerError {
			log.ErrorContext(c.Request.Context(), "request failed",
				"kind", e.Kind.String(),
				"err", err,
				"path", c.Request.URL.Path,
				"request_id", RequestID(c),
			)
		}
		c.JSON(status, gin.H{"success": false, "message": e.Public()})
	}
}

func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		log.ErrorContext(c.Request.Context(), "panic recovered",
			"panic", rec,
			"path", c.Request.URL.Path,
			"request_id", RequestID(c),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
	})
}
