package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/elemahana/farm-api/internal/apperr"
	"github.com/elemahana/farm-api/internal/log"
)

// Success writes the standard response envelope.
func Success(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// Fail renders err and aborts the chain. Operational errors expose their own
// status and message; everything else is a generic 500. Full detail goes to
// the server log under the request id either way.
func Fail(c *gin.Context, err error) {
	logger := log.WithDD(c.Request.Context(), log.L(),
		zap.String("request_id", ReqID(c)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	)

	if ae, ok := apperr.From(err); ok {
		logger.Warn("request failed", zap.Int("status", ae.Code), zap.Error(err))
		body := gin.H{"code": ae.Code, "message": ae.Message}
		if ae.Details != nil {
			body["details"] = ae.Details
		}
		c.AbortWithStatusJSON(ae.Code, gin.H{"success": false, "error": body})
		return
	}

	logger.Error("unhandled error", zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   gin.H{"code": http.StatusInternalServerError, "message": "Internal server error"},
	})
}

// NoRoute is the standardized 404 for unmatched paths.
func NoRoute(c *gin.Context) {
	Fail(c, apperr.New(http.StatusNotFound,
		fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path)))
}
