package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// Trace opens a Datadog span per request and propagates it through the
// request context so repo spans become children of it.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		span, ctx := tracer.StartSpanFromContext(c.Request.Context(), "http.request",
			tracer.ResourceName(c.Request.Method+" "+route),
			tracer.Tag("http.method", c.Request.Method),
		)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		span.SetTag("http.status_code", strconv.Itoa(c.Writer.Status()))
		span.Finish()
	}
}
