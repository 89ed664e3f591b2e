package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDKey is the Gin context key holding the generated request id.
const requestIDKey = "request_id"

const defaultAllowMethods = "GET, PUT, POST, DELETE, HEAD, OPTIONS"

// Headers stamps every response with the CORS set and a generated
// x-amzn-requestid header, mirroring what the hosted API sends. Clients
// doing a preflight get their requested headers echoed back.
func Headers() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set(requestIDKey, id)

		h := c.Writer.Header()
		h.Set("access-control-allow-origin", "*")
		if reqHeaders := c.GetHeader("access-control-request-headers"); reqHeaders != "" {
			h.Set("access-control-allow-headers", reqHeaders)
		}
		h.Set("access-control-expose-headers", "x-amzn-RequestId,x-amzn-ErrorType,x-amzn-ErrorMessage,Date")
		allowMethods := c.GetHeader("access-control-allow-methods")
		if allowMethods == "" {
			allowMethods = defaultAllowMethods
		}
		h.Set("access-control-allow-methods", allowMethods)
		h.Set("access-control-max-age", "172800")
		h.Set("date", time.Now().UTC().Format(http.TimeFormat))
		h.Set("x-amzn-requestid", id)

		c.Next()
	}
}

// RequestID returns the request id assigned by Headers.
func RequestID(c *gin.Context) string {
	v, _ := c.Get(requestIDKey)
	s, _ := v.(string)
	return s
}
