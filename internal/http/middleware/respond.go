package middleware

import (
	"github.com/gin-gonic/gin"
)

// abortJSON stops the chain with the API error envelope
// {"error": msg, "code": code, "request_id": id}.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"code":       code,
		"request_id": c.Writer.Header().Get(requestIDHeader),
	})
}
