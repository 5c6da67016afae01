package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "charity-backend/internal/transport/http/response"
)

// MaxBodyBytes 声明长度超限直接 413；未声明长度的在读取（绑定）时报 413
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, resp.CodeTooLarge, "request body too large")
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
