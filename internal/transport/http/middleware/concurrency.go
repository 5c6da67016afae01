package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "charity-backend/internal/transport/http/response"
)

// ConcurrencyLimit 限制同时处理的请求数（保护 DB 连接池）。
// 满载时最多排队 wait，仍拿不到名额返回 503；wait<=0 则不排队。
func ConcurrencyLimit(max int64, wait time.Duration) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			if wait <= 0 {
				resp.Abort(c, resp.CodeUnavailable, "server busy")
				return
			}
			ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
			err := sem.Acquire(ctx, 1)
			cancel()
			if err != nil {
				resp.Abort(c, resp.CodeUnavailable, "server busy")
				return
			}
		}
		defer sem.Release(1)
		c.Next()
	}
}
