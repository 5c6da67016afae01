package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"charity-backend/internal/core/throttle"
	resp "charity-backend/internal/transport/http/response"
)

// RateLimit 全局令牌桶限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		resp.Abort(c, resp.CodeTooManyRequests, "too many requests")
	}
}

// Throttle 按 scope + 客户端 IP 限流（登录、找回密码）。
// 限流器本身出错时放行，只记日志。
func Throttle(lim throttle.Limiter, scope string, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := lim.Allow(c.Request.Context(), scope+":"+c.ClientIP())
		if err != nil {
			l.Warn("throttle check failed", zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			resp.Abort(c, resp.CodeTooManyRequests, "request was throttled, please try again later")
			return
		}
		c.Next()
	}
}
