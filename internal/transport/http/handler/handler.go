// Package handler maps HTTP actions onto the account and resource services.
// Each handler mounts itself on the public API, the admin API, or both.
package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"charity-backend/internal/core/throttle"
	mdw "charity-backend/internal/transport/http/middleware"
)

// Deleted 删除成功的统一返回
type Deleted struct {
	ID string `json:"id"`
}

type Message struct {
	Message string `json:"message"`
}

// throttled 未配置限流器时不挂中间件
func throttled(lim throttle.Limiter, scope string, l *zap.Logger) []gin.HandlerFunc {
	if lim == nil {
		return nil
	}
	return []gin.HandlerFunc{mdw.Throttle(lim, scope, l)}
}
