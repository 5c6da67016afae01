package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"charity-backend/internal/access"
	"charity-backend/internal/core/auth"
	resp "charity-backend/internal/transport/http/response"
)

// KeyUserID 上下文里的登录用户 id
const KeyUserID = "userId"

// AuthJWT 解析 access token 写入 userId。
// required=false 时没有 Authorization 头也放行（匿名），但带了无效 token 一律 401。
func AuthJWT(j *auth.JWTer, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if ah == "" && !required {
			c.Next()
			return
		}
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "), auth.TypeAccess)
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		c.Set(KeyUserID, claims.UID)
		c.Next()
	}
}

// Principal 当前请求的主体；未登录为匿名
func Principal(c *gin.Context) access.Principal {
	return access.Principal{UserID: c.GetString(KeyUserID)}
}
