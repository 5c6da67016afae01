package middleware

import (
	"github.com/gin-gonic/gin"

	resp "charity-backend/internal/transport/http/response"
)

// Recovered 交给 ginzap.CustomRecoveryWithZap：日志由 ginzap 打，这里只回 500
func Recovered(c *gin.Context, _ any) {
	resp.Abort(c, resp.CodeServerError, "internal server error")
}
