package router

import (
	"github.com/gin-gonic/gin"

	"charity-backend/internal/transport/http/ez"
	mdw "charity-backend/internal/transport/http/middleware"
)

func NewAdminEngine(d Deps) *gin.Engine {
	d = d.withDefaults()
	r := base(d, "admin")

	// 管理端 v1：/login 匿名，其余接口各自声明所需能力
	admin := r.Group("/admin/v1", mdw.AuthJWT(d.JWT, false))
	d.Registry.MountAllAdmin(ez.New(admin, d.Evaluator, d.Log))
	return r
}
