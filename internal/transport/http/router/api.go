package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"charity-backend/internal/access"
	"charity-backend/internal/core/auth"
	"charity-backend/internal/core/server"
	"charity-backend/internal/transport/http/ez"
	mdw "charity-backend/internal/transport/http/middleware"
)

// Deps 两个引擎共用的依赖
type Deps struct {
	Log       *zap.Logger
	JWT       *auth.JWTer
	Evaluator *access.Evaluator
	Registry  *Registry

	CORSOrigins    []string
	RequestTimeout time.Duration
	MaxConcurrent  int64
	MaxBodyBytes   int64
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 10 * time.Second
	}
	if d.MaxConcurrent <= 0 {
		d.MaxConcurrent = 300
	}
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = 1 << 20
	}
	return d
}

// base 公共中间件 + /health + /metrics
func base(d Deps, name string) *gin.Engine {
	r := server.NewRouter(d.Log, server.Options{CORSOrigins: d.CORSOrigins, Recovery: mdw.Recovered})

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(d.MaxConcurrent, time.Second),
		mdw.MaxBodyBytes(d.MaxBodyBytes),
		mdw.Timeout(d.RequestTimeout),
		mdw.Metrics(name),
		mdw.AccessLog(d.Log),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func NewAPIEngine(d Deps) *gin.Engine {
	d = d.withDefaults()
	r := base(d, "api")

	// 匿名可访问；带 token 时解析出 userId，具体要求由各 Action 决定
	api := r.Group("/api/v1", mdw.AuthJWT(d.JWT, false))
	d.Registry.MountAllAPI(ez.New(api, d.Evaluator, d.Log))
	return r
}
