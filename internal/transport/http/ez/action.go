// Package ez registers typed gin handlers ("actions") with a uniform
// bind → guard → run → envelope pipeline.
package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"charity-backend/internal/access"
	"charity-backend/internal/apperr"
	mdw "charity-backend/internal/transport/http/middleware"
	resp "charity-backend/internal/transport/http/response"
)

type EZ struct {
	g   *gin.RouterGroup
	ev  *access.Evaluator
	log *zap.Logger
}

func New(g *gin.RouterGroup, ev *access.Evaluator, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, ev: ev, log: l}
}

// Group 子路由，共享守卫与日志
func (e EZ) Group(path string, mw ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, mw...), ev: e.ev, log: e.log}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method     string
	Path       string
	Binder     Binder
	Auth       bool              // 是否要求登录
	Require    access.Capability // 需要的能力（隐含 Auth）
	Status     int               // 成功时的 HTTP 状态，默认 200
	Middleware []gin.HandlerFunc // 路由级中间件（如限流）
	Handler    func(c *gin.Context, p access.Principal, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		p := mdw.Principal(c)

		// 1) 鉴权 / 能力
		if (a.Auth || a.Require != "") && p.Anonymous() {
			resp.Abort(c, resp.CodeUnauthorized, "authentication credentials were not provided")
			return
		}
		if a.Require != "" {
			ok, err := e.ev.Allow(c.Request.Context(), p, a.Require)
			if err != nil {
				e.fail(c, apperr.Internal("check capability failed", err))
				return
			}
			if !ok {
				resp.Abort(c, resp.CodeForbidden, "you do not have permission to perform this action")
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default:
		}
		if bindErr != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(bindErr, &tooLarge) {
				resp.Abort(c, resp.CodeTooLarge, "request body too large")
				return
			}
			resp.Abort(c, resp.CodeBadRequest, bindErr.Error())
			return
		}

		// 3) 执行
		out, err := a.Handler(c, p, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, resp.OK(out))
	}

	handlers := append(append([]gin.HandlerFunc{}, a.Middleware...), h)
	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, handlers...)
	case http.MethodPut:
		e.g.PUT(a.Path, handlers...)
	case http.MethodPatch:
		e.g.PATCH(a.Path, handlers...)
	case http.MethodDelete:
		e.g.DELETE(a.Path, handlers...)
	default: // 默认 POST
		e.g.POST(a.Path, handlers...)
	}
}

// fail 统一错误映射；500 只记日志，对外给通用文案
func (e EZ) fail(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	if code >= http.StatusInternalServerError {
		e.log.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		resp.Abort(c, resp.CodeServerError, "internal server error")
		return
	}
	resp.Abort(c, code, err.Error())
}
