package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"charity-backend/internal/access"
	"charity-backend/internal/service"
	"charity-backend/internal/transport/http/ez"
)

// Admin 后台首页与管理员账号（/users）
type Admin struct {
	admins    *service.AdminService
	dashboard *service.DashboardService
}

func NewAdmin(admins *service.AdminService, dashboard *service.DashboardService) *Admin {
	return &Admin{admins: admins, dashboard: dashboard}
}

func (h *Admin) Priority() int { return 15 }

func (h *Admin) MountAdmin(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, service.Dashboard]{
		Method:  http.MethodGet,
		Path:    "/dashboard",
		Require: access.IsAdmin,
		Handler: func(c *gin.Context, p access.Principal, _ *struct{}) (service.Dashboard, error) {
			return h.dashboard.Get(c.Request.Context(), p)
		},
	})

	ez.RegisterAction(e, ez.Action[service.Window, service.List[service.AdminView]]{
		Method:  http.MethodGet,
		Path:    "/users",
		Binder:  ez.BindQuery,
		Require: access.SuperAdmin,
		Handler: func(c *gin.Context, _ access.Principal, w *service.Window) (service.List[service.AdminView], error) {
			return h.admins.List(c.Request.Context(), *w)
		},
	})
	ez.RegisterAction(e, ez.Action[service.AdminInput, service.AdminView]{
		Method:  http.MethodPost,
		Path:    "/users",
		Binder:  ez.BindJSON,
		Require: access.SuperAdmin,
		Status:  http.StatusCreated,
		Handler: func(c *gin.Context, _ access.Principal, in *service.AdminInput) (service.AdminView, error) {
			return h.admins.Create(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, service.AdminView]{
		Method:  http.MethodGet,
		Path:    "/users/:id",
		Require: access.SuperAdmin,
		Handler: func(c *gin.Context, _ access.Principal, _ *struct{}) (service.AdminView, error) {
			return h.admins.Get(c.Request.Context(), c.Param("id"))
		},
	})
	update := func(c *gin.Context, p access.Principal, in *service.AdminPatch) (service.AdminView, error) {
		return h.admins.Update(c.Request.Context(), p, c.Param("id"), *in)
	}
	for _, m := range []string{http.MethodPut, http.MethodPatch} {
		ez.RegisterAction(e, ez.Action[service.AdminPatch, service.AdminView]{
			Method:  m,
			Path:    "/users/:id",
			Binder:  ez.BindJSON,
			Require: access.SuperAdmin,
			Handler: update,
		})
	}
	ez.RegisterAction(e, ez.Action[struct{}, Deleted]{
		Method:  http.MethodDelete,
		Path:    "/users/:id",
		Require: access.SuperAdmin,
		Handler: func(c *gin.Context, p access.Principal, _ *struct{}) (Deleted, error) {
			id := c.Param("id")
			return Deleted{ID: id}, h.admins.Delete(c.Request.Context(), p, id)
		},
	})
}
