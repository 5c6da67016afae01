package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"charity-backend/internal/access"
	"charity-backend/internal/service"
	"charity-backend/internal/transport/http/ez"
)

// Donation 公开端只看自己的；后台只读（manage_finances）
type Donation struct {
	svc *service.DonationService
}

func NewDonation(svc *service.DonationService) *Donation { return &Donation{svc: svc} }

func (h *Donation) Priority() int { return 30 }

func (h *Donation) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[service.DonationQuery, service.List[service.DonationView]]{
		Method: http.MethodGet,
		Path:   "/donations",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, p access.Principal, q *service.DonationQuery) (service.List[service.DonationView], error) {
			return h.svc.ListOwn(c.Request.Context(), p, *q)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, service.DonationView]{
		Method: http.MethodGet,
		Path:   "/donations/:id",
		Auth:   true,
		Handler: func(c *gin.Context, p access.Principal, _ *struct{}) (service.DonationView, error) {
			return h.svc.GetOwn(c.Request.Context(), p, c.Param("id"))
		},
	})
	ez.RegisterAction(e, ez.Action[service.DonationInput, service.DonationView]{
		Method: http.MethodPost,
		Path:   "/donations",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, p access.Principal, in *service.DonationInput) (service.DonationView, error) {
			return h.svc.Create(c.Request.Context(), p, *in)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, Deleted]{
		Method: http.MethodDelete,
		Path:   "/donations/:id",
		Auth:   true,
		Handler: func(c *gin.Context, p access.Principal, _ *struct{}) (Deleted, error) {
			id := c.Param("id")
			return Deleted{ID: id}, h.svc.Delete(c.Request.Context(), p, id)
		},
	})
}

func (h *Donation) MountAdmin(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[service.DonationQuery, service.List[service.DonationView]]{
		Method:  http.MethodGet,
		Path:    "/donations",
		Binder:  ez.BindQuery,
		Require: access.ManageFinances,
		Handler: func(c *gin.Context, _ access.Principal, q *service.DonationQuery) (service.List[service.DonationView], error) {
			return h.svc.AdminList(c.Request.Context(), *q)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, service.DonationView]{
		Method:  http.MethodGet,
		Path:    "/donations/:id",
		Require: access.ManageFinances,
		Handler: func(c *gin.Context, _ access.Principal, _ *struct{}) (service.DonationView, error) {
			return h.svc.AdminGet(c.Request.Context(), c.Param("id"))
		},
	})
}
