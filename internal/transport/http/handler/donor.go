package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"charity-backend/internal/access"
	"charity-backend/internal/service"
	"charity-backend/internal/transport/http/ez"
)

type Donor struct {
	svc *service.DonorService
}

func NewDonor(svc *service.DonorService) *Donor { return &Donor{svc: svc} }

func (h *Donor) Priority() int { return 50 }

func (h *Donor) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[service.Window, service.List[service.DonorView]]{
		Method: http.MethodGet,
		Path:   "/donors",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, _ access.Principal, w *service.Window) (service.List[service.DonorView], error) {
			return h.svc.List(c.Request.Context(), *w)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, service.DonorView]{
		Method: http.MethodGet,
		Path:   "/donors/:id",
		Auth:   true,
		Handler: func(c *gin.Context, _ access.Principal, _ *struct{}) (service.DonorView, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})
}
