package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"charity-backend/internal/access"
	"charity-backend/internal/service"
	"charity-backend/internal/transport/http/ez"
)

// Campaign 公开只读；写操作需要 manage_campaigns
type Campaign struct {
	svc *service.CampaignService
}

func NewCampaign(svc *service.CampaignService) *Campaign { return &Campaign{svc: svc} }

func (h *Campaign) Priority() int { return 20 }

type adminCampaignQuery struct {
	service.CampaignQuery
	service.Window
}

func (h *Campaign) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[service.CampaignQuery, service.List[service.CampaignView]]{
		Method: http.MethodGet,
		Path:   "/campaigns",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, _ access.Principal, q *service.CampaignQuery) (service.List[service.CampaignView], error) {
			return h.svc.List(c.Request.Context(), *q)
		},
	})
	h.mountItem(e)
}

func (h *Campaign) MountAdmin(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[adminCampaignQuery, service.List[service.CampaignView]]{
		Method:  http.MethodGet,
		Path:    "/campaigns",
		Binder:  ez.BindQuery,
		Require: access.ManageCampaigns,
		Handler: func(c *gin.Context, _ access.Principal, q *adminCampaignQuery) (service.List[service.CampaignView], error) {
			return h.svc.AdminList(c.Request.Context(), q.CampaignQuery, q.Window)
		},
	})
	h.mountItem(e)
}

// mountItem 两端共用：详情公开，增改删需要 manage_campaigns
func (h *Campaign) mountItem(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, service.CampaignView]{
		Method: http.MethodGet,
		Path:   "/campaigns/:id",
		Handler: func(c *gin.Context, _ access.Principal, _ *struct{}) (service.CampaignView, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(e, ez.Action[service.CampaignInput, service.CampaignView]{
		Method:  http.MethodPost,
		Path:    "/campaigns",
		Binder:  ez.BindJSON,
		Require: access.ManageCampaigns,
		Status:  http.StatusCreated,
		Handler: func(c *gin.Context, p access.Principal, in *service.CampaignInput) (service.CampaignView, error) {
			return h.svc.Create(c.Request.Context(), p, *in)
		},
	})

	update := func(c *gin.Context, _ access.Principal, in *service.CampaignPatch) (service.CampaignView, error) {
		return h.svc.Update(c.Request.Context(), c.Param("id"), *in)
	}
	for _, m := range []string{http.MethodPut, http.MethodPatch} {
		ez.RegisterAction(e, ez.Action[service.CampaignPatch, service.CampaignView]{
			Method:  m,
			Path:    "/campaigns/:id",
			Binder:  ez.BindJSON,
			Require: access.ManageCampaigns,
			Handler: update,
		})
	}

	ez.RegisterAction(e, ez.Action[struct{}, Deleted]{
		Method:  http.MethodDelete,
		Path:    "/campaigns/:id",
		Require: access.ManageCampaigns,
		Handler: func(c *gin.Context, _ access.Principal, _ *struct{}) (Deleted, error) {
			id := c.Param("id")
			return Deleted{ID: id}, h.svc.Delete(c.Request.Context(), id)
		},
	})
}
