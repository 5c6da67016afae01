package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"charity-backend/internal/access"
	"charity-backend/internal/service"
	"charity-backend/internal/transport/http/ez"
)

// Comment 读公开；改删限作者或 moderate_content
type Comment struct {
	svc *service.CommentService
}

func NewComment(svc *service.CommentService) *Comment { return &Comment{svc: svc} }

func (h *Comment) Priority() int { return 40 }

type commentText struct {
	Text string `json:"text"`
}

func (h *Comment) MountAPI(e ez.EZ) {
	h.mountRead(e, "")
	ez.RegisterAction(e, ez.Action[service.CommentInput, service.CommentView]{
		Method: http.MethodPost,
		Path:   "/comments",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, p access.Principal, in *service.CommentInput) (service.CommentView, error) {
			return h.svc.Create(c.Request.Context(), p, *in)
		},
	})
	h.mountWrite(e, "")
}

// MountAdmin 后台评论管理整体要求 moderate_content
func (h *Comment) MountAdmin(e ez.EZ) {
	h.mountRead(e, access.ModerateContent)
	h.mountWrite(e, access.ModerateContent)
}

func (h *Comment) mountRead(e ez.EZ, require access.Capability) {
	ez.RegisterAction(e, ez.Action[service.CommentQuery, service.List[service.CommentView]]{
		Method:  http.MethodGet,
		Path:    "/comments",
		Binder:  ez.BindQuery,
		Require: require,
		Handler: func(c *gin.Context, _ access.Principal, q *service.CommentQuery) (service.List[service.CommentView], error) {
			return h.svc.List(c.Request.Context(), *q)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, service.CommentView]{
		Method:  http.MethodGet,
		Path:    "/comments/:id",
		Require: require,
		Handler: func(c *gin.Context, _ access.Principal, _ *struct{}) (service.CommentView, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})
}

func (h *Comment) mountWrite(e ez.EZ, require access.Capability) {
	update := func(c *gin.Context, p access.Principal, in *commentText) (service.CommentView, error) {
		return h.svc.Update(c.Request.Context(), p, c.Param("id"), in.Text)
	}
	for _, m := range []string{http.MethodPut, http.MethodPatch} {
		ez.RegisterAction(e, ez.Action[commentText, service.CommentView]{
			Method:  m,
			Path:    "/comments/:id",
			Binder:  ez.BindJSON,
			Auth:    true,
			Require: require,
			Handler: update,
		})
	}
	ez.RegisterAction(e, ez.Action[struct{}, Deleted]{
		Method:  http.MethodDelete,
		Path:    "/comments/:id",
		Auth:    true,
		Require: require,
		Handler: func(c *gin.Context, p access.Principal, _ *struct{}) (Deleted, error) {
			id := c.Param("id")
			return Deleted{ID: id}, h.svc.Delete(c.Request.Context(), p, id)
		},
	})
}
