package web

import (
	"github.com/ecodeclub/coursework/internal/assignment/internal/domain"
	"github.com/ecodeclub/coursework/internal/assignment/internal/service"
	"github.com/ecodeclub/ginx"
	"github.com/ecodeclub/ginx/session"
	"github.com/gin-gonic/gin"
)

// Handler 学生端
type Handler struct {
	svc service.Service
}

func NewHandler(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) PublicRoutes(server *gin.Engine) {}

func (h *Handler) PrivateRoutes(server *gin.Engine) {
	server.POST("/assignment/list", ginx.BS[Page](h.List))
}

// List 只返回进行中的作业
func (h *Handler) List(ctx *ginx.Context, req Page, sess session.Session) (ginx.Result, error) {
	res, err := h.svc.List(ctx, sess.Claims().Uid, domain.ListFilter{
		ActiveOnly: true,
		Offset:     req.Offset,
		Limit:      req.Limit,
	})
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{
		Data: newAssignmentList(res),
	}, nil
}
