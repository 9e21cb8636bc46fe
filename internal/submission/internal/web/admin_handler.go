package web

import (
	"github.com/ecodeclub/coursework/internal/submission/internal/service"
	"github.com/ecodeclub/ginx"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	svc service.Service
}

func NewAdminHandler(svc service.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) PrivateRoutes(server *gin.Engine) {
	server.POST("/assignment/stats", ginx.B[CodeReq](h.Stats))
	server.POST("/submission/detail", ginx.B[IdReq](h.Detail))
}

func (h *AdminHandler) Stats(ctx *ginx.Context, req CodeReq) (ginx.Result, error) {
	s, err := h.svc.Stats(ctx, req.Code)
	if err != nil {
		return errorResult(err)
	}
	return ginx.Result{
		Data: Stats{
			AssignmentCode: s.AssignmentCode,
			Summary:        newSummary(s.Summary),
			CohortSize:     s.CohortSize,
			SubmissionRate: s.SubmissionRate,
		},
	}, nil
}

// Detail 管理员可以查看任何人的提交
func (h *AdminHandler) Detail(ctx *ginx.Context, req IdReq) (ginx.Result, error) {
	view, err := h.svc.GetStatus(ctx, 0, req.SubmissionId)
	if err != nil {
		return errorResult(err)
	}
	return ginx.Result{Data: newStatusView(view)}, nil
}
