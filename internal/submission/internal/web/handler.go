package web

import (
	"github.com/ecodeclub/coursework/internal/submission/internal/domain"
	"github.com/ecodeclub/coursework/internal/submission/internal/service"
	"github.com/ecodeclub/ginx"
	"github.com/ecodeclub/ginx/session"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc service.Service
}

func NewHandler(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) PublicRoutes(server *gin.Engine) {
	server.POST("/submission/leaderboard", ginx.B[LimitReq](h.Leaderboard))
}

func (h *Handler) PrivateRoutes(server *gin.Engine) {
	g := server.Group("/submission")
	g.POST("/submit", ginx.BS[SubmitReq](h.Submit))
	g.POST("/status", ginx.BS[IdReq](h.Status))
	g.POST("/regenerate", ginx.BS[IdReq](h.Regenerate))
	g.POST("/mine", ginx.BS[CodeReq](h.Mine))
	g.GET("/summary", ginx.S(h.Summary))
	server.POST("/assignment/detail", ginx.BS[CodeReq](h.AssignmentDetail))
}

// Submit 内容获取是同步的，评审是异步生成的，返回的时候一般处于 feedback_pending
func (h *Handler) Submit(ctx *ginx.Context, req SubmitReq, sess session.Session) (ginx.Result, error) {
	res, err := h.svc.Submit(ctx, domain.SubmitRequest{
		Code:      req.Code,
		Submitter: sess.Claims().Uid,
		Kind:      domain.Kind(req.Kind),
		Reference: req.Reference,
		Content:   req.Content,
		Title:     req.Title,
	})
	if err != nil {
		return errorResult(err)
	}
	return ginx.Result{
		Data: SubmitResult{
			SubmissionId: res.SubmissionId,
			State:        res.State.String(),
		},
	}, nil
}

func (h *Handler) Status(ctx *ginx.Context, req IdReq, sess session.Session) (ginx.Result, error) {
	view, err := h.svc.GetStatus(ctx, sess.Claims().Uid, req.SubmissionId)
	if err != nil {
		return errorResult(err)
	}
	return ginx.Result{Data: newStatusView(view)}, nil
}

func (h *Handler) Regenerate(ctx *ginx.Context, req IdReq, sess session.Session) (ginx.Result, error) {
	state, err := h.svc.Regenerate(ctx, sess.Claims().Uid, req.SubmissionId)
	if err != nil {
		return errorResult(err)
	}
	return ginx.Result{
		Data: SubmitResult{
			SubmissionId: req.SubmissionId,
			State:        state.String(),
		},
	}, nil
}

// Mine 按照作业码查自己的提交
func (h *Handler) Mine(ctx *ginx.Context, req CodeReq, sess session.Session) (ginx.Result, error) {
	view, err := h.svc.View(ctx, sess.Claims().Uid, req.Code)
	if err != nil {
		return errorResult(err)
	}
	return ginx.Result{Data: newStatusView(view)}, nil
}

func (h *Handler) Summary(ctx *ginx.Context, sess session.Session) (ginx.Result, error) {
	s, err := h.svc.Summary(ctx, sess.Claims().Uid)
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{Data: newSummary(s)}, nil
}

func (h *Handler) Leaderboard(ctx *ginx.Context, req LimitReq) (ginx.Result, error) {
	entries, err := h.svc.Leaderboard(ctx, req.Limit)
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{Data: newLeaderboard(entries)}, nil
}

func (h *Handler) AssignmentDetail(ctx *ginx.Context, req CodeReq, sess session.Session) (ginx.Result, error) {
	view, err := h.svc.AssignmentDetail(ctx, sess.Claims().Uid, req.Code)
	if err != nil {
		return errorResult(err)
	}
	return ginx.Result{Data: newAssignmentView(view)}, nil
}
