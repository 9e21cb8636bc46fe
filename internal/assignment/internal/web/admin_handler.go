package web

import (
	"errors"

	"github.com/ecodeclub/coursework/internal/assignment/internal/domain"
	"github.com/ecodeclub/coursework/internal/assignment/internal/service"
	"github.com/ecodeclub/coursework/internal/pkg/acode"
	"github.com/ecodeclub/ginx"
	"github.com/ecodeclub/ginx/session"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	svc service.Service
}

func NewAdminHandler(svc service.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) PrivateRoutes(server *gin.Engine) {
	server.POST("/assignment/save", ginx.BS[SaveReq](h.Save))
	server.POST("/assignment/deactivate", ginx.B[CodeReq](h.Deactivate))
	server.POST("/assignment/delete", ginx.B[CodeReq](h.Delete))
	server.POST("/assignment/list", ginx.BS[Page](h.List))
	server.POST("/assignment/detail", ginx.B[CodeReq](h.Detail))
}

func (h *AdminHandler) Save(ctx *ginx.Context, req SaveReq, sess session.Session) (ginx.Result, error) {
	a := req.Assignment.toDomain()
	a.Creator = sess.Claims().Uid
	code, err := h.svc.Save(ctx, a)
	switch {
	case err == nil:
		return ginx.Result{Data: code}, nil
	case errors.Is(err, service.ErrInvalidAssignment):
		return invalidResult(err), nil
	case errors.Is(err, service.ErrAssignmentNotFound):
		return notFoundResult, nil
	default:
		return systemErrorResult, err
	}
}

func (h *AdminHandler) Deactivate(ctx *ginx.Context, req CodeReq) (ginx.Result, error) {
	code, ok := acode.Normalize(req.Code)
	if !ok {
		return notFoundResult, nil
	}
	return h.writeResult(h.svc.Deactivate(ctx, code))
}

func (h *AdminHandler) Delete(ctx *ginx.Context, req CodeReq) (ginx.Result, error) {
	code, ok := acode.Normalize(req.Code)
	if !ok {
		return notFoundResult, nil
	}
	return h.writeResult(h.svc.Delete(ctx, code))
}

func (h *AdminHandler) writeResult(err error) (ginx.Result, error) {
	switch {
	case err == nil:
		return ginx.Result{Msg: "OK"}, nil
	case errors.Is(err, service.ErrAssignmentNotFound):
		return notFoundResult, nil
	default:
		return systemErrorResult, err
	}
}

// List 只看自己创建的作业
func (h *AdminHandler) List(ctx *ginx.Context, req Page, sess session.Session) (ginx.Result, error) {
	uid := sess.Claims().Uid
	res, err := h.svc.List(ctx, uid, domain.ListFilter{
		Creator: uid,
		Offset:  req.Offset,
		Limit:   req.Limit,
	})
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{
		Data: newAssignmentList(res),
	}, nil
}

func (h *AdminHandler) Detail(ctx *ginx.Context, req CodeReq) (ginx.Result, error) {
	code, ok := acode.Normalize(req.Code)
	if !ok {
		return notFoundResult, nil
	}
	a, err := h.svc.Detail(ctx, code)
	switch {
	case err == nil:
		return ginx.Result{Data: newAssignment(a)}, nil
	case errors.Is(err, service.ErrAssignmentNotFound):
		return notFoundResult, nil
	default:
		return systemErrorResult, err
	}
}
