package web

import (
	"github.com/ecodeclub/coursework/internal/assignment/internal/errs"
	"github.com/ecodeclub/ginx"
)

var (
	systemErrorResult = ginx.Result{
		Code: errs.SystemError.Code,
		Msg:  errs.SystemError.Msg,
	}
	notFoundResult = ginx.Result{
		Code: errs.AssignmentNotFound.Code,
		Msg:  errs.AssignmentNotFound.Msg,
	}
)

func invalidResult(err error) ginx.Result {
	return ginx.Result{
		Code: errs.InvalidAssignment.Code,
		Msg:  err.Error(),
	}
}
