package web

import (
	"errors"

	"github.com/ecodeclub/coursework/internal/submission/internal/errs"
	"github.com/ecodeclub/coursework/internal/submission/internal/service"
	"github.com/ecodeclub/ginx"
)

var (
	systemErrorResult = newResult(errs.SystemError, nil)
)

// ErrorDetail 出错的时候放在 data 里面
type ErrorDetail struct {
	Transient   bool     `json:"transient"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func newResult(code errs.ErrorCode, suggestions []string) ginx.Result {
	return ginx.Result{
		Code: code.Code,
		Msg:  code.Msg,
		Data: ErrorDetail{
			Transient:   code.Transient,
			Suggestions: suggestions,
		},
	}
}

var businessErrors = []struct {
	err  error
	code errs.ErrorCode
}{
	{err: service.ErrAssignmentNotFound, code: errs.AssignmentNotFound},
	{err: service.ErrAssignmentInactive, code: errs.AssignmentInactive},
	{err: service.ErrDeadlinePassed, code: errs.DeadlinePassed},
	{err: service.ErrDuplicateSubmission, code: errs.DuplicateSubmission},
	// 先匹配不能重试的几种，剩下的才是 ContentFetchFailed
	{err: service.ErrInvalidReference, code: errs.InvalidReference},
	{err: service.ErrContentTooLarge, code: errs.ContentTooLarge},
	{err: service.ErrNoReviewableContent, code: errs.NoReviewableContent},
	{err: service.ErrContentFetchFailed, code: errs.ContentFetchFailed},
	{err: service.ErrInvalidSubmission, code: errs.InvalidSubmission},
	{err: service.ErrSubmissionNotFound, code: errs.SubmissionNotFound},
	{err: service.ErrRegenerationNotAllowed, code: errs.RegenerationNotAllowed},
}

// errorResult 业务错误不需要返回 error，避免被当成系统错误记录
func errorResult(err error) (ginx.Result, error) {
	var ice *service.InvalidCodeError
	if errors.As(err, &ice) {
		return newResult(errs.InvalidAssignmentCode, ice.Suggestions), nil
	}
	for _, be := range businessErrors {
		if errors.Is(err, be.err) {
			if be.code.Transient {
				// 获取内容失败需要排查，记录下来
				return newResult(be.code, nil), err
			}
			return newResult(be.code, nil), nil
		}
	}
	return systemErrorResult, err
}
