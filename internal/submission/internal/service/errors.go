package service

import (
	"errors"
	"fmt"

	"github.com/ecodeclub/coursework/internal/assignment"
	"github.com/ecodeclub/coursework/internal/fetcher"
	"github.com/ecodeclub/coursework/internal/submission/internal/repository"
)

var (
	ErrInvalidAssignmentCode  = errors.New("作业码不合法")
	ErrAssignmentNotFound     = assignment.ErrAssignmentNotFound
	ErrAssignmentInactive     = errors.New("作业已经停止提交")
	ErrDeadlinePassed         = errors.New("已经过了作业截止时间")
	ErrDuplicateSubmission    = errors.New("已经提交过这个作业")
	ErrContentFetchFailed     = fetcher.ErrContentFetchFailed
	ErrInvalidReference       = fetcher.ErrInvalidReference
	ErrContentTooLarge        = fetcher.ErrContentTooLarge
	ErrNoReviewableContent    = fetcher.ErrNoReviewableContent
	ErrInvalidSubmission      = errors.New("提交内容不合法")
	ErrSubmissionNotFound     = repository.ErrSubmissionNotFound
	ErrRegenerationNotAllowed = errors.New("当前状态不能重新生成评审")
)

// InvalidCodeError 作业码不合法的时候，带上相近的作业码
type InvalidCodeError struct {
	Input       string
	Suggestions []string
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidAssignmentCode.Error(), e.Input)
}

func (e *InvalidCodeError) Unwrap() error {
	return ErrInvalidAssignmentCode
}
