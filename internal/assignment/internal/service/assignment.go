package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ecodeclub/coursework/internal/assignment/internal/domain"
	"github.com/ecodeclub/coursework/internal/assignment/internal/repository"
	"github.com/ecodeclub/coursework/internal/pkg/acode"
	"github.com/ecodeclub/ekit/slice"
)

var (
	ErrAssignmentNotFound = repository.ErrAssignmentNotFound
	ErrInvalidAssignment  = errors.New("作业信息不合法")
)

const defaultListLimit = 20
const maxListLimit = 100

//go:generate mockgen -source=./assignment.go -destination=../../mocks/assignment.mock.go -package=assignmentmocks Service
type Service interface {
	// Save code 为空的时候创建新的作业，返回作业码
	Save(ctx context.Context, a domain.Assignment) (string, error)
	Deactivate(ctx context.Context, code string) error
	Delete(ctx context.Context, code string) error
	// Detail code 必须是已经规范化的作业码
	Detail(ctx context.Context, code string) (domain.Assignment, error)
	List(ctx context.Context, submitter int64, filter domain.ListFilter) (domain.AssignmentList, error)
	// ActiveCodes 所有进行中的作业码，用于给输错的作业码提供建议
	ActiveCodes(ctx context.Context) ([]string, error)
}

type service struct {
	repo repository.AssignmentRepository
}

func NewService(repo repository.AssignmentRepository) Service {
	return &service{repo: repo}
}

func (s *service) Save(ctx context.Context, a domain.Assignment) (string, error) {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return "", fmt.Errorf("%w: 标题不能为空", ErrInvalidAssignment)
	}
	if a.CohortSize < 0 || a.Deadline < 0 {
		return "", fmt.Errorf("%w: 应交人数和截止时间不能为负数", ErrInvalidAssignment)
	}
	a.Requirements = trimAll(a.Requirements)
	a.Recommendations = trimAll(a.Recommendations)
	if a.Status == domain.StatusUnknown {
		a.Status = domain.StatusActive
	}
	if a.Code == "" {
		code, err := acode.GenerateUnique(ctx, s.repo.Exists, acode.DefaultMaxAttempts)
		if err != nil {
			return "", err
		}
		a.Code = code
		_, err = s.repo.Create(ctx, a)
		return code, err
	}
	code, ok := acode.Normalize(a.Code)
	if !ok {
		return "", fmt.Errorf("%w: 作业码 %s 格式错误", ErrInvalidAssignment, a.Code)
	}
	a.Code = code
	return code, s.repo.Update(ctx, a)
}

func trimAll(items []string) []string {
	items = slice.Map(items, func(idx int, src string) string {
		return strings.TrimSpace(src)
	})
	return slice.FilterMap(items, func(idx int, src string) (string, bool) {
		return src, src != ""
	})
}

func (s *service) Deactivate(ctx context.Context, code string) error {
	return s.repo.UpdateStatus(ctx, code, domain.StatusInactive)
}

func (s *service) Delete(ctx context.Context, code string) error {
	return s.repo.Delete(ctx, code)
}

func (s *service) Detail(ctx context.Context, code string) (domain.Assignment, error) {
	return s.repo.FindByCode(ctx, code)
}

func (s *service) List(ctx context.Context, submitter int64, filter domain.ListFilter) (domain.AssignmentList, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	filter.Limit = min(filter.Limit, maxListLimit)
	filter.Offset = max(filter.Offset, 0)
	return s.repo.List(ctx, submitter, filter)
}

func (s *service) ActiveCodes(ctx context.Context) ([]string, error) {
	return s.repo.ActiveCodes(ctx)
}
