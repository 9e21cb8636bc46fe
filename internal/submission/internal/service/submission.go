package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ecodeclub/coursework/internal/assignment"
	"github.com/ecodeclub/coursework/internal/fetcher"
	"github.com/ecodeclub/coursework/internal/pkg/acode"
	"github.com/ecodeclub/coursework/internal/pkg/cachex"
	"github.com/ecodeclub/coursework/internal/pkg/snowflake"
	"github.com/ecodeclub/coursework/internal/submission/internal/domain"
	"github.com/ecodeclub/coursework/internal/submission/internal/event"
	"github.com/ecodeclub/coursework/internal/submission/internal/repository"
	"github.com/gotomicro/ego/core/elog"
	"github.com/lithammer/shortuuid/v4"
)

const (
	// suggestDistance 编辑距离不超过 2 的作业码才会被推荐
	suggestDistance     = 2
	defaultLeaderboard  = 10
	maxLeaderboardLimit = 100
)

//go:generate mockgen -source=./submission.go -destination=../../mocks/submission.mock.go -package=submissionmocks Service
type Service interface {
	// Submit 同步完成准入检查和内容拉取，评审生成是异步的
	Submit(ctx context.Context, req domain.SubmitRequest) (domain.SubmitResult, error)
	// GetStatus submitter 为 0 的时候不校验提交者
	GetStatus(ctx context.Context, submitter, id int64) (domain.StatusView, error)
	// Regenerate 不会重新准入，直接重新生成评审
	Regenerate(ctx context.Context, submitter, id int64) (domain.State, error)
	View(ctx context.Context, submitter int64, code string) (domain.StatusView, error)
	Summary(ctx context.Context, submitter int64) (domain.Summary, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	Stats(ctx context.Context, code string) (domain.Stats, error)
	AssignmentDetail(ctx context.Context, submitter int64, code string) (domain.AssignmentView, error)
	// AbandonStale 把 before 之前就停留在已创建或者生成中的提交标记为失败，返回处理的数量
	AbandonStale(ctx context.Context, before time.Time, limit int) (int, error)
}

type service struct {
	repo          repository.SubmissionRepository
	assignmentSvc assignment.Service
	fetcher       fetcher.Fetcher
	producer      event.FeedbackEventProducer
	idGen         snowflake.IDGenerator
	cache         cachex.Cache
	now           func() time.Time
	logger        *elog.Component
}

func NewService(repo repository.SubmissionRepository,
	assignmentSvc assignment.Service,
	f fetcher.Fetcher,
	producer event.FeedbackEventProducer,
	idGen snowflake.IDGenerator,
	c cachex.Cache) Service {
	return &service{
		repo:          repo,
		assignmentSvc: assignmentSvc,
		fetcher:       f,
		producer:      producer,
		idGen:         idGen,
		cache:         c,
		now:           time.Now,
		logger:        elog.DefaultLogger,
	}
}

func (s *service) Submit(ctx context.Context, req domain.SubmitRequest) (domain.SubmitResult, error) {
	code, err := s.normalizeCode(ctx, req.Code)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	ref := fetcher.Reference{
		URL:     strings.TrimSpace(req.Reference),
		Content: req.Content,
	}
	if err = validateReference(req.Kind, ref); err != nil {
		return domain.SubmitResult{}, err
	}

	a, err := s.assignmentSvc.Detail(ctx, code)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	if !a.Active() {
		return domain.SubmitResult{}, fmt.Errorf("%w, code %s", ErrAssignmentInactive, code)
	}
	if a.Expired(s.now()) {
		return domain.SubmitResult{}, fmt.Errorf("%w, code %s", ErrDeadlinePassed, code)
	}

	existing, err := s.repo.FindByCodeAndSubmitter(ctx, code, req.Submitter)
	switch {
	case err == nil:
		if !a.AllowResubmit {
			return domain.SubmitResult{}, fmt.Errorf("%w, code %s, sid %d", ErrDuplicateSubmission, code, existing.Id)
		}
	case errors.Is(err, ErrSubmissionNotFound):
	default:
		return domain.SubmitResult{}, err
	}

	content, err := s.fetcher.Fetch(ctx, fetcher.Kind(req.Kind), ref, fetcher.Options{})
	if err != nil {
		if !errors.Is(err, ErrContentFetchFailed) {
			err = fmt.Errorf("%w: %w", ErrContentFetchFailed, err)
		}
		return domain.SubmitResult{}, err
	}

	sub := domain.Submission{
		AssignmentCode: code,
		Submitter:      req.Submitter,
		Kind:           req.Kind,
		Reference:      ref.URL,
		Title:          strings.TrimSpace(req.Title),
		Content:        content.Content,
		Structure:      content.Structure,
		Meta: domain.Meta{
			Files:    content.Files,
			Metadata: content.Metadata,
		},
		State:       domain.StateCreated,
		SubmittedAt: s.now().UnixMilli(),
	}
	if sub.Title == "" {
		sub.Title = content.Title
	}
	if existing.Id > 0 {
		// 允许重复提交的作业，覆盖之前的提交
		sub.Id = existing.Id
		err = s.repo.Replace(ctx, sub)
	} else {
		sub.Id = s.idGen.Generate().Int64()
		err = s.repo.Create(ctx, sub)
		if errors.Is(err, repository.ErrDuplicateSubmission) {
			err = fmt.Errorf("%w, code %s", ErrDuplicateSubmission, code)
		}
	}
	if err != nil {
		return domain.SubmitResult{}, err
	}
	return domain.SubmitResult{
		SubmissionId: sub.Id,
		State:        s.dispatch(ctx, sub, false),
	}, nil
}

func validateReference(kind domain.Kind, ref fetcher.Reference) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: 未知的提交类型 %q", ErrInvalidSubmission, kind)
	}
	if kind == domain.KindGitHub && ref.URL == "" {
		return fmt.Errorf("%w: 缺少仓库地址", ErrInvalidSubmission)
	}
	if ref.URL == "" && strings.TrimSpace(ref.Content) == "" {
		return fmt.Errorf("%w: 内容和地址不能同时为空", ErrInvalidSubmission)
	}
	return nil
}

// normalizeCode 不合法的时候从进行中的作业里面找相近的作业码
func (s *service) normalizeCode(ctx context.Context, input string) (string, error) {
	code, ok := acode.Normalize(input)
	if ok {
		return code, nil
	}
	res := &InvalidCodeError{Input: input}
	codes, err := s.assignmentSvc.ActiveCodes(ctx)
	if err != nil {
		s.logger.Warn("查询进行中的作业码失败", elog.FieldErr(err))
		return "", res
	}
	res.Suggestions = acode.SuggestSimilar(input, codes, suggestDistance)
	return "", res
}

// dispatch 先标记为生成中再投递，投递失败直接标记为失败
func (s *service) dispatch(ctx context.Context, sub domain.Submission, regenerate bool) domain.State {
	logger := s.logger.With(elog.Int64("sid", sub.Id), elog.Any("regenerate", regenerate))
	state := domain.StateFeedbackPending
	err := s.repo.UpdateState(ctx, sub, domain.StateFeedbackPending, domain.FailureNone)
	if err != nil {
		// 生成结束的时候会写入最终状态，这里不需要中断
		logger.Error("标记提交为生成中失败", elog.FieldErr(err))
		state = sub.State
	}
	err = s.producer.Produce(ctx, event.FeedbackGenerationEvent{
		EventId:      shortuuid.New(),
		SubmissionId: sub.Id,
		SubmittedAt:  sub.SubmittedAt,
		Regenerate:   regenerate,
		Ctime:        s.now().UnixMilli(),
	})
	if err == nil {
		return state
	}
	logger.Error("投递评审生成事件失败", elog.FieldErr(err))
	err = s.repo.UpdateState(ctx, sub, domain.StateFeedbackFailed, domain.FailureDispatchFailed)
	if err != nil {
		logger.Error("标记提交为生成失败失败", elog.FieldErr(err))
	}
	return domain.StateFeedbackFailed
}

func (s *service) GetStatus(ctx context.Context, submitter, id int64) (domain.StatusView, error) {
	view, err := s.repo.Status(ctx, id)
	if err != nil {
		return domain.StatusView{}, err
	}
	if submitter > 0 && view.Submitter != submitter {
		return domain.StatusView{}, fmt.Errorf("%w, id %d, submitter %d", ErrSubmissionNotFound, id, submitter)
	}
	return view, nil
}

func (s *service) Regenerate(ctx context.Context, submitter, id int64) (domain.State, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.StateUnknown, err
	}
	if submitter > 0 && sub.Submitter != submitter {
		return domain.StateUnknown, fmt.Errorf("%w, id %d, submitter %d", ErrSubmissionNotFound, id, submitter)
	}
	if !sub.State.Regenerable() {
		return sub.State, fmt.Errorf("%w, id %d, state %s", ErrRegenerationNotAllowed, id, sub.State)
	}
	return s.dispatch(ctx, sub, true), nil
}

func (s *service) View(ctx context.Context, submitter int64, code string) (domain.StatusView, error) {
	code, err := s.normalizeCode(ctx, code)
	if err != nil {
		return domain.StatusView{}, err
	}
	return s.repo.View(ctx, submitter, code)
}

func (s *service) Summary(ctx context.Context, submitter int64) (domain.Summary, error) {
	return s.repo.Summary(ctx, submitter)
}

func (s *service) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboard
	}
	return s.repo.Leaderboard(ctx, min(limit, maxLeaderboardLimit))
}

func (s *service) Stats(ctx context.Context, code string) (domain.Stats, error) {
	code, err := s.normalizeCode(ctx, code)
	if err != nil {
		return domain.Stats{}, err
	}
	a, err := s.assignmentSvc.Detail(ctx, code)
	if err != nil {
		return domain.Stats{}, err
	}
	return s.repo.Stats(ctx, code, a.CohortSize)
}

func (s *service) AssignmentDetail(ctx context.Context, submitter int64, code string) (domain.AssignmentView, error) {
	code, err := s.normalizeCode(ctx, code)
	if err != nil {
		return domain.AssignmentView{}, err
	}
	return cachex.GetOrLoad(ctx, s.cache, cachex.AssignmentDetailKey(code, submitter), cachex.AssignmentDetailTTL,
		func(ctx context.Context) (domain.AssignmentView, error) {
			a, err := s.assignmentSvc.Detail(ctx, code)
			if err != nil {
				return domain.AssignmentView{}, err
			}
			view := domain.AssignmentView{
				Code:            a.Code,
				Title:           a.Title,
				Description:     a.Description,
				Requirements:    a.Requirements,
				Recommendations: a.Recommendations,
				Deadline:        a.Deadline,
				Active:          a.Active(),
				AllowResubmit:   a.AllowResubmit,
				CanSubmit:       a.Active() && !a.Expired(s.now()),
			}
			sub, err := s.repo.FindByCodeAndSubmitter(ctx, code, submitter)
			switch {
			case err == nil:
				view.SubmissionId = sub.Id
				view.State = sub.State
				view.CanSubmit = view.CanSubmit && a.AllowResubmit
			case errors.Is(err, ErrSubmissionNotFound):
			default:
				return domain.AssignmentView{}, err
			}
			return view, nil
		})
}

func (s *service) AbandonStale(ctx context.Context, before time.Time, limit int) (int, error) {
	cnt := 0
	for _, state := range []domain.State{domain.StateCreated, domain.StateFeedbackPending} {
		subs, err := s.repo.FindStale(ctx, state, before, limit)
		if err != nil {
			return cnt, err
		}
		for _, sub := range subs {
			ok, err := s.repo.Abandon(ctx, sub)
			if err != nil {
				return cnt, err
			}
			if ok {
				cnt++
			}
		}
	}
	return cnt, nil
}
