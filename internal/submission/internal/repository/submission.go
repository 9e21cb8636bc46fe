package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecodeclub/coursework/internal/pkg/cachex"
	"github.com/ecodeclub/coursework/internal/submission/internal/domain"
	"github.com/ecodeclub/coursework/internal/submission/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/ekit/sqlx"
	"github.com/gotomicro/ego/core/elog"
	"gorm.io/gorm"
)

var (
	ErrSubmissionNotFound  = errors.New("提交记录不存在")
	ErrDuplicateSubmission = dao.ErrDuplicateSubmission
	ErrSubmissionReplaced  = dao.ErrSubmissionReplaced
)

type SubmissionRepository interface {
	Create(ctx context.Context, s domain.Submission) error
	Replace(ctx context.Context, s domain.Submission) error
	FindByID(ctx context.Context, id int64) (domain.Submission, error)
	FindByCodeAndSubmitter(ctx context.Context, code string, submitter int64) (domain.Submission, error)
	// UpdateState s 至少要有 Id、AssignmentCode、Submitter 和 SubmittedAt。
	// 提交不存在或者已经被覆盖的时候返回 ErrSubmissionReplaced
	UpdateState(ctx context.Context, s domain.Submission, state domain.State, reason domain.FailureReason) error
	// Abandon 把还停留在 s.State 的提交标记为放弃，状态已经变化的时候返回 false
	Abandon(ctx context.Context, s domain.Submission) (bool, error)
	SaveFeedback(ctx context.Context, s domain.Submission, fb domain.Feedback) error
	FindStale(ctx context.Context, state domain.State, before time.Time, limit int) ([]domain.Submission, error)

	// 下面这些都会先查缓存
	Status(ctx context.Context, id int64) (domain.StatusView, error)
	View(ctx context.Context, submitter int64, code string) (domain.StatusView, error)
	Summary(ctx context.Context, submitter int64) (domain.Summary, error)
	Stats(ctx context.Context, code string, cohortSize int) (domain.Stats, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

type CachedSubmissionRepository struct {
	dao    dao.SubmissionDAO
	cache  cachex.Cache
	logger *elog.Component
}

func NewCachedSubmissionRepository(d dao.SubmissionDAO, c cachex.Cache) SubmissionRepository {
	return &CachedSubmissionRepository{
		dao:    d,
		cache:  c,
		logger: elog.DefaultLogger,
	}
}

func (repo *CachedSubmissionRepository) Create(ctx context.Context, s domain.Submission) error {
	err := repo.dao.Create(ctx, repo.toEntity(s))
	if err != nil {
		return err
	}
	repo.invalidate(ctx, s)
	return nil
}

func (repo *CachedSubmissionRepository) Replace(ctx context.Context, s domain.Submission) error {
	err := repo.dao.Replace(ctx, repo.toEntity(s))
	if err != nil {
		return err
	}
	repo.invalidate(ctx, s)
	return nil
}

func (repo *CachedSubmissionRepository) FindByID(ctx context.Context, id int64) (domain.Submission, error) {
	s, err := repo.dao.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Submission{}, fmt.Errorf("%w, id %d", ErrSubmissionNotFound, id)
	}
	if err != nil {
		return domain.Submission{}, err
	}
	return repo.toDomain(s), nil
}

func (repo *CachedSubmissionRepository) FindByCodeAndSubmitter(ctx context.Context, code string, submitter int64) (domain.Submission, error) {
	s, err := repo.dao.FindByCodeAndSubmitter(ctx, code, submitter)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Submission{}, fmt.Errorf("%w, code %s, submitter %d", ErrSubmissionNotFound, code, submitter)
	}
	if err != nil {
		return domain.Submission{}, err
	}
	return repo.toDomain(s), nil
}

func (repo *CachedSubmissionRepository) UpdateState(ctx context.Context, s domain.Submission,
	state domain.State, reason domain.FailureReason) error {
	cnt, err := repo.dao.UpdateState(ctx, s.Id, s.SubmittedAt, state.ToUint8(), string(reason))
	if err != nil {
		return err
	}
	if cnt == 0 {
		return fmt.Errorf("%w, id %d", ErrSubmissionReplaced, s.Id)
	}
	repo.invalidate(ctx, s)
	return nil
}

func (repo *CachedSubmissionRepository) Abandon(ctx context.Context, s domain.Submission) (bool, error) {
	cnt, err := repo.dao.CompareAndSetState(ctx, s.Id, s.State.ToUint8(),
		domain.StateFeedbackFailed.ToUint8(), string(domain.FailureAbandoned))
	if err != nil {
		return false, err
	}
	if cnt > 0 {
		repo.invalidate(ctx, s)
	}
	return cnt > 0, nil
}

func (repo *CachedSubmissionRepository) SaveFeedback(ctx context.Context, s domain.Submission, fb domain.Feedback) error {
	err := repo.dao.SaveFeedback(ctx, dao.Feedback{
		SubmissionId: s.Id,
		Score:        fb.Score,
		Subscores: sqlx.JsonColumn[domain.Subscores]{
			Valid: true,
			Val:   fb.Subscores,
		},
		Content:    fb.Content,
		Model:      fb.Model,
		TokensUsed: fb.TokensUsed,
		LatencyMs:  fb.LatencyMs,
	}, s.SubmittedAt, domain.StateFeedbackReady.ToUint8())
	if err != nil {
		return err
	}
	repo.invalidate(ctx, s)
	return nil
}

func (repo *CachedSubmissionRepository) FindStale(ctx context.Context, state domain.State, before time.Time, limit int) ([]domain.Submission, error) {
	res, err := repo.dao.FindStale(ctx, state.ToUint8(), before.UnixMilli(), limit)
	if err != nil {
		return nil, err
	}
	return slice.Map(res, func(idx int, src dao.Submission) domain.Submission {
		return repo.toDomain(src)
	}), nil
}

// invalidate 提交或者评审有任何变化，都要删除这些缓存
func (repo *CachedSubmissionRepository) invalidate(ctx context.Context, s domain.Submission) {
	err := repo.cache.Delete(ctx,
		cachex.SubmissionStatusKey(s.Id),
		cachex.SubmissionViewKey(s.Submitter, s.AssignmentCode),
		cachex.SubmissionSummaryKey(s.Submitter),
		cachex.AssignmentStatsKey(s.AssignmentCode),
		cachex.AssignmentDetailKey(s.AssignmentCode, s.Submitter),
	)
	if err != nil {
		repo.logger.Error("删除提交缓存失败",
			elog.Int64("id", s.Id),
			elog.String("code", s.AssignmentCode),
			elog.FieldErr(err))
	}
}

func (repo *CachedSubmissionRepository) Status(ctx context.Context, id int64) (domain.StatusView, error) {
	return cachex.GetOrLoad(ctx, repo.cache, cachex.SubmissionStatusKey(id), cachex.SubmissionStatusTTL,
		func(ctx context.Context) (domain.StatusView, error) {
			s, err := repo.FindByID(ctx, id)
			if err != nil {
				return domain.StatusView{}, err
			}
			return repo.statusView(ctx, s)
		})
}

func (repo *CachedSubmissionRepository) View(ctx context.Context, submitter int64, code string) (domain.StatusView, error) {
	return cachex.GetOrLoad(ctx, repo.cache, cachex.SubmissionViewKey(submitter, code), cachex.SubmissionViewTTL,
		func(ctx context.Context) (domain.StatusView, error) {
			s, err := repo.FindByCodeAndSubmitter(ctx, code, submitter)
			if err != nil {
				return domain.StatusView{}, err
			}
			return repo.statusView(ctx, s)
		})
}

func (repo *CachedSubmissionRepository) statusView(ctx context.Context, s domain.Submission) (domain.StatusView, error) {
	res := domain.StatusView{
		SubmissionId:   s.Id,
		AssignmentCode: s.AssignmentCode,
		Submitter:      s.Submitter,
		Kind:           s.Kind,
		Title:          s.Title,
		State:          s.State,
		FailureReason:  s.FailureReason,
		SubmittedAt:    s.SubmittedAt,
		Utime:          s.Utime,
	}
	if s.State != domain.StateFeedbackReady {
		return res, nil
	}
	fb, err := repo.dao.FindFeedback(ctx, s.Id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return res, nil
	}
	if err != nil {
		return domain.StatusView{}, err
	}
	feedback := repo.feedbackToDomain(fb)
	res.Feedback = &feedback
	return res, nil
}

func (repo *CachedSubmissionRepository) Summary(ctx context.Context, submitter int64) (domain.Summary, error) {
	return cachex.GetOrLoad(ctx, repo.cache, cachex.SubmissionSummaryKey(submitter), cachex.SubmissionSummaryTTL,
		func(ctx context.Context) (domain.Summary, error) {
			counts, avg, err := repo.dao.CountBySubmitter(ctx, submitter)
			if err != nil {
				return domain.Summary{}, err
			}
			return toSummary(counts, avg), nil
		})
}

func (repo *CachedSubmissionRepository) Stats(ctx context.Context, code string, cohortSize int) (domain.Stats, error) {
	return cachex.GetOrLoad(ctx, repo.cache, cachex.AssignmentStatsKey(code), cachex.AssignmentStatsTTL,
		func(ctx context.Context) (domain.Stats, error) {
			counts, avg, err := repo.dao.CountByAssignment(ctx, code)
			if err != nil {
				return domain.Stats{}, err
			}
			res := domain.Stats{
				AssignmentCode: code,
				Summary:        toSummary(counts, avg),
				CohortSize:     cohortSize,
			}
			if cohortSize > 0 {
				rate := float64(res.Total) / float64(cohortSize)
				res.SubmissionRate = &rate
			}
			return res, nil
		})
}

func toSummary(counts []dao.StateCount, avg float64) domain.Summary {
	var res domain.Summary
	for _, c := range counts {
		res.Add(domain.State(c.State), c.Cnt)
	}
	res.AverageScore = avg
	return res
}

func (repo *CachedSubmissionRepository) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	return cachex.GetOrLoad(ctx, repo.cache, cachex.LeaderboardKey(limit), cachex.LeaderboardTTL,
		func(ctx context.Context) ([]domain.LeaderboardEntry, error) {
			rows, err := repo.dao.TopScores(ctx, limit)
			if err != nil {
				return nil, err
			}
			return slice.Map(rows, func(idx int, src dao.ScoreRow) domain.LeaderboardEntry {
				return domain.LeaderboardEntry{
					SubmissionId:   src.SubmissionId,
					AssignmentCode: src.AssignmentCode,
					Submitter:      src.Submitter,
					Score:          src.Score,
					Ctime:          src.Ctime,
				}
			}), nil
		})
}

func (repo *CachedSubmissionRepository) toEntity(s domain.Submission) dao.Submission {
	return dao.Submission{
		Id:             s.Id,
		AssignmentCode: s.AssignmentCode,
		Submitter:      s.Submitter,
		Kind:           string(s.Kind),
		Reference:      s.Reference,
		Title:          s.Title,
		Content:        s.Content,
		Structure:      s.Structure,
		Meta: sqlx.JsonColumn[domain.Meta]{
			Valid: true,
			Val:   s.Meta,
		},
		State:         s.State.ToUint8(),
		FailureReason: string(s.FailureReason),
		SubmittedAt:   s.SubmittedAt,
		Ctime:         s.Ctime,
		Utime:         s.Utime,
	}
}

func (repo *CachedSubmissionRepository) toDomain(s dao.Submission) domain.Submission {
	return domain.Submission{
		Id:             s.Id,
		AssignmentCode: s.AssignmentCode,
		Submitter:      s.Submitter,
		Kind:           domain.Kind(s.Kind),
		Reference:      s.Reference,
		Title:          s.Title,
		Content:        s.Content,
		Structure:      s.Structure,
		Meta:           s.Meta.Val,
		State:          domain.State(s.State),
		FailureReason:  domain.FailureReason(s.FailureReason),
		SubmittedAt:    s.SubmittedAt,
		Ctime:          s.Ctime,
		Utime:          s.Utime,
	}
}

func (repo *CachedSubmissionRepository) feedbackToDomain(fb dao.Feedback) domain.Feedback {
	return domain.Feedback{
		Id:           fb.Id,
		SubmissionId: fb.SubmissionId,
		Score:        fb.Score,
		Subscores:    fb.Subscores.Val,
		Content:      fb.Content,
		Model:        fb.Model,
		TokensUsed:   fb.TokensUsed,
		LatencyMs:    fb.LatencyMs,
		Ctime:        fb.Ctime,
	}
}
