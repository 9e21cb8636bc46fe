package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecodeclub/coursework/internal/assignment/internal/domain"
	"github.com/ecodeclub/coursework/internal/assignment/internal/repository/dao"
	"github.com/ecodeclub/coursework/internal/pkg/cachex"
	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/ekit/sqlx"
	"github.com/gotomicro/ego/core/elog"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var ErrAssignmentNotFound = errors.New("作业不存在")

type AssignmentRepository interface {
	Create(ctx context.Context, a domain.Assignment) (int64, error)
	Update(ctx context.Context, a domain.Assignment) error
	UpdateStatus(ctx context.Context, code string, status domain.Status) error
	Delete(ctx context.Context, code string) error
	FindByCode(ctx context.Context, code string) (domain.Assignment, error)
	Exists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, submitter int64, filter domain.ListFilter) (domain.AssignmentList, error)
	ActiveCodes(ctx context.Context) ([]string, error)
}

// CachedAssignmentRepository 读的时候先查缓存，写的时候在返回之前删除缓存
type CachedAssignmentRepository struct {
	dao    dao.AssignmentDAO
	cache  cachex.Cache
	group  singleflight.Group
	logger *elog.Component
}

func NewCachedAssignmentRepository(d dao.AssignmentDAO, c cachex.Cache) AssignmentRepository {
	return &CachedAssignmentRepository{
		dao:    d,
		cache:  c,
		logger: elog.DefaultLogger,
	}
}

func (repo *CachedAssignmentRepository) Create(ctx context.Context, a domain.Assignment) (int64, error) {
	id, err := repo.dao.Create(ctx, repo.toEntity(a))
	if err != nil {
		return 0, err
	}
	repo.invalidate(ctx, a.Code)
	return id, nil
}

func (repo *CachedAssignmentRepository) Update(ctx context.Context, a domain.Assignment) error {
	cnt, err := repo.dao.Update(ctx, repo.toEntity(a))
	return repo.afterWrite(ctx, a.Code, cnt, err)
}

func (repo *CachedAssignmentRepository) UpdateStatus(ctx context.Context, code string, status domain.Status) error {
	cnt, err := repo.dao.UpdateStatus(ctx, code, status.ToUint8())
	return repo.afterWrite(ctx, code, cnt, err)
}

func (repo *CachedAssignmentRepository) Delete(ctx context.Context, code string) error {
	cnt, err := repo.dao.Delete(ctx, code)
	return repo.afterWrite(ctx, code, cnt, err)
}

func (repo *CachedAssignmentRepository) afterWrite(ctx context.Context, code string, cnt int64, err error) error {
	if err != nil {
		return err
	}
	// 不管有没有更新到数据，缓存都删掉
	repo.invalidate(ctx, code)
	if cnt == 0 {
		return fmt.Errorf("%w, code %s", ErrAssignmentNotFound, code)
	}
	return nil
}

// invalidate 详情、列表和统计缓存都要删除
func (repo *CachedAssignmentRepository) invalidate(ctx context.Context, code string) {
	err := repo.cache.DeleteByPrefix(ctx, cachex.AssignmentDetailPrefix(code))
	if err != nil {
		repo.logger.Error("删除作业详情缓存失败", elog.String("code", code), elog.FieldErr(err))
	}
	err = repo.cache.DeleteByPrefix(ctx, cachex.AssignmentListPrefix)
	if err != nil {
		repo.logger.Error("删除作业列表缓存失败", elog.FieldErr(err))
	}
	err = repo.cache.Delete(ctx, cachex.AssignmentStatsKey(code))
	if err != nil {
		repo.logger.Error("删除作业统计缓存失败", elog.String("code", code), elog.FieldErr(err))
	}
}

func (repo *CachedAssignmentRepository) FindByCode(ctx context.Context, code string) (domain.Assignment, error) {
	key := cachex.AssignmentRecordKey(code)
	res, err := cachex.GetJSON[domain.Assignment](ctx, repo.cache, key)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, cachex.ErrKeyNotFound) {
		// 缓存出错直接查库
		repo.logger.Warn("读取作业缓存失败", elog.String("key", key), elog.FieldErr(err))
	}
	// 热门作业截止前会有大量的提交，同一时刻只放一个请求去查库
	val, err, _ := repo.group.Do(key, func() (any, error) {
		entity, err1 := repo.dao.FindByCode(ctx, code)
		if errors.Is(err1, gorm.ErrRecordNotFound) {
			return domain.Assignment{}, fmt.Errorf("%w, code %s", ErrAssignmentNotFound, code)
		}
		if err1 != nil {
			return domain.Assignment{}, err1
		}
		a := repo.toDomain(entity)
		err1 = cachex.SetJSON(ctx, repo.cache, key, a, cachex.AssignmentDetailTTL)
		if err1 != nil {
			repo.logger.Error("回写作业缓存失败", elog.String("key", key), elog.FieldErr(err1))
		}
		return a, nil
	})
	if err != nil {
		return domain.Assignment{}, err
	}
	return val.(domain.Assignment), nil
}

func (repo *CachedAssignmentRepository) Exists(ctx context.Context, code string) (bool, error) {
	return repo.dao.Exists(ctx, code)
}

func (repo *CachedAssignmentRepository) List(ctx context.Context, submitter int64, filter domain.ListFilter) (domain.AssignmentList, error) {
	key := cachex.AssignmentListKey(submitter, listFilterKey(filter))
	return cachex.GetOrLoad(ctx, repo.cache, key, cachex.AssignmentListTTL,
		func(ctx context.Context) (domain.AssignmentList, error) {
			var status uint8
			if filter.ActiveOnly {
				status = domain.StatusActive.ToUint8()
			}
			entities, err := repo.dao.List(ctx, filter.Creator, status, filter.Offset, filter.Limit)
			if err != nil {
				return domain.AssignmentList{}, err
			}
			total, err := repo.dao.Count(ctx, filter.Creator, status)
			if err != nil {
				return domain.AssignmentList{}, err
			}
			return domain.AssignmentList{
				Total: total,
				Assignments: slice.Map(entities, func(idx int, src dao.Assignment) domain.Assignment {
					return repo.toDomain(src)
				}),
			}, nil
		})
}

func listFilterKey(f domain.ListFilter) string {
	return fmt.Sprintf("c%d:a%t:o%d:l%d", f.Creator, f.ActiveOnly, f.Offset, f.Limit)
}

func (repo *CachedAssignmentRepository) ActiveCodes(ctx context.Context) ([]string, error) {
	return repo.dao.ActiveCodes(ctx)
}

func (repo *CachedAssignmentRepository) toEntity(a domain.Assignment) dao.Assignment {
	return dao.Assignment{
		Id:          a.Id,
		Code:        a.Code,
		Title:       a.Title,
		Description: a.Description,
		Requirements: sqlx.JsonColumn[[]string]{
			Valid: len(a.Requirements) > 0,
			Val:   a.Requirements,
		},
		Recommendations: sqlx.JsonColumn[[]string]{
			Valid: len(a.Recommendations) > 0,
			Val:   a.Recommendations,
		},
		Deadline:      a.Deadline,
		Status:        a.Status.ToUint8(),
		AllowResubmit: a.AllowResubmit,
		CohortSize:    a.CohortSize,
		Creator:       a.Creator,
		Ctime:         a.Ctime,
		Utime:         a.Utime,
	}
}

func (repo *CachedAssignmentRepository) toDomain(a dao.Assignment) domain.Assignment {
	return domain.Assignment{
		Id:              a.Id,
		Code:            a.Code,
		Title:           a.Title,
		Description:     a.Description,
		Requirements:    a.Requirements.Val,
		Recommendations: a.Recommendations.Val,
		Deadline:        a.Deadline,
		Status:          domain.Status(a.Status),
		AllowResubmit:   a.AllowResubmit,
		CohortSize:      a.CohortSize,
		Creator:         a.Creator,
		Ctime:           a.Ctime,
		Utime:           a.Utime,
	}
}
