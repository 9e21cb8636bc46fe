package repository

import (
	"context"

	"github.com/ecodeclub/coursework/internal/ai/internal/domain"
	"github.com/ecodeclub/coursework/internal/ai/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/ekit/sqlx"
)

type LLMLogRepo interface {
	SaveLog(ctx context.Context, l domain.LLMRecord) (int64, error)
	FindLogs(ctx context.Context, biz string, bizID int64) ([]domain.LLMRecord, error)
}

// 调用日志
type llmLogRepo struct {
	logDao dao.LLMRecordDAO
}

func NewLLMLogRepo(logDao dao.LLMRecordDAO) LLMLogRepo {
	return &llmLogRepo{
		logDao: logDao,
	}
}

func (g *llmLogRepo) SaveLog(ctx context.Context, l domain.LLMRecord) (int64, error) {
	return g.logDao.Save(ctx, g.toEntity(l))
}

func (g *llmLogRepo) FindLogs(ctx context.Context, biz string, bizID int64) ([]domain.LLMRecord, error) {
	res, err := g.logDao.FindByBizID(ctx, biz, bizID)
	if err != nil {
		return nil, err
	}
	return slice.Map(res, func(idx int, src dao.LLMRecord) domain.LLMRecord {
		return g.toDomain(src)
	}), nil
}

func (g *llmLogRepo) toEntity(r domain.LLMRecord) dao.LLMRecord {
	return dao.LLMRecord{
		Id:      r.Id,
		Tid:     r.Tid,
		Biz:     r.Biz,
		BizID:   r.BizID,
		Model:   r.Model,
		Tokens:  r.Tokens,
		Latency: r.Latency,
		Status:  r.Status.ToUint8(),
		Input:   sqlx.NewNullString(r.Input),
		Answer:  sqlx.NewNullString(r.Answer),
	}
}

func (g *llmLogRepo) toDomain(r dao.LLMRecord) domain.LLMRecord {
	return domain.LLMRecord{
		Id:      r.Id,
		Tid:     r.Tid,
		Biz:     r.Biz,
		BizID:   r.BizID,
		Model:   r.Model,
		Tokens:  r.Tokens,
		Latency: r.Latency,
		Input:   r.Input.String,
		Answer:  r.Answer.String,
		Status:  domain.RecordStatus(r.Status),
		Ctime:   r.Ctime,
		Utime:   r.Utime,
	}
}
