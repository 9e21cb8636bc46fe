package record

import (
	"context"
	"time"

	"github.com/ecodeclub/coursework/internal/ai/internal/domain"
	"github.com/ecodeclub/coursework/internal/ai/internal/repository"
	"github.com/ecodeclub/coursework/internal/ai/internal/service/llm/handler"
	"github.com/gotomicro/ego/core/elog"
)

type HandlerBuilder struct {
	repo   repository.LLMLogRepo
	logger *elog.Component
}

var _ handler.Builder = &HandlerBuilder{}

func NewHandler(repo repository.LLMLogRepo) *HandlerBuilder {
	return &HandlerBuilder{
		repo:   repo,
		logger: elog.DefaultLogger,
	}
}

func (h *HandlerBuilder) Name() string {
	return "record"
}

func (h *HandlerBuilder) Next(next handler.Handler) handler.Handler {
	return handler.HandleFunc(func(ctx context.Context, req domain.LLMRequest) (domain.LLMResponse, error) {
		log := domain.LLMRecord{
			Tid:    req.Tid,
			Biz:    req.Biz,
			BizID:  req.BizID,
			Model:  req.Config.Model,
			Input:  req.Input,
			Status: domain.RecordStatusProcessing,
		}
		start := time.Now()
		defer func() {
			log.Latency = time.Since(start).Milliseconds()
			// 调用方超时的时候 ctx 已经取消了，记录还是要落库
			_, err1 := h.repo.SaveLog(context.WithoutCancel(ctx), log)
			if err1 != nil {
				h.logger.Error("保存 LLM 访问记录失败", elog.FieldErr(err1))
			}
		}()
		resp, err := next.Handle(ctx, req)
		if err != nil {
			log.Status = domain.RecordStatusFailed
			return domain.LLMResponse{}, err
		}
		if resp.Model != "" {
			log.Model = resp.Model
		}
		log.Tokens = resp.Tokens
		log.Status = domain.RecordStatusSuccess
		log.Answer = resp.Answer
		return resp, err
	})
}
