package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecodeclub/coursework/internal/ai"
	"github.com/ecodeclub/coursework/internal/assignment"
	"github.com/ecodeclub/coursework/internal/pkg/quota"
	"github.com/ecodeclub/coursework/internal/submission/internal/domain"
	"github.com/ecodeclub/coursework/internal/submission/internal/event"
	"github.com/ecodeclub/coursework/internal/submission/internal/repository"
	"github.com/gotomicro/ego/core/elog"
)

var _ event.Generator = (*Generator)(nil)

type GenerationConfig struct {
	// Timeout 调用 AI 的整体超时时间
	Timeout time.Duration `yaml:"timeout"`
	// Concurrency 同时进行的生成数量
	Concurrency int `yaml:"concurrency"`
	// StaleAfter 生成中超过这个时间就认为已经丢失
	StaleAfter time.Duration `yaml:"staleAfter"`
}

const defaultGenerationTimeout = 60 * time.Second

// Generator 一次评审生成：配额、调用 AI、保存结果、删除缓存。
// 任何失败都会落到 feedback_failed，不会向外抛出。
type Generator struct {
	repo          repository.SubmissionRepository
	assignmentSvc assignment.Service
	aiSvc         ai.Service
	quota         quota.Quota
	metrics       *GenerationMetrics
	timeout       time.Duration
	logger        *elog.Component
}

func NewGenerator(repo repository.SubmissionRepository,
	assignmentSvc assignment.Service,
	aiSvc ai.Service,
	q quota.Quota,
	metrics *GenerationMetrics,
	cfg GenerationConfig) *Generator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	return &Generator{
		repo:          repo,
		assignmentSvc: assignmentSvc,
		aiSvc:         aiSvc,
		quota:         q,
		metrics:       metrics,
		timeout:       timeout,
		logger:        elog.DefaultLogger,
	}
}

// Generate 只有存储出错的时候才返回 error。
// submittedAt 是投递时提交的版本，和当前版本不一致说明已经重新提交过，直接跳过。
func (g *Generator) Generate(ctx context.Context, submissionID, submittedAt int64) error {
	start := time.Now()
	sub, err := g.repo.FindByID(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("查询提交失败: %w", err)
	}
	logger := g.logger.With(elog.Int64("sid", sub.Id), elog.String("code", sub.AssignmentCode))
	if submittedAt > 0 && sub.SubmittedAt != submittedAt {
		logger.Info("提交已经被覆盖，跳过这次生成",
			elog.Int64("submittedAt", submittedAt), elog.Int64("current", sub.SubmittedAt))
		g.metrics.observe(outcomeReplaced, time.Since(start).Seconds())
		return nil
	}

	err = g.quota.Acquire(ctx)
	if err != nil {
		// 配额用完之后不再调用 AI
		reason := domain.FailureQuotaExceeded
		if !errors.Is(err, quota.ErrQuotaExceeded) {
			reason = domain.FailureGenerationFailed
		}
		logger.Warn("获取 AI 配额失败", elog.FieldErr(err))
		return g.fail(ctx, sub, reason, start)
	}

	a, err := g.assignmentSvc.Detail(ctx, sub.AssignmentCode)
	if err != nil {
		logger.Error("查询作业失败", elog.FieldErr(err))
		return g.fail(ctx, sub, domain.FailureGenerationFailed, start)
	}

	resp, err := g.call(ctx, ai.FeedbackRequest{
		SubmissionID:    sub.Id,
		AssignmentCode:  a.Code,
		Title:           a.Title,
		Description:     a.Description,
		Requirements:    a.Requirements,
		Recommendations: a.Recommendations,
		Kind:            string(sub.Kind),
		Reference:       sub.Reference,
		SubmissionTitle: sub.Title,
		Content:         sub.Content,
		Structure:       sub.Structure,
	})
	if err != nil {
		reason := domain.FailureGenerationFailed
		if errors.Is(err, context.DeadlineExceeded) {
			reason = domain.FailureTimeout
		}
		logger.Error("生成评审失败", elog.String("reason", string(reason)), elog.FieldErr(err))
		return g.fail(ctx, sub, reason, start)
	}

	err = g.repo.SaveFeedback(ctx, sub, domain.Feedback{
		SubmissionId: sub.Id,
		Score:        resp.Score,
		Subscores: domain.Subscores{
			RequirementsMet: resp.Subscores.RequirementsMet,
			Quality:         resp.Subscores.Quality,
			BestPractices:   resp.Subscores.BestPractices,
			Creativity:      resp.Subscores.Creativity,
		},
		Content:    resp.Content,
		Model:      resp.ModelInfo.Model,
		TokensUsed: resp.ModelInfo.TokensUsed,
		LatencyMs:  resp.TimingMs,
	})
	if errors.Is(err, repository.ErrSubmissionReplaced) {
		// 生成期间重新提交了，结果对应的是旧内容
		logger.Info("提交已经被覆盖，丢弃评审结果")
		g.metrics.observe(outcomeReplaced, time.Since(start).Seconds())
		return nil
	}
	if err != nil {
		logger.Error("保存评审结果失败", elog.FieldErr(err))
		return g.fail(ctx, sub, domain.FailureGenerationFailed, start)
	}
	g.metrics.observe(outcomeSuccess, time.Since(start).Seconds())
	logger.Info("生成评审成功", elog.Int("score", resp.Score), elog.Int64("tokens", resp.ModelInfo.TokensUsed))
	return nil
}

// call 超时之后立刻返回，不等 AI 服务响应
func (g *Generator) call(ctx context.Context, req ai.FeedbackRequest) (ai.FeedbackResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	type result struct {
		resp ai.FeedbackResponse
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		resp, err := g.aiSvc.GenerateFeedback(ctx, req)
		ch <- result{resp: resp, err: err}
	}()
	select {
	case res := <-ch:
		if res.err != nil && ctx.Err() != nil {
			return ai.FeedbackResponse{}, fmt.Errorf("%w: %w", ctx.Err(), res.err)
		}
		return res.resp, res.err
	case <-ctx.Done():
		return ai.FeedbackResponse{}, ctx.Err()
	}
}

func (g *Generator) fail(ctx context.Context, sub domain.Submission, reason domain.FailureReason, start time.Time) error {
	g.metrics.observe(string(reason), time.Since(start).Seconds())
	err := g.repo.UpdateState(ctx, sub, domain.StateFeedbackFailed, reason)
	if errors.Is(err, repository.ErrSubmissionReplaced) {
		g.logger.Info("提交已经被覆盖，不再标记为失败", elog.Int64("sid", sub.Id))
		return nil
	}
	if err != nil {
		return fmt.Errorf("标记提交为生成失败失败: %w", err)
	}
	return nil
}
