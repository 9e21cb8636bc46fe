package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ecodeclub/coursework/internal/ai/internal/domain"
	"github.com/ecodeclub/coursework/internal/ai/internal/service/llm"
	"github.com/lithammer/shortuuid/v4"
)

const BizSubmissionFeedback = "submission_feedback"

var ErrMalformedResponse = errors.New("LLM 返回的评审结果格式不正确")

// 模型经常会在 JSON 前后加上 markdown 代码块或者解释
var jsonExpr = regexp.MustCompile(`(?s)\{.*\}`)

//go:generate mockgen -source=./feedback.go -destination=../../mocks/feedback.mock.go -package=aimocks FeedbackService
type FeedbackService interface {
	GenerateFeedback(ctx context.Context, req domain.FeedbackRequest) (domain.FeedbackResponse, error)
}

type feedbackService struct {
	llmSvc llm.Service
	cfg    domain.ModelConfig
}

func NewFeedbackService(llmSvc llm.Service, cfg domain.ModelConfig) FeedbackService {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	return &feedbackService{
		llmSvc: llmSvc,
		cfg:    cfg,
	}
}

func (s *feedbackService) GenerateFeedback(ctx context.Context, req domain.FeedbackRequest) (domain.FeedbackResponse, error) {
	start := time.Now()
	resp, err := s.llmSvc.Invoke(ctx, domain.LLMRequest{
		Tid:    shortuuid.New(),
		Biz:    BizSubmissionFeedback,
		BizID:  req.SubmissionID,
		Input:  s.buildPrompt(req),
		Config: s.cfg,
	})
	if err != nil {
		return domain.FeedbackResponse{}, err
	}
	res, err := parseAnswer(resp.Answer)
	if err != nil {
		return domain.FeedbackResponse{}, err
	}
	res.ModelInfo = domain.ModelInfo{
		Model:      resp.Model,
		TokensUsed: resp.Tokens,
	}
	if res.ModelInfo.Model == "" {
		res.ModelInfo.Model = s.cfg.Model
	}
	res.TimingMs = time.Since(start).Milliseconds()
	return res, nil
}

const defaultSystemPrompt = `你是一名严格但友善的编程课程助教，负责评审学生提交的作业。
只返回一个 JSON 对象，不要输出任何其它内容，格式如下：
{"score": 0-100 的整数, "subscores": {"requirementsMet": 0-100, "quality": 0-100, "bestPractices": 0-100, "creativity": 0-100}, "feedback": "给学生的评语，使用 markdown"}`

func (s *feedbackService) buildPrompt(req domain.FeedbackRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# 作业 %s：%s\n", req.AssignmentCode, req.Title)
	if req.Description != "" {
		sb.WriteString(req.Description)
		sb.WriteByte('\n')
	}
	writeList(&sb, "## 作业要求", req.Requirements)
	writeList(&sb, "## 建议", req.Recommendations)

	fmt.Fprintf(&sb, "\n# 学生提交（%s）\n", req.Kind)
	if req.SubmissionTitle != "" {
		fmt.Fprintf(&sb, "标题：%s\n", req.SubmissionTitle)
	}
	if req.Reference != "" {
		fmt.Fprintf(&sb, "地址：%s\n", req.Reference)
	}
	if req.Structure != "" {
		sb.WriteString("## 目录结构\n```\n")
		sb.WriteString(req.Structure)
		sb.WriteString("\n```\n")
	}
	sb.WriteString("## 内容\n")
	// 前面的部分都很短，超长只截断提交的内容
	content := req.Content
	if s.cfg.MaxInput > 0 {
		if remain := s.cfg.MaxInput - utf8.RuneCountInString(sb.String()); remain < utf8.RuneCountInString(content) {
			content = truncateRunes(content, max(remain, 0))
		}
	}
	sb.WriteString(content)
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(title)
	sb.WriteByte('\n')
	for i, item := range items {
		fmt.Fprintf(sb, "%d. %s\n", i+1, item)
	}
}

func truncateRunes(s string, n int) string {
	i := 0
	for idx := range s {
		if i == n {
			return s[:idx]
		}
		i++
	}
	return s
}

type answer struct {
	Score     *float64 `json:"score"`
	Subscores struct {
		RequirementsMet float64 `json:"requirementsMet"`
		Quality         float64 `json:"quality"`
		BestPractices   float64 `json:"bestPractices"`
		Creativity      float64 `json:"creativity"`
	} `json:"subscores"`
	Feedback string `json:"feedback"`
}

func parseAnswer(raw string) (domain.FeedbackResponse, error) {
	body := jsonExpr.FindString(raw)
	if body == "" {
		return domain.FeedbackResponse{}, fmt.Errorf("%w: 没有找到 JSON", ErrMalformedResponse)
	}
	var ans answer
	if err := json.Unmarshal([]byte(body), &ans); err != nil {
		return domain.FeedbackResponse{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if ans.Score == nil {
		return domain.FeedbackResponse{}, fmt.Errorf("%w: 缺少 score", ErrMalformedResponse)
	}
	if strings.TrimSpace(ans.Feedback) == "" {
		return domain.FeedbackResponse{}, fmt.Errorf("%w: 缺少 feedback", ErrMalformedResponse)
	}
	return domain.FeedbackResponse{
		Score: clamp(*ans.Score),
		Subscores: domain.Subscores{
			RequirementsMet: clamp(ans.Subscores.RequirementsMet),
			Quality:         clamp(ans.Subscores.Quality),
			BestPractices:   clamp(ans.Subscores.BestPractices),
			Creativity:      clamp(ans.Subscores.Creativity),
		},
		Content: strings.TrimSpace(ans.Feedback),
	}, nil
}

// clamp 四舍五入到 [0, 100]
func clamp(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return int(v + 0.5)
	}
}
