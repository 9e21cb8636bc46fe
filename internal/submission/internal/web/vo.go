package web

import (
	"github.com/ecodeclub/coursework/internal/submission/internal/domain"
	"github.com/ecodeclub/ekit/slice"
)

type SubmitReq struct {
	Code string `json:"code"`
	// Kind blog, code 或者 github
	Kind      string `json:"kind"`
	Reference string `json:"reference,omitempty"`
	Content   string `json:"content,omitempty"`
	Title     string `json:"title,omitempty"`
}

type SubmitResult struct {
	SubmissionId int64  `json:"submissionId,string"`
	State        string `json:"state"`
}

type IdReq struct {
	// 雪花 ID 超过了 js 的精度，使用字符串
	SubmissionId int64 `json:"submissionId,string"`
}

type CodeReq struct {
	Code string `json:"code"`
}

type LimitReq struct {
	Limit int `json:"limit,omitempty"`
}

type Feedback struct {
	Score      int       `json:"score"`
	Subscores  Subscores `json:"subscores"`
	Content    string    `json:"content"`
	Model      string    `json:"model,omitempty"`
	TokensUsed int64     `json:"tokensUsed,omitempty"`
	LatencyMs  int64     `json:"latencyMs,omitempty"`
	Ctime      int64     `json:"ctime"`
}

type Subscores struct {
	RequirementsMet int `json:"requirementsMet"`
	Quality         int `json:"quality"`
	BestPractices   int `json:"bestPractices"`
	Creativity      int `json:"creativity"`
}

type StatusView struct {
	SubmissionId   int64     `json:"submissionId,string"`
	AssignmentCode string    `json:"assignmentCode"`
	Kind           string    `json:"kind"`
	Title          string    `json:"title,omitempty"`
	State          string    `json:"state"`
	FailureReason  string    `json:"failureReason,omitempty"`
	SubmittedAt    int64     `json:"submittedAt"`
	Utime          int64     `json:"utime"`
	Feedback       *Feedback `json:"feedback,omitempty"`
}

func newStatusView(v domain.StatusView) StatusView {
	res := StatusView{
		SubmissionId:   v.SubmissionId,
		AssignmentCode: v.AssignmentCode,
		Kind:           string(v.Kind),
		Title:          v.Title,
		State:          v.State.String(),
		FailureReason:  string(v.FailureReason),
		SubmittedAt:    v.SubmittedAt,
		Utime:          v.Utime,
	}
	if v.Feedback != nil {
		fb := v.Feedback
		res.Feedback = &Feedback{
			Score:      fb.Score,
			Subscores:  Subscores(fb.Subscores),
			Content:    fb.Content,
			Model:      fb.Model,
			TokensUsed: fb.TokensUsed,
			LatencyMs:  fb.LatencyMs,
			Ctime:      fb.Ctime,
		}
	}
	return res
}

type Summary struct {
	Total        int64   `json:"total"`
	Created      int64   `json:"created"`
	Pending      int64   `json:"pending"`
	Ready        int64   `json:"ready"`
	Failed       int64   `json:"failed"`
	AverageScore float64 `json:"averageScore"`
}

func newSummary(s domain.Summary) Summary {
	return Summary{
		Total:        s.Total,
		Created:      s.Created,
		Pending:      s.Pending,
		Ready:        s.Ready,
		Failed:       s.Failed,
		AverageScore: s.AverageScore,
	}
}

type Stats struct {
	AssignmentCode string `json:"assignmentCode"`
	Summary
	CohortSize     int      `json:"cohortSize,omitempty"`
	SubmissionRate *float64 `json:"submissionRate,omitempty"`
}

type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	SubmissionId   int64  `json:"submissionId,string"`
	AssignmentCode string `json:"assignmentCode"`
	Submitter      int64  `json:"submitter"`
	Score          int    `json:"score"`
	Ctime          int64  `json:"ctime"`
}

func newLeaderboard(entries []domain.LeaderboardEntry) []LeaderboardEntry {
	return slice.Map(entries, func(idx int, src domain.LeaderboardEntry) LeaderboardEntry {
		return LeaderboardEntry{
			Rank:           idx + 1,
			SubmissionId:   src.SubmissionId,
			AssignmentCode: src.AssignmentCode,
			Submitter:      src.Submitter,
			Score:          src.Score,
			Ctime:          src.Ctime,
		}
	})
}

type AssignmentView struct {
	Code            string   `json:"code"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Requirements    []string `json:"requirements,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Deadline        int64    `json:"deadline,omitempty"`
	Active          bool     `json:"active"`
	AllowResubmit   bool     `json:"allowResubmit"`
	CanSubmit       bool     `json:"canSubmit"`
	SubmissionId    int64    `json:"submissionId,omitempty,string"`
	State           string   `json:"state,omitempty"`
}

func newAssignmentView(v domain.AssignmentView) AssignmentView {
	res := AssignmentView{
		Code:            v.Code,
		Title:           v.Title,
		Description:     v.Description,
		Requirements:    v.Requirements,
		Recommendations: v.Recommendations,
		Deadline:        v.Deadline,
		Active:          v.Active,
		AllowResubmit:   v.AllowResubmit,
		CanSubmit:       v.CanSubmit,
		SubmissionId:    v.SubmissionId,
	}
	if v.SubmissionId > 0 {
		res.State = v.State.String()
	}
	return res
}
