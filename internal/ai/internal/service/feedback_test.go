// Copyright 2023 ecodeclub
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ecodeclub/coursework/internal/ai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	req  domain.LLMRequest
	resp domain.LLMResponse
	err  error
}

func (f *fakeLLM) Invoke(ctx context.Context, req domain.LLMRequest) (domain.LLMResponse, error) {
	f.req = req
	return f.resp, f.err
}

func TestFeedbackService_GenerateFeedback(t *testing.T) {
	testCases := []struct {
		name    string
		resp    domain.LLMResponse
		err     error
		want    domain.FeedbackResponse
		wantErr error
	}{
		{
			name: "正常返回",
			resp: domain.LLMResponse{
				Tokens: 120,
				Model:  "deepseek-chat",
				Answer: "```json\n{\"score\": 86, \"subscores\": {\"requirementsMet\": 90, \"quality\": 80, \"bestPractices\": 85.6, \"creativity\": 70}, \"feedback\": \"写得不错\"}\n```",
			},
			want: domain.FeedbackResponse{
				Score:     86,
				Subscores: domain.Subscores{RequirementsMet: 90, Quality: 80, BestPractices: 86, Creativity: 70},
				Content:   "写得不错",
				ModelInfo: domain.ModelInfo{Model: "deepseek-chat", TokensUsed: 120},
			},
		},
		{
			name: "分数越界",
			resp: domain.LLMResponse{
				Answer: `{"score": 130, "subscores": {"quality": -5}, "feedback": "ok"}`,
			},
			want: domain.FeedbackResponse{
				Score:     100,
				Content:   "ok",
				ModelInfo: domain.ModelInfo{Model: "test-model"},
			},
		},
		{
			name:    "LLM 出错",
			err:     errors.New("mock error"),
			wantErr: errors.New("mock error"),
		},
		{
			name:    "不是 JSON",
			resp:    domain.LLMResponse{Answer: "这份作业很好"},
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "JSON 不合法",
			resp:    domain.LLMResponse{Answer: `{"score": "高"}`},
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "缺少分数",
			resp:    domain.LLMResponse{Answer: `{"feedback": "ok"}`},
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "缺少评语",
			resp:    domain.LLMResponse{Answer: `{"score": 60, "feedback": "  "}`},
			wantErr: ErrMalformedResponse,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			llm := &fakeLLM{resp: tc.resp, err: tc.err}
			svc := NewFeedbackService(llm, domain.ModelConfig{Model: "test-model"})
			res, err := svc.GenerateFeedback(context.Background(), domain.FeedbackRequest{
				SubmissionID:   12,
				AssignmentCode: "ABC123",
				Kind:           "code",
				Content:        "package main",
			})
			if tc.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tc.wantErr, ErrMalformedResponse) {
					assert.ErrorIs(t, err, ErrMalformedResponse)
				} else {
					assert.Equal(t, tc.wantErr.Error(), err.Error())
				}
				return
			}
			require.NoError(t, err)
			assert.True(t, res.TimingMs >= 0)
			res.TimingMs = 0
			assert.Equal(t, tc.want, res)
			assert.Equal(t, BizSubmissionFeedback, llm.req.Biz)
			assert.Equal(t, int64(12), llm.req.BizID)
			assert.NotEmpty(t, llm.req.Tid)
			assert.Equal(t, defaultSystemPrompt, llm.req.Config.SystemPrompt)
		})
	}
}

func TestFeedbackService_BuildPrompt(t *testing.T) {
	svc := &feedbackService{cfg: domain.ModelConfig{}}
	prompt := svc.buildPrompt(domain.FeedbackRequest{
		AssignmentCode:  "ABC123",
		Title:           "并发爬虫",
		Requirements:    []string{"使用 goroutine", "限制并发"},
		Recommendations: []string{"写测试"},
		Kind:            "github",
		Reference:       "https://github.com/u/r",
		Structure:       "r\n└── main.go",
		Content:         "package main",
	})
	assert.Contains(t, prompt, "# 作业 ABC123：并发爬虫")
	assert.Contains(t, prompt, "1. 使用 goroutine\n2. 限制并发\n")
	assert.Contains(t, prompt, "## 建议\n1. 写测试\n")
	assert.Contains(t, prompt, "地址：https://github.com/u/r")
	assert.True(t, strings.HasSuffix(prompt, "## 内容\npackage main"))

	svc.cfg.MaxInput = 10
	prompt = svc.buildPrompt(domain.FeedbackRequest{Kind: "blog", Content: "很长的内容"})
	assert.True(t, strings.HasSuffix(prompt, "## 内容\n"))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "你好", truncateRunes("你好世界", 2))
	assert.Equal(t, "ab", truncateRunes("ab", 5))
	assert.Equal(t, "", truncateRunes("ab", 0))
}
