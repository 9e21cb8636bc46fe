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
package domain

import (
	"github.com/ecodeclub/coursework/internal/fetcher"
)

type Kind string

const (
	KindBlog   Kind = "blog"
	KindCode   Kind = "code"
	KindGitHub Kind = "github"
)

func (k Kind) Valid() bool {
	return fetcher.Kind(k).Valid()
}

type Submission struct {
	Id             int64
	AssignmentCode string
	Submitter      int64
	Kind           Kind
	// Reference 提交的地址，直接提交内容的时候为空
	Reference string
	Title     string
	// Content 规范化之后的内容，github 仓库是所有文件拼起来的结果
	Content   string
	Structure string
	Meta      Meta
	State     State
	// FailureReason 只有 State 为 StateFeedbackFailed 的时候才有意义
	FailureReason FailureReason
	SubmittedAt   int64
	Ctime         int64
	Utime         int64
}

// Meta 文件清单和统计信息，不包含文件内容
type Meta struct {
	Files []fetcher.File `json:"files,omitempty"`
	fetcher.Metadata
}

type State uint8

func (s State) ToUint8() uint8 {
	return uint8(s)
}

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateFeedbackPending:
		return "feedback_pending"
	case StateFeedbackReady:
		return "feedback_ready"
	case StateFeedbackFailed:
		return "feedback_failed"
	default:
		return "unknown"
	}
}

// Regenerable 只有生成结束的提交才可以重新生成
func (s State) Regenerable() bool {
	return s == StateFeedbackReady || s == StateFeedbackFailed
}

const (
	StateUnknown         State = 0
	StateCreated         State = 1
	StateFeedbackPending State = 2
	StateFeedbackReady   State = 3
	StateFeedbackFailed  State = 4
)

type FailureReason string

const (
	FailureNone             FailureReason = ""
	FailureQuotaExceeded    FailureReason = "quota_exceeded"
	FailureGenerationFailed FailureReason = "generation_failed"
	FailureTimeout          FailureReason = "timeout"
	// FailureDispatchFailed 投递生成任务失败
	FailureDispatchFailed FailureReason = "dispatch_failed"
	// FailureAbandoned 长时间没有生成结果，被定时任务关闭
	FailureAbandoned FailureReason = "abandoned"
)

type SubmitRequest struct {
	Code      string
	Submitter int64
	Kind      Kind
	Reference string
	// Content 直接提交的内容，blog 和 code 可用
	Content string
	Title   string
}

type SubmitResult struct {
	SubmissionId int64
	State        State
}
