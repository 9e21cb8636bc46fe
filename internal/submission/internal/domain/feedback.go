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

type Feedback struct {
	Id           int64
	SubmissionId int64
	// Score 0-100
	Score      int
	Subscores  Subscores
	Content    string
	Model      string
	TokensUsed int64
	LatencyMs  int64
	Ctime      int64
}

type Subscores struct {
	RequirementsMet int `json:"requirementsMet"`
	Quality         int `json:"quality"`
	BestPractices   int `json:"bestPractices"`
	Creativity      int `json:"creativity"`
}

// StatusView 查询提交状态的结果，生成成功之后才有 Feedback
type StatusView struct {
	SubmissionId   int64
	AssignmentCode string
	Submitter      int64
	Kind           Kind
	Title          string
	State          State
	FailureReason  FailureReason
	SubmittedAt    int64
	Utime          int64
	Feedback       *Feedback
}

type Summary struct {
	Total        int64
	Created      int64
	Pending      int64
	Ready        int64
	Failed       int64
	AverageScore float64
}

// Add 按照状态累加
func (s *Summary) Add(state State, cnt int64) {
	s.Total += cnt
	switch state {
	case StateCreated:
		s.Created += cnt
	case StateFeedbackPending:
		s.Pending += cnt
	case StateFeedbackReady:
		s.Ready += cnt
	case StateFeedbackFailed:
		s.Failed += cnt
	}
}

type Stats struct {
	AssignmentCode string
	Summary
	CohortSize int
	// SubmissionRate 只有明确知道应交人数的时候才计算
	SubmissionRate *float64
}

type LeaderboardEntry struct {
	SubmissionId   int64
	AssignmentCode string
	Submitter      int64
	Score          int
	Ctime          int64
}

// AssignmentView 学生看到的作业详情，带上自己的提交情况
type AssignmentView struct {
	Code            string
	Title           string
	Description     string
	Requirements    []string
	Recommendations []string
	Deadline        int64
	Active          bool
	AllowResubmit   bool
	// CanSubmit 进行中、没过截止时间，并且没提交过或者允许重复提交
	CanSubmit    bool
	SubmissionId int64
	State        State
}
