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
package event

const FeedbackGenerationEventName = "feedback_generation_events"

// FeedbackGenerationEvent 一个事件就是一次评审生成
type FeedbackGenerationEvent struct {
	// EventId 用于去重，同一个事件重复投递只处理一次
	EventId      string `json:"eventId"`
	SubmissionId int64  `json:"submissionId"`
	// SubmittedAt 投递时提交的版本，提交被覆盖之后旧事件直接丢弃
	SubmittedAt int64 `json:"submittedAt"`
	Regenerate  bool  `json:"regenerate"`
	Ctime       int64 `json:"ctime"`
}
