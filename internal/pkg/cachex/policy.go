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

package cachex

import (
	"fmt"
	"time"
)

// 各类资源的过期时间。所有的 key 和过期时间都只在这里定义，
// 业务代码不允许自己拼 key。
const (
	AssignmentDetailTTL  = 5 * time.Minute
	AssignmentListTTL    = time.Minute
	SubmissionViewTTL    = 2 * time.Minute
	SubmissionStatusTTL  = 2 * time.Minute
	SubmissionSummaryTTL = 5 * time.Minute
	AssignmentStatsTTL   = 5 * time.Minute
	// LeaderboardTTL 排行榜只依赖过期，不主动失效
	LeaderboardTTL = 10 * time.Minute
)

// AssignmentListPrefix 作业有任何变更都整体清掉列表缓存
const AssignmentListPrefix = "assignment:list:"

// rawSubmitter 作业本身的记录不区分提交者
const rawSubmitter = "_"

func AssignmentDetailKey(code string, submitter int64) string {
	return fmt.Sprintf("assignment:detail:%s:%d", code, submitter)
}

// AssignmentRecordKey 作业原始记录
func AssignmentRecordKey(code string) string {
	return fmt.Sprintf("assignment:detail:%s:%s", code, rawSubmitter)
}

// AssignmentDetailPrefix 某个作业的所有详情缓存，包括原始记录
func AssignmentDetailPrefix(code string) string {
	return fmt.Sprintf("assignment:detail:%s:", code)
}

func AssignmentListKey(submitter int64, filters string) string {
	return fmt.Sprintf("%s%d:%s", AssignmentListPrefix, submitter, filters)
}

func SubmissionViewKey(submitter int64, code string) string {
	return fmt.Sprintf("submission:view:%d:%s", submitter, code)
}

func SubmissionStatusKey(id int64) string {
	return fmt.Sprintf("submission:status:%d", id)
}

func SubmissionSummaryKey(submitter int64) string {
	return fmt.Sprintf("submission:summary:%d", submitter)
}

func AssignmentStatsKey(code string) string {
	return fmt.Sprintf("assignment:stats:%s", code)
}

func LeaderboardKey(limit int) string {
	return fmt.Sprintf("leaderboard:%d", limit)
}
