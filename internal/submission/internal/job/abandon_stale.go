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
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/ecodeclub/coursework/internal/submission/internal/service"
	"github.com/gotomicro/ego/core/elog"
	"github.com/gotomicro/ego/task/ecron"
)

var _ ecron.NamedJob = (*AbandonStaleJob)(nil)

// AbandonStaleJob 生成事件丢失或者消费者崩溃的时候，提交会一直停在生成中。
// 标记为失败之后学生可以手动重新生成。
type AbandonStaleJob struct {
	svc        service.Service
	staleAfter time.Duration
	limit      int
	logger     *elog.Component
}

func NewAbandonStaleJob(svc service.Service, staleAfter time.Duration, limit int) *AbandonStaleJob {
	return &AbandonStaleJob{
		svc:        svc,
		staleAfter: staleAfter,
		limit:      limit,
		logger:     elog.DefaultLogger,
	}
}

func (j *AbandonStaleJob) Name() string {
	return "AbandonStaleSubmissionsJob"
}

func (j *AbandonStaleJob) Run(ctx context.Context) error {
	before := time.Now().Add(-j.staleAfter)
	total := 0
	for {
		cnt, err := j.svc.AbandonStale(ctx, before, j.limit)
		total += cnt
		if err != nil {
			return fmt.Errorf("关闭超时的提交失败: %w", err)
		}
		// 两种状态各查一批，都不满一批说明处理完了
		if cnt < j.limit {
			break
		}
	}
	if total > 0 {
		j.logger.Warn("关闭超时的提交", elog.Int("cnt", total))
	}
	return nil
}
