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

import (
	"context"
	"time"

	"github.com/ecodeclub/coursework/internal/pkg/mqx"
	"github.com/ecodeclub/ecache"
	"github.com/ecodeclub/mq-api"
	"github.com/gotomicro/ego/core/elog"
	"golang.org/x/sync/semaphore"
)

// Generator 真正执行评审生成的地方，返回 error 只会记录日志
type Generator interface {
	Generate(ctx context.Context, submissionID, submittedAt int64) error
}

const eventKeyExpiration = 24 * time.Hour

type FeedbackGenerationConsumer struct {
	consumer *mqx.GeneralConsumer[FeedbackGenerationEvent]
	gen      Generator
	ec       ecache.Cache
	// sem 同时进行的生成数量
	sem         *semaphore.Weighted
	concurrency int64
	logger      *elog.Component
}

func NewFeedbackGenerationConsumer(q mq.MQ, ec ecache.Cache, gen Generator, concurrency int) (*FeedbackGenerationConsumer, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	c := &FeedbackGenerationConsumer{
		gen: gen,
		ec: &ecache.NamespaceCache{
			Namespace: "submission:event:",
			C:         ec,
		},
		sem:         semaphore.NewWeighted(int64(concurrency)),
		concurrency: int64(concurrency),
		logger:      elog.DefaultLogger,
	}
	consumer, err := mqx.NewGeneralConsumer[FeedbackGenerationEvent](q, FeedbackGenerationEventName, "submission", c.handle)
	if err != nil {
		return nil, err
	}
	c.consumer = consumer
	return c, nil
}

func (c *FeedbackGenerationConsumer) Start(ctx context.Context) {
	c.consumer.Start(ctx)
}

// Consume 消费一条消息，生成在独立的 goroutine 里面进行
func (c *FeedbackGenerationConsumer) Consume(ctx context.Context) error {
	return c.consumer.Consume(ctx)
}

func (c *FeedbackGenerationConsumer) handle(ctx context.Context, evt FeedbackGenerationEvent) error {
	logger := c.logger.With(elog.String("eventId", evt.EventId), elog.Int64("sid", evt.SubmissionId))
	ok, err := c.ec.SetNX(ctx, evt.EventId, 1, eventKeyExpiration)
	if err != nil {
		// 去重失败的时候宁可多生成一次
		logger.Warn("设置事件去重 key 失败", elog.FieldErr(err))
	} else if !ok {
		logger.Info("重复的评审生成事件，忽略")
		return nil
	}
	err = c.sem.Acquire(ctx, 1)
	if err != nil {
		return err
	}
	go func() {
		defer c.sem.Release(1)
		// 生成不受消费循环的 ctx 影响，超时由 Generator 自己控制
		err1 := c.gen.Generate(context.WithoutCancel(ctx), evt.SubmissionId, evt.SubmittedAt)
		if err1 != nil {
			logger.Error("生成评审失败", elog.FieldErr(err1))
		}
	}()
	return nil
}

// Wait 等待正在进行的生成全部结束
func (c *FeedbackGenerationConsumer) Wait(ctx context.Context) error {
	err := c.sem.Acquire(ctx, c.concurrency)
	if err != nil {
		return err
	}
	c.sem.Release(c.concurrency)
	return nil
}

func (c *FeedbackGenerationConsumer) Stop(ctx context.Context) error {
	return c.consumer.Stop(ctx)
}
