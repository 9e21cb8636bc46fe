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
	"strconv"

	"github.com/ecodeclub/coursework/internal/pkg/mqx"
	"github.com/ecodeclub/mq-api"
)

//go:generate mockgen -source=./producer.go -destination=./mocks/producer.mock.go -package=evtmocks FeedbackEventProducer
type FeedbackEventProducer interface {
	Produce(ctx context.Context, evt FeedbackGenerationEvent) error
}

type feedbackEventProducer struct {
	producer mqx.Producer[FeedbackGenerationEvent]
}

func NewFeedbackEventProducer(q mq.MQ) (FeedbackEventProducer, error) {
	p, err := mqx.NewGeneralProducer[FeedbackGenerationEvent](q, FeedbackGenerationEventName)
	if err != nil {
		return nil, err
	}
	// 同一个提交的事件进入同一个分区
	p = p.WithKeyFunc(func(evt FeedbackGenerationEvent) string {
		return strconv.FormatInt(evt.SubmissionId, 10)
	})
	return &feedbackEventProducer{producer: p}, nil
}

func (p *feedbackEventProducer) Produce(ctx context.Context, evt FeedbackGenerationEvent) error {
	return p.producer.Produce(ctx, evt)
}
