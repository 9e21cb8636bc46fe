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
//go:build wireinject

package submission

import (
	"sync"
	"time"

	"github.com/ecodeclub/coursework/internal/ai"
	"github.com/ecodeclub/coursework/internal/assignment"
	"github.com/ecodeclub/coursework/internal/fetcher"
	"github.com/ecodeclub/coursework/internal/pkg/cachex"
	"github.com/ecodeclub/coursework/internal/pkg/quota"
	"github.com/ecodeclub/coursework/internal/pkg/snowflake"
	"github.com/ecodeclub/coursework/internal/submission/internal/event"
	"github.com/ecodeclub/coursework/internal/submission/internal/job"
	"github.com/ecodeclub/coursework/internal/submission/internal/repository"
	"github.com/ecodeclub/coursework/internal/submission/internal/repository/dao"
	"github.com/ecodeclub/coursework/internal/submission/internal/service"
	"github.com/ecodeclub/coursework/internal/submission/internal/web"
	"github.com/ecodeclub/ecache"
	"github.com/ecodeclub/mq-api"
	"github.com/ego-component/egorm"
	"github.com/google/wire"
	"github.com/gotomicro/ego/core/econf"
	"github.com/prometheus/client_golang/prometheus"
)

func InitModule(db *egorm.Component,
	c cachex.Cache,
	ec ecache.Cache,
	q mq.MQ,
	am *assignment.Module,
	aim *ai.Module,
	f fetcher.Fetcher,
	qt quota.Quota,
	idGen snowflake.IDGenerator,
	reg prometheus.Registerer) (*Module, error) {
	wire.Build(
		InitSubmissionDAO,
		repository.NewCachedSubmissionRepository,
		event.NewFeedbackEventProducer,
		wire.FieldsOf(new(*assignment.Module), "Svc"),
		wire.FieldsOf(new(*ai.Module), "Svc"),
		service.NewService,
		InitGenerationConfig,
		InitGenerationMetrics,
		service.NewGenerator,
		InitConsumer,
		InitAbandonStaleJob,
		web.NewHandler,
		web.NewAdminHandler,
		wire.Struct(new(Module), "*"),
	)
	return new(Module), nil
}

var daoOnce = sync.Once{}

func InitTableOnce(db *egorm.Component) {
	daoOnce.Do(func() {
		err := dao.InitTables(db)
		if err != nil {
			panic(err)
		}
	})
}

func InitSubmissionDAO(db *egorm.Component) dao.SubmissionDAO {
	InitTableOnce(db)
	return dao.NewGORMSubmissionDAO(db)
}

const (
	defaultConcurrency = 8
	defaultStaleAfter  = 10 * time.Minute
	abandonBatchSize   = 100
)

func InitGenerationConfig() service.GenerationConfig {
	var cfg service.GenerationConfig
	err := econf.UnmarshalKey("submission.generation", &cfg)
	if err != nil {
		panic(err)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = defaultStaleAfter
	}
	return cfg
}

var (
	metricsOnce sync.Once
	metrics     *service.GenerationMetrics
)

// InitGenerationMetrics 同一个 Registerer 重复注册会 panic
func InitGenerationMetrics(reg prometheus.Registerer) *service.GenerationMetrics {
	metricsOnce.Do(func() {
		metrics = service.NewGenerationMetrics(reg, "coursework")
	})
	return metrics
}

func InitConsumer(q mq.MQ, ec ecache.Cache, gen *service.Generator, cfg service.GenerationConfig) (*event.FeedbackGenerationConsumer, error) {
	return event.NewFeedbackGenerationConsumer(q, ec, gen, cfg.Concurrency)
}

func InitAbandonStaleJob(svc service.Service, cfg service.GenerationConfig) *job.AbandonStaleJob {
	return job.NewAbandonStaleJob(svc, cfg.StaleAfter, abandonBatchSize)
}
