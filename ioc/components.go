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

package ioc

import (
	"github.com/ecodeclub/coursework/internal/fetcher"
	"github.com/ecodeclub/coursework/internal/pkg/quota"
	"github.com/ecodeclub/coursework/internal/pkg/ratelimit"
	"github.com/ecodeclub/coursework/internal/pkg/snowflake"
	"github.com/ecodeclub/ecache"
	"github.com/gotomicro/ego/core/econf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func InitFetcher() fetcher.Fetcher {
	cfg := fetcher.DefaultConfig()
	err := econf.UnmarshalKey("fetcher", &cfg)
	if err != nil {
		panic(err)
	}
	return fetcher.NewContentFetcher(cfg)
}

// InitQuota 多个实例共享同一份 AI 调用配额
func InitQuota(cmd redis.Cmdable) quota.Quota {
	var cfg quota.Config
	err := econf.UnmarshalKey("quota", &cfg)
	if err != nil {
		panic(err)
	}
	return quota.NewRedisQuota(cmd, cacheNamespace+"ai:quota", cfg)
}

func InitIDGenerator() snowflake.IDGenerator {
	gen, err := snowflake.NewNodeIDGenerator(econf.GetInt64("snowflake.nodeId"))
	if err != nil {
		panic(err)
	}
	return gen
}

func InitRateLimiter(ec ecache.Cache) *ratelimit.FixedWindowLimiter {
	var rules map[ratelimit.Class]ratelimit.Rule
	err := econf.UnmarshalKey("ratelimit", &rules)
	if err != nil {
		panic(err)
	}
	return ratelimit.NewFixedWindowLimiter(ec, rules)
}

// InitRegisterer egovernor 暴露的 /metrics 使用默认的 Registry
func InitRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}
