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
	"net/http"
	"strings"
	"sync"

	"github.com/ecodeclub/coursework/internal/assignment"
	"github.com/ecodeclub/coursework/internal/pkg/middleware"
	"github.com/ecodeclub/coursework/internal/pkg/ratelimit"
	"github.com/ecodeclub/coursework/internal/submission"
	"github.com/ecodeclub/ginx/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/server/egin"
	"github.com/prometheus/client_golang/prometheus"
)

func initGinxServer(sp session.Provider,
	limiter *ratelimit.FixedWindowLimiter,
	reg prometheus.Registerer,
	ah *assignment.Handler,
	sh *submission.Handler,
) *egin.Component {
	session.SetDefaultProvider(sp)
	res := egin.Load("web").Build()
	res.Use(corsMiddleware())
	res.Use(metricsMiddleware(reg))
	res.GET("/hello", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world!")
	})
	res.Use(ratelimit.NewMiddlewareBuilder(limiter, ratelimit.ClassGeneral).Build())
	sh.PublicRoutes(res.Engine)
	ah.PublicRoutes(res.Engine)
	// 登录校验
	res.Use(session.CheckLoginMiddleware())
	res.Use(ratelimit.NewMiddlewareBuilder(limiter, ratelimit.ClassSubmission).
		KeyFunc(ratelimit.UidKey).
		Paths("/submission/submit").Build())
	res.Use(ratelimit.NewMiddlewareBuilder(limiter, ratelimit.ClassFeedback).
		KeyFunc(ratelimit.UidKey).
		Paths("/submission/regenerate").Build())
	ah.PrivateRoutes(res.Engine)
	sh.PrivateRoutes(res.Engine)
	return res
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		ExposeHeaders:    []string{"X-Refresh-Token", "X-Access-Token", "Retry-After"},
		AllowCredentials: true,
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowOriginFunc: func(origin string) bool {
			if strings.HasPrefix(origin, "http://localhost") {
				return true
			}
			return strings.Contains(origin, "meoying.com")
		},
	})
}

var (
	metricsOnce sync.Once
	metrics     gin.HandlerFunc
)

// metricsMiddleware web 和 admin 共用同一组指标
func metricsMiddleware(reg prometheus.Registerer) gin.HandlerFunc {
	metricsOnce.Do(func() {
		metrics = middleware.NewMetricsBuilder(reg, "coursework").Build()
	})
	return metrics
}
