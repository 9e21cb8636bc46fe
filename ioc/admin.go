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

	"github.com/ecodeclub/coursework/internal/assignment"
	"github.com/ecodeclub/coursework/internal/pkg/ratelimit"
	"github.com/ecodeclub/coursework/internal/submission"
	"github.com/ecodeclub/ginx"
	"github.com/ecodeclub/ginx/session"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/elog"
	"github.com/gotomicro/ego/server/egin"
	"github.com/prometheus/client_golang/prometheus"
)

type AdminServer *egin.Component

func InitAdminServer(limiter *ratelimit.FixedWindowLimiter,
	reg prometheus.Registerer,
	ah *assignment.AdminHandler,
	sh *submission.AdminHandler,
) AdminServer {
	res := egin.Load("admin").Build()
	res.Use(corsMiddleware())
	res.Use(metricsMiddleware(reg))
	res.GET("/hello", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world!")
	})
	// 管理后台的接口都需要权限，限流更严格
	res.Use(ratelimit.NewMiddlewareBuilder(limiter, ratelimit.ClassAuth).Build())
	res.Use(session.CheckLoginMiddleware())
	res.Use(AdminPermission())
	ah.PrivateRoutes(res.Engine)
	sh.PrivateRoutes(res.Engine)
	return res
}

// AdminPermission 只有老师才能访问管理后台
func AdminPermission() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		xctx := &ginx.Context{Context: ctx}
		sess, err := session.Get(xctx)
		if err != nil {
			ctx.AbortWithStatus(http.StatusUnauthorized)
			elog.Error("非法访问 admin 接口", elog.FieldErr(err))
			return
		}
		if sess.Claims().Get("creator").StringOrDefault("") != "true" {
			ctx.AbortWithStatus(http.StatusForbidden)
			elog.Error("非法访问 admin 接口，未设置权限", elog.Int64("uid", sess.Claims().Uid))
			return
		}
	}
}
