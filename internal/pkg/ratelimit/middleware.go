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

package ratelimit

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/ecodeclub/ginx"
	"github.com/ecodeclub/ginx/session"
	"github.com/gin-gonic/gin"
)

type MiddlewareBuilder struct {
	limiter *FixedWindowLimiter
	class   Class
	keyFunc func(ctx *gin.Context) string
	// paths 为空表示所有路由都限流
	paths map[string]struct{}
}

func NewMiddlewareBuilder(limiter *FixedWindowLimiter, class Class) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		limiter: limiter,
		class:   class,
		keyFunc: IPKey,
	}
}

func (b *MiddlewareBuilder) KeyFunc(fn func(ctx *gin.Context) string) *MiddlewareBuilder {
	b.keyFunc = fn
	return b
}

// Paths 只对这些路由限流，使用注册路由时的路径
func (b *MiddlewareBuilder) Paths(paths ...string) *MiddlewareBuilder {
	b.paths = make(map[string]struct{}, len(paths))
	for _, p := range paths {
		b.paths[p] = struct{}{}
	}
	return b
}

func (b *MiddlewareBuilder) Build() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if len(b.paths) > 0 {
			if _, ok := b.paths[ctx.FullPath()]; !ok {
				ctx.Next()
				return
			}
		}
		err := b.limiter.Limit(ctx, b.class, b.keyFunc(ctx))
		var le *LimitError
		if errors.As(err, &le) {
			seconds := int(math.Ceil(le.RetryAfter.Seconds()))
			ctx.Header("Retry-After", strconv.Itoa(max(seconds, 1)))
			ctx.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		ctx.Next()
	}
}

func IPKey(ctx *gin.Context) string {
	return "ip:" + ctx.ClientIP()
}

// UidKey 登录了就按照用户限流，否则按照 IP 限流
func UidKey(ctx *gin.Context) string {
	sess, err := session.Get(&ginx.Context{Context: ctx})
	if err != nil || sess == nil {
		return IPKey(ctx)
	}
	return "uid:" + strconv.FormatInt(sess.Claims().Uid, 10)
}
