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
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCounter struct {
	mu   sync.Mutex
	data map[string]int64
	err  error
}

func newMemCounter() *memCounter {
	return &memCounter{data: map[string]int64{}}
}

func (m *memCounter) SetNX(ctx context.Context, key string, val any, expiration time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = 0
	return true, nil
}

func (m *memCounter) IncrBy(ctx context.Context, key string, value int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.data[key] += value
	return m.data[key], nil
}

func TestFixedWindowLimiter_Limit(t *testing.T) {
	ctx := context.Background()
	// 对齐到分钟，之后再偏移 10 秒
	base := time.UnixMilli(1_700_000_040_000).Add(10 * time.Second)
	now := base
	l := NewFixedWindowLimiter(newMemCounter(), map[Class]Rule{
		ClassSubmission: {Window: time.Minute, Limit: 3},
	})
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Limit(ctx, ClassSubmission, "uid:1"))
	}
	err := l.Limit(ctx, ClassSubmission, "uid:1")
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
	var le *LimitError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 50*time.Second, le.RetryAfter)

	// 其他客户端不受影响
	assert.NoError(t, l.Limit(ctx, ClassSubmission, "uid:2"))
	// 没有配置的类别不限流
	for i := 0; i < 10; i++ {
		assert.NoError(t, l.Limit(ctx, ClassGeneral, "uid:1"))
	}

	// 下一个窗口重新计数
	now = base.Add(50 * time.Second)
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Limit(ctx, ClassSubmission, "uid:1"))
	}
	assert.ErrorIs(t, l.Limit(ctx, ClassSubmission, "uid:1"), ErrRateLimitExceeded)
}

func TestFixedWindowLimiter_FailOpen(t *testing.T) {
	counter := newMemCounter()
	counter.err = errors.New("redis down")
	l := NewFixedWindowLimiter(counter, map[Class]Rule{
		ClassAuth: {Window: time.Minute, Limit: 1},
	})
	for i := 0; i < 5; i++ {
		assert.NoError(t, l.Limit(context.Background(), ClassAuth, "ip:127.0.0.1"))
	}
}

func TestMiddlewareBuilder_Build(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	now := time.UnixMilli(1_700_000_040_000).Add(59500 * time.Millisecond)
	l := NewFixedWindowLimiter(newMemCounter(), map[Class]Rule{
		ClassFeedback: {Window: time.Minute, Limit: 1},
	})
	l.now = func() time.Time { return now }

	server := gin.New()
	server.Use(NewMiddlewareBuilder(l, ClassFeedback).Build())
	server.POST("/submission/regenerate", func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})

	testCases := []struct {
		name           string
		wantCode       int
		wantRetryAfter string
	}{
		{name: "第一次放行", wantCode: http.StatusOK},
		// 剩余 0.5 秒，向上取整
		{name: "第二次限流", wantCode: http.StatusTooManyRequests, wantRetryAfter: "1"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/submission/regenerate", nil)
			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)
			assert.Equal(t, tc.wantCode, recorder.Code)
			assert.Equal(t, tc.wantRetryAfter, recorder.Header().Get("Retry-After"))
		})
	}
}

func TestMiddlewareBuilder_Paths(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	l := NewFixedWindowLimiter(newMemCounter(), map[Class]Rule{
		ClassSubmission: {Window: time.Hour, Limit: 1},
	})
	server := gin.New()
	server.Use(NewMiddlewareBuilder(l, ClassSubmission).Paths("/submission/submit").Build())
	for _, path := range []string{"/submission/submit", "/submission/status"} {
		server.POST(path, func(ctx *gin.Context) {
			ctx.Status(http.StatusOK)
		})
	}

	testCases := []struct {
		name     string
		path     string
		wantCode int
	}{
		{name: "提交第一次放行", path: "/submission/submit", wantCode: http.StatusOK},
		{name: "提交第二次限流", path: "/submission/submit", wantCode: http.StatusTooManyRequests},
		{name: "其他路由不限流", path: "/submission/status", wantCode: http.StatusOK},
		{name: "其他路由再次请求", path: "/submission/status", wantCode: http.StatusOK},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.path, nil)
			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)
			assert.Equal(t, tc.wantCode, recorder.Code)
		})
	}
}
