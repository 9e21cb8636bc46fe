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

// Package ratelimit 按客户端限流，固定窗口，窗口边界按照 Unix 纪元对齐。
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gotomicro/ego/core/elog"
)

var ErrRateLimitExceeded = errors.New("请求太频繁")

type Class string

const (
	ClassGeneral    Class = "general"
	ClassSubmission Class = "submission"
	ClassFeedback   Class = "feedback"
	ClassAuth       Class = "auth"
)

type Rule struct {
	Window time.Duration `yaml:"window"`
	Limit  int64         `yaml:"limit"`
}

// LimitError 触发限流时返回，errors.Is(err, ErrRateLimitExceeded) 为 true
type LimitError struct {
	Class      Class
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: class=%s, %s 之后重试", ErrRateLimitExceeded.Error(), e.Class, e.RetryAfter)
}

func (e *LimitError) Unwrap() error {
	return ErrRateLimitExceeded
}

// Counter ecache.Cache 满足这个接口
type Counter interface {
	SetNX(ctx context.Context, key string, val any, expiration time.Duration) (bool, error)
	IncrBy(ctx context.Context, key string, value int64) (int64, error)
}

type FixedWindowLimiter struct {
	counter Counter
	rules   map[Class]Rule
	logger  *elog.Component
	now     func() time.Time
}

func NewFixedWindowLimiter(counter Counter, rules map[Class]Rule) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		counter: counter,
		rules:   rules,
		logger:  elog.DefaultLogger,
		now:     time.Now,
	}
}

// Limit 没有配置的类别不限流。
// 计数失败的时候放行，限流不能影响正常的业务。
func (l *FixedWindowLimiter) Limit(ctx context.Context, class Class, client string) error {
	rule, ok := l.rules[class]
	if !ok || rule.Window < time.Millisecond || rule.Limit <= 0 {
		return nil
	}
	now := l.now()
	// time.Truncate 是按公元元年对齐的，这里要按纪元对齐
	windowMs := rule.Window.Milliseconds()
	windowStart := time.UnixMilli(now.UnixMilli() / windowMs * windowMs)
	windowEnd := windowStart.Add(rule.Window)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", class, client, windowStart.UnixMilli())

	// 多留一秒，避免 SetNX 和 IncrBy 之间刚好过期，IncrBy 创建出一个永不过期的 key
	_, err := l.counter.SetNX(ctx, key, 0, windowEnd.Sub(now)+time.Second)
	if err != nil {
		l.logger.Error("初始化限流计数失败", elog.String("key", key), elog.FieldErr(err))
		return nil
	}
	cnt, err := l.counter.IncrBy(ctx, key, 1)
	if err != nil {
		l.logger.Error("限流计数失败", elog.String("key", key), elog.FieldErr(err))
		return nil
	}
	if cnt > rule.Limit {
		return &LimitError{Class: class, RetryAfter: windowEnd.Sub(now)}
	}
	return nil
}
