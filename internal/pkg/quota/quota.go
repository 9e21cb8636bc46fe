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

// Package quota 全局的 AI 调用配额。
// 配额在窗口到期之后的第一次检查时才重置，窗口从重置那一刻重新开始计算。
package quota

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrQuotaExceeded = errors.New("AI 调用配额已用完")

type Config struct {
	Limit  int64         `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

type Usage struct {
	Used  int64
	Limit int64
	// ResetAt 零值表示当前窗口还没开始
	ResetAt time.Time
}

type Quota interface {
	// Acquire 检查并占用一次配额，两步是原子的。
	// 配额不足的时候返回 ErrQuotaExceeded。
	Acquire(ctx context.Context) error
	Usage(ctx context.Context) (Usage, error)
}

var _ Quota = (*LocalQuota)(nil)

// LocalQuota 单实例部署时使用
type LocalQuota struct {
	mu      sync.Mutex
	cfg     Config
	used    int64
	resetAt time.Time
	now     func() time.Time
}

func NewLocalQuota(cfg Config) *LocalQuota {
	return &LocalQuota{
		cfg: cfg,
		now: time.Now,
	}
}

func (q *LocalQuota) Acquire(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.resetIfExpired()
	if q.used >= q.cfg.Limit {
		return ErrQuotaExceeded
	}
	q.used++
	return nil
}

func (q *LocalQuota) Usage(ctx context.Context) (Usage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.resetIfExpired()
	return Usage{
		Used:    q.used,
		Limit:   q.cfg.Limit,
		ResetAt: q.resetAt,
	}, nil
}

// resetIfExpired 调用者需要持有锁
func (q *LocalQuota) resetIfExpired() {
	now := q.now()
	if q.resetAt.IsZero() || !now.Before(q.resetAt) {
		q.used = 0
		q.resetAt = now.Add(q.cfg.Window)
	}
}
