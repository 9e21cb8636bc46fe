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

package cachex

import (
	"context"
	"strings"
	"sync"
	"time"
)

var _ Cache = (*LocalCache)(nil)

// LocalCache 进程内缓存，用于测试和本地开发
type LocalCache struct {
	mu   sync.RWMutex
	data map[string]localEntry
	now  func() time.Time
}

type localEntry struct {
	val      []byte
	deadline time.Time
}

func (e localEntry) expired(now time.Time) bool {
	return !e.deadline.IsZero() && !now.Before(e.deadline)
}

func NewLocalCache() *LocalCache {
	return &LocalCache{
		data: make(map[string]localEntry),
		now:  time.Now,
	}
}

func (l *LocalCache) Get(ctx context.Context, key string) ([]byte, error) {
	l.mu.RLock()
	entry, ok := l.data[key]
	l.mu.RUnlock()
	if !ok {
		return nil, ErrKeyNotFound
	}
	if entry.expired(l.now()) {
		l.mu.Lock()
		// 加写锁之前可能已经被重新写入了
		if cur, ok := l.data[key]; ok && cur.expired(l.now()) {
			delete(l.data, key)
		}
		l.mu.Unlock()
		return nil, ErrKeyNotFound
	}
	return entry.val, nil
}

func (l *LocalCache) Set(ctx context.Context, key string, val []byte, expiration time.Duration) error {
	entry := localEntry{val: val}
	if expiration > 0 {
		entry.deadline = l.now().Add(expiration)
	}
	l.mu.Lock()
	l.data[key] = entry
	l.mu.Unlock()
	return nil
}

func (l *LocalCache) Delete(ctx context.Context, keys ...string) error {
	l.mu.Lock()
	for _, k := range keys {
		delete(l.data, k)
	}
	l.mu.Unlock()
	return nil
}

func (l *LocalCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	l.mu.Lock()
	for k := range l.data {
		if strings.HasPrefix(k, prefix) {
			delete(l.data, k)
		}
	}
	l.mu.Unlock()
	return nil
}
