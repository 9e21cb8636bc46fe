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

//go:build e2e

package quota

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisQuota(t *testing.T) {
	ctx := context.Background()
	cmd := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	const key = "coursework_test:quota:ai"
	require.NoError(t, cmd.Del(ctx, key).Err())
	defer cmd.Del(ctx, key)

	q := NewRedisQuota(cmd, key, Config{Limit: 10, Window: time.Second})
	var (
		wg      sync.WaitGroup
		granted atomic.Int64
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if q.Acquire(ctx) == nil {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(10), granted.Load())
	assert.ErrorIs(t, q.Acquire(ctx), ErrQuotaExceeded)

	usage, err := q.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), usage.Used)
	assert.False(t, usage.ResetAt.IsZero())

	time.Sleep(1100 * time.Millisecond)
	assert.NoError(t, q.Acquire(ctx))
}
