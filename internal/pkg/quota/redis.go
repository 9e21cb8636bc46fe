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

package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 计数 key 过期就相当于窗口重置，
// 过期之后第一次 INCR 重新设置过期时间，也就是新窗口的开始。
var acquireScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
if used >= tonumber(ARGV[1]) then
	return -1
end
used = redis.call('INCR', KEYS[1])
if used == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return used
`)

var _ Quota = (*RedisQuota)(nil)

// RedisQuota 多实例部署时共享同一个计数
type RedisQuota struct {
	cmd redis.Cmdable
	key string
	cfg Config
}

func NewRedisQuota(cmd redis.Cmdable, key string, cfg Config) *RedisQuota {
	return &RedisQuota{
		cmd: cmd,
		key: key,
		cfg: cfg,
	}
}

func (q *RedisQuota) Acquire(ctx context.Context) error {
	res, err := acquireScript.Run(ctx, q.cmd, []string{q.key},
		q.cfg.Limit, q.cfg.Window.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("占用配额失败: %w", err)
	}
	if res < 0 {
		return ErrQuotaExceeded
	}
	return nil
}

func (q *RedisQuota) Usage(ctx context.Context) (Usage, error) {
	res := Usage{Limit: q.cfg.Limit}
	used, err := q.cmd.Get(ctx, q.key).Int64()
	if err == redis.Nil {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("查询配额失败: %w", err)
	}
	ttl, err := q.cmd.PTTL(ctx, q.key).Result()
	if err != nil {
		return res, fmt.Errorf("查询配额失败: %w", err)
	}
	res.Used = used
	if ttl > 0 {
		res.ResetAt = time.Now().Add(ttl)
	}
	return res, nil
}
