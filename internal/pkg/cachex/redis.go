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
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultIndexTTL 要比所有缓存的过期时间都长，
	// 否则索引先过期，按前缀删除的时候就会漏掉 key
	DefaultIndexTTL = time.Hour
	indexKeyPrefix  = "_idx:"
	delBatchSize    = 256
)

var _ Cache = (*RedisCache)(nil)

// RedisCache 每写入一个 key，都会把它加入到它的每一级前缀对应的集合里面。
// 例如 assignment:detail:A8C1Z3:1 会加入
// assignment:、assignment:detail:、assignment:detail:A8C1Z3: 三个集合。
// 按前缀删除就不需要 SCAN 整个库。
type RedisCache struct {
	cmd       redis.Cmdable
	namespace string
	indexTTL  time.Duration
}

func NewRedisCache(cmd redis.Cmdable, namespace string) *RedisCache {
	return &RedisCache{
		cmd:       cmd,
		namespace: namespace,
		indexTTL:  DefaultIndexTTL,
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.cmd.Get(ctx, r.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "查询缓存出错")
	}
	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, val []byte, expiration time.Duration) error {
	fullKey := r.namespace + key
	idxTTL := max(r.indexTTL, 2*expiration)
	_, err := r.cmd.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, fullKey, val, expiration)
		for _, p := range prefixes(key) {
			idx := r.indexKey(p)
			pipe.SAdd(ctx, idx, fullKey)
			pipe.Expire(ctx, idx, idxTTL)
		}
		return nil
	})
	return errors.Wrap(err, "写入缓存出错")
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		fullKeys = append(fullKeys, r.namespace+k)
	}
	return errors.Wrap(r.cmd.Del(ctx, fullKeys...).Err(), "删除缓存出错")
}

func (r *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	if !strings.HasSuffix(prefix, ":") {
		return errors.Errorf("前缀 %s 必须以 : 结尾", prefix)
	}
	idx := r.indexKey(prefix)
	members, err := r.cmd.SMembers(ctx, idx).Result()
	if err != nil {
		return errors.Wrap(err, "查询缓存索引出错")
	}
	// 成员可能已经过期了，DEL 不存在的 key 没有副作用
	for start := 0; start < len(members); start += delBatchSize {
		end := min(start+delBatchSize, len(members))
		if err = r.cmd.Del(ctx, members[start:end]...).Err(); err != nil {
			return errors.Wrap(err, "按前缀删除缓存出错")
		}
	}
	return errors.Wrap(r.cmd.Del(ctx, idx).Err(), "删除缓存索引出错")
}

func (r *RedisCache) indexKey(prefix string) string {
	return r.namespace + indexKeyPrefix + prefix
}

// prefixes 返回 key 的每一级前缀，每个前缀都以 ':' 结尾
func prefixes(key string) []string {
	var res []string
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			res = append(res, key[:i+1])
		}
	}
	return res
}
