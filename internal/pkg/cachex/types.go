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
	"encoding/json"
	"time"

	"github.com/gotomicro/ego/core/elog"
	"github.com/pkg/errors"
)

var ErrKeyNotFound = errors.New("缓存不存在")

// Cache 读穿透缓存。缓存永远不是数据的唯一来源，
// 所有的数据都必须能从存储里面重新构建出来。
type Cache interface {
	// Get 缓存不存在的时候返回 ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeleteByPrefix 删除所有以 prefix 开头的 key。
	// prefix 必须以 ':' 结尾，也就是按照 key 的分段来删除。
	DeleteByPrefix(ctx context.Context, prefix string) error
}

func GetJSON[T any](ctx context.Context, c Cache, key string) (T, error) {
	var res T
	data, err := c.Get(ctx, key)
	if err != nil {
		return res, err
	}
	err = json.Unmarshal(data, &res)
	if err != nil {
		return res, errors.Wrapf(err, "反序列化缓存 %s 失败", key)
	}
	return res, nil
}

func SetJSON[T any](ctx context.Context, c Cache, key string, val T, expiration time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return errors.Wrapf(err, "序列化缓存 %s 失败", key)
	}
	return c.Set(ctx, key, data, expiration)
}

// GetOrLoad 先查缓存，没有再调用 load 并回写。
// 缓存出错的时候当作缓存不存在，load 出错的时候不写缓存。
func GetOrLoad[T any](ctx context.Context, c Cache, key string, expiration time.Duration,
	load func(ctx context.Context) (T, error)) (T, error) {
	res, err := GetJSON[T](ctx, c, key)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		elog.DefaultLogger.Warn("读取缓存失败", elog.String("key", key), elog.FieldErr(err))
	}
	res, err = load(ctx)
	if err != nil {
		return res, err
	}
	err = SetJSON(ctx, c, key, res, expiration)
	if err != nil {
		elog.DefaultLogger.Error("回写缓存失败", elog.String("key", key), elog.FieldErr(err))
	}
	return res, nil
}
