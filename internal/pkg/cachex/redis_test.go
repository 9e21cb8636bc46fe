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

package cachex

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RedisCacheTestSuite struct {
	suite.Suite
	cmd   redis.Cmdable
	cache *RedisCache
}

func (s *RedisCacheTestSuite) SetupSuite() {
	s.cmd = redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})
	s.cache = NewRedisCache(s.cmd, "coursework_test:")
}

func (s *RedisCacheTestSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	keys, err := s.cmd.Keys(ctx, "coursework_test:*").Result()
	require.NoError(s.T(), err)
	if len(keys) > 0 {
		require.NoError(s.T(), s.cmd.Del(ctx, keys...).Err())
	}
}

func (s *RedisCacheTestSuite) TestGetSet() {
	t := s.T()
	ctx := context.Background()
	_, err := s.cache.Get(ctx, SubmissionStatusKey(1))
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.cache.Set(ctx, SubmissionStatusKey(1), []byte("feedback_ready"), SubmissionStatusTTL))
	val, err := s.cache.Get(ctx, SubmissionStatusKey(1))
	require.NoError(t, err)
	assert.Equal(t, "feedback_ready", string(val))

	ttl, err := s.cmd.TTL(ctx, "coursework_test:"+SubmissionStatusKey(1)).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= SubmissionStatusTTL)

	// 索引的过期时间一定比缓存长
	idxTTL, err := s.cmd.TTL(ctx, "coursework_test:_idx:submission:status:").Result()
	require.NoError(t, err)
	assert.True(t, idxTTL > SubmissionStatusTTL)
}

func (s *RedisCacheTestSuite) TestDeleteByPrefix() {
	t := s.T()
	ctx := context.Background()
	keys := []string{
		AssignmentDetailKey("A8C1Z3", 1),
		AssignmentDetailKey("A8C1Z3", 2),
		AssignmentRecordKey("A8C1Z3"),
		AssignmentDetailKey("A8C1Z4", 1),
		AssignmentListKey(1, "active"),
	}
	for _, k := range keys {
		require.NoError(t, s.cache.Set(ctx, k, []byte(k), AssignmentDetailTTL))
	}
	require.NoError(t, s.cache.DeleteByPrefix(ctx, AssignmentDetailPrefix("A8C1Z3")))
	for _, k := range keys[:3] {
		_, err := s.cache.Get(ctx, k)
		assert.ErrorIs(t, err, ErrKeyNotFound, k)
	}
	for _, k := range keys[3:] {
		_, err := s.cache.Get(ctx, k)
		assert.NoError(t, err, k)
	}

	require.NoError(t, s.cache.DeleteByPrefix(ctx, "assignment:"))
	for _, k := range keys {
		_, err := s.cache.Get(ctx, k)
		assert.ErrorIs(t, err, ErrKeyNotFound, k)
	}

	assert.Error(t, s.cache.DeleteByPrefix(ctx, "assignment"))
}

func TestRedisCache(t *testing.T) {
	suite.Run(t, new(RedisCacheTestSuite))
}
