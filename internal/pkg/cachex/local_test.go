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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalCache_GetSet(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	c := NewLocalCache()
	c.now = func() time.Time { return now }

	_, err := c.Get(ctx, "submission:status:1")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, c.Set(ctx, "submission:status:1", []byte("pending"), SubmissionStatusTTL))
	val, err := c.Get(ctx, "submission:status:1")
	require.NoError(t, err)
	assert.Equal(t, "pending", string(val))

	// 还差一毫秒
	now = now.Add(SubmissionStatusTTL - time.Millisecond)
	_, err = c.Get(ctx, "submission:status:1")
	require.NoError(t, err)

	now = now.Add(time.Millisecond)
	_, err = c.Get(ctx, "submission:status:1")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestLocalCache_DeleteByPrefix(t *testing.T) {
	testCases := []struct {
		name   string
		keys   []string
		prefix string

		wantLeft []string
	}{
		{
			name: "删除某个作业的所有详情",
			keys: []string{
				AssignmentDetailKey("A8C1Z3", 1),
				AssignmentDetailKey("A8C1Z3", 2),
				AssignmentRecordKey("A8C1Z3"),
				AssignmentDetailKey("A8C1Z4", 1),
			},
			prefix:   AssignmentDetailPrefix("A8C1Z3"),
			wantLeft: []string{AssignmentDetailKey("A8C1Z4", 1)},
		},
		{
			name: "删除所有列表",
			keys: []string{
				AssignmentListKey(1, "active"),
				AssignmentListKey(2, "all"),
				AssignmentStatsKey("A8C1Z3"),
			},
			prefix:   AssignmentListPrefix,
			wantLeft: []string{AssignmentStatsKey("A8C1Z3")},
		},
		{
			name:     "没有匹配的",
			keys:     []string{LeaderboardKey(10)},
			prefix:   "submission:",
			wantLeft: []string{LeaderboardKey(10)},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			c := NewLocalCache()
			for _, k := range tc.keys {
				require.NoError(t, c.Set(ctx, k, []byte(k), time.Minute))
			}
			require.NoError(t, c.DeleteByPrefix(ctx, tc.prefix))
			left := make([]string, 0, len(c.data))
			for k := range c.data {
				left = append(left, k)
			}
			assert.ElementsMatch(t, tc.wantLeft, left)
		})
	}
}

func TestJSON(t *testing.T) {
	type view struct {
		ID    int64  `json:"id"`
		State string `json:"state"`
	}
	ctx := context.Background()
	c := NewLocalCache()
	key := SubmissionViewKey(1, "A8C1Z3")
	require.NoError(t, SetJSON(ctx, c, key, view{ID: 12, State: "feedback_ready"}, SubmissionViewTTL))
	v, err := GetJSON[view](ctx, c, key)
	require.NoError(t, err)
	assert.Equal(t, view{ID: 12, State: "feedback_ready"}, v)

	require.NoError(t, c.Delete(ctx, key))
	_, err = GetJSON[view](ctx, c, key)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, c.Set(ctx, key, []byte("not json"), SubmissionViewTTL))
	_, err = GetJSON[view](ctx, c, key)
	assert.Error(t, err)
}

func TestPrefixes(t *testing.T) {
	assert.Equal(t, []string{"assignment:", "assignment:detail:", "assignment:detail:A8C1Z3:"},
		prefixes("assignment:detail:A8C1Z3:1"))
	assert.Equal(t, []string{"leaderboard:"}, prefixes("leaderboard:10"))
	assert.Nil(t, prefixes("plain"))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "assignment:detail:A8C1Z3:7", AssignmentDetailKey("A8C1Z3", 7))
	assert.Equal(t, "assignment:detail:A8C1Z3:_", AssignmentRecordKey("A8C1Z3"))
	assert.Equal(t, "assignment:list:7:active", AssignmentListKey(7, "active"))
	assert.Equal(t, "submission:view:7:A8C1Z3", SubmissionViewKey(7, "A8C1Z3"))
	assert.Equal(t, "submission:status:42", SubmissionStatusKey(42))
	assert.Equal(t, "submission:summary:7", SubmissionSummaryKey(7))
	assert.Equal(t, "assignment:stats:A8C1Z3", AssignmentStatsKey("A8C1Z3"))
	assert.Equal(t, "leaderboard:20", LeaderboardKey(20))
}
