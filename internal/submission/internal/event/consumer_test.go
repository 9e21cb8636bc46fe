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
package event

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ecodeclub/ecache"
	"github.com/ecodeclub/mq-api/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setNXCache 只实现了去重用到的 SetNX
type setNXCache struct {
	ecache.Cache
	mu   sync.Mutex
	keys map[string]struct{}
	err  error
}

func (c *setNXCache) SetNX(ctx context.Context, key string, val any, expiration time.Duration) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.keys[key]; ok {
		return false, nil
	}
	c.keys[key] = struct{}{}
	return true, nil
}

type recordGenerator struct {
	mu  sync.Mutex
	ids []int64
}

func (g *recordGenerator) Generate(ctx context.Context, submissionID, submittedAt int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ids = append(g.ids, submissionID)
	return nil
}

func (g *recordGenerator) sorted() []int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	res := append([]int64(nil), g.ids...)
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

func TestFeedbackGenerationConsumer(t *testing.T) {
	testCases := []struct {
		name     string
		cacheErr error
		wantIDs  []int64
	}{
		{
			name:    "重复事件只处理一次",
			wantIDs: []int64{1, 2},
		},
		{
			name:     "去重失败的时候照常处理",
			cacheErr: errors.New("redis 不可用"),
			wantIDs:  []int64{1, 1, 2},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			q := memory.NewMQ()
			require.NoError(t, q.CreateTopic(ctx, FeedbackGenerationEventName, 1))

			gen := &recordGenerator{}
			c, err := NewFeedbackGenerationConsumer(q, &setNXCache{keys: map[string]struct{}{}, err: tc.cacheErr}, gen, 2)
			require.NoError(t, err)
			p, err := NewFeedbackEventProducer(q)
			require.NoError(t, err)

			evts := []FeedbackGenerationEvent{
				{EventId: "evt-1", SubmissionId: 1},
				{EventId: "evt-1", SubmissionId: 1},
				{EventId: "evt-2", SubmissionId: 2, Regenerate: true},
			}
			for _, evt := range evts {
				require.NoError(t, p.Produce(ctx, evt))
			}
			for range evts {
				require.NoError(t, c.Consume(ctx))
			}
			require.NoError(t, c.Wait(ctx))
			assert.Equal(t, tc.wantIDs, gen.sorted())
			require.NoError(t, c.Stop(ctx))
		})
	}
}
