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

package mqx

import (
	"context"
	"testing"
	"time"

	"github.com/ecodeclub/mq-api/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvt struct {
	ID    string `json:"id"`
	Value int64  `json:"value"`
}

func TestGeneralProducerConsumer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q := memory.NewMQ()
	require.NoError(t, q.CreateTopic(ctx, "test_events", 1))

	received := make(chan testEvt, 3)
	c, err := NewGeneralConsumer[testEvt](q, "test_events", "test_group",
		func(ctx context.Context, evt testEvt) error {
			received <- evt
			return nil
		})
	require.NoError(t, err)
	c.Start(ctx)

	p, err := NewGeneralProducer[testEvt](q, "test_events")
	require.NoError(t, err)
	p = p.WithKeyFunc(func(evt testEvt) string { return evt.ID })

	want := []testEvt{{ID: "a", Value: 1}, {ID: "b", Value: 2}}
	for _, evt := range want {
		require.NoError(t, p.Produce(ctx, evt))
	}
	for _, evt := range want {
		select {
		case got := <-received:
			assert.Equal(t, evt, got)
		case <-ctx.Done():
			t.Fatal("超时")
		}
	}
}
