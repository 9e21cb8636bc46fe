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

package snowflake

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
)

var ErrExceedNode = errors.New("node超出限制")

// +----------------------------------------------------------------+
// | 1 Bit Unused | 41 Bit Timestamp | 10 Bit NodeID | 12 Bit Sequence |
// +----------------------------------------------------------------+

const maxNode int64 = -1 ^ (-1 << 10)

// IDGenerator 提交记录的 ID 生成器。
// 多实例部署的时候，每个实例的 node 必须不同。
type IDGenerator interface {
	Generate() ID
}

type NodeIDGenerator struct {
	node *snowflake.Node
}

func NewNodeIDGenerator(nodeID int64) (*NodeIDGenerator, error) {
	if nodeID < 0 || nodeID > maxNode {
		return nil, fmt.Errorf("%w: node=%d", ErrExceedNode, nodeID)
	}
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, errors.Wrap(err, "创建 snowflake 节点失败")
	}
	return &NodeIDGenerator{node: n}, nil
}

func (g *NodeIDGenerator) Generate() ID {
	return ID(g.node.Generate())
}

type ID int64

func (f ID) Int64() int64 {
	return int64(f)
}

func (f ID) Node() int64 {
	return snowflake.ID(f).Node()
}

// Time 生成 ID 的时间，精确到毫秒
func (f ID) Time() time.Time {
	return time.UnixMilli(snowflake.ID(f).Time())
}
