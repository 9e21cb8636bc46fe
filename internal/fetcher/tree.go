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

package fetcher

import (
	"sort"
	"strings"
)

type treeNode struct {
	name     string
	children map[string]*treeNode
}

// buildTree 把文件路径列表渲染成类似 tree 命令的输出，目录排在文件前面
func buildTree(root string, paths []string) string {
	top := &treeNode{name: root, children: map[string]*treeNode{}}
	for _, p := range paths {
		cur := top
		for _, seg := range strings.Split(p, "/") {
			next, ok := cur.children[seg]
			if !ok {
				next = &treeNode{name: seg, children: map[string]*treeNode{}}
				cur.children[seg] = next
			}
			cur = next
		}
	}
	var sb strings.Builder
	sb.WriteString(top.name)
	sb.WriteByte('\n')
	writeChildren(&sb, top, "")
	return sb.String()
}

func writeChildren(sb *strings.Builder, n *treeNode, indent string) {
	children := make([]*treeNode, 0, len(n.children))
	for _, c := range n.children {
		children = append(children, c)
	}
	sort.Slice(children, func(i, j int) bool {
		di, dj := len(children[i].children) > 0, len(children[j].children) > 0
		if di != dj {
			return di
		}
		return children[i].name < children[j].name
	})
	for i, c := range children {
		last := i == len(children)-1
		branch, nextIndent := "├── ", indent+"│   "
		if last {
			branch, nextIndent = "└── ", indent+"    "
		}
		sb.WriteString(indent)
		sb.WriteString(branch)
		sb.WriteString(c.name)
		if len(c.children) > 0 {
			sb.WriteByte('/')
		}
		sb.WriteByte('\n')
		writeChildren(sb, c, nextIndent)
	}
}
