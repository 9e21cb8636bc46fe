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

// Package acode 作业码。作业码是 6 位、人可以手敲的标识符，
// 学生在聊天工具里面看到之后再输入，所以要尽量避开肉眼容易看错的字符。
package acode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	// Length 作业码长度
	Length = 6
	// DefaultMaxAttempts GenerateUnique 默认的重试次数
	DefaultMaxAttempts = 10
	// DefaultMaxDistance SuggestSimilar 默认的最大编辑距离
	DefaultMaxDistance = 2

	maxSuggestions = 3
)

// Alphabet 去掉了 O、I、L。
// O 和 I 容易和 0、1 混淆；L 在 Normalize 里面会被改写成 1，
// 如果允许生成 L，那么用户照抄输入之后反而匹配不上。
const Alphabet = "0123456789ABCDEFGHJKMNPQRSTUVWXYZ"

var ErrCodeGenerationExhausted = errors.New("作业码生成重试次数耗尽")

var confusable = strings.NewReplacer("O", "0", "I", "1", "L", "1")

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generate 生成一个作业码，不保证唯一
func Generate() string {
	var sb strings.Builder
	sb.Grow(Length)
	for i := 0; i < Length; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			// crypto/rand 在正常的系统上不会失败
			panic(fmt.Errorf("读取随机数失败: %w", err))
		}
		sb.WriteByte(Alphabet[n.Int64()])
	}
	return sb.String()
}

// ExistsFunc 判断作业码是否已经被占用，一般是查数据库
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// GenerateUnique 不断生成候选作业码，直到 exists 返回 false。
// 最多调用 maxAttempts 次 exists，maxAttempts <= 0 时使用 DefaultMaxAttempts。
// 33^6（约 13 亿）的空间下冲突概率很低，有限次重试就够了，不需要全局锁。
func GenerateUnique(ctx context.Context, exists ExistsFunc, maxAttempts int) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	for i := 0; i < maxAttempts; i++ {
		code := Generate()
		used, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("检测作业码 %s 是否存在失败: %w", code, err)
		}
		if !used {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: 尝试了 %d 次", ErrCodeGenerationExhausted, maxAttempts)
}

// Validate 只接受已经规范化的作业码，大小写敏感
func Validate(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(Alphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}

// Normalize 去空格、转大写、替换易混淆字符，然后校验。
// 所有外部输入的作业码都要先经过这里。
func Normalize(input string) (string, bool) {
	code := confusable.Replace(strings.ToUpper(strings.TrimSpace(input)))
	if !Validate(code) {
		return "", false
	}
	return code, true
}

// SuggestSimilar 在 pool 里面找和 input 最接近的作业码，最多返回 3 个。
// 按编辑距离升序排列，距离相同的保持 pool 里面的顺序。
func SuggestSimilar(input string, pool []string, maxDistance int) []string {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistance
	}
	// 这里不能用 Normalize，因为输入本来就可能不合法
	target := confusable.Replace(strings.ToUpper(strings.TrimSpace(input)))
	if target == "" {
		return nil
	}
	// 距离只有 0..maxDistance 这几种，按桶收集天然就是稳定的
	buckets := make([][]string, maxDistance+1)
	for _, candidate := range pool {
		d := distance(target, candidate)
		if d <= maxDistance {
			buckets[d] = append(buckets[d], candidate)
		}
	}
	res := make([]string, 0, maxSuggestions)
	for _, bucket := range buckets {
		for _, candidate := range bucket {
			if len(res) == maxSuggestions {
				return res
			}
			res = append(res, candidate)
		}
	}
	return res
}

// distance Levenshtein 编辑距离
func distance(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
