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

package acode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code := Generate()
		require.True(t, Validate(code), code)
		// 生成的作业码规范化之后不会变化
		normalized, ok := Normalize(code)
		require.True(t, ok)
		require.Equal(t, code, normalized)
	}
}

func TestGenerateUnique(t *testing.T) {
	testCases := []struct {
		name        string
		exists      func(cnt *int) ExistsFunc
		maxAttempts int

		wantCalls int
		wantErr   error
	}{
		{
			name: "第一次就成功",
			exists: func(cnt *int) ExistsFunc {
				return func(ctx context.Context, code string) (bool, error) {
					*cnt++
					return false, nil
				}
			},
			maxAttempts: 10,
			wantCalls:   1,
		},
		{
			name: "冲突两次之后成功",
			exists: func(cnt *int) ExistsFunc {
				return func(ctx context.Context, code string) (bool, error) {
					*cnt++
					return *cnt <= 2, nil
				}
			},
			maxAttempts: 10,
			wantCalls:   3,
		},
		{
			name: "一直冲突",
			exists: func(cnt *int) ExistsFunc {
				return func(ctx context.Context, code string) (bool, error) {
					*cnt++
					return true, nil
				}
			},
			maxAttempts: 5,
			wantCalls:   5,
			wantErr:     ErrCodeGenerationExhausted,
		},
		{
			name: "默认次数",
			exists: func(cnt *int) ExistsFunc {
				return func(ctx context.Context, code string) (bool, error) {
					*cnt++
					return true, nil
				}
			},
			wantCalls: DefaultMaxAttempts,
			wantErr:   ErrCodeGenerationExhausted,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cnt := 0
			exists := tc.exists(&cnt)
			code, err := GenerateUnique(context.Background(), exists, tc.maxAttempts)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.wantCalls, cnt)
			if err != nil {
				return
			}
			assert.True(t, Validate(code))
		})
	}
}

func TestGenerateUnique_NeverReturnsUsedCode(t *testing.T) {
	used := map[string]bool{}
	exists := func(ctx context.Context, code string) (bool, error) {
		// 一半的候选都认为已经被占用
		if len(used)%2 == 0 {
			used[code] = true
			return true, nil
		}
		return used[code], nil
	}
	for i := 0; i < 100; i++ {
		code, err := GenerateUnique(context.Background(), exists, 10)
		require.NoError(t, err)
		require.False(t, used[code])
		used[code] = true
	}
}

func TestGenerateUnique_ExistsError(t *testing.T) {
	mockErr := errors.New("db error")
	_, err := GenerateUnique(context.Background(), func(ctx context.Context, code string) (bool, error) {
		return false, mockErr
	}, 3)
	assert.ErrorIs(t, err, mockErr)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name string
		code string
		want bool
	}{
		{name: "合法", code: "A8C1Z3", want: true},
		{name: "小写", code: "a8c1z3", want: false},
		{name: "太短", code: "A8C1Z", want: false},
		{name: "太长", code: "A8C1Z34", want: false},
		{name: "包含 O", code: "ABCO12", want: false},
		{name: "包含 I", code: "ABCI12", want: false},
		{name: "包含 L", code: "ABCL12", want: false},
		{name: "特殊字符", code: "AB-123", want: false},
		{name: "空串", code: "", want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Validate(tc.code))
		})
	}
}

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		want   string
		wantOk bool
	}{
		{name: "只需要转大写", input: "a8c1z3", want: "A8C1Z3", wantOk: true},
		{name: "替换易混淆字符", input: "O0I1L1", want: "001111", wantOk: true},
		{name: "前后空格", input: "  abc123 \n", want: "ABC123", wantOk: true},
		{name: "小写的易混淆字符", input: "abcolj", want: "ABC01J", wantOk: true},
		{name: "长度不对", input: "abc12", wantOk: false},
		{name: "非法字符", input: "abc12!", wantOk: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, ok := Normalize(tc.input)
			assert.Equal(t, tc.wantOk, ok)
			assert.Equal(t, tc.want, code)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, ok := Normalize(Generate())
		require.True(t, ok)
		again, ok := Normalize(code)
		require.True(t, ok)
		require.Equal(t, code, again)
	}
}

func TestSuggestSimilar(t *testing.T) {
	pool := []string{"ABC123", "ABC124", "XYZ999", "ABD123", "ABC125", "ZZZ123"}
	testCases := []struct {
		name        string
		input       string
		maxDistance int
		want        []string
	}{
		{
			name:  "完全匹配排在最前面",
			input: "abc123",
			want:  []string{"ABC123", "ABC124", "ABD123"},
		},
		{
			name:  "距离相同保持原有顺序",
			input: "ABC120",
			want:  []string{"ABC123", "ABC124", "ABC125"},
		},
		{
			name:  "易混淆字符先替换",
			input: "ABCl23",
			want:  []string{"ABC123", "ABC124", "ABD123"},
		},
		{
			name:        "超过最大距离",
			input:       "QQQQQQ",
			maxDistance: 2,
			want:        []string{},
		},
		{
			name:  "空输入",
			input: "  ",
			want:  nil,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SuggestSimilar(tc.input, pool, tc.maxDistance))
		})
	}
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 0, distance("ABC", "ABC"))
	assert.Equal(t, 1, distance("ABC", "ABD"))
	assert.Equal(t, 1, distance("ABC", "AB"))
	assert.Equal(t, 3, distance("", "ABC"))
	assert.Equal(t, 2, distance("ABCDEF", "ABDCEF"))
}
