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
	"context"
	"fmt"
	"strings"
)

var _ Fetcher = (*ContentFetcher)(nil)

type ContentFetcher struct {
	cfg    Config
	github *githubWalker
	page   *pageFetcher
}

func NewContentFetcher(cfg Config) *ContentFetcher {
	cfg = cfg.withDefaults()
	return &ContentFetcher{
		cfg:    cfg,
		github: newGitHubWalker(cfg),
		page:   newPageFetcher(cfg),
	}
}

func (f *ContentFetcher) Fetch(ctx context.Context, kind Kind, ref Reference, opts Options) (Content, error) {
	opts = f.cfg.limits(opts)
	switch kind {
	case KindGitHub:
		if strings.TrimSpace(ref.URL) == "" {
			return Content{}, fmt.Errorf("%w: 缺少仓库地址", ErrInvalidRepositoryURL)
		}
		return f.github.Walk(ctx, ref.URL, opts)
	case KindBlog, KindCode:
		if strings.TrimSpace(ref.Content) != "" {
			return f.inline(kind, ref.Content, opts)
		}
		if strings.TrimSpace(ref.URL) == "" {
			return Content{}, fmt.Errorf("%w: 内容和地址不能同时为空", ErrInvalidReference)
		}
		return f.page.Fetch(ctx, kind, ref.URL)
	default:
		return Content{}, fmt.Errorf("%w: 未知的提交类型 %s", ErrContentFetchFailed, kind)
	}
}

// inline 直接提交的内容不做任何转换，只检查大小
func (f *ContentFetcher) inline(kind Kind, content string, opts Options) (Content, error) {
	size := int64(len(content))
	if size > opts.MaxTotalSize {
		return Content{}, fmt.Errorf("%w: %d > %d", ErrContentTooLarge, size, opts.MaxTotalSize)
	}
	if kind == KindCode {
		return inlineContent(File{Path: "inline", Content: content, Size: size}), nil
	}
	return Content{
		Content: content,
		Metadata: Metadata{
			TotalSize: size,
		},
	}, nil
}
