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

// Package fetcher 把提交的引用（博客地址、代码、GitHub 仓库）转换成可以交给 AI 的文本。
// 这里不做持久化也不做缓存。
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrContentFetchFailed 所有的错误都是它的一种，调用方只需要判断这一个
	ErrContentFetchFailed = errors.New("获取提交内容失败")

	// 下面几种是提交本身的问题，重试也不会成功
	ErrInvalidReference     = fmt.Errorf("%w: 提交地址不合法", ErrContentFetchFailed)
	ErrInvalidRepositoryURL = fmt.Errorf("%w: 仓库地址不合法", ErrInvalidReference)
	ErrContentTooLarge      = fmt.Errorf("%w: 内容超过大小上限", ErrContentFetchFailed)
	ErrNoReviewableContent  = fmt.Errorf("%w: 没有可以评审的内容", ErrContentFetchFailed)
)

type Kind string

const (
	KindBlog   Kind = "blog"
	KindCode   Kind = "code"
	KindGitHub Kind = "github"
)

func (k Kind) Valid() bool {
	switch k {
	case KindBlog, KindCode, KindGitHub:
		return true
	default:
		return false
	}
}

// Reference URL 和 Content 至少有一个。
// blog 和 code 有 Content 的时候直接使用，不会访问 URL。
type Reference struct {
	URL     string
	Content string
}

type Content struct {
	Title   string
	Content string
	// Structure 目录树，只有 github 才有
	Structure string
	Files     []File
	Metadata  Metadata
}

type File struct {
	Path     string `json:"path"`
	Content  string `json:"-"`
	Language string `json:"language"`
	Size     int64  `json:"size"`
}

type Metadata struct {
	TotalFiles int            `json:"totalFiles"`
	TotalSize  int64          `json:"totalSize"`
	Languages  map[string]int `json:"languages,omitempty"`
	LastCommit *Commit        `json:"lastCommit,omitempty"`
	// SkippedFiles 因为大小或者数量限制没有纳入的文件
	SkippedFiles []SkippedFile `json:"skippedFiles,omitempty"`
	// Truncated 总大小或者文件数量触顶，内容不完整
	Truncated bool `json:"truncated"`
}

type Commit struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
}

type SkipReason string

const (
	SkipTooLarge   SkipReason = "too_large"
	SkipTotalLimit SkipReason = "total_limit"
	SkipFileLimit  SkipReason = "file_limit"
	SkipBinary     SkipReason = "binary"
)

type SkippedFile struct {
	Path   string     `json:"path"`
	Size   int64      `json:"size"`
	Reason SkipReason `json:"reason"`
}

// Options 单次调用的限制，零值表示使用 Config 里面的配置
type Options struct {
	MaxFileSize  int64
	MaxTotalSize int64
	MaxFiles     int
}

type Config struct {
	GitHubBaseURL string        `yaml:"githubBaseURL"`
	GitHubToken   string        `yaml:"githubToken"`
	Timeout       time.Duration `yaml:"timeout"`
	// MaxFileSize 单个文件的上限
	MaxFileSize int64 `yaml:"maxFileSize"`
	// MaxTotalSize 所有文件加起来的上限
	MaxTotalSize int64 `yaml:"maxTotalSize"`
	MaxFiles     int   `yaml:"maxFiles"`
	// Concurrency 并发拉取文件内容的数量
	Concurrency int `yaml:"concurrency"`
	// MaxPageSize 博客、代码地址的响应上限
	MaxPageSize int64 `yaml:"maxPageSize"`
}

func DefaultConfig() Config {
	return Config{
		GitHubBaseURL: "https://api.github.com",
		Timeout:       15 * time.Second,
		MaxFileSize:   100 << 10,
		MaxTotalSize:  1 << 20,
		MaxFiles:      100,
		Concurrency:   8,
		MaxPageSize:   2 << 20,
	}
}

// withDefaults 没有配置的字段用默认值
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.GitHubBaseURL == "" {
		c.GitHubBaseURL = def.GitHubBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = def.MaxFileSize
	}
	if c.MaxTotalSize <= 0 {
		c.MaxTotalSize = def.MaxTotalSize
	}
	if c.MaxFiles <= 0 {
		c.MaxFiles = def.MaxFiles
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = def.MaxPageSize
	}
	return c
}

func (c Config) limits(opts Options) Options {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = c.MaxFileSize
	}
	if opts.MaxTotalSize <= 0 {
		opts.MaxTotalSize = c.MaxTotalSize
	}
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = c.MaxFiles
	}
	return opts
}

//go:generate mockgen -source=./types.go -destination=./mocks/fetcher.mock.go -package=fetchermocks Fetcher
type Fetcher interface {
	Fetch(ctx context.Context, kind Kind, ref Reference, opts Options) (Content, error)
}
