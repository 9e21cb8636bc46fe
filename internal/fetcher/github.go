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
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gotomicro/ego/core/elog"
	"golang.org/x/sync/errgroup"
)

var repoURLExpr = regexp.MustCompile(
	`^https?://(?:www\.)?github\.com/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?(?:/tree/([^/]+)(?:/(.*?))?)?/?$`)

type Repository struct {
	Owner  string
	Name   string
	Branch string
	// Path 只看这个子目录，空字符串表示整个仓库
	Path string
}

// ParseRepositoryURL 支持
// https://github.com/{owner}/{repo}[.git][/tree/{branch}[/{path}]]
func ParseRepositoryURL(raw string) (Repository, error) {
	matches := repoURLExpr.FindStringSubmatch(strings.TrimSpace(raw))
	if matches == nil {
		return Repository{}, fmt.Errorf("%w: %s", ErrInvalidRepositoryURL, raw)
	}
	repo := Repository{
		Owner:  matches[1],
		Name:   matches[2],
		Branch: matches[3],
		Path:   strings.Trim(matches[4], "/"),
	}
	if repo.Owner == "." || repo.Owner == ".." || repo.Name == "." || repo.Name == ".." {
		return Repository{}, fmt.Errorf("%w: %s", ErrInvalidRepositoryURL, raw)
	}
	return repo, nil
}

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

type githubWalker struct {
	client *resty.Client
	cfg    Config
	logger *elog.Component
}

func newGitHubWalker(cfg Config) *githubWalker {
	client := resty.New().
		SetBaseURL(cfg.GitHubBaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", "2022-11-28")
	if cfg.GitHubToken != "" {
		client.SetAuthToken(cfg.GitHubToken)
	}
	return &githubWalker{
		client: client,
		cfg:    cfg,
		logger: elog.DefaultLogger,
	}
}

func (w *githubWalker) Walk(ctx context.Context, rawURL string, opts Options) (Content, error) {
	repo, err := ParseRepositoryURL(rawURL)
	if err != nil {
		return Content{}, err
	}
	if repo.Branch == "" {
		repo.Branch, err = w.defaultBranch(ctx, repo)
		if err != nil {
			return Content{}, err
		}
	}
	logger := w.logger.With(elog.String("repo", repo.Owner+"/"+repo.Name),
		elog.String("branch", repo.Branch))

	var meta Metadata
	commit, err := w.lastCommit(ctx, repo)
	if err != nil {
		// 最后一次提交只是参考信息，拿不到不影响评审
		logger.Warn("查询最后一次提交失败", elog.FieldErr(err))
	} else {
		meta.LastCommit = &commit
	}

	entries, truncated, err := w.tree(ctx, repo)
	if err != nil {
		return Content{}, err
	}
	selected, skipped, limited := selectFiles(entries, repo.Path, opts)
	meta.SkippedFiles = skipped
	meta.Truncated = truncated || limited
	if len(selected) == 0 {
		return Content{}, fmt.Errorf("%w: 仓库 %s/%s 中没有可以评审的文件",
			ErrNoReviewableContent, repo.Owner, repo.Name)
	}

	files, err := w.fetchFiles(ctx, repo, selected, opts, &meta)
	if err != nil {
		return Content{}, err
	}
	if len(files) == 0 {
		return Content{}, fmt.Errorf("%w: 仓库 %s/%s 中没有可以评审的文件",
			ErrNoReviewableContent, repo.Owner, repo.Name)
	}

	root := repo.Owner + "/" + repo.Name
	if repo.Path != "" {
		root = root + "/" + repo.Path
	}
	paths := make([]string, 0, len(files))
	meta.Languages = make(map[string]int)
	var sb strings.Builder
	for _, f := range files {
		paths = append(paths, relativePath(f.Path, repo.Path))
		meta.TotalSize += f.Size
		if f.Language != "" {
			meta.Languages[f.Language]++
		}
		fmt.Fprintf(&sb, "### %s\n```%s\n%s\n```\n\n", f.Path, strings.ToLower(f.Language), f.Content)
	}
	meta.TotalFiles = len(files)
	logger.Debug("拉取仓库内容成功",
		elog.Int("files", meta.TotalFiles),
		elog.Int64("size", meta.TotalSize),
		elog.Int("skipped", len(meta.SkippedFiles)))
	return Content{
		Title:     root,
		Content:   sb.String(),
		Structure: buildTree(root, paths),
		Files:     files,
		Metadata:  meta,
	}, nil
}

func (w *githubWalker) defaultBranch(ctx context.Context, repo Repository) (string, error) {
	var res struct {
		DefaultBranch string `json:"default_branch"`
	}
	resp, err := w.client.R().SetContext(ctx).
		SetPathParams(repoParams(repo)).
		SetResult(&res).
		Get("/repos/{owner}/{repo}")
	if err = checkResp(resp, err, "查询仓库信息"); err != nil {
		return "", err
	}
	if res.DefaultBranch == "" {
		return "", fmt.Errorf("%w: 仓库 %s/%s 没有默认分支", ErrNoReviewableContent, repo.Owner, repo.Name)
	}
	return res.DefaultBranch, nil
}

func (w *githubWalker) lastCommit(ctx context.Context, repo Repository) (Commit, error) {
	var res struct {
		SHA    string `json:"sha"`
		Commit struct {
			Message string `json:"message"`
			Author  struct {
				Name string    `json:"name"`
				Date time.Time `json:"date"`
			} `json:"author"`
		} `json:"commit"`
	}
	resp, err := w.client.R().SetContext(ctx).
		SetPathParams(repoParams(repo)).
		SetRawPathParam("ref", escapePath(repo.Branch)).
		SetResult(&res).
		Get("/repos/{owner}/{repo}/commits/{ref}")
	if err = checkResp(resp, err, "查询最后一次提交"); err != nil {
		return Commit{}, err
	}
	return Commit{
		SHA:     res.SHA,
		Message: res.Commit.Message,
		Author:  res.Commit.Author.Name,
		Date:    res.Commit.Author.Date,
	}, nil
}

// tree 返回整个仓库的文件列表，GitHub 在文件太多的时候会截断
func (w *githubWalker) tree(ctx context.Context, repo Repository) ([]treeEntry, bool, error) {
	var res struct {
		Tree      []treeEntry `json:"tree"`
		Truncated bool        `json:"truncated"`
	}
	resp, err := w.client.R().SetContext(ctx).
		SetPathParams(repoParams(repo)).
		SetRawPathParam("ref", escapePath(repo.Branch)).
		SetQueryParam("recursive", "1").
		SetResult(&res).
		Get("/repos/{owner}/{repo}/git/trees/{ref}")
	if err = checkResp(resp, err, "查询仓库目录"); err != nil {
		return nil, false, err
	}
	return res.Tree, res.Truncated, nil
}

// fetchFiles 并发拉取文件内容，任何一个失败整体失败。
// 二进制文件和实际大小超限的文件会被跳过。
func (w *githubWalker) fetchFiles(ctx context.Context, repo Repository,
	selected []treeEntry, opts Options, meta *Metadata) ([]File, error) {
	contents := make([][]byte, len(selected))
	tooLarge := make([]bool, len(selected))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.cfg.Concurrency)
	for i, e := range selected {
		eg.Go(func() error {
			data, err := w.rawContent(ctx, repo, e.Path, opts.MaxFileSize)
			if errors.Is(err, resty.ErrResponseBodyTooLarge) {
				// 目录里面的大小和实际内容对不上
				tooLarge[i] = true
				return nil
			}
			if err != nil {
				return err
			}
			contents[i] = data
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	files := make([]File, 0, len(selected))
	for i, e := range selected {
		data := contents[i]
		size := int64(len(data))
		switch {
		case tooLarge[i]:
			meta.SkippedFiles = append(meta.SkippedFiles, SkippedFile{Path: e.Path, Size: e.Size, Reason: SkipTooLarge})
		case looksBinary(data):
			meta.SkippedFiles = append(meta.SkippedFiles, SkippedFile{Path: e.Path, Size: size, Reason: SkipBinary})
		case size > opts.MaxFileSize:
			meta.SkippedFiles = append(meta.SkippedFiles, SkippedFile{Path: e.Path, Size: size, Reason: SkipTooLarge})
		default:
			files = append(files, File{
				Path:     e.Path,
				Content:  string(data),
				Language: detectLanguage(e.Path),
				Size:     size,
			})
		}
	}
	return files, nil
}

func (w *githubWalker) rawContent(ctx context.Context, repo Repository, p string, limit int64) ([]byte, error) {
	resp, err := w.client.R().SetContext(ctx).
		SetResponseBodyLimit(int(limit)).
		SetHeader("Accept", "application/vnd.github.raw").
		SetPathParams(repoParams(repo)).
		SetRawPathParam("path", escapePath(p)).
		SetQueryParam("ref", repo.Branch).
		Get("/repos/{owner}/{repo}/contents/{path}")
	if err = checkResp(resp, err, "拉取文件 "+p); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// selectFiles 按路径排序之后依次挑选，超过单文件上限的跳过，
// 超过文件数量或者总大小上限的也跳过，并且标记为不完整。
func selectFiles(entries []treeEntry, sub string, opts Options) ([]treeEntry, []SkippedFile, bool) {
	candidates := make([]treeEntry, 0, len(entries))
	for _, e := range entries {
		if e.Type != "blob" {
			continue
		}
		if sub != "" && e.Path != sub && !strings.HasPrefix(e.Path, sub+"/") {
			continue
		}
		if excluded(e.Path) {
			continue
		}
		candidates = append(candidates, e)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Path < candidates[j].Path
	})

	var (
		selected []treeEntry
		skipped  []SkippedFile
		total    int64
		limited  bool
	)
	for _, e := range candidates {
		switch {
		case e.Size > opts.MaxFileSize:
			skipped = append(skipped, SkippedFile{Path: e.Path, Size: e.Size, Reason: SkipTooLarge})
		case len(selected) >= opts.MaxFiles:
			skipped = append(skipped, SkippedFile{Path: e.Path, Size: e.Size, Reason: SkipFileLimit})
			limited = true
		case total+e.Size > opts.MaxTotalSize:
			skipped = append(skipped, SkippedFile{Path: e.Path, Size: e.Size, Reason: SkipTotalLimit})
			limited = true
		default:
			selected = append(selected, e)
			total += e.Size
		}
	}
	return selected, skipped, limited
}

func relativePath(p, sub string) string {
	if sub == "" || p == sub {
		return p
	}
	return strings.TrimPrefix(p, sub+"/")
}

func repoParams(repo Repository) map[string]string {
	return map[string]string{
		"owner": repo.Owner,
		"repo":  repo.Name,
	}
}

// escapePath 逐段转义，保留路径分隔符
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func checkResp(resp *resty.Response, err error, action string) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrContentFetchFailed, action, err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound || resp.StatusCode() == http.StatusGone:
		return fmt.Errorf("%w: %s 返回 HTTP %d", ErrInvalidReference, action, resp.StatusCode())
	case resp.IsError():
		return fmt.Errorf("%w: %s 返回 HTTP %d", ErrContentFetchFailed, action, resp.StatusCode())
	}
	return nil
}
