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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepositoryURL(t *testing.T) {
	testCases := []struct {
		name    string
		url     string
		want    Repository
		wantErr error
	}{
		{
			name: "只有仓库",
			url:  "https://github.com/ecodeclub/ekit",
			want: Repository{Owner: "ecodeclub", Name: "ekit"},
		},
		{
			name: "带 .git 后缀",
			url:  "https://github.com/ecodeclub/ekit.git",
			want: Repository{Owner: "ecodeclub", Name: "ekit"},
		},
		{
			name: "末尾斜杠",
			url:  "https://github.com/ecodeclub/ekit/",
			want: Repository{Owner: "ecodeclub", Name: "ekit"},
		},
		{
			name: "指定分支",
			url:  "https://github.com/ecodeclub/ekit/tree/dev",
			want: Repository{Owner: "ecodeclub", Name: "ekit", Branch: "dev"},
		},
		{
			name: "指定分支和子目录",
			url:  "https://www.github.com/ecodeclub/ekit/tree/main/syncx/atomicx/",
			want: Repository{Owner: "ecodeclub", Name: "ekit", Branch: "main", Path: "syncx/atomicx"},
		},
		{
			name:    "不是 GitHub",
			url:     "https://gitlab.com/ecodeclub/ekit",
			wantErr: ErrInvalidRepositoryURL,
		},
		{
			name:    "缺少仓库名",
			url:     "https://github.com/ecodeclub",
			wantErr: ErrInvalidRepositoryURL,
		},
		{
			name:    "不是仓库页面",
			url:     "https://github.com/ecodeclub/ekit/issues/1",
			wantErr: ErrInvalidRepositoryURL,
		},
		{
			name:    "非法的名字",
			url:     "https://github.com/../ekit",
			wantErr: ErrInvalidRepositoryURL,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo, err := ParseRepositoryURL(tc.url)
			assert.ErrorIs(t, err, tc.wantErr)
			if err != nil {
				// 仓库地址错误也是获取内容失败的一种
				assert.ErrorIs(t, err, ErrContentFetchFailed)
				return
			}
			assert.Equal(t, tc.want, repo)
		})
	}
}

type fakeGitHub struct {
	*httptest.Server
	repoCalls  atomic.Int32
	fileStatus int
	// treeSizes 覆盖目录里面登记的文件大小
	treeSizes map[string]int
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	fake := &fakeGitHub{fileStatus: http.StatusOK}
	files := map[string]string{
		"README.md":   "# demo",
		"src/main.go": "package main\n\nfunc main() {}\n",
		"src/util.go": "package main\n",
		"bin.dat":     "ab\x00cd",
	}
	writeJSON := func(w http.ResponseWriter, val any) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(val))
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/{owner}/{repo}", func(w http.ResponseWriter, r *http.Request) {
		fake.repoCalls.Add(1)
		if r.PathValue("repo") != "demo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"default_branch": "main"})
	})
	mux.HandleFunc("GET /repos/{owner}/{repo}/commits/{ref}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"sha": "abc123",
			"commit": map[string]any{
				"message": "init",
				"author":  map[string]any{"name": "Tom", "date": "2024-01-02T03:04:05Z"},
			},
		})
	})
	mux.HandleFunc("GET /repos/{owner}/{repo}/git/trees/{ref}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		tree := []map[string]any{
			{"path": "src", "type": "tree"},
			{"path": "src/util.go", "type": "blob", "size": 13},
			{"path": "README.md", "type": "blob", "size": 6},
			{"path": "src/main.go", "type": "blob", "size": 29},
			{"path": "node_modules/x/index.js", "type": "blob", "size": 10},
			{"path": ".env", "type": "blob", "size": 5},
			{"path": "assets/logo.png", "type": "blob", "size": 50},
			{"path": "big.txt", "type": "blob", "size": 2000},
			{"path": "bin.dat", "type": "blob", "size": 5},
		}
		for _, e := range tree {
			if size, ok := fake.treeSizes[e["path"].(string)]; ok {
				e["size"] = size
			}
		}
		writeJSON(w, map[string]any{
			"truncated": false,
			"tree":      tree,
		})
	})
	mux.HandleFunc("GET /repos/{owner}/{repo}/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.github.raw", r.Header.Get("Accept"))
		assert.Equal(t, "main", r.URL.Query().Get("ref"))
		if fake.fileStatus != http.StatusOK {
			w.WriteHeader(fake.fileStatus)
			return
		}
		content, ok := files[r.PathValue("path")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(content))
	})
	fake.Server = httptest.NewServer(mux)
	t.Cleanup(fake.Close)
	return fake
}

func TestContentFetcher_GitHub(t *testing.T) {
	fake := newFakeGitHub(t)
	f := NewContentFetcher(Config{
		GitHubBaseURL: fake.URL,
		MaxFileSize:   1000,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	content, err := f.Fetch(ctx, KindGitHub, Reference{URL: "https://github.com/ecodeclub/demo"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), fake.repoCalls.Load())
	assert.Equal(t, "ecodeclub/demo", content.Title)

	paths := make([]string, 0, len(content.Files))
	for _, file := range content.Files {
		paths = append(paths, file.Path)
	}
	assert.Equal(t, []string{"README.md", "src/main.go", "src/util.go"}, paths)
	assert.Equal(t, "Go", content.Files[1].Language)
	assert.Contains(t, content.Content, "### src/main.go\n```go\npackage main")

	meta := content.Metadata
	assert.Equal(t, 3, meta.TotalFiles)
	assert.Equal(t, int64(6+29+13), meta.TotalSize)
	assert.Equal(t, map[string]int{"Go": 2, "Markdown": 1}, meta.Languages)
	assert.False(t, meta.Truncated)
	assert.Equal(t, []SkippedFile{
		{Path: "big.txt", Size: 2000, Reason: SkipTooLarge},
		{Path: "bin.dat", Size: 5, Reason: SkipBinary},
	}, meta.SkippedFiles)
	require.NotNil(t, meta.LastCommit)
	assert.Equal(t, Commit{
		SHA:     "abc123",
		Message: "init",
		Author:  "Tom",
		Date:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}, *meta.LastCommit)

	assert.Equal(t, "ecodeclub/demo\n"+
		"├── src/\n"+
		"│   ├── main.go\n"+
		"│   └── util.go\n"+
		"└── README.md\n", content.Structure)
}

func TestContentFetcher_GitHubSubPath(t *testing.T) {
	fake := newFakeGitHub(t)
	f := NewContentFetcher(Config{GitHubBaseURL: fake.URL})
	content, err := f.Fetch(context.Background(), KindGitHub,
		Reference{URL: "https://github.com/ecodeclub/demo/tree/main/src"}, Options{})
	require.NoError(t, err)
	// 指定了分支就不需要查询默认分支
	assert.Equal(t, int32(0), fake.repoCalls.Load())
	assert.Equal(t, 2, content.Metadata.TotalFiles)
	assert.Equal(t, "ecodeclub/demo/src\n├── main.go\n└── util.go\n", content.Structure)
}

func TestContentFetcher_GitHubErrors(t *testing.T) {
	testCases := []struct {
		name       string
		url        string
		fileStatus int
		wantErr    error
	}{
		{name: "地址不合法", url: "https://example.com/a/b", fileStatus: http.StatusOK, wantErr: ErrInvalidReference},
		{name: "仓库不存在", url: "https://github.com/ecodeclub/missing", fileStatus: http.StatusOK, wantErr: ErrInvalidReference},
		{name: "拉取文件失败", url: "https://github.com/ecodeclub/demo", fileStatus: http.StatusForbidden, wantErr: ErrContentFetchFailed},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake := newFakeGitHub(t)
			fake.fileStatus = tc.fileStatus
			f := NewContentFetcher(Config{GitHubBaseURL: fake.URL})
			content, err := f.Fetch(context.Background(), KindGitHub, Reference{URL: tc.url}, Options{})
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, ErrContentFetchFailed)
			// 失败的时候不会返回任何占位内容
			assert.Equal(t, Content{}, content)
		})
	}
}

func TestContentFetcher_GitHubNothingLeft(t *testing.T) {
	fake := newFakeGitHub(t)
	f := NewContentFetcher(Config{GitHubBaseURL: fake.URL})
	_, err := f.Fetch(context.Background(), KindGitHub,
		Reference{URL: "https://github.com/ecodeclub/demo"}, Options{MaxFileSize: 1})
	assert.ErrorIs(t, err, ErrNoReviewableContent)
	assert.ErrorIs(t, err, ErrContentFetchFailed)
}

func TestContentFetcher_GitHubUnderstatedSize(t *testing.T) {
	fake := newFakeGitHub(t)
	// 目录里面登记的大小比实际内容小
	fake.treeSizes = map[string]int{"src/main.go": 10}
	f := NewContentFetcher(Config{GitHubBaseURL: fake.URL})
	content, err := f.Fetch(context.Background(), KindGitHub,
		Reference{URL: "https://github.com/ecodeclub/demo"}, Options{MaxFileSize: 20})
	require.NoError(t, err)

	paths := make([]string, 0, len(content.Files))
	for _, file := range content.Files {
		paths = append(paths, file.Path)
	}
	assert.Equal(t, []string{"README.md", "src/util.go"}, paths)
	assert.Contains(t, content.Metadata.SkippedFiles,
		SkippedFile{Path: "src/main.go", Size: 10, Reason: SkipTooLarge})
}

func TestSelectFiles(t *testing.T) {
	entries := []treeEntry{
		{Path: "a.go", Type: "blob", Size: 40},
		{Path: "b.go", Type: "blob", Size: 40},
		{Path: "c.go", Type: "blob", Size: 40},
		{Path: "d.go", Type: "blob", Size: 10},
		{Path: "huge.go", Type: "blob", Size: 500},
		{Path: "pkg", Type: "tree"},
		{Path: "pkg/e.go", Type: "blob", Size: 1},
	}
	testCases := []struct {
		name string
		sub  string
		opts Options

		wantSelected []string
		wantSkipped  []SkippedFile
		wantLimited  bool
	}{
		{
			name:         "没有触顶",
			opts:         Options{MaxFileSize: 1000, MaxTotalSize: 1000, MaxFiles: 10},
			wantSelected: []string{"a.go", "b.go", "c.go", "d.go", "huge.go", "pkg/e.go"},
		},
		{
			name:         "单文件超限",
			opts:         Options{MaxFileSize: 100, MaxTotalSize: 1000, MaxFiles: 10},
			wantSelected: []string{"a.go", "b.go", "c.go", "d.go", "pkg/e.go"},
			wantSkipped:  []SkippedFile{{Path: "huge.go", Size: 500, Reason: SkipTooLarge}},
		},
		{
			name:         "总大小触顶",
			opts:         Options{MaxFileSize: 100, MaxTotalSize: 90, MaxFiles: 10},
			wantSelected: []string{"a.go", "b.go", "d.go"},
			wantSkipped: []SkippedFile{
				{Path: "c.go", Size: 40, Reason: SkipTotalLimit},
				{Path: "huge.go", Size: 500, Reason: SkipTooLarge},
				{Path: "pkg/e.go", Size: 1, Reason: SkipTotalLimit},
			},
			wantLimited: true,
		},
		{
			name:         "文件数量触顶",
			opts:         Options{MaxFileSize: 1000, MaxTotalSize: 1000, MaxFiles: 2},
			wantSelected: []string{"a.go", "b.go"},
			wantSkipped: []SkippedFile{
				{Path: "c.go", Size: 40, Reason: SkipFileLimit},
				{Path: "d.go", Size: 10, Reason: SkipFileLimit},
				{Path: "huge.go", Size: 500, Reason: SkipFileLimit},
				{Path: "pkg/e.go", Size: 1, Reason: SkipFileLimit},
			},
			wantLimited: true,
		},
		{
			name:         "子目录",
			sub:          "pkg",
			opts:         Options{MaxFileSize: 1000, MaxTotalSize: 1000, MaxFiles: 10},
			wantSelected: []string{"pkg/e.go"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			selected, skipped, limited := selectFiles(entries, tc.sub, tc.opts)
			paths := make([]string, 0, len(selected))
			for _, e := range selected {
				paths = append(paths, e.Path)
			}
			assert.Equal(t, tc.wantSelected, paths)
			assert.Equal(t, tc.wantSkipped, skipped)
			assert.Equal(t, tc.wantLimited, limited)
		})
	}
}
