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
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// pageFetcher 拉取单个地址，博客和代码都走这里
type pageFetcher struct {
	client  *resty.Client
	maxSize int64
}

func newPageFetcher(cfg Config) *pageFetcher {
	return &pageFetcher{
		client: resty.New().SetTimeout(cfg.Timeout).
			SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
			SetResponseBodyLimit(int(cfg.MaxPageSize)),
		maxSize: cfg.MaxPageSize,
	}
}

func (p *pageFetcher) Fetch(ctx context.Context, kind Kind, rawURL string) (Content, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Content{}, fmt.Errorf("%w: %s", ErrInvalidReference, rawURL)
	}
	resp, err := p.client.R().SetContext(ctx).Get(u.String())
	if errors.Is(err, resty.ErrResponseBodyTooLarge) {
		return Content{}, fmt.Errorf("%w: %s 超过 %d: %w", ErrContentTooLarge, u.Host, p.maxSize, err)
	}
	if err = checkResp(resp, err, "访问 "+u.Host); err != nil {
		return Content{}, err
	}
	body := resp.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return Content{}, fmt.Errorf("%w: %s 没有内容", ErrNoReviewableContent, u.Host)
	}

	if kind == KindCode {
		if looksBinary(body) {
			return Content{}, fmt.Errorf("%w: %s 不是文本文件", ErrNoReviewableContent, u.Path)
		}
		f := File{
			Path:     u.Path,
			Content:  string(body),
			Language: detectLanguage(u.Path),
			Size:     int64(len(body)),
		}
		return inlineContent(f), nil
	}

	var title string
	text := string(body)
	if strings.Contains(resp.Header().Get("Content-Type"), "html") {
		title, text, err = htmlToText(body)
		if err != nil {
			return Content{}, fmt.Errorf("%w: 解析页面失败: %w", ErrContentFetchFailed, err)
		}
	}
	if strings.TrimSpace(text) == "" {
		return Content{}, fmt.Errorf("%w: %s 没有正文", ErrNoReviewableContent, u.Host)
	}
	return Content{
		Title:   title,
		Content: text,
		Metadata: Metadata{
			TotalSize: int64(len(text)),
		},
	}, nil
}

// inlineContent 单个文件的内容
func inlineContent(f File) Content {
	meta := Metadata{
		TotalFiles: 1,
		TotalSize:  f.Size,
	}
	if f.Language != "" {
		meta.Languages = map[string]int{f.Language: 1}
	}
	return Content{
		Content:  f.Content,
		Files:    []File{f},
		Metadata: meta,
	}
}

// 这些元素里面的文字对评审没有意义
var skippedElements = map[atom.Atom]struct{}{
	atom.Script: {}, atom.Style: {}, atom.Noscript: {}, atom.Template: {},
	atom.Svg: {}, atom.Iframe: {}, atom.Nav: {}, atom.Footer: {}, atom.Title: {},
}

var blockElements = map[atom.Atom]struct{}{
	atom.P: {}, atom.Div: {}, atom.Br: {}, atom.Li: {}, atom.Pre: {}, atom.Blockquote: {},
	atom.H1: {}, atom.H2: {}, atom.H3: {}, atom.H4: {}, atom.H5: {}, atom.H6: {},
	atom.Tr: {}, atom.Section: {}, atom.Article: {}, atom.Header: {},
}

// htmlToText 提取 <title> 和正文文字，块级元素之间换行
func htmlToText(data []byte) (string, string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", "", err
	}
	var (
		title string
		sb    strings.Builder
		walk  func(n *html.Node)
	)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.DataAtom == atom.Title && title == "" && n.FirstChild != nil {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			if _, ok := skippedElements[n.DataAtom]; ok {
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				sb.WriteString(text)
				sb.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			if _, ok := blockElements[n.DataAtom]; ok {
				sb.WriteByte('\n')
			}
		}
	}
	walk(doc)
	return title, normalizeLines(sb.String()), nil
}

// normalizeLines 去掉每行首尾空白和空行
func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	res := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			res = append(res, l)
		}
	}
	return strings.Join(res, "\n")
}
