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
	"path"
	"strings"
)

// 依赖、构建产物、版本管理、IDE
var excludedDirs = map[string]struct{}{
	"node_modules": {}, "vendor": {}, "bower_components": {},
	"dist": {}, "build": {}, "out": {}, "target": {}, "bin": {}, "obj": {},
	".next": {}, ".nuxt": {}, "coverage": {}, ".gradle": {},
	"__pycache__": {}, ".pytest_cache": {}, ".venv": {}, "venv": {},
	".git": {}, ".svn": {}, ".hg": {},
	".idea": {}, ".vscode": {},
}

var excludedFiles = map[string]struct{}{
	"package-lock.json": {}, "yarn.lock": {}, "pnpm-lock.yaml": {},
	"go.sum": {}, "Cargo.lock": {}, "poetry.lock": {}, "Pipfile.lock": {},
	"composer.lock": {}, "Gemfile.lock": {},
	".DS_Store": {}, "Thumbs.db": {},
	"id_rsa": {}, "id_ed25519": {},
}

// 二进制、多媒体、密钥
var excludedExts = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".bmp": {}, ".ico": {}, ".svg": {}, ".webp": {},
	".mp3": {}, ".mp4": {}, ".mov": {}, ".avi": {}, ".wav": {}, ".flac": {},
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".ppt": {}, ".pptx": {},
	".zip": {}, ".tar": {}, ".gz": {}, ".tgz": {}, ".rar": {}, ".7z": {},
	".jar": {}, ".war": {}, ".class": {}, ".exe": {}, ".dll": {}, ".so": {}, ".dylib": {},
	".o": {}, ".a": {}, ".bin": {}, ".pyc": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {},
	".map": {}, ".pem": {}, ".key": {}, ".p12": {}, ".pfx": {},
}

// excluded 判断仓库里面的一个文件要不要跳过
func excluded(p string) bool {
	segments := strings.Split(p, "/")
	for _, dir := range segments[:len(segments)-1] {
		if _, ok := excludedDirs[dir]; ok {
			return true
		}
	}
	name := segments[len(segments)-1]
	if _, ok := excludedFiles[name]; ok {
		return true
	}
	if name == ".env" || strings.HasPrefix(name, ".env.") {
		return true
	}
	if strings.HasSuffix(name, ".min.js") || strings.HasSuffix(name, ".min.css") {
		return true
	}
	_, ok := excludedExts[strings.ToLower(path.Ext(name))]
	return ok
}

var languages = map[string]string{
	".go": "Go", ".py": "Python", ".java": "Java", ".kt": "Kotlin", ".scala": "Scala",
	".js": "JavaScript", ".jsx": "JavaScript", ".mjs": "JavaScript", ".cjs": "JavaScript",
	".ts": "TypeScript", ".tsx": "TypeScript", ".vue": "Vue", ".svelte": "Svelte",
	".c": "C", ".h": "C", ".cpp": "C++", ".cc": "C++", ".hpp": "C++", ".cs": "C#",
	".rs": "Rust", ".rb": "Ruby", ".php": "PHP", ".swift": "Swift", ".dart": "Dart",
	".sh": "Shell", ".bash": "Shell", ".sql": "SQL",
	".html": "HTML", ".htm": "HTML", ".css": "CSS", ".scss": "SCSS", ".less": "Less",
	".md": "Markdown", ".json": "JSON", ".yaml": "YAML", ".yml": "YAML", ".toml": "TOML", ".xml": "XML",
}

var languageByName = map[string]string{
	"Dockerfile": "Dockerfile",
	"Makefile":   "Makefile",
}

// detectLanguage 只看扩展名，识别不了返回空字符串
func detectLanguage(p string) string {
	name := path.Base(p)
	if lang, ok := languageByName[name]; ok {
		return lang
	}
	return languages[strings.ToLower(path.Ext(name))]
}

// looksBinary 有 NUL 字节的基本都是二进制文件
func looksBinary(data []byte) bool {
	const sniffLen = 8000
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	for _, b := range data {
		if b == 0 {
			return true
		}
	}
	return false
}
