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
package ai

import (
	"fmt"

	"github.com/ecodeclub/coursework/internal/ai/internal/domain"
	"github.com/ecodeclub/coursework/internal/ai/internal/service/llm"
	"github.com/ecodeclub/coursework/internal/ai/internal/service/llm/handler"
	"github.com/ecodeclub/coursework/internal/ai/internal/service/llm/handler/log"
	"github.com/ecodeclub/coursework/internal/ai/internal/service/llm/handler/platform/openai"
	"github.com/ecodeclub/coursework/internal/ai/internal/service/llm/handler/platform/zhipu"
	"github.com/ecodeclub/coursework/internal/ai/internal/service/llm/handler/record"
	"github.com/gotomicro/ego/core/econf"
)

type Config struct {
	// openai 或者 zhipu
	Provider     string  `yaml:"provider"`
	BaseURL      string  `yaml:"baseURL"`
	APIKey       string  `yaml:"apikey"`
	Model        string  `yaml:"model"`
	Temperature  float64 `yaml:"temperature"`
	TopP         float64 `yaml:"topP"`
	SystemPrompt string  `yaml:"systemPrompt"`
	MaxInput     int     `yaml:"maxInput"`
}

func InitConfig() Config {
	var cfg Config
	err := econf.UnmarshalKey("ai", &cfg)
	if err != nil {
		panic(err)
	}
	return cfg
}

func InitModelConfig(cfg Config) domain.ModelConfig {
	return domain.ModelConfig{
		Model:        cfg.Model,
		Temperature:  cfg.Temperature,
		TopP:         cfg.TopP,
		SystemPrompt: cfg.SystemPrompt,
		MaxInput:     cfg.MaxInput,
	}
}

// InitPlatform 平台就是真正的出口
func InitPlatform(cfg Config) handler.Handler {
	switch cfg.Provider {
	case "zhipu":
		h, err := zhipu.NewHandler(cfg.APIKey)
		if err != nil {
			panic(err)
		}
		return h
	case "openai", "":
		return openai.NewHandler(cfg.BaseURL, cfg.APIKey)
	default:
		panic(fmt.Sprintf("未知的 LLM 平台 %s", cfg.Provider))
	}
}

func InitCommonHandlers(log *log.HandlerBuilder,
	record *record.HandlerBuilder) []handler.Builder {
	return []handler.Builder{log, record}
}

// InitLLMService log -> record -> platform
func InitLLMService(common []handler.Builder, platform handler.Handler) llm.Service {
	return llm.NewLLMService(handler.NewCompositionHandler(common, platform))
}
