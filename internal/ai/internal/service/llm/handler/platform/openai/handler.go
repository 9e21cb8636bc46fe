package openai

import (
	"context"
	"errors"

	"github.com/ecodeclub/coursework/internal/ai/internal/domain"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultBaseURL 兼容 OpenAI 协议的平台很多，例如 DeepSeek 和百炼，换一个 BaseURL 就可以
const DefaultBaseURL = "https://api.openai.com/v1/"

var errEmptyChoices = errors.New("LLM 没有返回任何结果")

type Handler struct {
	client *openai.Client
}

func NewHandler(baseURL, apikey string) *Handler {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apikey),
	)
	return &Handler{
		client: client,
	}
}

func (h *Handler) Name() string {
	return "openai"
}

func (h *Handler) Handle(ctx context.Context, req domain.LLMRequest) (domain.LLMResponse, error) {
	completion, err := h.client.Chat.Completions.New(ctx, h.buildParams(req))
	if err != nil {
		return domain.LLMResponse{}, err
	}
	if len(completion.Choices) == 0 {
		return domain.LLMResponse{}, errEmptyChoices
	}
	model := completion.Model
	if model == "" {
		model = req.Config.Model
	}
	return domain.LLMResponse{
		Tokens: completion.Usage.TotalTokens,
		Answer: completion.Choices[0].Message.Content,
		Model:  model,
	}, nil
}

func (h *Handler) buildParams(req domain.LLMRequest) openai.ChatCompletionNewParams {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.Config.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.Config.SystemPrompt))
	}
	msgs = append(msgs, openai.UserMessage(req.Input))
	params := openai.ChatCompletionNewParams{
		Messages: openai.F(msgs),
		Model:    openai.F(req.Config.Model),
	}
	if req.Config.Temperature > 0 {
		params.Temperature = openai.F(req.Config.Temperature)
	}
	if req.Config.TopP > 0 {
		params.TopP = openai.F(req.Config.TopP)
	}
	return params
}
