package generator

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAILLM implements LLMClient using the official openai-go SDK (chat completions). It
// also serves OpenAI-compatible endpoints such as DeepSeek. Web grounding is not
// available there; schema-bound prompts run in JSON-object mode with the schema inlined.
type OpenAILLM struct {
	ProModel   string
	FlashModel string
	Opts       []option.RequestOption
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, &ConfigurationError{Setting: "llm.api_key", Msg: "openai api key missing"}
	}
	if cfg.ProModel == "" {
		return nil, &ConfigurationError{Setting: "llm.pro_model", Msg: "llm model is required"}
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	flash := cfg.FlashModel
	if flash == "" {
		flash = cfg.ProModel
	}
	return &OpenAILLM{ProModel: cfg.ProModel, FlashModel: flash, Opts: opts}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	client := openai.NewClient(o.Opts...)

	model := o.ProModel
	if prompt.Config.Tier == TierFlash {
		model = o.FlashModel
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System + schemaInstruction(prompt.Config.Schema)),
			openaiUserMessage(prompt),
		},
		Temperature: openai.Float(float64(prompt.Config.Temperature)),
	}
	if prompt.Structured() {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func openaiUserMessage(prompt Prompt) openai.ChatCompletionMessageParamUnion {
	if len(prompt.Images) == 0 {
		return openai.UserMessage(prompt.User)
	}
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(prompt.Images)+1)
	for _, img := range prompt.Images {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: img.DataURL()}))
	}
	parts = append(parts, openai.TextContentPart(prompt.User))
	return openai.UserMessage(parts)
}
