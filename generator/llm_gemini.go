package generator

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiLLM implements LLMClient on the Google GenAI SDK.
type GeminiLLM struct {
	client   *genai.Client
	settings LLMSettings
}

func NewGeminiLLMFromConfig(ctx context.Context, cfg *LLMSettings) (*GeminiLLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, &ConfigurationError{Setting: "llm.api_key", Msg: "gemini api key missing; set the API_KEY environment variable"}
	}
	if cfg.ProModel == "" || cfg.FlashModel == "" {
		return nil, &ConfigurationError{Setting: "llm.pro_model/llm.flash_model", Msg: "both model tiers are required"}
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiLLM{client: client, settings: *cfg}, nil
}

func (g *GeminiLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if g.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.settings.Timeout)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.settings.Model(prompt.Config.Tier), geminiContents(prompt), geminiConfig(prompt))
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

// geminiContents puts one inline image part per screenshot ahead of the single text part.
func geminiContents(prompt Prompt) []*genai.Content {
	parts := make([]*genai.Part, 0, len(prompt.Images)+1)
	for _, img := range prompt.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(prompt.User))
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func geminiConfig(prompt Prompt) *genai.GenerateContentConfig {
	c := prompt.Config
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		Temperature:       genai.Ptr(c.Temperature),
	}
	if c.Grounding {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if c.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = c.Schema
	}
	if c.ThinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(c.ThinkingBudget)}
	}
	return cfg
}
