package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiConfig(t *testing.T) {
	t.Run("grounded with thinking budget", func(t *testing.T) {
		cfg := geminiConfig(BuildCTRPrompt(GscPagePerformance{URL: "u"}))
		require.NotNil(t, cfg.Temperature)
		assert.InDelta(t, 0.7, *cfg.Temperature, 1e-6)
		require.Len(t, cfg.Tools, 1)
		assert.NotNil(t, cfg.Tools[0].GoogleSearch)
		assert.Nil(t, cfg.ResponseSchema)
		assert.Empty(t, cfg.ResponseMIMEType)
		require.NotNil(t, cfg.ThinkingConfig)
		assert.Equal(t, int32(4096), *cfg.ThinkingConfig.ThinkingBudget)
		require.NotNil(t, cfg.SystemInstruction)
	})

	t.Run("schema without grounding", func(t *testing.T) {
		cfg := geminiConfig(BuildBrandVoicePrompt("sample"))
		assert.Empty(t, cfg.Tools)
		assert.Equal(t, "application/json", cfg.ResponseMIMEType)
		assert.NotNil(t, cfg.ResponseSchema)
		assert.Nil(t, cfg.ThinkingConfig)
	})
}

func TestGeminiContentsPutImagesFirst(t *testing.T) {
	shots := screenshots(3)
	contents := geminiContents(BuildCompetitorPrompt([]string{"https://a.example"}, shots, "Canada", nil))
	require.Len(t, contents, 1)

	parts := contents[0].Parts
	require.Len(t, parts, 4)
	for i := 0; i < 3; i++ {
		require.NotNil(t, parts[i].InlineData)
		assert.Equal(t, "image/png", parts[i].InlineData.MIMEType)
		assert.Equal(t, shots[i].Data, parts[i].InlineData.Data)
	}
	assert.Contains(t, parts[3].Text, "Competitor URLs: https://a.example")
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGeminiLLMFromConfig(context.Background(), &LLMSettings{ProModel: "p", FlashModel: "f"})
	assert.True(t, IsConfiguration(err))
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAILLMFromConfig(&LLMSettings{ProModel: "p"})
	assert.True(t, IsConfiguration(err))

	llm, err := NewOpenAILLMFromConfig(&LLMSettings{APIKey: "k", ProModel: "p"})
	require.NoError(t, err)
	assert.Equal(t, "p", llm.FlashModel)
}

func TestSchemaInstruction(t *testing.T) {
	assert.Empty(t, schemaInstruction(nil))
	assert.Contains(t, schemaInstruction(internalLinksSchema()), "internal_link_suggestions")
}
