package generator

import (
	"context"
	"time"

	"google.golang.org/genai"
)

// LLMClient abstracts the hosted model so it can be swapped or faked.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings is the provider configuration handed to concrete clients.
type LLMSettings struct {
	Provider   string
	ProModel   string
	FlashModel string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
}

// Model resolves a tier to the configured model name.
func (s *LLMSettings) Model(tier Tier) string {
	if tier == TierFlash {
		return s.FlashModel
	}
	return s.ProModel
}

// Tier picks between the higher-capability and the faster model.
type Tier string

const (
	TierPro   Tier = "pro"
	TierFlash Tier = "flash"
)

// Operation names one report type; it keys logs, metrics, fixtures and usage counters.
type Operation string

const (
	OpTopicalMap         Operation = "topical_map"
	OpIntentClarity      Operation = "intent_clarity"
	OpCompetitorAnalysis Operation = "competitor_analysis"
	OpContentBrief       Operation = "content_brief"
	OpBrandVoice         Operation = "brand_voice"
	OpVideoBrief         Operation = "video_brief"
	OpContentDecay       Operation = "content_decay"
	OpCTROptimization    Operation = "ctr_optimization"
	OpInternalLinks      Operation = "internal_links"
	OpContentAudit       Operation = "content_audit"

	// OpStrategist is the usage-counter key of the main strategy form.
	OpStrategist Operation = "strategist"
)

// GenerationConfig is the per-call model configuration chosen by a prompt builder.
type GenerationConfig struct {
	Tier        Tier
	Temperature float32
	// Grounding enables live web search. Grounded calls cannot use a response schema.
	Grounding      bool
	Schema         *genai.Schema
	ThinkingBudget int32
}

// Prompt is everything sent to the model for one call. Images go before the text part.
type Prompt struct {
	Op     Operation
	System string
	User   string
	Images []Image
	Config GenerationConfig
}

// Structured reports whether the call carries a strict output schema.
func (p Prompt) Structured() bool {
	return p.Config.Schema != nil
}
