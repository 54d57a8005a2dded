package generator

import (
	"bytes"
	"encoding/json"
)

// StrategyRequest is the main strategist form at submit time.
type StrategyRequest struct {
	SeedTopic      string   `json:"seed_topic"`
	TargetAudience string   `json:"target_audience"`
	CompetitorURLs []string `json:"competitor_urls"`
	Region         string   `json:"region"`
	Screenshots    []Image  `json:"-"`
}

// Difficulty of ranking for a cluster.
type Difficulty string

const (
	DifficultyLow    Difficulty = "Low"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHigh   Difficulty = "High"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyLow, DifficultyMedium, DifficultyHigh:
		return true
	}
	return false
}

type ClusterSubtopic struct {
	ClusterName    string     `json:"cluster_name"`
	TargetKeywords []string   `json:"target_keywords"`
	Difficulty     Difficulty `json:"difficulty"`
	NextStep       string     `json:"next_step"`
}

type PillarTopic struct {
	PillarName       string            `json:"pillar_name"`
	ClusterSubtopics []ClusterSubtopic `json:"cluster_subtopics"`
}

type TopicalAuthorityMap []PillarTopic

// Intent is the primary search intent behind a keyword.
type Intent string

const (
	IntentEducational  Intent = "Educational"
	IntentInspiration  Intent = "Inspiration"
	IntentTroubleshoot Intent = "Troubleshoot"
	IntentComparison   Intent = "Comparison"
	IntentPurchase     Intent = "Purchase"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentEducational, IntentInspiration, IntentTroubleshoot, IntentComparison, IntentPurchase:
		return true
	}
	return false
}

type IntentClarityItem struct {
	Keyword               string `json:"keyword"`
	IntentClassification  Intent `json:"gemini_intent_classification"`
	IntentClarityScore    int    `json:"intent_clarity_score"`
	ContentTypeSuggestion string `json:"content_type_suggestion"`
}

type IntentClarityReport []IntentClarityItem

type CompetitorSummary struct {
	URL         string `json:"url"`
	VisualTone  string `json:"visual_tone"`
	CoreMessage string `json:"core_message"`
}

type ContentGaps struct {
	GapKeywords []string `json:"gap_keywords"`
	Analysis    string   `json:"analysis"`
}

type CompetitorAnalysis struct {
	CompetitorSummaries   []CompetitorSummary `json:"competitor_summaries"`
	CollectiveContentGaps ContentGaps         `json:"collective_content_gaps"`
}

type SEOFundamentals struct {
	OptimizedTitle    string `json:"optimized_title"`
	MetaDescription   string `json:"meta_description"`
	TargetIntentFocus string `json:"target_intent_focus"`
}

type OutlineItem struct {
	H2  string   `json:"h2"`
	H3s []string `json:"h3s,omitempty"`
}

type ContentBrief struct {
	SEOFundamentals       SEOFundamentals  `json:"seo_fundamentals"`
	ContentOutline        []OutlineItem    `json:"content_outline"`
	RequiredSemanticTerms []string         `json:"required_semantic_terms"`
	JSONLDSchema          EmbeddedDocument `json:"json_ld_schema"`
}

// EmbeddedDocument is a JSON document carried as a string inside another JSON document.
// Its validity is only checked when read.
type EmbeddedDocument string

// Parse decodes the embedded document.
func (d EmbeddedDocument) Parse() (any, error) {
	var v any
	if err := json.Unmarshal([]byte(d), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Pretty returns the document indented with two spaces, or the raw string when it does
// not parse.
func (d EmbeddedDocument) Pretty() string {
	if d == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(d), "", "  "); err != nil {
		return string(d)
	}
	return buf.String()
}

type ToneAttribute struct {
	Tone        string  `json:"tone"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

type BrandVoiceGuide struct {
	ToneAttributes     []ToneAttribute `json:"tone_attributes"`
	TargetReadingLevel string          `json:"target_reading_level"`
	SentenceStructure  string          `json:"sentence_structure"`
	ForbiddenWords     []string        `json:"forbidden_words"`
}

// Platform selects long-form (YouTube) or short-form (TikTok/Shorts) video.
type Platform string

const (
	PlatformLong  Platform = "long"
	PlatformShort Platform = "short"
)

func (p Platform) Name() string {
	if p == PlatformShort {
		return "TikTok/Shorts"
	}
	return "YouTube"
}

type VideoBriefRequest struct {
	Topic          string   `json:"topic"`
	Platform       Platform `json:"platform"`
	VideoLength    string   `json:"video_length"`
	Keywords       string   `json:"keywords"`
	GenerateScript bool     `json:"generate_script"`
}

type VideoSegment struct {
	SegmentTitle             string  `json:"segment_title"`
	EstimatedDurationSeconds float64 `json:"estimated_duration_seconds"`
}

type VideoScene struct {
	SceneTitle       string `json:"scene_title"`
	ScriptAndVisuals string `json:"script_and_visuals"`
}

type VideoBrief struct {
	VideoTitleIdeas            []string       `json:"video_title_ideas"`
	VideoHookScript            string         `json:"video_hook_script"`
	MainSegments               []VideoSegment `json:"main_segments"`
	SuggestedThumbnailElements string         `json:"suggested_thumbnail_elements"`
	FullVideoScript            []VideoScene   `json:"full_video_script,omitempty"`
}

type GscQuery struct {
	Query       string  `json:"query"`
	Clicks      int     `json:"clicks"`
	Impressions int     `json:"impressions"`
	Position    float64 `json:"position"`
}

// GscPagePerformance is one Search Console page row. ClicksChange is a percentage,
// PositionChange an absolute delta; CTR is a fraction (0.012 = 1.2%).
type GscPagePerformance struct {
	URL            string     `json:"url"`
	Impressions    int        `json:"impressions"`
	Clicks         int        `json:"clicks"`
	CTR            float64    `json:"ctr"`
	Position       float64    `json:"position"`
	ClicksChange   float64    `json:"clicksChange"`
	PositionChange float64    `json:"positionChange"`
	TopQuery       string     `json:"topQuery"`
	Queries        []GscQuery `json:"queries"`
}

type DecayAnalysis struct {
	DecayReason        string `json:"decay_reason"`
	RevisionType       string `json:"revision_type"`
	RevisionFocus      string `json:"revision_focus"`
	NewMetaDescription string `json:"new_meta_description"`
}

type CTROptimizationPair struct {
	NewTitle           string `json:"new_title"`
	NewMetaDescription string `json:"new_meta_description"`
}

type CTROptimization struct {
	CTROptimizations []CTROptimizationPair `json:"ctr_optimizations"`
}

type InternalLinkSuggestion struct {
	SourceURLToLinkFrom string `json:"source_url_to_link_from"`
	SuggestedAnchorText string `json:"suggested_anchor_text"`
	ContextualSnippet   string `json:"contextual_snippet"`
}

// Sentiment is the overall verdict of a content audit.
type Sentiment string

const (
	SentimentExcellent Sentiment = "Excellent"
	SentimentGood      Sentiment = "Good"
	SentimentFair      Sentiment = "Fair"
	SentimentPoor      Sentiment = "Poor"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentExcellent, SentimentGood, SentimentFair, SentimentPoor:
		return true
	}
	return false
}

// ReviewStatus of a single on-page element.
type ReviewStatus string

const (
	StatusPass    ReviewStatus = "Pass"
	StatusFail    ReviewStatus = "Fail"
	StatusWarning ReviewStatus = "Warning"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusPass, StatusFail, StatusWarning:
		return true
	}
	return false
}

type CoreMetrics struct {
	WordCount              int     `json:"word_count"`
	ReadabilityScoreFlesch float64 `json:"readability_score_flesch"`
	PrimaryKeyword         string  `json:"primary_keyword"`
}

type OnPageReviewItem struct {
	Element        string       `json:"element"`
	Status         ReviewStatus `json:"status"`
	Recommendation string       `json:"recommendation"`
}

type KeywordGapItem struct {
	KeywordPhrase  string  `json:"keyword_phrase"`
	RelevanceScore float64 `json:"relevance_score"`
	Notes          string  `json:"notes"`
}

type AuditReport struct {
	AuditTitle            string             `json:"audit_title"`
	SummarySentiment      Sentiment          `json:"summary_sentiment"`
	CoreMetrics           CoreMetrics        `json:"core_metrics"`
	OnPageReview          []OnPageReviewItem `json:"on_page_review"`
	KeywordAndGapAnalysis []KeywordGapItem   `json:"keyword_and_gap_analysis"`
}
