package generator

import (
	"fmt"
	"strings"
)

const (
	keywordsPerCluster  = 5
	gapKeywordCount     = 3
	videoTitleCount     = 3
	ctrVariantCount     = 3
	linkSuggestionCount = 5
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func ValidateTopicalMap(m TopicalAuthorityMap) error {
	const entity = "topical map"
	if len(m) == 0 {
		return invalid(entity, "pillar_topics", "is empty")
	}
	for i, p := range m {
		if blank(p.PillarName) {
			return invalid(entity, fmt.Sprintf("pillar_topics[%d].pillar_name", i), "is empty")
		}
		for j, c := range p.ClusterSubtopics {
			field := fmt.Sprintf("pillar_topics[%d].cluster_subtopics[%d]", i, j)
			if len(c.TargetKeywords) != keywordsPerCluster {
				return invalid(entity, field+".target_keywords", "has %d keywords, want %d", len(c.TargetKeywords), keywordsPerCluster)
			}
			if !c.Difficulty.Valid() {
				return invalid(entity, field+".difficulty", "has unknown value %q", c.Difficulty)
			}
		}
	}
	return nil
}

func ValidateIntentReport(r IntentClarityReport) error {
	const entity = "intent clarity report"
	if len(r) == 0 {
		return invalid(entity, "keyword_analysis", "is empty")
	}
	for i, item := range r {
		field := fmt.Sprintf("keyword_analysis[%d]", i)
		if blank(item.Keyword) {
			return invalid(entity, field+".keyword", "is empty")
		}
		if !item.IntentClassification.Valid() {
			return invalid(entity, field+".gemini_intent_classification", "has unknown value %q", item.IntentClassification)
		}
		if item.IntentClarityScore < 0 || item.IntentClarityScore > 100 {
			return invalid(entity, field+".intent_clarity_score", "is %d, want 0-100", item.IntentClarityScore)
		}
	}
	return nil
}

// ValidateCompetitorAnalysis also checks that summaries line up with the input URLs.
func ValidateCompetitorAnalysis(a CompetitorAnalysis, urls []string) error {
	const entity = "competitor analysis"
	if len(a.CompetitorSummaries) != len(urls) {
		return invalid(entity, "competitor_summaries", "has %d entries for %d urls", len(a.CompetitorSummaries), len(urls))
	}
	for i, s := range a.CompetitorSummaries {
		if strings.TrimSpace(s.URL) != strings.TrimSpace(urls[i]) {
			return invalid(entity, fmt.Sprintf("competitor_summaries[%d].url", i), "is %q, want %q", s.URL, urls[i])
		}
	}
	if n := len(a.CollectiveContentGaps.GapKeywords); n != gapKeywordCount {
		return invalid(entity, "collective_content_gaps.gap_keywords", "has %d keywords, want %d", n, gapKeywordCount)
	}
	return nil
}

// ValidateContentBrief does not parse json_ld_schema; that happens on read.
func ValidateContentBrief(b ContentBrief) error {
	const entity = "content brief"
	switch {
	case blank(b.SEOFundamentals.OptimizedTitle):
		return invalid(entity, "seo_fundamentals.optimized_title", "is empty")
	case blank(b.SEOFundamentals.MetaDescription):
		return invalid(entity, "seo_fundamentals.meta_description", "is empty")
	case len(b.ContentOutline) == 0:
		return invalid(entity, "content_outline", "is empty")
	case blank(string(b.JSONLDSchema)):
		return invalid(entity, "json_ld_schema", "is empty")
	}
	return nil
}

func ValidateBrandVoice(g BrandVoiceGuide) error {
	const entity = "brand voice guide"
	if len(g.ToneAttributes) == 0 {
		return invalid(entity, "tone_attributes", "is empty")
	}
	for i, t := range g.ToneAttributes {
		if t.Score < 1 || t.Score > 5 {
			return invalid(entity, fmt.Sprintf("tone_attributes[%d].score", i), "is %g, want 1-5", t.Score)
		}
	}
	return nil
}

func ValidateVideoBrief(b VideoBrief, scriptRequested bool) error {
	const entity = "video brief"
	if n := len(b.VideoTitleIdeas); n != videoTitleCount {
		return invalid(entity, "video_title_ideas", "has %d titles, want %d", n, videoTitleCount)
	}
	if len(b.MainSegments) == 0 {
		return invalid(entity, "main_segments", "is empty")
	}
	if scriptRequested && len(b.FullVideoScript) == 0 {
		return invalid(entity, "full_video_script", "is missing although a script was requested")
	}
	return nil
}

func ValidateDecayAnalysis(d DecayAnalysis) error {
	const entity = "decay analysis"
	if blank(d.DecayReason) {
		return invalid(entity, "decay_reason", "is empty")
	}
	if blank(d.RevisionType) {
		return invalid(entity, "revision_type", "is empty")
	}
	return nil
}

func ValidateCTROptimization(o CTROptimization) error {
	if n := len(o.CTROptimizations); n != ctrVariantCount {
		return invalid("ctr optimization", "ctr_optimizations", "has %d variants, want %d", n, ctrVariantCount)
	}
	return nil
}

// ValidateInternalLinks enforces that each anchor appears verbatim in its snippet, which
// the highlighting in the UI depends on.
func ValidateInternalLinks(links []InternalLinkSuggestion) error {
	const entity = "internal link suggestions"
	if len(links) != linkSuggestionCount {
		return invalid(entity, "internal_link_suggestions", "has %d suggestions, want %d", len(links), linkSuggestionCount)
	}
	for i, l := range links {
		field := fmt.Sprintf("internal_link_suggestions[%d]", i)
		if blank(l.SuggestedAnchorText) {
			return invalid(entity, field+".suggested_anchor_text", "is empty")
		}
		if !strings.Contains(l.ContextualSnippet, l.SuggestedAnchorText) {
			return invalid(entity, field+".suggested_anchor_text", "%q does not appear in the contextual snippet", l.SuggestedAnchorText)
		}
	}
	return nil
}

func ValidateAuditReport(r AuditReport) error {
	const entity = "audit report"
	if !r.SummarySentiment.Valid() {
		return invalid(entity, "summary_sentiment", "has unknown value %q", r.SummarySentiment)
	}
	if f := r.CoreMetrics.ReadabilityScoreFlesch; f < 0 || f > 100 {
		return invalid(entity, "core_metrics.readability_score_flesch", "is %g, want 0-100", f)
	}
	for i, item := range r.OnPageReview {
		if !item.Status.Valid() {
			return invalid(entity, fmt.Sprintf("on_page_review[%d].status", i), "has unknown value %q", item.Status)
		}
	}
	for i, item := range r.KeywordAndGapAnalysis {
		if item.RelevanceScore < 1 || item.RelevanceScore > 5 {
			return invalid(entity, fmt.Sprintf("keyword_and_gap_analysis[%d].relevance_score", i), "is %g, want 1-5", item.RelevanceScore)
		}
	}
	return nil
}
