// Package report renders typed results as Markdown, HTML or plain copy text.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"seo_strategist/generator"
	"seo_strategist/gsc"
)

// Markdown renders any supported result value.
func Markdown(v any) (string, error) {
	var b strings.Builder
	switch r := v.(type) {
	case generator.Snapshot:
		writeStrategy(&b, r)
	case *generator.Snapshot:
		writeStrategy(&b, *r)
	case generator.TopicalAuthorityMap:
		writeTopicalMap(&b, r)
	case generator.IntentClarityReport:
		writeIntentReport(&b, r)
	case *generator.CompetitorAnalysis:
		writeCompetitorAnalysis(&b, r)
	case *generator.ContentBrief:
		writeContentBrief(&b, r)
	case *generator.BrandVoiceGuide:
		writeBrandVoice(&b, r)
	case *generator.VideoBrief:
		writeVideoBrief(&b, r)
	case *generator.DecayAnalysis:
		writeDecay(&b, r)
	case *generator.CTROptimization:
		writeCTR(&b, r)
	case []generator.InternalLinkSuggestion:
		writeInternalLinks(&b, r)
	case *generator.AuditReport:
		writeAudit(&b, r)
	case []gsc.Row:
		writeGSC(&b, r)
	default:
		return "", fmt.Errorf("no markdown renderer for %T", v)
	}
	return strings.TrimSpace(b.String()) + "\n", nil
}

// cell escapes text for a Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func writeStrategy(b *strings.Builder, s generator.Snapshot) {
	b.WriteString("# SEO Strategy Report\n\n")
	if s.Region != "" {
		fmt.Fprintf(b, "Target region: %s\n\n", s.Region)
	}
	if len(s.TopicalMap) > 0 {
		writeTopicalMap(b, s.TopicalMap)
	}
	if len(s.IntentReport) > 0 {
		writeIntentReport(b, s.IntentReport)
	}
	if s.CompetitorAnalysis != nil {
		writeCompetitorAnalysis(b, s.CompetitorAnalysis)
	}
}

func writeTopicalMap(b *strings.Builder, m generator.TopicalAuthorityMap) {
	b.WriteString("## Topical Authority Map\n\n")
	for _, p := range m {
		fmt.Fprintf(b, "### Pillar: %s\n\n", p.PillarName)
		b.WriteString("| Cluster | Difficulty | Target Keywords | Next Step |\n|---|---|---|---|\n")
		for _, c := range p.ClusterSubtopics {
			fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
				cell(c.ClusterName), c.Difficulty, cell(strings.Join(c.TargetKeywords, ", ")), cell(c.NextStep))
		}
		b.WriteString("\n")
	}
}

func writeIntentReport(b *strings.Builder, r generator.IntentClarityReport) {
	b.WriteString("## Intent Clarity Report\n\n")
	b.WriteString("| Keyword | Intent | Clarity Score | Suggested Content Type |\n|---|---|---|---|\n")
	for _, item := range r {
		fmt.Fprintf(b, "| %s | %s | %d | %s |\n",
			cell(item.Keyword), item.IntentClassification, item.IntentClarityScore, cell(item.ContentTypeSuggestion))
	}
	b.WriteString("\n")
}

func writeCompetitorAnalysis(b *strings.Builder, a *generator.CompetitorAnalysis) {
	b.WriteString("## Competitor Analysis\n\n")
	for _, s := range a.CompetitorSummaries {
		fmt.Fprintf(b, "### %s\n\n- **Visual tone:** %s\n- **Core message:** %s\n\n", s.URL, s.VisualTone, s.CoreMessage)
	}
	b.WriteString("### Collective Content Gaps\n\n")
	for _, k := range a.CollectiveContentGaps.GapKeywords {
		fmt.Fprintf(b, "- %s\n", k)
	}
	if a.CollectiveContentGaps.Analysis != "" {
		fmt.Fprintf(b, "\n%s\n", a.CollectiveContentGaps.Analysis)
	}
	b.WriteString("\n")
}

func writeContentBrief(b *strings.Builder, brief *generator.ContentBrief) {
	f := brief.SEOFundamentals
	fmt.Fprintf(b, "# %s\n\n", f.OptimizedTitle)
	fmt.Fprintf(b, "**Meta description:** %s\n\n", f.MetaDescription)
	fmt.Fprintf(b, "**Target intent focus:** %s\n\n", f.TargetIntentFocus)
	b.WriteString("## Content Outline\n\n")
	for _, item := range brief.ContentOutline {
		fmt.Fprintf(b, "- %s\n", item.H2)
		for _, h3 := range item.H3s {
			fmt.Fprintf(b, "  - %s\n", h3)
		}
	}
	if len(brief.RequiredSemanticTerms) > 0 {
		b.WriteString("\n## Required Semantic Terms\n\n")
		for _, term := range brief.RequiredSemanticTerms {
			fmt.Fprintf(b, "- %s\n", term)
		}
	}
	if pretty := brief.JSONLDSchema.Pretty(); pretty != "" {
		fmt.Fprintf(b, "\n## JSON-LD Schema\n\n```json\n%s\n```\n", pretty)
	}
}

func writeBrandVoice(b *strings.Builder, g *generator.BrandVoiceGuide) {
	b.WriteString("# Brand Voice Guide\n\n")
	b.WriteString("| Tone | Score | Description |\n|---|---|---|\n")
	for _, t := range g.ToneAttributes {
		fmt.Fprintf(b, "| %s | %s/5 | %s |\n", cell(t.Tone), num(t.Score), cell(t.Description))
	}
	fmt.Fprintf(b, "\n**Target reading level:** %s\n\n", g.TargetReadingLevel)
	fmt.Fprintf(b, "**Sentence structure:** %s\n", g.SentenceStructure)
	if len(g.ForbiddenWords) > 0 {
		b.WriteString("\n## Forbidden Words\n\n")
		for _, w := range g.ForbiddenWords {
			fmt.Fprintf(b, "- %s\n", w)
		}
	}
}

func writeVideoBrief(b *strings.Builder, v *generator.VideoBrief) {
	b.WriteString("# Video Brief\n\n## Title Ideas\n\n")
	for i, t := range v.VideoTitleIdeas {
		fmt.Fprintf(b, "%d. %s\n", i+1, t)
	}
	fmt.Fprintf(b, "\n## Hook\n\n> %s\n\n", v.VideoHookScript)
	b.WriteString("## Segments\n\n| Segment | Duration (s) |\n|---|---|\n")
	for _, s := range v.MainSegments {
		fmt.Fprintf(b, "| %s | %s |\n", cell(s.SegmentTitle), num(s.EstimatedDurationSeconds))
	}
	fmt.Fprintf(b, "\n## Thumbnail\n\n%s\n", v.SuggestedThumbnailElements)
	if len(v.FullVideoScript) > 0 {
		b.WriteString("\n## Script\n\n")
		for i, scene := range v.FullVideoScript {
			fmt.Fprintf(b, "### Scene %d: %s\n\n%s\n\n", i+1, scene.SceneTitle, scene.ScriptAndVisuals)
		}
	}
}

func writeDecay(b *strings.Builder, d *generator.DecayAnalysis) {
	b.WriteString("# Content Decay Analysis\n\n")
	fmt.Fprintf(b, "## Diagnosis\n\n%s\n\n", d.DecayReason)
	fmt.Fprintf(b, "**Revision strategy:** %s\n\n", d.RevisionType)
	fmt.Fprintf(b, "**Focus area:** %s\n\n", d.RevisionFocus)
	fmt.Fprintf(b, "**Recommended meta description:** \"%s\"\n", d.NewMetaDescription)
}

func writeCTR(b *strings.Builder, o *generator.CTROptimization) {
	b.WriteString("# CTR Optimization\n\n")
	for i, pair := range o.CTROptimizations {
		fmt.Fprintf(b, "## Option %d\n\n**%s**\n\n%s\n\n", i+1, pair.NewTitle, pair.NewMetaDescription)
	}
}

func writeInternalLinks(b *strings.Builder, links []generator.InternalLinkSuggestion) {
	b.WriteString("# Internal Link Suggestions\n\n")
	b.WriteString("| Anchor Text | Link To | Context |\n|---|---|---|\n")
	for _, l := range links {
		snippet := strings.Replace(l.ContextualSnippet, l.SuggestedAnchorText, "**"+l.SuggestedAnchorText+"**", 1)
		fmt.Fprintf(b, "| %s | %s | %s |\n", cell(l.SuggestedAnchorText), cell(l.SourceURLToLinkFrom), cell(snippet))
	}
}

func writeAudit(b *strings.Builder, r *generator.AuditReport) {
	fmt.Fprintf(b, "# %s\n\n", r.AuditTitle)
	fmt.Fprintf(b, "**Overall:** %s\n\n", r.SummarySentiment)
	m := r.CoreMetrics
	fmt.Fprintf(b, "- Word count: %d\n- Flesch readability: %s\n- Primary keyword: %s\n\n", m.WordCount, num(m.ReadabilityScoreFlesch), m.PrimaryKeyword)
	if len(r.OnPageReview) > 0 {
		b.WriteString("## On-Page Review\n\n| Element | Status | Recommendation |\n|---|---|---|\n")
		for _, item := range r.OnPageReview {
			fmt.Fprintf(b, "| %s | %s | %s |\n", cell(item.Element), item.Status, cell(item.Recommendation))
		}
		b.WriteString("\n")
	}
	if len(r.KeywordAndGapAnalysis) > 0 {
		b.WriteString("## Keyword & Gap Analysis\n\n| Keyword | Relevance | Notes |\n|---|---|---|\n")
		for _, item := range r.KeywordAndGapAnalysis {
			fmt.Fprintf(b, "| %s | %s/5 | %s |\n", cell(item.KeywordPhrase), num(item.RelevanceScore), cell(item.Notes))
		}
	}
}

func writeGSC(b *strings.Builder, rows []gsc.Row) {
	b.WriteString("# Search Console Performance\n\n")
	b.WriteString("| Landing Page | Clicks | Impressions | CTR | Avg Pos | Clicks Δ | Pos Δ | Flags |\n|---|---|---|---|---|---|---|---|\n")
	for _, r := range rows {
		var flags []string
		if r.Flags.Decaying {
			flags = append(flags, "decaying")
		}
		if r.Flags.LowCTR {
			flags = append(flags, "low CTR")
		}
		fmt.Fprintf(b, "| %s | %d | %d | %.2f%% | %.1f | %+.1f%% | %+.1f | %s |\n",
			cell(r.URL), r.Clicks, r.Impressions, r.CTR*100, r.Position, r.ClicksChange, r.PositionChange, strings.Join(flags, ", "))
	}
}
