package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultRegion is used for briefs requested before any strategy run.
const DefaultRegion = "United States (English)"

// Region is a selectable target market.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Regions offered by the strategist form; the first is the default.
var Regions = []Region{
	{Code: "US", Name: "United States"},
	{Code: "GB", Name: "United Kingdom"},
	{Code: "CA", Name: "Canada"},
	{Code: "AU", Name: "Australia"},
	{Code: "DE", Name: "Germany"},
	{Code: "FR", Name: "France"},
	{Code: "ES", Name: "Spain"},
	{Code: "IT", Name: "Italy"},
	{Code: "JP", Name: "Japan"},
	{Code: "BR", Name: "Brazil"},
	{Code: "IN", Name: "India"},
	{Code: "WW", Name: "Worldwide"},
}

// Audiences are the audience presets of the strategist form.
var Audiences = []string{
	"Beginners",
	"Experts",
	"Small Business Owners",
	"Enterprise",
	"DIY Enthusiasts",
	"Parents",
	"Students",
	"Professionals",
}

const jsonOnly = "Respond with ONLY a valid JSON object. Do not include any other text, markdown formatting, or code fences."

// CompetitorPage is metadata observed on a competitor URL, used to enrich the analysis prompt.
type CompetitorPage struct {
	URL             string `json:"url"`
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
	H1              string `json:"h1,omitempty"`
}

// BuildTopicalMapPrompt asks for a pillar/cluster map wrapped in "pillar_topics".
func BuildTopicalMapPrompt(req StrategyRequest) Prompt {
	audience := req.TargetAudience
	if strings.TrimSpace(audience) == "" {
		audience = "General Audience"
	}
	user := fmt.Sprintf(`Analyze the Seed Topic and Target Audience. Break the topic into 3-4 primary Pillar Topics. For each Pillar, create 2-3 Cluster Subtopics. For each Cluster, generate 5 high-intent, long-tail Target Keywords that show commercial or specialized informational intent. For each Cluster, provide a Difficulty Score (Low/Medium/High) based on competitor saturation and a precise, actionable Next Step content recommendation. Keywords MUST be localized for the Target Region/Language.

Seed Topic: %q
Target Audience: %q
Target Region/Language: %q

%s
The JSON object must have a single key "pillar_topics" which is an array of objects.
Each pillar object has "pillar_name" (string) and "cluster_subtopics" (array of objects).
Each cluster object has "cluster_name" (string), "target_keywords" (array of 5 strings), "difficulty" (enum: 'Low', 'Medium', 'High'), and "next_step" (string).`,
		req.SeedTopic, audience, req.Region, jsonOnly)

	return Prompt{
		Op: OpTopicalMap,
		System: "You are an expert SEO Content Strategist. Your goal is to structure a given Seed Topic into a comprehensive, " +
			"hierarchical Topical Authority Map designed to establish total domain expertise. You MUST use Google Search (Grounding) " +
			"to validate keyword relevance and discover real-world content clusters. Your output MUST be a single, valid JSON object and nothing else.",
		User:   user,
		Config: GenerationConfig{Tier: TierPro, Temperature: 0.3, Grounding: true},
	}
}

// BuildIntentClarityPrompt asks for keyword intent analysis wrapped in "keyword_analysis".
func BuildIntentClarityPrompt(req StrategyRequest) Prompt {
	user := fmt.Sprintf(`First, based on the topic seed %q, generate a list of 10-15 related, high-intent keywords.
Then, for that list of keywords, analyze the user intent and SERP clarity. Classify the intent into one of these types: Educational, Inspiration, Troubleshoot, Comparison, or Purchase. The Intent Clarity Score (1-100) must reflect the percentage of the top 10 SERP results that share the same primary intent. Suggest the optimal Content Type for each based on the intent.

Target Region/Language: %q

%s
The JSON object must have a single key "keyword_analysis" which is an array of objects.
Each object in the array should have "keyword" (string), "gemini_intent_classification" (enum: 'Educational', 'Inspiration', 'Troubleshoot', 'Comparison', 'Purchase'), "intent_clarity_score" (integer), and "content_type_suggestion" (string).`,
		req.SeedTopic, req.Region, jsonOnly)

	return Prompt{
		Op: OpIntentClarity,
		System: "Your task is to perform an advanced search intent analysis. For each keyword, you must use Google Search (Grounding) " +
			"to analyze the top 10 search results (SERP) and determine the user's primary intent and the consistency of the SERP results. " +
			"Your output MUST be a single, valid JSON object and nothing else.",
		User:   user,
		Config: GenerationConfig{Tier: TierFlash, Temperature: 0.1, Grounding: true},
	}
}

// BuildCompetitorPrompt attaches one image part per screenshot ahead of the text part.
// pages is optional observed metadata for the URLs.
func BuildCompetitorPrompt(urls []string, screenshots []Image, region string, pages []CompetitorPage) Prompt {
	var observed strings.Builder
	for _, p := range pages {
		if p.Title == "" && p.MetaDescription == "" {
			continue
		}
		if observed.Len() == 0 {
			observed.WriteString("\nObserved page metadata:\n")
		}
		observed.WriteString(fmt.Sprintf("- %s: title=%q description=%q", p.URL, p.Title, p.MetaDescription))
		if p.H1 != "" {
			observed.WriteString(fmt.Sprintf(" h1=%q", p.H1))
		}
		observed.WriteString("\n")
	}

	user := fmt.Sprintf(`Analyze the following list of competitor URLs and their corresponding screenshots.
For each competitor, provide a brief summary of their visual tone and core message.
Then, after analyzing all competitors, provide a collective analysis of the content gaps. Identify three high-value "Content Gap Keywords" that these competitors have collectively missed or underutilized. Explain your reasoning in the "analysis" field.

Competitor URLs: %s
Target Region/Language: %s
%s
%s
The JSON object must have two top-level keys: "competitor_summaries" and "collective_content_gaps".
- "competitor_summaries" must be an array of objects. Each object must have "url" (string), "visual_tone" (string), and "core_message" (string). The order of summaries must match the order of the provided URLs.
- "collective_content_gaps" must be an object with "gap_keywords" (an array of 3 strings) and "analysis" (a string explaining the collective opportunity).`,
		strings.Join(urls, ", "), region, observed.String(), jsonOnly)

	return Prompt{
		Op: OpCompetitorAnalysis,
		System: "You are a Content Intelligence Analyst. Analyze the provided competitor screenshots and URLs. For each, identify their " +
			"primary visual and textual messaging. Then, use Google Search (Grounding) to perform a comparative analysis and find three " +
			"high-intent keywords that are semantically related but collectively under-targeted, representing a clear market content gap. " +
			"Your output MUST be a single, valid JSON object and nothing else.",
		User:   user,
		Images: screenshots,
		Config: GenerationConfig{Tier: TierPro, Temperature: 0.5, Grounding: true, ThinkingBudget: 8192},
	}
}

// BuildContentBriefPrompt uses a strict schema, so no JSON formatting instructions are needed.
func BuildContentBriefPrompt(keyword, region string) Prompt {
	user := fmt.Sprintf(`Generate a detailed Content Brief for the following keyword. First, determine the most likely user intent and optimal content type.
The output MUST include an H2/H3 outline, an SEO title, a meta description, a list of supporting semantic entities (LSI), and a complete, ready-to-use, and nested JSON-LD schema (choose HowTo, FAQPage, Course, or Article based on the inferred Intent). For the schema, ensure it is a valid JSON object provided as a string.

Target Keyword: %q
Target Region/Language: %q`, keyword, region)

	return Prompt{
		Op: OpContentBrief,
		System: "You are a Technical SEO Engineer and Content SEO Expert. Your task is to generate a complete, production-ready Content Brief. " +
			"This includes a full H2/H3 outline, SEO metadata, and crucially, the correct, nested JSON-LD Schema code required for the highest " +
			"possible Rich Snippet visibility on Google. The outline and semantic terms MUST be optimized for the specific intent type. " +
			"Use the provided keyword and the outline you generate to create the schema.",
		User:   user,
		Config: GenerationConfig{Tier: TierPro, Temperature: 0.4, Schema: contentBriefSchema()},
	}
}

// JoinSamples drops blank samples and joins the rest with a separator the model can see.
func JoinSamples(samples []string) string {
	kept := make([]string, 0, len(samples))
	for _, s := range samples {
		if strings.TrimSpace(s) != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, "\n\n---\n\n")
}

func BuildBrandVoicePrompt(samples string) Prompt {
	user := fmt.Sprintf(`Analyze the following content samples for style, tone, and vocabulary. Generate a JSON object that captures the Brand Voice for future AI content generation. The key elements must include the 'tone_attributes' (an array of objects, each with tone, score out of 5, and a description), 'target_reading_level', 'sentence_structure', and a list of 'forbidden_words'.

Content Samples:
---
%s
---`, samples)

	return Prompt{
		Op: OpBrandVoice,
		System: "You are the Brand Voice Analyst for the SEO Content Strategist. Your goal is to analyze the provided text samples " +
			"and generate a precise, actionable style guide in JSON format.",
		User:   user,
		Config: GenerationConfig{Tier: TierFlash, Temperature: 0.2, Schema: brandVoiceSchema()},
	}
}

func BuildVideoBriefPrompt(req VideoBriefRequest) Prompt {
	platform := req.Platform
	if platform == "" {
		platform = PlatformLong
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generate a comprehensive Video Content Brief for the topic: %q.\n", req.Topic))
	sb.WriteString(fmt.Sprintf("The target platform is %s (%s-form video).\n", platform.Name(), platform))
	sb.WriteString(fmt.Sprintf("The target video length is %q.\n", req.VideoLength))
	if kw := strings.TrimSpace(req.Keywords); kw != "" {
		sb.WriteString(fmt.Sprintf("The content should target these keywords: %s.\n", kw))
	}
	sb.WriteString("The primary goal is high retention and maximum clicks. The video should target a student audience looking for fun, free content.\n\n")
	if req.GenerateScript {
		sb.WriteString(fmt.Sprintf("Additionally, generate a full video script. The script should be paced for the target video length of %q. ", req.VideoLength))
		sb.WriteString(`Structure the script into scenes, each with a "scene_title" and a detailed "script_and_visuals" description that includes narration/dialogue and suggested on-screen visuals.` + "\n")
		sb.WriteString(`The JSON response MUST include a "full_video_script" key containing an array of these scene objects.` + "\n\n")
	}
	sb.WriteString(jsonOnly + "\n")
	sb.WriteString("The JSON object must have the following keys:\n")
	sb.WriteString(`- "video_title_ideas": An array of 3 catchy, high click-through rate titles.` + "\n")
	sb.WriteString(`- "video_hook_script": A script for the first 15 seconds (max 50 words) focusing on a pain point or question.` + "\n")
	sb.WriteString(`- "main_segments": An array of objects, each with "segment_title" and "estimated_duration_seconds".` + "\n")
	sb.WriteString(`- "suggested_thumbnail_elements": A descriptive string of thumbnail elements.` + "\n")
	if req.GenerateScript {
		sb.WriteString(`- "full_video_script": An array of objects, where each object has "scene_title" (string) and "script_and_visuals" (string).` + "\n")
	}

	return Prompt{
		Op: OpVideoBrief,
		System: "You are the Viral Video Content Strategist. Your task is to generate a complete video brief, and optionally a full script, " +
			"based on the user's specifications. Use Google Search to inform your ideas. Focus on high-engagement hooks, scannable segments, " +
			"and production-ready scripts. Your output MUST be a single, valid JSON object and nothing else.",
		User:   sb.String(),
		Config: GenerationConfig{Tier: TierPro, Temperature: 0.7, Grounding: true},
	}
}

// queryData lists one query per line for the decay prompt.
func queryData(queries []GscQuery) string {
	if len(queries) == 0 {
		return "none reported"
	}
	var sb strings.Builder
	for _, q := range queries {
		fmt.Fprintf(&sb, "\n- %q: %d clicks, %d impressions, position %.1f", q.Query, q.Clicks, q.Impressions, q.Position)
	}
	return sb.String()
}

func BuildDecayPrompt(page GscPagePerformance) Prompt {
	queries := queryData(page.Queries)
	user := fmt.Sprintf(`The following URL has experienced a performance drop.
URL: %s
Click Change (last 30d vs 60d prior): %.1f%%
Position Change (last 30d vs 60d prior): %.1f
Original Top Keyword: %q

Analyze the provided query data and current SERP trends to identify the primary cause of the decay and suggest a Revision Brief.
Query Data: %s

Respond with ONLY a valid JSON object with the keys: "decay_reason", "revision_type", "revision_focus", and "new_meta_description".`,
		page.URL, page.ClicksChange, page.PositionChange, page.TopQuery, queries)

	return Prompt{
		Op: OpContentDecay,
		System: "You are the Content Decay Specialist. Your goal is to analyze the provided GSC performance data and diagnose the most " +
			"likely reason for any decline, providing an actionable fix in JSON format. Use Google Search grounding to understand current " +
			"SERP trends for the target keywords.",
		User:   user,
		Config: GenerationConfig{Tier: TierPro, Temperature: 0.4, Grounding: true, ThinkingBudget: 8192},
	}
}

func BuildCTRPrompt(page GscPagePerformance) Prompt {
	user := fmt.Sprintf(`The following URL has a high impression count but a low Click-Through Rate (CTR).
URL: %s
Impressions (90d): %d
CTR (90d): %.2f%%
Top Query Driving Impressions: %q

Generate 3 distinct, high-impact Title and Meta Description pairs to immediately boost clicks. Titles must be under 60 characters. Leverage strong emotional hooks and power words.

Respond with ONLY a valid JSON object with a single key "ctr_optimizations", which is an array of 3 objects. Each object must contain "new_title" and "new_meta_description".`,
		page.URL, page.Impressions, page.CTR*100, page.TopQuery)

	return Prompt{
		Op: OpCTROptimization,
		System: "You are the Click-Through Rate (CTR) Optimization Specialist. Your sole focus is to generate highly persuasive, optimized " +
			"titles and meta descriptions for the provided low-CTR URL. Use Google Search grounding to analyze what titles are currently " +
			"performing well for the top query. Your output must be a valid JSON object.",
		User:   user,
		Config: GenerationConfig{Tier: TierPro, Temperature: 0.7, Grounding: true, ThinkingBudget: 4096},
	}
}

func BuildInternalLinksPrompt(targetArticle, sourceIndex string) Prompt {
	user := fmt.Sprintf(`The Target Article to receive links is provided below under [TARGET ARTICLE].
The index of available Source Articles to link from is provided under [SOURCE INDEX].

Identify 5 optimal locations in the Target Article where a link to a Source Article should be placed. For each location, provide the source URL to link to, suggest the exact anchor text to use in the target article, and provide a short contextual snippet from the target article to show where the link should be placed. The anchor text MUST appear verbatim inside the snippet.

[TARGET ARTICLE]
%s
[/TARGET ARTICLE]

[SOURCE INDEX]
%s
[/SOURCE INDEX]`, targetArticle, sourceIndex)

	return Prompt{
		Op: OpInternalLinks,
		System: "You are the Internal Link Architect. Your task is to match the content of the target URL with the most semantically " +
			"relevant source URLs from the provided index. You must suggest the exact paragraph location and anchor text for the link. " +
			"Your output must be valid JSON.",
		User: user,
		Config: GenerationConfig{
			Tier:           TierPro,
			Temperature:    0.3,
			Schema:         internalLinksSchema(),
			ThinkingBudget: 8192,
		},
	}
}

func BuildAuditPrompt(content, keyword string) Prompt {
	user := fmt.Sprintf(`Please analyze the following content for SEO performance, identify on-page issues, and perform a competitive content gap analysis using the primary keyword: %q.

[START OF ARTICLE CONTENT]
%s
[END OF ARTICLE CONTENT]

Respond with ONLY a valid JSON object based on the analysis. The JSON object must adhere to the following structure:
- "audit_title": A short, descriptive title for this audit report.
- "summary_sentiment": A single word: 'Excellent', 'Good', 'Fair', or 'Poor'.
- "core_metrics": An object with "word_count" (integer), "readability_score_flesch" (number, 0-100), and "primary_keyword" (string).
- "on_page_review": An array of objects, each with "element" (string, e.g., 'H1 Tag'), "status" ('Pass', 'Fail', 'Warning'), and "recommendation" (string).
- "keyword_and_gap_analysis": An array of objects, each with "keyword_phrase" (string), "relevance_score" (integer, 1-5), and "notes" (string).
Do not include any other text, markdown formatting, or code fences.`, keyword, content)

	return Prompt{
		Op:     OpContentAudit,
		System: auditorSystem,
		User:   user,
		Config: GenerationConfig{Tier: TierPro, Temperature: 0.2, Grounding: true, ThinkingBudget: 8192},
	}
}

const auditorSystem = `You are 'Atlas', a Senior SEO Content Auditor and Data Analyst specializing in content gap analysis, topical authority, and technical on-page optimization. Your sole purpose is to analyze user-provided text content against best-in-class SEO standards and current search trends (using Google Search grounding).
RULES:
1. Strict JSON Output: You MUST produce a single, valid JSON object as your response. Do not add any text, markdown, or commentary outside of the JSON structure.
2. Grounded Analysis: You MUST use the Google Search grounding tool to verify keyword search volume trends, identify real-time competitive gaps, and ensure topical relevance.
3. Actionability: Every recommendation MUST be concise, prioritized, and immediately actionable for a content editor.
4. Tone: Maintain an objective, professional, and data-driven tone. Do not use filler words, subjective opinions, or conversational language.`

// schemaInstruction renders a schema as a compact hint for providers without native
// structured output.
func schemaInstruction(schema *genai.Schema) string {
	if schema == nil {
		return ""
	}
	b, err := json.Marshal(schema)
	if err != nil {
		return ""
	}
	return "\n\nYour output MUST be a single JSON object matching this schema:\n" + string(b)
}
