package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"seo_strategist/generator"
	"seo_strategist/gsc"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts rendered Markdown to an HTML fragment.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Format is an export encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// ContentType for an exported document.
func (f Format) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

// Render renders v in the requested format.
func Render(format Format, v any) (string, error) {
	out, err := Markdown(v)
	if err != nil {
		return "", err
	}
	if format == FormatHTML {
		return HTML(out)
	}
	return out, nil
}

// Kind names a result type carried as JSON by export requests.
type Kind string

const (
	KindStrategy           Kind = "strategy"
	KindTopicalMap         Kind = "topical_map"
	KindIntentClarity      Kind = "intent_clarity"
	KindCompetitorAnalysis Kind = "competitor_analysis"
	KindContentBrief       Kind = "content_brief"
	KindBrandVoice         Kind = "brand_voice"
	KindVideoBrief         Kind = "video_brief"
	KindContentDecay       Kind = "content_decay"
	KindCTROptimization    Kind = "ctr_optimization"
	KindInternalLinks      Kind = "internal_links"
	KindContentAudit       Kind = "content_audit"
	KindGSCPages           Kind = "gsc_pages"
)

// Decode reads a JSON result of the given kind into its typed value.
func Decode(kind Kind, data []byte) (any, error) {
	var v any
	switch kind {
	case KindStrategy:
		v = &generator.Snapshot{}
	case KindTopicalMap:
		v = &generator.TopicalAuthorityMap{}
	case KindIntentClarity:
		v = &generator.IntentClarityReport{}
	case KindCompetitorAnalysis:
		v = &generator.CompetitorAnalysis{}
	case KindContentBrief:
		v = &generator.ContentBrief{}
	case KindBrandVoice:
		v = &generator.BrandVoiceGuide{}
	case KindVideoBrief:
		v = &generator.VideoBrief{}
	case KindContentDecay:
		v = &generator.DecayAnalysis{}
	case KindCTROptimization:
		v = &generator.CTROptimization{}
	case KindInternalLinks:
		v = &[]generator.InternalLinkSuggestion{}
	case KindContentAudit:
		v = &generator.AuditReport{}
	case KindGSCPages:
		v = &[]gsc.Row{}
	default:
		return nil, fmt.Errorf("unknown report kind %q", kind)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	// Slice kinds render by value.
	switch r := v.(type) {
	case *generator.TopicalAuthorityMap:
		return *r, nil
	case *generator.IntentClarityReport:
		return *r, nil
	case *[]generator.InternalLinkSuggestion:
		return *r, nil
	case *[]gsc.Row:
		return *r, nil
	}
	return v, nil
}
