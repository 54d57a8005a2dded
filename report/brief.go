package report

import (
	"fmt"
	"strings"

	"seo_strategist/generator"
)

// BriefPlainText is the clipboard text of a content brief.
func BriefPlainText(b generator.ContentBrief) string {
	outline := make([]string, 0, len(b.ContentOutline))
	for _, item := range b.ContentOutline {
		text := "H2: " + item.H2
		for _, h3 := range item.H3s {
			text += "\n  H3: " + h3
		}
		outline = append(outline, text)
	}

	f := b.SEOFundamentals
	text := fmt.Sprintf(`Title: %s

Meta Description: %s

Target Intent Focus: %s

---

Content Outline:
%s

---

Required Semantic Terms:
%s

---

JSON-LD Schema:
%s`,
		f.OptimizedTitle,
		f.MetaDescription,
		f.TargetIntentFocus,
		strings.Join(outline, "\n"),
		strings.Join(b.RequiredSemanticTerms, ", "),
		b.JSONLDSchema.Pretty())
	return strings.TrimSpace(text)
}
