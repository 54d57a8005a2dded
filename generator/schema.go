package generator

import "google.golang.org/genai"

func stringSchema(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func stringList(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Description: description,
		Items:       &genai.Schema{Type: genai.TypeString},
	}
}

// contentBriefSchema constrains the content brief; json_ld_schema is itself a JSON string.
func contentBriefSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"seo_fundamentals": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"optimized_title":     {Type: genai.TypeString},
					"meta_description":    {Type: genai.TypeString},
					"target_intent_focus": {Type: genai.TypeString},
				},
				Required: []string{"optimized_title", "meta_description", "target_intent_focus"},
			},
			"content_outline": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"h2":  {Type: genai.TypeString},
						"h3s": stringList(""),
					},
					Required: []string{"h2"},
				},
			},
			"required_semantic_terms": stringList(""),
			"json_ld_schema": stringSchema("A string containing a complete, valid, and nested JSON-LD schema " +
				"(e.g., HowTo, Course, Article). This string itself must be parseable as JSON."),
		},
		Required: []string{"seo_fundamentals", "content_outline", "required_semantic_terms", "json_ld_schema"},
	}
}

func brandVoiceSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"tone_attributes": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"tone":        stringSchema("e.g., 'Witty', 'Formal', 'Technical'"),
						"score":       {Type: genai.TypeNumber, Description: "A score from 1 to 5 representing the intensity of the tone."},
						"description": stringSchema("A brief explanation of how this tone is expressed."),
					},
					Required: []string{"tone", "score", "description"},
				},
			},
			"target_reading_level": stringSchema("e.g., '9th Grade / Conversational'"),
			"sentence_structure":   stringSchema("e.g., 'Prefers short, punchy sentences; uses em-dashes liberally'"),
			"forbidden_words":      stringList("e.g., ['synergy', 'paradigm']"),
		},
		Required: []string{"tone_attributes", "target_reading_level", "sentence_structure", "forbidden_words"},
	}
}

func internalLinksSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"internal_link_suggestions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"source_url_to_link_from": stringSchema("The URL from the source index to link TO."),
						"suggested_anchor_text":   stringSchema("The exact text within the target article to be hyperlinked."),
						"contextual_snippet":      stringSchema("A short surrounding sentence from the target article for placement verification."),
					},
					Required: []string{"source_url_to_link_from", "suggested_anchor_text", "contextual_snippet"},
				},
			},
		},
		Required: []string{"internal_link_suggestions"},
	}
}
