package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	jsonFence = "```json"
	fence     = "```"
)

// StripFences removes a leading ```json or ``` marker and a trailing ``` marker, trimming
// whitespace after each step.
func StripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, jsonFence) {
		cleaned = strings.TrimSpace(cleaned[len(jsonFence):])
	} else if strings.HasPrefix(cleaned, fence) {
		cleaned = strings.TrimSpace(cleaned[len(fence):])
	}
	if strings.HasSuffix(cleaned, fence) {
		cleaned = strings.TrimSpace(cleaned[:len(cleaned)-len(fence)])
	}
	return cleaned
}

// CleanAndParse strips markdown fences from free-form model text and parses the rest as
// JSON. On failure the ParseError carries the original text, not the cleaned one.
func CleanAndParse(raw string, logger *zap.Logger) (any, error) {
	var v any
	if err := cleanAndDecode(raw, &v, logger); err != nil {
		return nil, err
	}
	return v, nil
}

func cleanAndDecode(raw string, out any, logger *zap.Logger) error {
	cleaned := StripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		if logger != nil {
			logger.Warn("failed to parse JSON after cleaning", zap.String("cleaned", cleaned), zap.Error(err))
		}
		return &ParseError{Raw: raw, Err: err}
	}
	return nil
}

// decodeStrict parses schema-constrained output. The remote side does not fence it, so no
// stripping happens here.
func decodeStrict(raw string, out any) error {
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), out); err != nil {
		return &ParseError{Raw: raw, Err: err}
	}
	return nil
}

// unwrap pulls the single named key out of a wrapper object and decodes it into out.
func unwrap(wrapper map[string]json.RawMessage, key, raw string, out any) error {
	inner, ok := wrapper[key]
	if !ok {
		return &ParseError{Raw: raw, Err: fmt.Errorf("missing top-level key %q", key)}
	}
	if err := json.Unmarshal(inner, out); err != nil {
		return &ParseError{Raw: raw, Err: fmt.Errorf("decode %q: %w", key, err)}
	}
	return nil
}
