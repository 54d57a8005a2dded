package generator

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

// Fixture returns the canned model output for an operation.
func Fixture(op Operation) (string, error) {
	b, err := fixtureFS.ReadFile("fixtures/" + string(op) + ".json")
	if err != nil {
		return "", fmt.Errorf("no fixture for %s: %w", op, err)
	}
	return string(b), nil
}

// MockLLM is a local stand-in that never calls a model. It answers with the embedded
// fixtures, fenced like a real grounded reply when the prompt has no schema.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	out, err := Fixture(prompt.Op)
	if err != nil {
		return "", err
	}
	if prompt.Op == OpCompetitorAnalysis {
		out, err = alignCompetitorFixture(out, prompt.User)
		if err != nil {
			return "", err
		}
	}
	if prompt.Structured() {
		return out, nil
	}
	return "```json\n" + out + "\n```", nil
}

// alignCompetitorFixture fills one summary per URL listed in the prompt, in prompt order.
func alignCompetitorFixture(fixture, user string) (string, error) {
	var ca CompetitorAnalysis
	if err := json.Unmarshal([]byte(fixture), &ca); err != nil {
		return "", err
	}
	ca.CompetitorSummaries = nil
	for _, line := range strings.Split(user, "\n") {
		rest, ok := strings.CutPrefix(line, "Competitor URLs: ")
		if !ok {
			continue
		}
		for _, u := range strings.Split(rest, ", ") {
			ca.CompetitorSummaries = append(ca.CompetitorSummaries, CompetitorSummary{
				URL:         u,
				VisualTone:  "Clean, minimal layout with large lifestyle photography.",
				CoreMessage: "Composting is easy for anyone with the right bin.",
			})
		}
		break
	}
	b, err := json.Marshal(ca)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
