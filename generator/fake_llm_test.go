package generator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type handler func(ctx context.Context, p Prompt) (string, error)

// scriptedLLM answers each operation with a test-supplied handler and records every prompt.
type scriptedLLM struct {
	mu       sync.Mutex
	handlers map[Operation]handler
	calls    []Prompt
}

func newScriptedLLM() *scriptedLLM {
	return &scriptedLLM{handlers: make(map[Operation]handler)}
}

func (s *scriptedLLM) on(op Operation, h handler) *scriptedLLM {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[op] = h
	return s
}

func (s *scriptedLLM) reply(op Operation, text string) *scriptedLLM {
	return s.on(op, func(context.Context, Prompt) (string, error) { return text, nil })
}

func (s *scriptedLLM) fail(op Operation, err error) *scriptedLLM {
	return s.on(op, func(context.Context, Prompt) (string, error) { return "", err })
}

// fixtures answers the given operations the way MockLLM does.
func (s *scriptedLLM) fixtures(ops ...Operation) *scriptedLLM {
	for _, op := range ops {
		s.on(op, MockLLM{}.Complete)
	}
	return s
}

func (s *scriptedLLM) Complete(ctx context.Context, p Prompt) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, p)
	h := s.handlers[p.Op]
	s.mu.Unlock()
	if h == nil {
		return "", fmt.Errorf("no scripted reply for %s", p.Op)
	}
	return h(ctx, p)
}

func (s *scriptedLLM) prompts(op Operation) []Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Prompt
	for _, p := range s.calls {
		if p.Op == op {
			out = append(out, p)
		}
	}
	return out
}

func (s *scriptedLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newTestAgent(t *testing.T, llm LLMClient, opts ...AgentOption) *Agent {
	t.Helper()
	a, err := NewAgent(llm, opts...)
	require.NoError(t, err)
	return a
}

func fixture(t *testing.T, op Operation) string {
	t.Helper()
	out, err := Fixture(op)
	require.NoError(t, err)
	return out
}

func fenced(s string) string {
	return "```json\n" + s + "\n```"
}

// competitorReply builds a valid analysis for urls, in order.
func competitorReply(urls ...string) string {
	var sb strings.Builder
	sb.WriteString(`{"competitor_summaries":[`)
	for i, u := range urls {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"url":%q,"visual_tone":"bright","core_message":"buy now"}`, u)
	}
	sb.WriteString(`],"collective_content_gaps":{"gap_keywords":["a","b","c"],"analysis":"room to grow"}}`)
	return sb.String()
}
