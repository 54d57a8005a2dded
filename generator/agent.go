package generator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PageInspector looks up observed metadata for a competitor URL.
type PageInspector interface {
	Inspect(ctx context.Context, url string) (CompetitorPage, error)
}

// Agent runs one dispatcher per report type: build the prompt, call the model once,
// normalize and validate the result. It never retries.
type Agent struct {
	llm       LLMClient
	logger    *zap.Logger
	metrics   *Metrics
	inspector PageInspector
	// briefRegion targets briefs requested before any strategy run.
	briefRegion string
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

func WithLogger(logger *zap.Logger) AgentOption {
	return func(a *Agent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) AgentOption {
	return func(a *Agent) {
		a.metrics = m
	}
}

// WithPageInspector enables best-effort competitor metadata enrichment.
func WithPageInspector(p PageInspector) AgentOption {
	return func(a *Agent) {
		a.inspector = p
	}
}

// WithBriefRegion overrides DefaultRegion for briefs that carry no region.
func WithBriefRegion(region string) AgentOption {
	return func(a *Agent) {
		if !blank(region) {
			a.briefRegion = strings.TrimSpace(region)
		}
	}
}

func NewAgent(llm LLMClient, opts ...AgentOption) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	a := &Agent{llm: llm, logger: zap.NewNop(), briefRegion: DefaultRegion}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// BriefRegion is the region used for briefs that carry none.
func (a *Agent) BriefRegion() string {
	return a.briefRegion
}

// complete issues the single remote call and decodes the text into out. Schema-bound
// calls are parsed as-is; free-form calls go through fence stripping first.
func (a *Agent) complete(ctx context.Context, p Prompt, out any) (string, error) {
	a.logger.Debug("dispatching",
		zap.String("op", string(p.Op)),
		zap.String("tier", string(p.Config.Tier)),
		zap.Bool("grounding", p.Config.Grounding),
		zap.Bool("structured", p.Structured()),
		zap.Int("images", len(p.Images)))

	start := time.Now()
	raw, err := a.llm.Complete(ctx, p)
	a.metrics.observeCall(p.Op, time.Since(start))
	if err != nil {
		a.metrics.count(p.Op, outcomeRemoteError)
		a.logger.Warn("model call failed", zap.String("op", string(p.Op)), zap.Error(err))
		var remote *RemoteCallError
		if errors.As(err, &remote) {
			return "", err
		}
		return "", &RemoteCallError{Op: p.Op, Err: err}
	}

	if p.Structured() {
		err = decodeStrict(raw, out)
	} else {
		err = cleanAndDecode(raw, out, a.logger)
	}
	if err != nil {
		a.metrics.count(p.Op, outcomeParseError)
		return raw, err
	}
	return raw, nil
}

// completeWrapped decodes a single-key wrapper object and returns its inner value.
func (a *Agent) completeWrapped(ctx context.Context, p Prompt, key string, out any) error {
	var wrapper map[string]json.RawMessage
	raw, err := a.complete(ctx, p, &wrapper)
	if err != nil {
		return err
	}
	if err := unwrap(wrapper, key, raw, out); err != nil {
		a.metrics.count(p.Op, outcomeParseError)
		return err
	}
	return nil
}

func (a *Agent) checked(op Operation, err error) error {
	if err != nil {
		a.metrics.count(op, outcomeInvalid)
		a.logger.Warn("model output failed validation", zap.String("op", string(op)), zap.Error(err))
		return err
	}
	a.metrics.count(op, outcomeOK)
	return nil
}

func (a *Agent) TopicalMap(ctx context.Context, req StrategyRequest) (TopicalAuthorityMap, error) {
	p := BuildTopicalMapPrompt(req)
	var m TopicalAuthorityMap
	if err := a.completeWrapped(ctx, p, "pillar_topics", &m); err != nil {
		return nil, err
	}
	if err := a.checked(p.Op, ValidateTopicalMap(m)); err != nil {
		return nil, err
	}
	return m, nil
}

func (a *Agent) IntentClarity(ctx context.Context, req StrategyRequest) (IntentClarityReport, error) {
	p := BuildIntentClarityPrompt(req)
	var r IntentClarityReport
	if err := a.completeWrapped(ctx, p, "keyword_analysis", &r); err != nil {
		return nil, err
	}
	if err := a.checked(p.Op, ValidateIntentReport(r)); err != nil {
		return nil, err
	}
	return r, nil
}

func (a *Agent) CompetitorAnalysis(ctx context.Context, urls []string, screenshots []Image, region string) (*CompetitorAnalysis, error) {
	p := BuildCompetitorPrompt(urls, screenshots, region, a.inspectCompetitors(ctx, urls))
	var ca CompetitorAnalysis
	if _, err := a.complete(ctx, p, &ca); err != nil {
		return nil, err
	}
	if err := a.checked(p.Op, ValidateCompetitorAnalysis(ca, urls)); err != nil {
		return nil, err
	}
	return &ca, nil
}

// inspectCompetitors never fails the dispatch; unreachable pages are skipped.
func (a *Agent) inspectCompetitors(ctx context.Context, urls []string) []CompetitorPage {
	if a.inspector == nil {
		return nil
	}
	pages := make([]CompetitorPage, 0, len(urls))
	for _, u := range urls {
		page, err := a.inspector.Inspect(ctx, u)
		if err != nil {
			a.logger.Info("skipping competitor metadata", zap.String("url", u), zap.Error(err))
			continue
		}
		pages = append(pages, page)
	}
	return pages
}

func (a *Agent) ContentBrief(ctx context.Context, keyword, region string) (*ContentBrief, error) {
	if blank(keyword) {
		return nil, invalid("content brief request", "keyword", "is required")
	}
	if blank(region) {
		region = a.briefRegion
	}
	p := BuildContentBriefPrompt(keyword, region)
	var b ContentBrief
	if _, err := a.complete(ctx, p, &b); err != nil {
		return nil, err
	}
	if err := a.checked(p.Op, ValidateContentBrief(b)); err != nil {
		return nil, err
	}
	return &b, nil
}

func (a *Agent) BrandVoice(ctx context.Context, samples []string) (*BrandVoiceGuide, error) {
	joined := JoinSamples(samples)
	if joined == "" {
		return nil, invalid("brand voice request", "samples", "need at least one non-empty sample")
	}
	p := BuildBrandVoicePrompt(joined)
	var g BrandVoiceGuide
	if _, err := a.complete(ctx, p, &g); err != nil {
		return nil, err
	}
	if err := a.checked(p.Op, ValidateBrandVoice(g)); err != nil {
		return nil, err
	}
	return &g, nil
}

func (a *Agent) VideoBrief(ctx context.Context, req VideoBriefRequest) (*VideoBrief, error) {
	if blank(req.Topic) {
		return nil, invalid("video brief request", "topic", "is required")
	}
	if req.Platform != "" && req.Platform != PlatformLong && req.Platform != PlatformShort {
		return nil, invalid("video brief request", "platform", "must be %q or %q", PlatformLong, PlatformShort)
	}
	p := BuildVideoBriefPrompt(req)
	var b VideoBrief
	if _, err := a.complete(ctx, p, &b); err != nil {
		return nil, err
	}
	if err := a.checked(p.Op, ValidateVideoBrief(b, req.GenerateScript)); err != nil {
		return nil, err
	}
	return &b, nil
}

func (a *Agent) DiagnoseDecay(ctx context.Context, page GscPagePerformance) (*DecayAnalysis, error) {
	if blank(page.URL) {
		return nil, invalid("decay request", "url", "is required")
	}
	p := BuildDecayPrompt(page)
	var d DecayAnalysis
	if _, err := a.complete(ctx, p, &d); err != nil {
		return nil, err
	}
	if err := a.checked(p.Op, ValidateDecayAnalysis(d)); err != nil {
		return nil, err
	}
	return &d, nil
}

func (a *Agent) OptimizeCTR(ctx context.Context, page GscPagePerformance) (*CTROptimization, error) {
	if blank(page.URL) {
		return nil, invalid("ctr request", "url", "is required")
	}
	p := BuildCTRPrompt(page)
	var o CTROptimization
	if _, err := a.complete(ctx, p, &o); err != nil {
		return nil, err
	}
	if err := a.checked(p.Op, ValidateCTROptimization(o)); err != nil {
		return nil, err
	}
	return &o, nil
}

func (a *Agent) InternalLinks(ctx context.Context, targetArticle, sourceIndex string) ([]InternalLinkSuggestion, error) {
	if blank(targetArticle) || blank(sourceIndex) {
		return nil, invalid("internal link request", "", "target article and source index are both required")
	}
	p := BuildInternalLinksPrompt(targetArticle, sourceIndex)
	var links []InternalLinkSuggestion
	if err := a.completeWrapped(ctx, p, "internal_link_suggestions", &links); err != nil {
		return nil, err
	}
	if err := a.checked(p.Op, ValidateInternalLinks(links)); err != nil {
		return nil, err
	}
	return links, nil
}

func (a *Agent) ContentAudit(ctx context.Context, content, keyword string) (*AuditReport, error) {
	if blank(content) || blank(keyword) {
		return nil, invalid("audit request", "", "content and keyword are both required")
	}
	p := BuildAuditPrompt(strings.TrimSpace(content), keyword)
	var r AuditReport
	if _, err := a.complete(ctx, p, &r); err != nil {
		return nil, err
	}
	if err := a.checked(p.Op, ValidateAuditReport(r)); err != nil {
		return nil, err
	}
	return &r, nil
}
