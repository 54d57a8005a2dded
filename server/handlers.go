package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"seo_strategist/generator"
	"seo_strategist/gsc"
	"seo_strategist/report"
	"seo_strategist/usage"
)

// --- Sessions ---

type sessionCreateReq struct {
	ClientID string `json:"client_id"`
}

type sessionResp struct {
	generator.Snapshot
	Usage usage.Status `json:"usage"`
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req sessionCreateReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	client := strings.TrimSpace(req.ClientID)
	if client == "" {
		client = newID()
	}
	id := newID()
	sess := generator.NewSession(id, client, s.agent, s.tracker, s.logger)
	s.store.set(id, sess)
	s.logger.Info("session created", zap.String("session", id), zap.String("client", client))
	s.writeSession(w, r, sess.Snapshot(), sess)
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, snap generator.Snapshot, sess *generator.Session) {
	status, err := sess.Usage(r.Context())
	if err != nil {
		s.fail(w, r, err, &snap)
		return
	}
	writeJSON(w, sessionResp{Snapshot: snap, Usage: status})
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	s.writeSession(w, r, sess.Snapshot(), sess)
}

type tabReq struct {
	Tab string `json:"tab"`
}

func (s *Server) handleSetTab(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	var req tabReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tab, err := generator.ParseTab(req.Tab)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	sess.SetTab(tab)
	s.writeSession(w, r, sess.Snapshot(), sess)
}

type strategyReq struct {
	SeedTopic      string   `json:"seed_topic"`
	TargetAudience string   `json:"target_audience"`
	CompetitorURLs []string `json:"competitor_urls"`
	Region         string   `json:"region"`
	// Screenshots are data URLs as produced by a browser file reader.
	Screenshots []string `json:"screenshots"`
}

func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	var req strategyReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	images := make([]generator.Image, 0, len(req.Screenshots))
	for _, raw := range req.Screenshots {
		if len(images) == generator.MaxScreenshots {
			break
		}
		img, err := generator.ParseDataURL(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid screenshot: "+err.Error())
			return
		}
		images = append(images, img)
	}

	ctx, cancel := s.modelContext(r)
	defer cancel()
	snap, err := sess.Submit(ctx, generator.StrategyRequest{
		SeedTopic:      req.SeedTopic,
		TargetAudience: req.TargetAudience,
		CompetitorURLs: req.CompetitorURLs,
		Region:         req.Region,
		Screenshots:    images,
	})
	if err != nil {
		s.fail(w, r, err, &snap)
		return
	}
	s.writeSession(w, r, snap, sess)
}

type briefReq struct {
	Keyword string `json:"keyword"`
}

func (s *Server) handleBrief(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	var req briefReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := s.modelContext(r)
	defer cancel()
	snap, err := sess.RequestBrief(ctx, req.Keyword)
	if err != nil {
		s.fail(w, r, err, &snap)
		return
	}
	writeJSON(w, briefResp{BriefState: snap.Brief, CopyText: copyText(snap.Brief.Brief)})
}

type briefResp struct {
	generator.BriefState
	CopyText string `json:"copy_text,omitempty"`
}

func copyText(b *generator.ContentBrief) string {
	if b == nil {
		return ""
	}
	return report.BriefPlainText(*b)
}

func (s *Server) handleCloseBrief(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	sess.CloseBrief()
	s.writeSession(w, r, sess.Snapshot(), sess)
}

func (s *Server) handleDismissError(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	sess.DismissError()
	s.writeSession(w, r, sess.Snapshot(), sess)
}

// --- Stateless tools ---

// metered records a stateless tool use, refusing once a configured limit is used up.
func (s *Server) metered(ctx context.Context, r *http.Request, op generator.Operation) error {
	_, err := s.tracker.TryConsume(ctx, clientID(r), string(op))
	return err
}

type brandVoiceReq struct {
	Samples []string `json:"samples"`
}

func (s *Server) handleBrandVoice(w http.ResponseWriter, r *http.Request) {
	var req brandVoiceReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if generator.JoinSamples(req.Samples) == "" {
		writeError(w, http.StatusBadRequest, "at least one non-empty content sample is required")
		return
	}
	ctx, cancel := s.modelContext(r)
	defer cancel()
	if err := s.metered(ctx, r, generator.OpBrandVoice); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	guide, err := s.agent.BrandVoice(ctx, req.Samples)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, guide)
}

func (s *Server) handleVideoBrief(w http.ResponseWriter, r *http.Request) {
	var req generator.VideoBriefRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}
	ctx, cancel := s.modelContext(r)
	defer cancel()
	if err := s.metered(ctx, r, generator.OpVideoBrief); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	brief, err := s.agent.VideoBrief(ctx, req)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, brief)
}

type auditReq struct {
	Content string `json:"content"`
	URL     string `json:"url"`
	Keyword string `json:"keyword"`
}

type auditResp struct {
	*generator.AuditReport
	SourceURL string `json:"source_url,omitempty"`
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	var req auditReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := s.modelContext(r)
	defer cancel()

	content := req.Content
	if strings.TrimSpace(content) == "" && strings.TrimSpace(req.URL) != "" {
		if s.fetcher == nil {
			writeError(w, http.StatusBadRequest, "auditing by URL is disabled; paste the article content instead")
			return
		}
		article, err := s.fetcher.Article(ctx, req.URL)
		if err != nil {
			s.fail(w, r, err, nil)
			return
		}
		content = article.Markdown
	}
	if strings.TrimSpace(content) == "" || strings.TrimSpace(req.Keyword) == "" {
		writeError(w, http.StatusBadRequest, "content (or url) and keyword are both required")
		return
	}
	if err := s.metered(ctx, r, generator.OpContentAudit); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	audit, err := s.agent.ContentAudit(ctx, content, req.Keyword)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, auditResp{AuditReport: audit, SourceURL: req.URL})
}

type internalLinksReq struct {
	TargetArticle string `json:"target_article"`
	SourceIndex   string `json:"source_index"`
}

type internalLinksResp struct {
	Suggestions []generator.InternalLinkSuggestion `json:"internal_link_suggestions"`
}

func (s *Server) handleInternalLinks(w http.ResponseWriter, r *http.Request) {
	var req internalLinksReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.TargetArticle) == "" || strings.TrimSpace(req.SourceIndex) == "" {
		writeError(w, http.StatusBadRequest, "target_article and source_index are both required")
		return
	}
	ctx, cancel := s.modelContext(r)
	defer cancel()
	if err := s.metered(ctx, r, generator.OpInternalLinks); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	links, err := s.agent.InternalLinks(ctx, req.TargetArticle, req.SourceIndex)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, internalLinksResp{Suggestions: links})
}

// --- Search Console ---

func (s *Server) handleGSCPages(w http.ResponseWriter, r *http.Request) {
	rows, err := gsc.List(r.Context(), s.gsc)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, rows)
}

type gscReq struct {
	URL string `json:"url"`
}

type decayResp struct {
	Page     generator.GscPagePerformance `json:"page"`
	Analysis *generator.DecayAnalysis     `json:"analysis"`
}

type ctrResp struct {
	Page         generator.GscPagePerformance `json:"page"`
	Optimization *generator.CTROptimization   `json:"optimization"`
}

func (s *Server) lookupPage(w http.ResponseWriter, r *http.Request) (generator.GscPagePerformance, bool) {
	var req gscReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return generator.GscPagePerformance{}, false
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return generator.GscPagePerformance{}, false
	}
	page, err := gsc.Find(r.Context(), s.gsc, req.URL)
	if err != nil {
		s.fail(w, r, err, nil)
		return generator.GscPagePerformance{}, false
	}
	return page, true
}

func (s *Server) handleGSCDecay(w http.ResponseWriter, r *http.Request) {
	page, ok := s.lookupPage(w, r)
	if !ok {
		return
	}
	ctx, cancel := s.modelContext(r)
	defer cancel()
	if err := s.metered(ctx, r, generator.OpContentDecay); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	analysis, err := s.agent.DiagnoseDecay(ctx, page)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, decayResp{Page: page, Analysis: analysis})
}

func (s *Server) handleGSCCTR(w http.ResponseWriter, r *http.Request) {
	page, ok := s.lookupPage(w, r)
	if !ok {
		return
	}
	ctx, cancel := s.modelContext(r)
	defer cancel()
	if err := s.metered(ctx, r, generator.OpCTROptimization); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	opt, err := s.agent.OptimizeCTR(ctx, page)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, ctrResp{Page: page, Optimization: opt})
}

// --- Export and form options ---

type exportReq struct {
	Kind report.Kind     `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req exportReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := report.Decode(req.Kind, req.Data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := report.Render(format, v)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	_, _ = w.Write([]byte(out))
}

type optionsResp struct {
	Regions       []generator.Region `json:"regions"`
	Audiences     []string           `json:"audiences"`
	DefaultRegion string             `json:"default_region"`
	BriefRegion   string             `json:"brief_region"`
	MaxURLs       int                `json:"max_competitor_urls"`
	MaxImages     int                `json:"max_screenshots"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, optionsResp{
		Regions:       generator.Regions,
		Audiences:     generator.Audiences,
		DefaultRegion: generator.Regions[0].Name,
		BriefRegion:   s.agent.BriefRegion(),
		MaxURLs:       generator.MaxCompetitorURLs,
		MaxImages:     generator.MaxScreenshots,
	})
}
