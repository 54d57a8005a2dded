package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"seo_strategist/usage"
)

// MaxCompetitorURLs is how many competitor URLs the strategist form accepts.
const MaxCompetitorURLs = 5

const briefContextMsg = "Brief generation context is tied to the main SEO Strategist report. Please run a report there first."

// Tab is the report view the user is looking at.
type Tab string

const (
	TabStrategist Tab = "strategist"
	TabBrand      Tab = "brand"
	TabVideo      Tab = "video"
	TabAuditor    Tab = "auditor"
	TabGSC        Tab = "gsc"
	TabLinking    Tab = "linking"
)

func ParseTab(s string) (Tab, error) {
	switch t := Tab(s); t {
	case TabStrategist, TabBrand, TabVideo, TabAuditor, TabGSC, TabLinking:
		return t, nil
	}
	return "", invalid("tab", "", "unknown tab %q", s)
}

// RunState of the strategy run or the brief generation.
type RunState string

const (
	StateIdle      RunState = "idle"
	StateRunning   RunState = "running"
	StateSucceeded RunState = "succeeded"
	StateFailed    RunState = "failed"
)

// BriefState is the on-demand content brief modal.
type BriefState struct {
	Open    bool          `json:"open"`
	Loading bool          `json:"loading"`
	Keyword string        `json:"keyword,omitempty"`
	Brief   *ContentBrief `json:"brief,omitempty"`
}

// Snapshot is a copy of the session state safe to hand to callers.
type Snapshot struct {
	SessionID          string              `json:"session_id"`
	ClientID           string              `json:"client_id"`
	Tab                Tab                 `json:"tab"`
	State              RunState            `json:"state"`
	RunID              uint64              `json:"run_id"`
	TopicalMap         TopicalAuthorityMap `json:"topical_map,omitempty"`
	IntentReport       IntentClarityReport `json:"intent_report,omitempty"`
	CompetitorAnalysis *CompetitorAnalysis `json:"competitor_analysis,omitempty"`
	Error              string              `json:"error,omitempty"`
	Brief              BriefState          `json:"brief"`
	Region             string              `json:"region,omitempty"`
}

// Session holds one user's strategist workspace across submissions, the way a browser tab
// holds its form state. Safe for concurrent use.
type Session struct {
	ID       string
	ClientID string

	agent  *Agent
	usage  *usage.Tracker
	logger *zap.Logger

	mu           sync.Mutex
	tab          Tab
	runID        uint64
	state        RunState
	topicalMap   TopicalAuthorityMap
	intentReport IntentClarityReport
	competitor   *CompetitorAnalysis
	errMsg       string
	lastRegion   string
	briefID      uint64
	brief        BriefState
}

// NewSession creates an idle session on the strategist tab.
func NewSession(id, clientID string, agent *Agent, tracker *usage.Tracker, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracker == nil {
		tracker = usage.NewTracker(nil, nil)
	}
	return &Session{
		ID:       id,
		ClientID: clientID,
		agent:    agent,
		usage:    tracker,
		logger:   logger.With(zap.String("session", id)),
		tab:      TabStrategist,
		state:    StateIdle,
	}
}

// normalizeRequest drops blank competitor URLs and caps screenshots, then checks the
// required fields.
func normalizeRequest(req StrategyRequest) (StrategyRequest, error) {
	req.SeedTopic = strings.TrimSpace(req.SeedTopic)
	if req.SeedTopic == "" {
		return req, invalid("strategy request", "seed_topic", "is required")
	}
	urls := make([]string, 0, len(req.CompetitorURLs))
	for _, u := range req.CompetitorURLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) > MaxCompetitorURLs {
		return req, invalid("strategy request", "competitor_urls", "has %d urls, at most %d allowed", len(urls), MaxCompetitorURLs)
	}
	req.CompetitorURLs = urls
	if len(req.Screenshots) > MaxScreenshots {
		req.Screenshots = req.Screenshots[:MaxScreenshots]
	}
	if strings.TrimSpace(req.Region) == "" {
		req.Region = Regions[0].Name
	}
	return req, nil
}

// wantsCompetitorAnalysis gates the optional third call: a first URL and at least one screenshot.
func wantsCompetitorAnalysis(req StrategyRequest) bool {
	return len(req.CompetitorURLs) > 0 && req.CompetitorURLs[0] != "" && len(req.Screenshots) > 0
}

// Submit runs one strategy: validate, consume a free generation, then dispatch the topical
// map and intent clarity calls (plus competitor analysis when gated in) concurrently. Any
// failure fails the whole run and no partial results are kept. A run that finishes after
// a newer submission started is discarded.
func (s *Session) Submit(ctx context.Context, req StrategyRequest) (Snapshot, error) {
	req, err := normalizeRequest(req)
	if err != nil {
		return s.Snapshot(), err
	}

	// Counted on acceptance: a run that later fails still uses a generation.
	if _, err := s.usage.TryConsume(ctx, s.ClientID, string(OpStrategist)); err != nil {
		if errors.Is(err, ErrUsageLimitReached) {
			return s.Snapshot(), ErrUsageLimitReached
		}
		return s.Snapshot(), fmt.Errorf("record usage: %w", err)
	}

	s.mu.Lock()
	s.runID++
	runID := s.runID
	s.state = StateRunning
	s.topicalMap = nil
	s.intentReport = nil
	s.competitor = nil
	s.errMsg = ""
	s.mu.Unlock()

	s.logger.Info("strategy run started",
		zap.Uint64("run", runID),
		zap.String("topic", req.SeedTopic),
		zap.String("region", req.Region),
		zap.Int("competitors", len(req.CompetitorURLs)),
		zap.Int("screenshots", len(req.Screenshots)))

	var (
		topicalMap   TopicalAuthorityMap
		intentReport IntentClarityReport
		competitor   *CompetitorAnalysis
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		topicalMap, err = s.agent.TopicalMap(gctx, req)
		return err
	})
	g.Go(func() error {
		var err error
		intentReport, err = s.agent.IntentClarity(gctx, req)
		return err
	})
	if wantsCompetitorAnalysis(req) {
		g.Go(func() error {
			var err error
			competitor, err = s.agent.CompetitorAnalysis(gctx, req.CompetitorURLs, req.Screenshots, req.Region)
			return err
		})
	}
	runErr := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if runID != s.runID {
		s.logger.Info("discarding stale strategy run", zap.Uint64("run", runID), zap.Uint64("current", s.runID))
		return s.snapshotLocked(), runErr
	}
	if runErr != nil {
		s.state = StateFailed
		s.errMsg = UserMessage(runErr)
		s.logger.Warn("strategy run failed", zap.Uint64("run", runID), zap.Error(runErr))
		return s.snapshotLocked(), runErr
	}
	s.state = StateSucceeded
	s.topicalMap = topicalMap
	s.intentReport = intentReport
	s.competitor = competitor
	s.lastRegion = req.Region
	s.logger.Info("strategy run succeeded", zap.Uint64("run", runID))
	return s.snapshotLocked(), nil
}

// RequestBrief generates a content brief for a keyword picked from a report row. It reuses
// the region of the last successful run, or the agent's brief region on the strategist tab.
func (s *Session) RequestBrief(ctx context.Context, keyword string) (Snapshot, error) {
	if blank(keyword) {
		return s.Snapshot(), invalid("brief request", "keyword", "is required")
	}

	s.mu.Lock()
	if s.lastRegion == "" && s.tab != TabStrategist {
		s.errMsg = briefContextMsg
		s.mu.Unlock()
		return s.Snapshot(), &ContextError{Msg: briefContextMsg}
	}
	region := s.lastRegion
	if region == "" {
		region = s.agent.BriefRegion()
	}
	s.briefID++
	briefID := s.briefID
	s.brief = BriefState{Open: true, Loading: true, Keyword: keyword}
	s.mu.Unlock()

	brief, err := s.agent.ContentBrief(ctx, keyword, region)

	s.mu.Lock()
	defer s.mu.Unlock()
	if briefID != s.briefID {
		return s.snapshotLocked(), err
	}
	s.brief.Loading = false
	if err != nil {
		s.errMsg = "Failed to generate brief: " + UserMessage(err)
		s.logger.Warn("brief generation failed", zap.String("keyword", keyword), zap.Error(err))
		return s.snapshotLocked(), err
	}
	s.brief.Brief = brief
	return s.snapshotLocked(), nil
}

// CloseBrief hides the modal; a brief still in flight is dropped when it lands.
func (s *Session) CloseBrief() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.briefID++
	s.brief = BriefState{}
}

// DismissError clears the banner without resubmitting.
func (s *Session) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

func (s *Session) SetTab(tab Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = tab
}

// Usage reports the strategist free-generation status for this session's client.
func (s *Session) Usage(ctx context.Context) (usage.Status, error) {
	return s.usage.Status(ctx, s.ClientID, string(OpStrategist))
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:          s.ID,
		ClientID:           s.ClientID,
		Tab:                s.tab,
		State:              s.state,
		RunID:              s.runID,
		TopicalMap:         s.topicalMap,
		IntentReport:       s.intentReport,
		CompetitorAnalysis: s.competitor,
		Error:              s.errMsg,
		Brief:              s.brief,
		Region:             s.lastRegion,
	}
}
