package generator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo_strategist/usage"
)

func newTestSession(t *testing.T, llm LLMClient, limit int) (*Session, *usage.Tracker) {
	t.Helper()
	tracker := usage.NewTracker(usage.NewMemoryCounter(), map[string]int{string(OpStrategist): limit})
	return NewSession("s1", "client-1", newTestAgent(t, llm), tracker, nil), tracker
}

func screenshots(n int) []Image {
	out := make([]Image, n)
	for i := range out {
		out[i] = Image{MIMEType: "image/png", Data: []byte{byte(i)}}
	}
	return out
}

func TestSessionSubmitWithoutCompetitors(t *testing.T) {
	llm := newScriptedLLM().fixtures(OpTopicalMap, OpIntentClarity)
	s, tracker := newTestSession(t, llm, 3)

	snap, err := s.Submit(context.Background(), StrategyRequest{
		SeedTopic:      "home composting",
		TargetAudience: "Beginners",
		CompetitorURLs: []string{"", "  "},
		Region:         "United States",
	})
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, snap.State)
	assert.NotEmpty(t, snap.TopicalMap)
	assert.NotEmpty(t, snap.IntentReport)
	assert.Nil(t, snap.CompetitorAnalysis)
	assert.Empty(t, snap.Error)
	assert.Equal(t, 2, llm.callCount())
	assert.Empty(t, llm.prompts(OpCompetitorAnalysis))

	status, err := tracker.Status(context.Background(), "client-1", string(OpStrategist))
	require.NoError(t, err)
	assert.Equal(t, 1, status.Used)
	assert.Equal(t, 2, status.Remaining)
}

func TestSessionCompetitorGating(t *testing.T) {
	ctx := context.Background()
	url := "https://competitor.example/bins"

	t.Run("url without screenshots", func(t *testing.T) {
		llm := newScriptedLLM().fixtures(OpTopicalMap, OpIntentClarity)
		s, _ := newTestSession(t, llm, 0)
		snap, err := s.Submit(ctx, StrategyRequest{SeedTopic: "compost", CompetitorURLs: []string{url}})
		require.NoError(t, err)
		assert.Nil(t, snap.CompetitorAnalysis)
		assert.Empty(t, llm.prompts(OpCompetitorAnalysis))
	})

	t.Run("screenshots without url", func(t *testing.T) {
		llm := newScriptedLLM().fixtures(OpTopicalMap, OpIntentClarity)
		s, _ := newTestSession(t, llm, 0)
		_, err := s.Submit(ctx, StrategyRequest{SeedTopic: "compost", Screenshots: screenshots(2)})
		require.NoError(t, err)
		assert.Empty(t, llm.prompts(OpCompetitorAnalysis))
	})

	t.Run("url and screenshots", func(t *testing.T) {
		llm := newScriptedLLM().
			fixtures(OpTopicalMap, OpIntentClarity).
			reply(OpCompetitorAnalysis, fenced(competitorReply(url)))
		s, _ := newTestSession(t, llm, 0)
		snap, err := s.Submit(ctx, StrategyRequest{SeedTopic: "compost", CompetitorURLs: []string{url}, Screenshots: screenshots(12)})
		require.NoError(t, err)
		require.NotNil(t, snap.CompetitorAnalysis)
		assert.Equal(t, url, snap.CompetitorAnalysis.CompetitorSummaries[0].URL)

		sent := llm.prompts(OpCompetitorAnalysis)
		require.Len(t, sent, 1)
		assert.Len(t, sent[0].Images, MaxScreenshots)
	})
}

func TestSessionCallsRunConcurrently(t *testing.T) {
	intentStarted := make(chan struct{})
	llm := newScriptedLLM().
		on(OpIntentClarity, func(ctx context.Context, p Prompt) (string, error) {
			close(intentStarted)
			return MockLLM{}.Complete(ctx, p)
		}).
		on(OpTopicalMap, func(ctx context.Context, p Prompt) (string, error) {
			select {
			case <-intentStarted:
			case <-time.After(5 * time.Second):
				return "", errors.New("intent call never started")
			}
			return MockLLM{}.Complete(ctx, p)
		})
	s, _ := newTestSession(t, llm, 0)

	snap, err := s.Submit(context.Background(), StrategyRequest{SeedTopic: "compost"})
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, snap.State)
}

func TestSessionAllOrNothing(t *testing.T) {
	llm := newScriptedLLM().
		fixtures(OpTopicalMap).
		fail(OpIntentClarity, errors.New("503 service unavailable"))
	s, tracker := newTestSession(t, llm, 3)

	snap, err := s.Submit(context.Background(), StrategyRequest{SeedTopic: "compost"})
	require.Error(t, err)
	assert.True(t, IsRemoteCall(err))

	assert.Equal(t, StateFailed, snap.State)
	assert.Nil(t, snap.TopicalMap)
	assert.Nil(t, snap.IntentReport)
	assert.Equal(t, "503 service unavailable", snap.Error)

	// The failed run still used a generation.
	status, err := tracker.Status(context.Background(), "client-1", string(OpStrategist))
	require.NoError(t, err)
	assert.Equal(t, 1, status.Used)
}

func TestSessionFailureClearsPreviousResults(t *testing.T) {
	llm := newScriptedLLM().fixtures(OpTopicalMap, OpIntentClarity)
	s, _ := newTestSession(t, llm, 0)
	ctx := context.Background()

	_, err := s.Submit(ctx, StrategyRequest{SeedTopic: "compost"})
	require.NoError(t, err)

	llm.reply(OpIntentClarity, "not json")
	snap, err := s.Submit(ctx, StrategyRequest{SeedTopic: "compost"})
	assert.True(t, IsParse(err))
	assert.Nil(t, snap.TopicalMap)
	assert.Contains(t, snap.Error, "could not be parsed as JSON")

	s.DismissError()
	assert.Empty(t, s.Snapshot().Error)
}

func TestSessionUsageLimit(t *testing.T) {
	llm := newScriptedLLM().fixtures(OpTopicalMap, OpIntentClarity)
	s, tracker := newTestSession(t, llm, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Submit(ctx, StrategyRequest{SeedTopic: "compost"})
		require.NoError(t, err)
	}
	calls := llm.callCount()

	_, err := s.Submit(ctx, StrategyRequest{SeedTopic: "compost"})
	assert.ErrorIs(t, err, ErrUsageLimitReached)
	assert.Equal(t, calls, llm.callCount())

	status, err := tracker.Status(ctx, "client-1", string(OpStrategist))
	require.NoError(t, err)
	assert.Equal(t, 3, status.Used)
	assert.True(t, status.Exhausted())
}

func TestSessionUsageLimitUnderConcurrentSubmits(t *testing.T) {
	llm := newScriptedLLM().fixtures(OpTopicalMap, OpIntentClarity)
	tracker := usage.NewTracker(usage.NewMemoryCounter(), map[string]int{string(OpStrategist): 3})
	agent := newTestAgent(t, llm)
	// Two tabs of the same client share one allowance.
	sessions := []*Session{
		NewSession("s1", "client-1", agent, tracker, nil),
		NewSession("s2", "client-1", agent, tracker, nil),
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		refused  int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			_, err := s.Submit(context.Background(), StrategyRequest{SeedTopic: "compost"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, ErrUsageLimitReached):
				refused++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(sessions[i%2])
	}
	wg.Wait()

	assert.Equal(t, 3, accepted)
	assert.Equal(t, 7, refused)
	status, err := tracker.Status(context.Background(), "client-1", string(OpStrategist))
	require.NoError(t, err)
	assert.Equal(t, 3, status.Used)
	assert.Len(t, llm.prompts(OpTopicalMap), 3)
}

func TestSessionSubmitValidation(t *testing.T) {
	llm := newScriptedLLM()
	s, tracker := newTestSession(t, llm, 3)
	ctx := context.Background()

	_, err := s.Submit(ctx, StrategyRequest{SeedTopic: "   "})
	assert.True(t, IsValidation(err))

	_, err = s.Submit(ctx, StrategyRequest{
		SeedTopic:      "compost",
		CompetitorURLs: []string{"a", "b", "c", "d", "e", "f"},
	})
	assert.True(t, IsValidation(err))

	assert.Zero(t, llm.callCount())
	status, err := tracker.Status(ctx, "client-1", string(OpStrategist))
	require.NoError(t, err)
	assert.Zero(t, status.Used)
	assert.Equal(t, StateIdle, s.Snapshot().State)
}

func TestSessionDiscardsStaleRun(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	llm := newScriptedLLM().
		fixtures(OpIntentClarity).
		on(OpTopicalMap, func(ctx context.Context, p Prompt) (string, error) {
			if p.User != BuildTopicalMapPrompt(StrategyRequest{SeedTopic: "first", Region: Regions[0].Name}).User {
				return MockLLM{}.Complete(ctx, p)
			}
			once.Do(func() { close(started) })
			<-release
			return "", errors.New("late failure")
		})
	s, _ := newTestSession(t, llm, 0)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(ctx, StrategyRequest{SeedTopic: "first"})
		done <- err
	}()
	<-started

	snap, err := s.Submit(ctx, StrategyRequest{SeedTopic: "second"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snap.RunID)

	close(release)
	assert.Error(t, <-done)

	final := s.Snapshot()
	assert.Equal(t, StateSucceeded, final.State)
	assert.Empty(t, final.Error)
	assert.NotEmpty(t, final.TopicalMap)
}

func TestSessionBriefContext(t *testing.T) {
	t.Run("no run on another tab", func(t *testing.T) {
		llm := newScriptedLLM()
		s, _ := newTestSession(t, llm, 0)
		s.SetTab(TabBrand)

		snap, err := s.RequestBrief(context.Background(), "compost bin")
		require.Error(t, err)
		assert.True(t, IsContext(err))
		assert.Equal(t, briefContextMsg, err.Error())
		assert.Equal(t, briefContextMsg, snap.Error)
		assert.False(t, snap.Brief.Open)
		assert.False(t, snap.Brief.Loading)
		assert.Zero(t, llm.callCount())
	})

	t.Run("no run on strategist tab uses default region", func(t *testing.T) {
		llm := newScriptedLLM().fixtures(OpContentBrief)
		s, _ := newTestSession(t, llm, 0)

		snap, err := s.RequestBrief(context.Background(), "compost bin")
		require.NoError(t, err)
		assert.True(t, snap.Brief.Open)
		assert.False(t, snap.Brief.Loading)
		require.NotNil(t, snap.Brief.Brief)
		assert.Contains(t, llm.prompts(OpContentBrief)[0].User, DefaultRegion)
	})

	t.Run("no run on strategist tab uses configured brief region", func(t *testing.T) {
		llm := newScriptedLLM().fixtures(OpContentBrief)
		tracker := usage.NewTracker(usage.NewMemoryCounter(), nil)
		agent := newTestAgent(t, llm, WithBriefRegion("Canada (English)"))
		s := NewSession("s1", "client-1", agent, tracker, nil)

		_, err := s.RequestBrief(context.Background(), "compost bin")
		require.NoError(t, err)
		assert.Contains(t, llm.prompts(OpContentBrief)[0].User, "Canada (English)")
	})

	t.Run("region carried from last run", func(t *testing.T) {
		llm := newScriptedLLM().fixtures(OpTopicalMap, OpIntentClarity, OpContentBrief)
		s, _ := newTestSession(t, llm, 0)
		ctx := context.Background()

		_, err := s.Submit(ctx, StrategyRequest{SeedTopic: "compost", Region: "Canada"})
		require.NoError(t, err)
		s.SetTab(TabVideo)

		snap, err := s.RequestBrief(ctx, "compost bin")
		require.NoError(t, err)
		assert.Equal(t, "compost bin", snap.Brief.Keyword)
		assert.Contains(t, llm.prompts(OpContentBrief)[0].User, `"Canada"`)
	})
}

func TestSessionBriefFailure(t *testing.T) {
	llm := newScriptedLLM().fail(OpContentBrief, errors.New("deadline exceeded"))
	s, _ := newTestSession(t, llm, 0)

	snap, err := s.RequestBrief(context.Background(), "compost bin")
	require.Error(t, err)
	assert.Equal(t, "Failed to generate brief: deadline exceeded", snap.Error)
	assert.True(t, snap.Brief.Open)
	assert.False(t, snap.Brief.Loading)
	assert.Nil(t, snap.Brief.Brief)

	s.CloseBrief()
	assert.False(t, s.Snapshot().Brief.Open)
}

func TestSessionCloseBriefDropsLateResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	llm := newScriptedLLM().on(OpContentBrief, func(ctx context.Context, p Prompt) (string, error) {
		close(started)
		<-release
		return MockLLM{}.Complete(ctx, p)
	})
	s, _ := newTestSession(t, llm, 0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.RequestBrief(context.Background(), "compost bin")
	}()
	<-started
	assert.True(t, s.Snapshot().Brief.Loading)

	s.CloseBrief()
	close(release)
	<-done

	snap := s.Snapshot()
	assert.False(t, snap.Brief.Open)
	assert.Nil(t, snap.Brief.Brief)
}

func TestParseTab(t *testing.T) {
	tab, err := ParseTab("gsc")
	require.NoError(t, err)
	assert.Equal(t, TabGSC, tab)

	_, err = ParseTab("settings")
	assert.True(t, IsValidation(err))
}
