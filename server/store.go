package server

import (
	"sync"
	"time"

	"seo_strategist/generator"
)

const (
	defaultSessionTTL  = 24 * time.Hour
	defaultMaxSessions = 10000
)

type storedSession struct {
	sess     *generator.Session
	lastSeen time.Time
}

// sessionStore holds live sessions in memory. Idle sessions expire after ttl,
// and the least recently used one is evicted once max is exceeded.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*storedSession
	ttl      time.Duration
	max      int
	now      func() time.Time
}

func newStore(ttl time.Duration, max int) *sessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if max <= 0 {
		max = defaultMaxSessions
	}
	return &sessionStore{
		sessions: make(map[string]*storedSession),
		ttl:      ttl,
		max:      max,
		now:      time.Now,
	}
}

func (s *sessionStore) set(id string, sess *generator.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	s.sessions[id] = &storedSession{sess: sess, lastSeen: now}
	for len(s.sessions) > s.max {
		s.evictOldest()
	}
}

func (s *sessionStore) get(id string) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(e.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	e.lastSeen = now
	return e.sess, true
}

func (s *sessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sweep must be called with mu held.
func (s *sessionStore) sweep(now time.Time) {
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func (s *sessionStore) evictOldest() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range s.sessions {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	delete(s.sessions, oldestID)
}
