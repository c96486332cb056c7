package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sirjanpreet/portfolio/internal/carousel"
	"github.com/sirjanpreet/portfolio/internal/contact"
	"github.com/sirjanpreet/portfolio/internal/content"
)

const sessionCookie = "portfolio_session"

// session is the per-page-load state of one visitor. A reload starts a new
// one, so nothing a visitor typed outlives the page.
type session struct {
	id      string
	contact *contact.Flow
	roles   *carousel.Carousel[string]
	tech    *carousel.Carousel[content.Tech]

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

type sessionStore struct {
	ttl     time.Duration
	now     func() time.Time
	newFlow func() *contact.Flow
	site    *content.Site

	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore(site *content.Site, ttl time.Duration, newFlow func() *contact.Flow) *sessionStore {
	return &sessionStore{
		ttl:      ttl,
		now:      time.Now,
		newFlow:  newFlow,
		site:     site,
		sessions: map[string]*session{},
	}
}

func (st *sessionStore) create() (*session, error) {
	roles, err := carousel.New(st.site.Roles)
	if err != nil {
		return nil, err
	}
	tech, err := carousel.New(st.site.TechStack)
	if err != nil {
		return nil, err
	}

	s := &session{
		id:       uuid.NewString(),
		contact:  st.newFlow(),
		roles:    roles,
		tech:     tech,
		lastSeen: st.now(),
	}

	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()
	return s, nil
}

func (st *sessionStore) get(id string) (*session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	if !ok {
		return nil, false
	}

	now := st.now()
	if s.idleSince(now) > st.ttl {
		st.remove(id)
		return nil, false
	}
	s.touch(now)
	return s, true
}

func (st *sessionStore) remove(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// sweep drops sessions idle for longer than the TTL.
func (st *sessionStore) sweep() int {
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if s.idleSince(now) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// run sweeps every interval until ctx ends.
func (st *sessionStore) run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			st.sweep()
		}
	}
}
