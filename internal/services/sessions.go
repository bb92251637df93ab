package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/orgsync-backend/internal/hierarchy"
	"github.com/yungbote/orgsync-backend/internal/observability"
	"github.com/yungbote/orgsync-backend/internal/platform/logger"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionBusy rejects overlapping passes over one session's graph;
	// runs are never silently serialized.
	ErrSessionBusy = errors.New("session run already in progress")
)

const (
	defaultSessionTTL = time.Hour
	sweepInterval     = time.Minute
)

// Session owns one caller's graph between calls. While a run holds the
// session the store keeps it marked busy; only that run may touch the
// graph.
type Session struct {
	ID        string
	Graph     *hierarchy.Graph
	CreatedAt time.Time

	// Store-owned, guarded by the store mutex.
	lastUsed  time.Time
	busy      bool
	nodeCount int
}

// SessionInfo is a point-in-time view safe to serialize while runs come
// and go.
type SessionInfo struct {
	ID        string    `json:"session_id"`
	NodeCount int       `json:"node_count"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used_at"`
	Busy      bool      `json:"busy"`
}

// SessionStore keeps per-caller sessions in memory with idle expiry.
type SessionStore interface {
	Create() *Session
	// Acquire marks the session busy and hands it to exactly one run.
	// Callers must Release when the run finishes.
	Acquire(id string) (*Session, error)
	Release(id string)
	Info(id string) (SessionInfo, bool)
	Delete(id string) bool
	Len() int
	// StartSweeper expires idle sessions until ctx is canceled.
	StartSweeper(ctx context.Context)
}

type sessionStore struct {
	log *logger.Logger
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore(log *logger.Logger, ttl time.Duration) SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &sessionStore{
		log:      log.With("service", "SessionStore"),
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

func (s *sessionStore) Create() *Session {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Graph:     hierarchy.NewGraph(),
		CreatedAt: now,
		lastUsed:  now,
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	size := len(s.sessions)
	s.mu.Unlock()

	s.log.Debug("Session created", "session_id", sess.ID)
	if metrics := observability.Current(); metrics != nil {
		metrics.SetActiveSessions(size)
	}
	return sess
}

func (s *sessionStore) Acquire(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[strings.TrimSpace(id)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.busy {
		return nil, ErrSessionBusy
	}
	sess.busy = true
	sess.lastUsed = time.Now()
	return sess, nil
}

// Release is called by the run's own goroutine after it stops touching the
// graph, so reading the node count here is ordered after the run's writes.
func (s *sessionStore) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[strings.TrimSpace(id)]
	if !ok {
		return
	}
	sess.busy = false
	sess.lastUsed = time.Now()
	if sess.Graph != nil {
		sess.nodeCount = sess.Graph.Len()
	}
}

func (s *sessionStore) Info(id string) (SessionInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[strings.TrimSpace(id)]
	if !ok {
		return SessionInfo{}, false
	}
	return SessionInfo{
		ID:        sess.ID,
		NodeCount: sess.nodeCount,
		CreatedAt: sess.CreatedAt,
		LastUsed:  sess.lastUsed,
		Busy:      sess.busy,
	}, true
}

// Delete discards a session. Deleting a busy session lets the in-flight
// run finish against the detached graph; its Release becomes a no-op.
func (s *sessionStore) Delete(id string) bool {
	key := strings.TrimSpace(id)
	s.mu.Lock()
	_, ok := s.sessions[key]
	if ok {
		delete(s.sessions, key)
	}
	size := len(s.sessions)
	s.mu.Unlock()

	if ok {
		s.log.Debug("Session deleted", "session_id", key)
		if metrics := observability.Current(); metrics != nil {
			metrics.SetActiveSessions(size)
		}
	}
	return ok
}

func (s *sessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *sessionStore) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(time.Now())
			}
		}
	}()
}

// sweep drops sessions idle past the TTL. Busy sessions are never swept;
// their clock restarts on release.
func (s *sessionStore) sweep(now time.Time) int {
	s.mu.Lock()
	var expired []string
	for id, sess := range s.sessions {
		if sess.busy {
			continue
		}
		if now.Sub(sess.lastUsed) > s.ttl {
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	size := len(s.sessions)
	s.mu.Unlock()

	if len(expired) > 0 {
		s.log.Info("Expired idle sessions", "count", len(expired), "ttl", s.ttl.String())
		if metrics := observability.Current(); metrics != nil {
			metrics.SetActiveSessions(size)
		}
	}
	return len(expired)
}
