package assistant

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("assistant session not found")

// Manager keeps the live assistant sessions in memory. Sessions are never
// persisted; an idle session is dropped once it exceeds the TTL.
type Manager struct {
	predictor Predictor
	ttl       time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	stopChan chan struct{}
	stopOnce sync.Once
}

func NewManager(predictor Predictor, ttl time.Duration) *Manager {
	return &Manager{
		predictor: predictor,
		ttl:       ttl,
		now:       time.Now,
		sessions:  make(map[uuid.UUID]*Session),
		stopChan:  make(chan struct{}),
	}
}

func (m *Manager) Create(userID uuid.UUID) *Session {
	s := newSession(userID, m.predictor, m.now)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s
}

// Get returns the session only if it belongs to userID.
func (m *Manager) Get(userID, sessionID uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok || s.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Close(userID, sessionID uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok || s.UserID != userID {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	s.Close()
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many were
// removed. Sessions waiting on a prediction are left alone.
func (m *Manager) Sweep(now time.Time) int {
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		lastActive, inFlight := s.idleSince()
		if inFlight || now.Sub(lastActive) <= m.ttl {
			continue
		}
		delete(m.sessions, id)
		expired = append(expired, s)
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}

// Start runs the expiry loop until Stop is called.
func (m *Manager) Start() {
	interval := m.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stopChan:
				return
			case <-ticker.C:
				if n := m.Sweep(m.now().UTC()); n > 0 {
					log.Printf("assistant: expired %d idle session(s)", n)
				}
			}
		}
	}()

	log.Printf("Assistant session sweeper started (ttl %s)", m.ttl)
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}
