// Package session isolates planning state per conversation: every session
// key owns exactly one store instance and no state is shared across keys.
// Idle sessions are evicted after a TTL so long-running servers do not
// accumulate abandoned stores.
package session

import (
	"sync"
	"time"

	"giftplanner/internal/dates"
	"giftplanner/internal/store"
)

// DefaultKey is used when a caller does not identify its session.
const DefaultKey = "default-session"

const cleanupInterval = 5 * time.Minute

type entry struct {
	store    *store.Store
	lastSeen time.Time
}

// Manager maps session keys to their stores. Stores are created lazily on
// first use and dropped after sitting idle for the configured TTL.
type Manager struct {
	mu           sync.Mutex
	clock        dates.Clock
	ttl          time.Duration
	sessions     map[string]*entry
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

// NewManager creates a session manager evicting sessions idle longer than
// ttl. A non-positive ttl disables eviction. A nil clock falls back to the
// real one.
func NewManager(ttl time.Duration, clock dates.Clock) *Manager {
	if clock == nil {
		clock = dates.RealClock{}
	}
	m := &Manager{
		clock:       clock,
		ttl:         ttl,
		sessions:    make(map[string]*entry),
		stopCleanup: make(chan struct{}),
	}
	if ttl > 0 {
		go m.startCleanup()
	}
	return m
}

// For returns the store owned by the given session key, creating it on
// first use. An empty key maps to DefaultKey.
func (m *Manager) For(key string) *store.Store {
	if key == "" {
		key = DefaultKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[key]
	if !ok {
		e = &entry{store: store.New(m.clock)}
		m.sessions[key] = e
	}
	e.lastSeen = m.clock.Now()
	return e.store
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) startCleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) evictIdle() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.clock.Now().Add(-m.ttl)
	evicted := 0
	for key, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, key)
			evicted++
		}
	}
	return evicted
}

// Shutdown stops the cleanup loop. Safe to call more than once.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.stopCleanup)
	})
}
