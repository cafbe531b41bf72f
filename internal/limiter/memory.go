package limiter

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local Limiter for a single instance and for tests.
type Memory struct {
	policy Policy
	now    func() time.Time

	mu   sync.Mutex
	recs map[string]*attempts
}

type attempts struct {
	fails       int
	windowStart time.Time
	blocked     time.Time
}

// NewMemory returns an empty in-memory limiter.
func NewMemory(p Policy) *Memory {
	return &Memory{policy: p, now: time.Now, recs: map[string]*attempts{}}
}

func (k Key) id() string { return k.Username + "\x00" + string(k.IPHash) }

func (m *Memory) Allow(_ context.Context, k Key) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.recs[k.id()]; ok {
		if wait := r.blocked.Sub(m.now()); wait > 0 {
			return false, wait, nil
		}
	}
	return true, 0, nil
}

func (m *Memory) Success(_ context.Context, k Key) error {
	m.mu.Lock()
	delete(m.recs, k.id())
	m.mu.Unlock()
	return nil
}

func (m *Memory) Failure(_ context.Context, k Key) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	r, ok := m.recs[k.id()]
	if !ok || now.Sub(r.windowStart) > m.policy.Window {
		r = &attempts{windowStart: now, blocked: r.blockedOrZero()}
		m.recs[k.id()] = r
	}
	r.fails++
	if r.fails >= m.policy.MaxFails {
		r.blocked = now.Add(m.policy.BlockFor)
		return true, m.policy.BlockFor, nil
	}
	return false, 0, nil
}

func (r *attempts) blockedOrZero() time.Time {
	if r == nil {
		return time.Time{}
	}
	return r.blocked
}
