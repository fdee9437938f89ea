package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLock is the process-local Locker used when no Redis is configured.
type MemoryLock struct {
	mu    sync.Mutex
	held  map[string]time.Time // zero time: no expiry
	clock func() time.Time
}

func NewMemoryLock() *MemoryLock {
	return &MemoryLock{held: make(map[string]time.Time), clock: time.Now}
}

func (m *MemoryLock) Lock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	if exp, ok := m.held[key]; ok && (exp.IsZero() || now.Before(exp)) {
		return false, nil
	}

	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	m.held[key] = exp

	return true, nil
}

func (m *MemoryLock) Refresh(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	exp, ok := m.held[key]
	if !ok || (!exp.IsZero() && !now.Before(exp)) {
		delete(m.held, key)
		return false, nil
	}

	if ttl > 0 {
		m.held[key] = now.Add(ttl)
	} else {
		m.held[key] = time.Time{}
	}

	return true, nil
}

func (m *MemoryLock) Unlock(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.held, key)
	return nil
}

func (m *MemoryLock) Close() error {
	return nil
}
