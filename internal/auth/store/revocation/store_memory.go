package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryList is an in-process revocation list for tests and single-instance
// runs. Entries expire lazily on lookup.
type MemoryList struct {
	mu      sync.RWMutex
	expires map[string]time.Time
}

func NewMemory() *MemoryList {
	return &MemoryList{expires: make(map[string]time.Time)}
}

func (l *MemoryList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.expires[jti] = time.Now().Add(ttl)
	return nil
}

func (l *MemoryList) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	until, ok := l.expires[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(l.expires, jti)
		return false, nil
	}
	return true, nil
}
