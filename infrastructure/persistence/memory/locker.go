package memory

import (
	"context"
	"sync"
)

type lockEntry struct {
	ch   chan struct{}
	refs int
}

// Locker serialises work per aggregate id within one process
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

// NewLocker creates a new Locker
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*lockEntry)}
}

// WithLock runs fn while holding the lock for aggregateID. Waiting stops
// with the context error when ctx is done first.
func (l *Locker) WithLock(ctx context.Context, aggregateID string, fn func(ctx context.Context) error) error {
	entry := l.acquireRef(aggregateID)
	defer l.releaseRef(aggregateID, entry)

	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-entry.ch }()

	return fn(ctx)
}

func (l *Locker) acquireRef(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[key]
	if !ok {
		entry = &lockEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (l *Locker) releaseRef(key string, entry *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
}
