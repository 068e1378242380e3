package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is the single-process fallback used when no Redis is configured.
type MemoryLocker struct {
	mu     sync.Mutex
	held   map[string]lease
	now    func() time.Time
	serial uint64
}

type lease struct {
	id      uint64
	expires time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]lease), now: time.Now}
}

func (l *MemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (UnlockFunc, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if cur, ok := l.held[key]; ok && now.Before(cur.expires) {
		return nil, false, nil
	}

	l.serial++
	id := l.serial
	l.held[key] = lease{id: id, expires: now.Add(ttl)}

	unlock := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, ok := l.held[key]; ok && cur.id == id {
			delete(l.held, key)
		}
		return nil
	}
	return unlock, true, nil
}
