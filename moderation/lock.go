package moderation

import (
	"context"
	"sync"
)

// TargetLocks serializes workflows per (guild, target) pair.
type TargetLocks struct {
	mu    sync.Mutex
	locks map[string]*targetLock
}

type targetLock struct {
	ch   chan struct{}
	refs int
}

func NewTargetLocks() *TargetLocks {
	return &TargetLocks{locks: make(map[string]*targetLock)}
}

// Lock blocks until the pair is free or ctx is done. The returned func releases the lock.
func (l *TargetLocks) Lock(ctx context.Context, guildID, userID string) (func(), error) {
	key := guildID + "/" + userID

	l.mu.Lock()
	tl, ok := l.locks[key]
	if !ok {
		tl = &targetLock{ch: make(chan struct{}, 1)}
		l.locks[key] = tl
	}
	tl.refs++
	l.mu.Unlock()

	select {
	case tl.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-tl.ch
				l.release(key, tl)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, tl)
		return nil, ctx.Err()
	}
}

func (l *TargetLocks) release(key string, tl *targetLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tl.refs--
	if tl.refs == 0 {
		delete(l.locks, key)
	}
}

// Len returns the number of pairs currently locked or awaited.
func (l *TargetLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
