// Package lock serializes read-modify-write sequences per key (one cart per account).
package lock

import (
	"context"
	"sync"
)

// Locker acquires an exclusive lock on key. The returned release func is safe to
// call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// CartKey is the lock key shared by every cart mutation and checkout of an account.
func CartKey(accountID string) string { return "cart:" + accountID }

type entry struct {
	ch   chan struct{}
	refs int
}

// Local is an in-process keyed mutex. Entries are dropped once no goroutine holds
// or waits on them.
type Local struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewLocal() *Local {
	return &Local{entries: make(map[string]*entry)}
}

func (l *Local) acquireRef(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Local) dropRef(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	e := l.acquireRef(key)
	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.dropRef(key, e)
		return nil, ctx.Err()
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.dropRef(key, e)
		})
	}, nil
}

// held reports the number of keys currently tracked.
func (l *Local) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
