package lock

import (
	"context"
	"sync"
)

// MemoryLocker implements ItemLocker using per-key mutexes. It is suitable
// for single-instance deployments and testing; distributed deployments need
// the Redis locker so all instances agree on lock ownership.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewMemoryLocker creates a new MemoryLocker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]*keyLock),
	}
}

// Acquire blocks until the lock for the key is held or the context is done.
// The returned function releases the lock and must always be called.
func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		kl.mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
		return func() { l.release(key, kl) }, nil
	case <-ctx.Done():
		// The goroutine will still grab the mutex eventually; release it
		// as soon as it does so other waiters are not blocked forever.
		go func() {
			<-acquired
			l.release(key, kl)
		}()
		return nil, ctx.Err()
	}
}

func (l *MemoryLocker) release(key string, kl *keyLock) {
	kl.mu.Unlock()

	l.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}
