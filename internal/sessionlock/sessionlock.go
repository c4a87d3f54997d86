// Package sessionlock serializes investigation mutations per (player, case).
//
// Handlers read the stored state, run an engine operation, and write the state
// back. Two concurrent requests from the same session interleaving that cycle
// would lose one of the updates, so every mutating handler holds the session
// lock for the investigation it touches. Locks for different investigations
// are independent.
package sessionlock

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Roderick111/auror/internal/errors"
	"golang.org/x/sync/semaphore"
)

// Locker hands out one lock per (player, case) pair. Entries are created on
// demand and reference counted so that the map shrinks back once nobody holds
// or waits on a key.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

func New() *Locker {
	return &Locker{locks: make(map[string]*entry)}
}

// Acquire blocks until the investigation lock is free or ctx is done. On
// success the caller must call the returned release function; releasing more
// than once is a no-op.
func (l *Locker) Acquire(ctx context.Context, playerID, caseID string) (func(), error) {
	key := playerID + "\x1f" + caseID

	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		l.release(key, e, false)
		return nil, errors.Wrap(err, "acquire session lock", slog.String("case_id", caseID))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.release(key, e, true)
		})
	}, nil
}

func (l *Locker) release(key string, e *entry, held bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if held {
		e.sem.Release(1)
	}
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
