// Package roomlock serializes mutations per room. Every operation that
// changes a room, its session or the stats of its players runs while holding
// the room's lock; different rooms never contend.
package roomlock

import (
	"sync"

	"github.com/mcoot/stroopgame/internal/model"
)

// Locker hands out one mutex per room code. Entries are reference counted
// and dropped once no goroutine holds or waits for them.
type Locker struct {
	mu    sync.Mutex
	locks map[model.RoomCode]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New creates a new Locker
func New() *Locker {
	return &Locker{locks: make(map[model.RoomCode]*entry)}
}

// Lock blocks until the room's lock is held and returns the function that
// releases it
func (l *Locker) Lock(code model.RoomCode) (unlock func()) {
	l.mu.Lock()
	e, ok := l.locks[code]
	if !ok {
		e = &entry{}
		l.locks[code] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, code)
		}
		l.mu.Unlock()
	}
}

// Len returns the number of rooms with a held or awaited lock
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
