package usecase

import (
	"context"
	"sync"
)

// cvLocks hands out one mutex per CV ID. Entries are dropped when the last
// holder or waiter releases them.
type cvLocks struct {
	mu    sync.Mutex
	slots map[string]*cvSlot
}

type cvSlot struct {
	sem  chan struct{}
	refs int
}

// acquire blocks until the CV is free or ctx is done.
func (l *cvLocks) acquire(ctx context.Context, cvID string) (func(), error) {
	l.mu.Lock()
	if l.slots == nil {
		l.slots = make(map[string]*cvSlot)
	}
	slot, ok := l.slots[cvID]
	if !ok {
		slot = &cvSlot{sem: make(chan struct{}, 1)}
		l.slots[cvID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.sem
				l.release(cvID, slot)
			})
		}, nil
	case <-ctx.Done():
		l.release(cvID, slot)
		return nil, ctx.Err()
	}
}

func (l *cvLocks) release(cvID string, slot *cvSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, cvID)
	}
}

func (l *cvLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
