package board

import (
	"fmt"
	"sync"
)

// Transform rewrites every card currently labeled oldValue, face down
// or up, controlled or not, to newValue, and returns how many cells it
// rewrote. A value present on zero cells is a no-op returning 0.
//
// The rewrite is pairwise consistent: both cards of a same-valued pair
// change in one exclusive section, so no concurrent flip or look can
// see the pair half renamed. Transforms on disjoint values proceed
// concurrently; transforms sharing a value serialize on a per-value
// lock, taken in sorted order so opposite renames cannot deadlock.
func (b *Board) Transform(oldValue, newValue string) (int, error) {
	if !ValidCard(oldValue) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, oldValue)
	}
	if !ValidCard(newValue) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, newValue)
	}

	lo, hi := oldValue, newValue
	if hi < lo {
		lo, hi = hi, lo
	}
	loLock := b.valueLock(lo)
	loLock.Lock()
	defer loLock.Unlock()
	if lo != hi {
		hiLock := b.valueLock(hi)
		hiLock.Lock()
		defer hiLock.Unlock()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	count := 0
	for r := range b.cells {
		for c := range b.cells[r] {
			if b.cells[r][c].value == oldValue {
				b.cells[r][c].value = newValue
				count++
			}
		}
	}
	if count > 0 && oldValue != newValue {
		b.noteChange()
	}
	b.checkRep()
	return count, nil
}

// valueLock returns the lock for a card value, creating it on first
// use. Locks are never discarded; the set of values a board sees over
// its lifetime is small.
func (b *Board) valueLock(value string) *sync.Mutex {
	b.valueMu.Lock()
	defer b.valueMu.Unlock()
	l, ok := b.valueLocks[value]
	if !ok {
		l = new(sync.Mutex)
		b.valueLocks[value] = l
	}
	return l
}
