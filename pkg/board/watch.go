package board

import (
	"context"
	"fmt"
)

// noteChange records a qualifying change: a cell's face, value or
// existence was mutated. Everyone suspended in AwaitChange wakes.
// Control-only moves must not call this. Requires b.mu.
func (b *Board) noteChange() {
	b.version++
	close(b.changed)
	b.changed = make(chan struct{})
}

// Version returns the current change counter. It increases
// monotonically, once per qualifying change.
func (b *Board) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// AwaitChange blocks until the change counter differs from since, then
// returns the new counter. If it already differs, AwaitChange returns
// immediately; there is no window in which a change can be missed. A
// single qualifying change wakes every concurrent caller.
func (b *Board) AwaitChange(ctx context.Context, since uint64) (uint64, error) {
	for {
		b.mu.RLock()
		version := b.version
		changed := b.changed
		b.mu.RUnlock()

		if version != since {
			return version, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return since, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}
	}
}

// Watch blocks until the next qualifying change after the call.
// Changes that only move control of a card do not count.
func (b *Board) Watch(ctx context.Context) error {
	_, err := b.AwaitChange(ctx, b.Version())
	return err
}
