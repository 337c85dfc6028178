// Package board implements the shared Memory Scramble game board: a
// fixed-size grid of cards that concurrent players flip over in pairs,
// racing for control of cells. All state lives behind one Board value;
// flips that hit a card another player controls block until the card is
// freed, and resolution of a player's previous pair is deferred to the
// start of their next flip.
package board

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Position identifies a cell on the grid, zero-indexed from the top-left.
type Position struct {
	Row int
	Col int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Outcome classifies a successful flip.
type Outcome int

const (
	// TurnedUp means the player revealed or claimed their first card.
	TurnedUp Outcome = iota
	// Matched means the player's second card matched their first.
	Matched
	// Mismatched means the player's second card did not match their first.
	Mismatched
)

func (o Outcome) String() string {
	switch o {
	case TurnedUp:
		return "turned-up"
	case Matched:
		return "matched"
	case Mismatched:
		return "mismatched"
	default:
		return "unknown"
	}
}

// FlipResult is the outcome of a successful Flip call. Value is the
// label of the card the flip revealed or claimed.
type FlipResult struct {
	Outcome Outcome
	Value   string
}

// cell is one grid position. A removed (or never-present) cell has an
// empty value and is never reoccupied. A face-down cell never has a
// controller.
type cell struct {
	value      string
	faceUp     bool
	controller string
}

func (c *cell) empty() bool {
	return c.value == ""
}

// turn is one player's in-progress move. held lists the 0, 1 or 2
// positions taken this turn, in order. resolved is set once a second
// card has been judged: the pair then stays on the board, visible to
// everyone, until cleanup runs at the start of the player's next flip.
type turn struct {
	held     []Position
	resolved bool
}

// Board is a mutable Memory Scramble board shared by concurrently
// flipping players. The zero value is not usable; construct with New.
//
// All cell and turn state is guarded by mu. Blocked flips and watchers
// suspend on channels handed out under mu, so a wakeup can never be
// missed between releasing the lock and suspending.
type Board struct {
	rows int
	cols int

	mu      sync.RWMutex
	cells   [][]cell
	turns   map[string]*turn
	waiters map[Position][]chan struct{}

	// version counts qualifying changes: face, value or existence
	// mutations. Control-only moves leave it alone. changed is closed
	// and replaced whenever version advances.
	version uint64
	changed chan struct{}

	// valueLocks serializes transforms that touch the same card value
	// while letting transforms on disjoint values run concurrently.
	valueMu    sync.Mutex
	valueLocks map[string]*sync.Mutex
}

// New creates a board from a rectangular layout of card labels. An
// empty string means the cell starts (and stays) empty. All cards start
// face down and uncontrolled.
func New(cards [][]string) (*Board, error) {
	if len(cards) == 0 || len(cards[0]) == 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", ErrInvalidLayout)
	}
	cols := len(cards[0])
	for i, row := range cards {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidLayout, i, len(row), cols)
		}
	}

	b := &Board{
		rows:       len(cards),
		cols:       cols,
		cells:      make([][]cell, len(cards)),
		turns:      make(map[string]*turn),
		waiters:    make(map[Position][]chan struct{}),
		changed:    make(chan struct{}),
		valueLocks: make(map[string]*sync.Mutex),
	}
	for r, row := range cards {
		b.cells[r] = make([]cell, cols)
		for c, value := range row {
			if value == "" {
				continue
			}
			if !ValidCard(value) {
				return nil, fmt.Errorf("%w: bad card %q at (%d,%d)", ErrInvalidLayout, value, r, c)
			}
			b.cells[r][c].value = value
		}
	}
	b.mu.Lock()
	b.checkRep()
	b.mu.Unlock()
	return b, nil
}

// ValidCard reports whether value is usable as a card label: nonempty
// with no whitespace.
func ValidCard(value string) bool {
	return value != "" && !strings.ContainsAny(value, " \t\n\r")
}

// Rows returns the number of rows in the grid.
func (b *Board) Rows() int {
	return b.rows
}

// Cols returns the number of columns in the grid.
func (b *Board) Cols() int {
	return b.cols
}

func (b *Board) inBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < b.rows && pos.Col >= 0 && pos.Col < b.cols
}

func (b *Board) cellAt(pos Position) *cell {
	return &b.cells[pos.Row][pos.Col]
}

// Flip tries to flip over the card at pos for player, following the
// Memory Scramble rules:
//
// Before anything else, the player's previous pair (if judged) is
// cleaned up: a matched pair is removed from the board, a mismatched
// pair is turned face down wherever it is still face up and unclaimed.
// Cleanup runs even if the new request then fails.
//
// First card of a turn: an empty cell fails with ErrNoCardHere; a face
// down card turns face up under the player's control; a face up,
// uncontrolled card is claimed as is; a card controlled by another
// player blocks until it is freed or removed, then the whole call is
// re-evaluated from the top.
//
// Second card: an empty cell fails with ErrNoCardHere and a controlled
// card (anyone's, including the player's own first card) fails with
// ErrOpponentControlled; either failure releases the first card, which
// stays face up. Otherwise the card is revealed and claimed and the two
// values are compared: equal is Matched and the player keeps control of
// both; unequal is Mismatched and control of both is released
// immediately, though the pair stays face up until cleanup.
//
// ctx only bounds the blocked wait: cancellation while suspended
// returns ErrCancelled without touching board state. Mutations
// themselves are short exclusive sections and are never cancelled.
func (b *Board) Flip(ctx context.Context, player string, pos Position) (FlipResult, error) {
	if !b.inBounds(pos) {
		return FlipResult{}, fmt.Errorf("%w: %s", ErrInvalidPosition, pos)
	}

	for {
		b.mu.Lock()
		b.cleanup(player)
		res, wait, err := b.tryFlip(player, pos)
		b.mu.Unlock()

		if wait == nil {
			return res, err
		}
		select {
		case <-wait:
			// Freed or removed; re-evaluate everything from the top.
		case <-ctx.Done():
			b.abandonWait(pos, wait)
			return FlipResult{}, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}
	}
}

// cleanup resolves the player's previous pair, if one is awaiting
// resolution. The pair matched exactly when the player still controls
// both cards and their values are equal; those are removed. Otherwise
// each held cell that is still face up and unclaimed is turned face
// down. Requires b.mu.
func (b *Board) cleanup(player string) {
	t := b.turns[player]
	if t == nil || !t.resolved {
		return
	}
	delete(b.turns, player)

	p1, p2 := t.held[0], t.held[1]
	c1, c2 := b.cellAt(p1), b.cellAt(p2)

	if c1.controller == player && c2.controller == player && c1.value == c2.value {
		for _, p := range []Position{p1, p2} {
			c := b.cellAt(p)
			c.value = ""
			c.faceUp = false
			c.controller = ""
			b.releaseWaiters(p)
			b.noteChange()
		}
	} else {
		for _, p := range []Position{p1, p2} {
			c := b.cellAt(p)
			if !c.empty() && c.faceUp && c.controller == "" {
				c.faceUp = false
				b.noteChange()
			}
		}
	}
	b.checkRep()
}

// tryFlip evaluates one flip attempt. A non-nil wait channel means the
// target is controlled by another player: the caller must suspend on it
// outside the lock and then retry. Requires b.mu.
func (b *Board) tryFlip(player string, pos Position) (FlipResult, chan struct{}, error) {
	t := b.turns[player]
	c := b.cellAt(pos)

	if t == nil {
		// First card of the turn.
		if c.empty() {
			return FlipResult{}, nil, fmt.Errorf("%w: %s", ErrNoCardHere, pos)
		}
		if c.controller != "" && c.controller != player {
			wait := make(chan struct{})
			b.waiters[pos] = append(b.waiters[pos], wait)
			return FlipResult{}, wait, nil
		}
		if !c.faceUp {
			c.faceUp = true
			b.noteChange()
		}
		c.controller = player
		b.turns[player] = &turn{held: []Position{pos}}
		b.checkRep()
		return FlipResult{Outcome: TurnedUp, Value: c.value}, nil, nil
	}

	// Second card of the turn.
	first := t.held[0]
	if c.empty() {
		b.releaseControl(player, first)
		delete(b.turns, player)
		b.checkRep()
		return FlipResult{}, nil, fmt.Errorf("%w: %s", ErrNoCardHere, pos)
	}
	if c.faceUp && c.controller != "" {
		// Controlled by anyone, including the player's own first card.
		b.releaseControl(player, first)
		delete(b.turns, player)
		b.checkRep()
		return FlipResult{}, nil, fmt.Errorf("%w: %s", ErrOpponentControlled, pos)
	}

	if !c.faceUp {
		c.faceUp = true
		b.noteChange()
	}
	c.controller = player
	t.held = append(t.held, pos)
	t.resolved = true

	if b.cellAt(first).value == c.value {
		b.checkRep()
		return FlipResult{Outcome: Matched, Value: c.value}, nil, nil
	}
	b.releaseControl(player, first)
	b.releaseControl(player, pos)
	b.checkRep()
	return FlipResult{Outcome: Mismatched, Value: c.value}, nil, nil
}

// releaseControl clears the player's claim on pos, leaving the card
// face up, and wakes every flip blocked on it. Requires b.mu.
func (b *Board) releaseControl(player string, pos Position) {
	c := b.cellAt(pos)
	if c.controller != player {
		return
	}
	c.controller = ""
	b.releaseWaiters(pos)
}

// releaseWaiters wakes every flip blocked on pos. Idempotent when no
// one is waiting. Requires b.mu.
func (b *Board) releaseWaiters(pos Position) {
	for _, wait := range b.waiters[pos] {
		close(wait)
	}
	delete(b.waiters, pos)
}

// abandonWait removes a registered wait channel after its caller gave
// up. A channel already released by releaseWaiters is no longer in the
// list, so this is a no-op then.
func (b *Board) abandonWait(pos Position, wait chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	waits := b.waiters[pos]
	for i, w := range waits {
		if w == wait {
			b.waiters[pos] = append(waits[:i], waits[i+1:]...)
			break
		}
	}
	if len(b.waiters[pos]) == 0 {
		delete(b.waiters, pos)
	}
}

// checkRep verifies the representation invariant and panics with an
// InvariantError on violation. Requires b.mu.
func (b *Board) checkRep() {
	fail := func(format string, args ...interface{}) {
		panic(&InvariantError{Reason: fmt.Sprintf(format, args...)})
	}

	for r := range b.cells {
		for c := range b.cells[r] {
			cl := &b.cells[r][c]
			if cl.empty() {
				if cl.faceUp {
					fail("empty cell (%d,%d) is face up", r, c)
				}
				if cl.controller != "" {
					fail("empty cell (%d,%d) has controller %q", r, c, cl.controller)
				}
				continue
			}
			if cl.controller != "" && !cl.faceUp {
				fail("face-down cell (%d,%d) has controller %q", r, c, cl.controller)
			}
			if cl.controller != "" {
				t := b.turns[cl.controller]
				if t == nil || !holds(t, Position{Row: r, Col: c}) {
					fail("cell (%d,%d) controlled by %q who does not hold it", r, c, cl.controller)
				}
			}
		}
	}

	for player, t := range b.turns {
		if len(t.held) == 0 || len(t.held) > 2 {
			fail("player %q holds %d positions", player, len(t.held))
		}
		if !t.resolved && len(t.held) != 1 {
			fail("player %q has an unresolved turn with %d positions", player, len(t.held))
		}
		for _, p := range t.held {
			if !b.inBounds(p) {
				fail("player %q holds out-of-bounds %s", player, p)
			}
		}
		if !t.resolved {
			c := b.cellAt(t.held[0])
			if c.controller != player || !c.faceUp {
				fail("player %q holds %s but does not control it", player, t.held[0])
			}
		}
	}
}

func holds(t *turn, pos Position) bool {
	for _, p := range t.held {
		if p == pos {
			return true
		}
	}
	return false
}
