package board_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cardgrid/scramble/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flipOutcome struct {
	res board.FlipResult
	err error
}

// flipAsync starts a flip in a goroutine and returns a channel that
// receives the outcome when the flip completes.
func flipAsync(ctx context.Context, b *board.Board, player string, pos board.Position) <-chan flipOutcome {
	done := make(chan flipOutcome, 1)
	go func() {
		res, err := b.Flip(ctx, player, pos)
		done <- flipOutcome{res: res, err: err}
	}()
	return done
}

func TestFlipBlocksOnControlledCard(t *testing.T) {
	b := mustBoard(t, [][]string{{"A", "B"}, {"B", "A"}})

	flip(t, b, "player1", 0, 0)

	done := flipAsync(context.Background(), b, "player2", board.Position{Row: 0, Col: 0})
	select {
	case out := <-done:
		t.Fatalf("flip should have blocked, got %v %v", out.res, out.err)
	case <-time.After(50 * time.Millisecond):
	}

	// player1 mismatches and releases control; player2's flip resumes
	// and claims the now face-up card.
	res := flip(t, b, "player1", 0, 1)
	require.Equal(t, board.Mismatched, res.Outcome)

	select {
	case out := <-done:
		require.NoError(t, out.err)
		assert.Equal(t, board.TurnedUp, out.res.Outcome)
		assert.Equal(t, "A", out.res.Value)
	case <-time.After(time.Second):
		t.Fatal("flip did not resume after control was released")
	}
	assert.True(t, at(b, "player2", 0, 0).Mine)
}

func TestBlockedFlipFailsWhenCardRemoved(t *testing.T) {
	b := mustBoard(t, [][]string{{"A", "A"}, {"B", "C"}})

	flip(t, b, "player1", 0, 0)
	done := flipAsync(context.Background(), b, "player2", board.Position{Row: 0, Col: 0})
	select {
	case <-done:
		t.Fatal("flip should have blocked")
	case <-time.After(50 * time.Millisecond):
	}

	// player1 matches the pair and then moves on, removing both cards.
	res := flip(t, b, "player1", 0, 1)
	require.Equal(t, board.Matched, res.Outcome)
	flip(t, b, "player1", 1, 0)

	select {
	case out := <-done:
		assert.ErrorIs(t, out.err, board.ErrNoCardHere)
	case <-time.After(time.Second):
		t.Fatal("flip did not resume after card was removed")
	}
}

func TestAllWaitersResumeWhenCardRemoved(t *testing.T) {
	b := mustBoard(t, [][]string{{"A", "A"}, {"B", "C"}})

	flip(t, b, "player1", 0, 0)

	const waiters = 4
	dones := make([]<-chan flipOutcome, waiters)
	for i := range dones {
		player := fmt.Sprintf("waiter%d", i)
		dones[i] = flipAsync(context.Background(), b, player, board.Position{Row: 0, Col: 0})
	}
	time.Sleep(50 * time.Millisecond)

	res := flip(t, b, "player1", 0, 1)
	require.Equal(t, board.Matched, res.Outcome)
	flip(t, b, "player1", 1, 0)

	for i, done := range dones {
		select {
		case out := <-done:
			assert.ErrorIs(t, out.err, board.ErrNoCardHere, "waiter %d", i)
		case <-time.After(time.Second):
			t.Fatalf("waiter %d did not resume", i)
		}
	}
}

func TestBlockedFlipCancellation(t *testing.T) {
	b := mustBoard(t, [][]string{{"A", "B"}, {"B", "A"}})

	flip(t, b, "player1", 0, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := b.Flip(ctx, "player2", board.Position{Row: 0, Col: 0})
	assert.ErrorIs(t, err, board.ErrCancelled)

	// The cancelled wait left no mark on the board: player1 still
	// controls the card and player2 can play elsewhere.
	assert.True(t, at(b, "player1", 0, 0).Mine)
	res := flip(t, b, "player2", 1, 1)
	assert.Equal(t, board.TurnedUp, res.Outcome)
}

func TestConcurrentFlipsOnDistinctCards(t *testing.T) {
	layout := make([][]string, 4)
	for r := range layout {
		layout[r] = make([]string, 4)
		for c := range layout[r] {
			layout[r][c] = fmt.Sprintf("C%d", (r*4+c)/2)
		}
	}
	b := mustBoard(t, layout)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(row int) {
			defer wg.Done()
			player := fmt.Sprintf("player%d", row)
			for col := 0; col < 4; col++ {
				_, err := b.Flip(context.Background(), player, board.Position{Row: row, Col: col})
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	// Each row held adjacent equal pairs, so every player matched
	// twice and their last pair is still on the board.
	s := b.Look("observer")
	up := 0
	for _, view := range s.Cells {
		if view.State == board.Up {
			up++
		}
	}
	assert.Equal(t, 8, up)
}

func TestConcurrentContention(t *testing.T) {
	b := mustBoard(t, [][]string{
		{"A", "A", "B", "B"},
		{"C", "C", "D", "D"},
		{"E", "E", "F", "F"},
		{"G", "G", "H", "H"},
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			player := fmt.Sprintf("player%d", n)
			for move := 0; move < 20; move++ {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				pos := board.Position{Row: (n + move) % 4, Col: (n * move) % 4}
				_, err := b.Flip(ctx, player, pos)
				cancel()
				switch {
				case err == nil:
				case shouldFail(err):
				default:
					t.Errorf("unexpected flip error: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()

	// Look still works and no invariant check fired along the way.
	s := b.Look("observer")
	assert.Len(t, s.Cells, 16)
}

func shouldFail(err error) bool {
	return errors.Is(err, board.ErrNoCardHere) ||
		errors.Is(err, board.ErrOpponentControlled) ||
		errors.Is(err, board.ErrCancelled)
}
