// Package simulation drives a board with concurrent random players to
// shake out concurrency bugs: the game must tolerate any interleaving
// of moves without crashing or violating its invariants.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cardgrid/scramble/pkg/board"
	"github.com/cardgrid/scramble/pkg/log"
	"github.com/google/uuid"
)

type Options struct {
	Board    *board.Board
	Players  int
	Moves    int // moves per player; each move is two flips
	MinDelay time.Duration
	MaxDelay time.Duration
	// FlipTimeout bounds each flip so a player blocked on a card whose
	// controller has finished playing does not hang the run.
	FlipTimeout time.Duration
}

// PlayerReport tallies one simulated player's outcomes.
type PlayerReport struct {
	Player    string
	TurnedUp  int
	Matched   int
	Mismatched int
	Failed    int
	Cancelled int
}

// Run plays opts.Players concurrent random players against the shared
// board, opts.Moves moves each. Game-rule failures are part of normal
// play; any other error aborts the run.
func Run(ctx context.Context, opts Options) ([]PlayerReport, error) {
	if opts.FlipTimeout <= 0 {
		opts.FlipTimeout = 5 * time.Second
	}

	reports := make([]PlayerReport, opts.Players)
	errs := make([]error, opts.Players)

	var wg sync.WaitGroup
	for i := 0; i < opts.Players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			player := fmt.Sprintf("sim_%s", uuid.NewString()[:8])
			reports[i].Player = player
			errs[i] = play(ctx, opts, player, &reports[i], rand.New(rand.NewSource(int64(i)*42+1)))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

func play(ctx context.Context, opts Options, player string, report *PlayerReport, rng *rand.Rand) error {
	b := opts.Board
	for move := 0; move < opts.Moves; move++ {
		for flip := 0; flip < 2; flip++ {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay(opts, rng)):
			}

			pos := board.Position{
				Row: rng.Intn(b.Rows()),
				Col: rng.Intn(b.Cols()),
			}
			flipCtx, cancel := context.WithTimeout(ctx, opts.FlipTimeout)
			res, err := b.Flip(flipCtx, player, pos)
			cancel()

			switch {
			case err == nil:
				switch res.Outcome {
				case board.TurnedUp:
					report.TurnedUp++
				case board.Matched:
					report.Matched++
				case board.Mismatched:
					report.Mismatched++
				}
			case errors.Is(err, board.ErrNoCardHere), errors.Is(err, board.ErrOpponentControlled):
				report.Failed++
			case errors.Is(err, board.ErrCancelled):
				report.Cancelled++
			default:
				log.Error("Player %s move %d failed unexpectedly: %v", player, move, err)
				return fmt.Errorf("player %s: %w", player, err)
			}
		}
	}
	return nil
}

func delay(opts Options, rng *rand.Rand) time.Duration {
	if opts.MaxDelay <= opts.MinDelay {
		return opts.MinDelay
	}
	return opts.MinDelay + time.Duration(rng.Int63n(int64(opts.MaxDelay-opts.MinDelay)))
}
