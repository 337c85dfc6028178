package board

import "errors"

var (
	// ErrNoCardHere is returned by Flip when the target cell is empty,
	// either because it never held a card or because a matched pair was
	// removed from it.
	ErrNoCardHere = errors.New("no card at this position")

	// ErrOpponentControlled is returned by a second flip that targets a
	// card currently controlled by a player.
	ErrOpponentControlled = errors.New("card is controlled by a player")

	// ErrInvalidPosition is returned when coordinates fall outside the grid.
	ErrInvalidPosition = errors.New("position is out of bounds")

	// ErrInvalidLayout is returned by New when the initial layout is not
	// a non-empty rectangle of valid card labels.
	ErrInvalidLayout = errors.New("invalid board layout")

	// ErrCancelled is returned when a caller abandons a blocked flip or
	// watch before it completes.
	ErrCancelled = errors.New("operation cancelled")

	// ErrInvalidCard is returned by Transform for card labels that are
	// empty or contain whitespace.
	ErrInvalidCard = errors.New("card labels must be nonempty and contain no whitespace")
)

// InvariantError is the panic value raised when the board detects that
// its representation invariant no longer holds. It indicates a bug in
// the board itself, not a bad request.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return "board invariant violated: " + e.Reason
}
