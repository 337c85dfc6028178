package board

// CellState is a cell's appearance from one player's perspective.
type CellState int

const (
	// Gone means no card is here: the cell was never occupied or its
	// pair was matched and removed.
	Gone CellState = iota
	// Down means a card is here, face down.
	Down
	// Up means a card is here, face up and visible.
	Up
)

// CellView is one cell as a player sees it. Value is set only for face
// up cells; Mine is set when the viewing player controls the card.
type CellView struct {
	State CellState
	Value string
	Mine  bool
}

// Snapshot is a point-in-time view of the whole board from one
// player's perspective, row-major.
type Snapshot struct {
	Rows  int
	Cols  int
	Cells []CellView
}

// At returns the view of the cell at pos.
func (s Snapshot) At(pos Position) CellView {
	return s.Cells[pos.Row*s.Cols+pos.Col]
}

// Look returns the current board state from player's perspective. It
// takes only a brief read lock: a Look never waits behind a blocked
// flip.
func (b *Board) Look(player string) Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Snapshot{
		Rows:  b.rows,
		Cols:  b.cols,
		Cells: make([]CellView, 0, b.rows*b.cols),
	}
	for r := range b.cells {
		for c := range b.cells[r] {
			cl := &b.cells[r][c]
			switch {
			case cl.empty():
				s.Cells = append(s.Cells, CellView{State: Gone})
			case !cl.faceUp:
				s.Cells = append(s.Cells, CellView{State: Down})
			default:
				s.Cells = append(s.Cells, CellView{
					State: Up,
					Value: cl.value,
					Mine:  cl.controller == player,
				})
			}
		}
	}
	return s
}
