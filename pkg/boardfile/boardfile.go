// Package boardfile reads the board file format and renders board
// snapshots in the plain-text wire format served to players.
//
// A board file is a header line ROWSxCOLS followed by rows*cols card
// labels, one per line, row by row. A rendered board state is the same
// header followed by one line per cell: "none", "down", "up CARD" or
// "my CARD".
package boardfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/cardgrid/scramble/pkg/board"
)

var dimensionsPattern = regexp.MustCompile(`^(\d+)x(\d+)$`)

// Parse reads a board file and returns the card layout, row by row.
func Parse(r io.Reader) ([][]string, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read board file: %v", err)
		}
		return nil, fmt.Errorf("%w: empty board file", board.ErrInvalidLayout)
	}
	header := strings.TrimSpace(scanner.Text())
	m := dimensionsPattern.FindStringSubmatch(header)
	if m == nil {
		return nil, fmt.Errorf("%w: bad dimensions line %q", board.ErrInvalidLayout, header)
	}
	rows, _ := strconv.Atoi(m[1])
	cols, _ := strconv.Atoi(m[2])
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %dx%d", board.ErrInvalidLayout, rows, cols)
	}

	var cards []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !board.ValidCard(line) {
			return nil, fmt.Errorf("%w: bad card %q", board.ErrInvalidLayout, line)
		}
		cards = append(cards, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read board file: %v", err)
	}
	if len(cards) != rows*cols {
		return nil, fmt.Errorf("%w: expected %d cards, got %d", board.ErrInvalidLayout, rows*cols, len(cards))
	}

	layout := make([][]string, rows)
	for r := 0; r < rows; r++ {
		layout[r] = cards[r*cols : (r+1)*cols]
	}
	return layout, nil
}

// ParseFile reads and parses the board file at path.
func ParseFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open board file: %v", err)
	}
	defer f.Close()
	return Parse(f)
}

// Render serializes a board snapshot in the board state text format.
// The result always ends with a newline.
func Render(s board.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d\n", s.Rows, s.Cols)
	for _, view := range s.Cells {
		switch view.State {
		case board.Gone:
			sb.WriteString("none\n")
		case board.Down:
			sb.WriteString("down\n")
		case board.Up:
			if view.Mine {
				sb.WriteString("my " + view.Value + "\n")
			} else {
				sb.WriteString("up " + view.Value + "\n")
			}
		}
	}
	return sb.String()
}
