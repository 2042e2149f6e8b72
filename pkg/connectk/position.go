package connectk

import (
	"fmt"
	"strings"
)

// Position is a connect-K board of configurable width, height and win
// length. Columns fill bottom-up, Red moves first. Search code walks the
// game tree with MakeMove/UndoMove (make-unmake, no copying per ply);
// external callers go through ApplyMove, which validates.
type Position struct {
	width     int
	height    int
	winLength int

	// column-major cells, cells[col*height+row], row 0 is the bottom
	cells   []Piece
	heights []uint8
	history []Move

	termination Termination
}

// NewPosition creates an empty board. The geometry must satisfy
// width >= 1, height >= 1 and 1 <= winLength <= max(width, height).
func NewPosition(width, height, winLength int) (*Position, error) {
	switch {
	case width < 1:
		return nil, &ConfigurationError{width, height, winLength, "width must be at least 1"}
	case height < 1:
		return nil, &ConfigurationError{width, height, winLength, "height must be at least 1"}
	case winLength < 1:
		return nil, &ConfigurationError{width, height, winLength, "win length must be at least 1"}
	case winLength > max(width, height):
		return nil, &ConfigurationError{width, height, winLength,
			"win length exceeds both board dimensions, the game cannot be won"}
	}

	return &Position{
		width:     width,
		height:    height,
		winLength: winLength,
		cells:     make([]Piece, width*height),
		heights:   make([]uint8, width),
		history:   make([]Move, 0, width*height),
	}, nil
}

// FromMoves builds a mid-game position by replaying a move sequence
// from the empty board
func FromMoves(width, height, winLength int, moves []Move) (*Position, error) {
	p, err := NewPosition(width, height, winLength)
	if err != nil {
		return nil, err
	}
	for _, m := range moves {
		if err := p.ApplyMove(m); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Position) Width() int     { return p.width }
func (p *Position) Height() int    { return p.height }
func (p *Position) WinLength() int { return p.winLength }

// Ply is the number of tokens on the board
func (p *Position) Ply() int {
	return len(p.history)
}

// Side to move, alternates strictly with each applied move
func (p *Position) Turn() Piece {
	if len(p.history)%2 == 0 {
		return Red
	}
	return Yellow
}

// At returns the piece at (col, row), row 0 being the bottom
func (p *Position) At(col, row int) Piece {
	return p.cells[col*p.height+row]
}

func (p *Position) ColumnHeight(col int) int {
	return int(p.heights[col])
}

// CanPlay reports whether the column exists and has a free cell
func (p *Position) CanPlay(m Move) bool {
	return int(m) < p.width && int(p.heights[m]) < p.height
}

// GenerateMoves lists the playable columns left to right, or nothing when
// the game is over. The order is stable, search expansion relies on it.
func (p *Position) GenerateMoves() []Move {
	if p.IsTerminated() {
		return nil
	}

	moves := make([]Move, 0, p.width)
	for col := 0; col < p.width; col++ {
		if int(p.heights[col]) < p.height {
			moves = append(moves, Move(col))
		}
	}
	return moves
}

// ApplyMove validates and plays a move, surfacing InvalidMoveError for a
// full or out-of-range column, or when the game is already over
func (p *Position) ApplyMove(m Move) error {
	if p.IsTerminated() {
		return &InvalidMoveError{Column: m, Width: p.width, Reason: "the game is over"}
	}
	if !p.CanPlay(m) {
		return &InvalidMoveError{Column: m, Width: p.width}
	}
	p.MakeMove(m)
	return nil
}

// MakeMove drops the current player's token into column m. The move must
// be legal, internal callers only generate legal moves.
func (p *Position) MakeMove(m Move) {
	row := int(p.heights[m])
	p.cells[int(m)*p.height+row] = p.Turn()
	p.heights[m]++
	p.history = append(p.history, m)
	p.checkTermination(int(m), row)
}

// UndoMove takes back the most recent move
func (p *Position) UndoMove() {
	if len(p.history) == 0 {
		return
	}

	m := p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	p.heights[m]--
	p.cells[int(m)*p.height+int(p.heights[m])] = None
	p.termination = TerminationNone
}

// LastMove returns the coordinates of the last placed token
func (p *Position) LastMove() (col, row int, ok bool) {
	if len(p.history) == 0 {
		return 0, 0, false
	}
	col = int(p.history[len(p.history)-1])
	return col, int(p.heights[col]) - 1, true
}

// Moves returns a copy of the move history
func (p *Position) Moves() []Move {
	moves := make([]Move, len(p.history))
	copy(moves, p.history)
	return moves
}

func (p *Position) Clone() *Position {
	clone := &Position{
		width:       p.width,
		height:      p.height,
		winLength:   p.winLength,
		cells:       make([]Piece, len(p.cells)),
		heights:     make([]uint8, len(p.heights)),
		history:     make([]Move, len(p.history), cap(p.history)),
		termination: p.termination,
	}
	copy(clone.cells, p.cells)
	copy(clone.heights, p.heights)
	copy(clone.history, p.history)
	return clone
}

func (p *Position) String() string {
	builder := strings.Builder{}
	builder.WriteByte('\n')
	builder.WriteString(strings.Repeat("----", p.width) + "-\n")
	for row := p.height - 1; row >= 0; row-- {
		for col := 0; col < p.width; col++ {
			builder.WriteString("| " + p.At(col, row).String() + " ")
		}
		builder.WriteString("|\n")
	}
	builder.WriteString(strings.Repeat("----", p.width) + "-\n")
	for col := 0; col < p.width; col++ {
		builder.WriteString(fmt.Sprintf("%3d ", col))
	}
	builder.WriteByte('\n')
	return builder.String()
}
