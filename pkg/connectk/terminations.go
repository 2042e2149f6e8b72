package connectk

type Termination int

const (
	TerminationNone      Termination = 0
	TerminationRedWon    Termination = 1
	TerminationYellowWon Termination = 2
	TerminationDraw      Termination = 4
)

// Get the termination reason, valid after the last MakeMove
func (p *Position) Termination() Termination {
	return p.termination
}

func (p *Position) IsTerminated() bool {
	return p.termination != TerminationNone
}

func (p *Position) IsDraw() bool {
	return p.termination == TerminationDraw
}

// Winner returns the winning player, or None for an ongoing game or a draw
func (p *Position) Winner() Piece {
	switch p.termination {
	case TerminationRedWon:
		return Red
	case TerminationYellowWon:
		return Yellow
	}
	return None
}

// Only the four lines through the last placed token can complete a win, and
// only cells within winLength-1 of it matter, so the check after each move
// is O(winLength) instead of a full board scan. That bound is what keeps
// random playouts cheap - the check runs once per rollout ply.
func (p *Position) checkTermination(col, row int) {
	piece := p.At(col, row)

	directions := [4][2]int{
		{1, 0},  // horizontal
		{0, 1},  // vertical
		{1, 1},  // diagonal /
		{1, -1}, // diagonal \
	}

	for _, d := range directions {
		run := 1 +
			p.countRun(col, row, d[0], d[1], piece) +
			p.countRun(col, row, -d[0], -d[1], piece)

		if run >= p.winLength {
			if piece == Red {
				p.termination = TerminationRedWon
			} else {
				p.termination = TerminationYellowWon
			}
			return
		}
	}

	if len(p.history) == p.width*p.height {
		p.termination = TerminationDraw
	}
}

// Length of the run of 'piece' starting next to (col, row) in direction
// (dcol, drow), scanning at most winLength-1 cells outward
func (p *Position) countRun(col, row, dcol, drow int, piece Piece) int {
	run := 0
	for c, r := col+dcol, row+drow; run < p.winLength-1; c, r = c+dcol, r+drow {
		if c < 0 || c >= p.width || r < 0 || r >= p.height || p.At(c, r) != piece {
			break
		}
		run++
	}
	return run
}
