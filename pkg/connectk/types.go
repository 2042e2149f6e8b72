package connectk

type Piece uint8

const (
	None   Piece = 0
	Red    Piece = 1
	Yellow Piece = 2
)

func (p Piece) String() string {
	switch p {
	case Red:
		return "X"
	case Yellow:
		return "O"
	}
	return " "
}

func (p Piece) Opponent() Piece {
	switch p {
	case Red:
		return Yellow
	case Yellow:
		return Red
	}
	return None
}

// Move is a column index, tokens drop to the lowest free cell
type Move uint8

const MoveIllegal Move = 255
