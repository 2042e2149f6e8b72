package connectk

import "fmt"

// ConfigurationError reports invalid board geometry, fatal at setup
type ConfigurationError struct {
	Width     int
	Height    int
	WinLength int
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("connectk: invalid configuration %dx%d win=%d: %s",
		e.Width, e.Height, e.WinLength, e.Reason)
}

// InvalidMoveError reports a move into a full or out-of-range column,
// always recoverable by the caller choosing another move
type InvalidMoveError struct {
	Column Move
	Width  int
	Reason string
}

func (e *InvalidMoveError) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("connectk: illegal move %d: %s", e.Column, e.Reason)
	case int(e.Column) >= e.Width:
		return fmt.Sprintf("connectk: column %d out of range [0, %d)", e.Column, e.Width)
	default:
		return fmt.Sprintf("connectk: column %d is full", e.Column)
	}
}
