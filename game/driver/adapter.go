package driver

import (
	"errors"

	"github.com/wricardo/autopilot2048/game/board"
)

var (
	// ErrNoAdapter means Start or Step was called before a board adapter
	// was attached.
	ErrNoAdapter = errors.New("no board adapter attached")
	// ErrDestroyed means the driver was destroyed and cannot be reused.
	ErrDestroyed = errors.New("driver destroyed")
)

// BoardAdapter is the board surface the loop drives. Implementations wrap
// whatever actually renders the game (an in-process simulator, a browser
// bridge); the loop only ever talks to the board through this contract.
//
// Calls are assumed synchronous and fast. A SendMove that the surface
// silently ignores is fine: the loop detects the outcome by re-reading the
// board, never by trusting the send.
type BoardAdapter interface {
	// CanAttach reports whether the underlying surface is present.
	CanAttach() bool
	// ReadBoard returns the current grid as raw tile values, row-major.
	// An error or nil grid marks the surface as momentarily unreadable.
	ReadBoard() ([][]int, error)
	// SendMove issues one slide to the surface.
	SendMove(dir board.Direction) error
	// Score returns the surface's score when it exposes one.
	Score() (int, bool)
	// GameOver reports whether the surface considers the game finished.
	GameOver() bool
}
