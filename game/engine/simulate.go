package engine

import "github.com/wricardo/autopilot2048/game/board"

// Apply slides and merges the board in the given direction and reports
// whether anything moved. Invalid directions leave the board unchanged.
func Apply(exps board.Exponents, d board.Direction) (board.Exponents, bool) {
	out, _, changed := ApplyScored(exps, d)
	return out, changed
}

// ApplyScored is Apply plus the score gained, which is the sum of the tile
// values created by merges (standard 2048 scoring).
func ApplyScored(exps board.Exponents, d board.Direction) (board.Exponents, int, bool) {
	work := exps
	switch d {
	case board.Left:
		// Rows slide as-is.
	case board.Right:
		work = reverseRows(work)
	case board.Up:
		work = transpose(work)
	case board.Down:
		work = reverseRows(transpose(work))
	default:
		return exps, 0, false
	}

	score := 0
	for r := 0; r < board.Size; r++ {
		var line [board.Size]int
		copy(line[:], work[r*board.Size:(r+1)*board.Size])
		slid, gained := slideLine(line)
		score += gained
		copy(work[r*board.Size:(r+1)*board.Size], slid[:])
	}

	switch d {
	case board.Right:
		work = reverseRows(work)
	case board.Up:
		work = transpose(work)
	case board.Down:
		work = transpose(reverseRows(work))
	}
	return work, score, work != exps
}

// Legal reports whether the move would change the board.
func Legal(exps board.Exponents, d board.Direction) bool {
	_, changed := Apply(exps, d)
	return changed
}

// AnyLegal reports whether any direction changes the board. A board with no
// legal move is a finished game.
func AnyLegal(exps board.Exponents) bool {
	for _, d := range board.Directions() {
		if Legal(exps, d) {
			return true
		}
	}
	return false
}

// LegalMoves returns the directions that would change the board, in
// canonical order.
func LegalMoves(exps board.Exponents) []board.Direction {
	moves := make([]board.Direction, 0, 4)
	for _, d := range board.Directions() {
		if Legal(exps, d) {
			moves = append(moves, d)
		}
	}
	return moves
}

// slideLine compresses one line leftward: empties drop out, adjacent equal
// exponents merge pairwise left-to-right with a merged tile never merging
// again in the same pass, and the result pads back to length four. Returns
// the score gained by merges.
func slideLine(line [board.Size]int) ([board.Size]int, int) {
	var packed [board.Size]int
	n := 0
	for _, v := range line {
		if v != 0 {
			packed[n] = v
			n++
		}
	}

	var out [board.Size]int
	score := 0
	w := 0
	for i := 0; i < n; i++ {
		if i+1 < n && packed[i] == packed[i+1] {
			out[w] = packed[i] + 1
			score += board.Tile(packed[i] + 1)
			i++
		} else {
			out[w] = packed[i]
		}
		w++
	}
	return out, score
}

// transpose mirrors the grid across its main diagonal, turning columns into
// rows so the leftward row pass can serve Up and Down.
func transpose(e board.Exponents) board.Exponents {
	var out board.Exponents
	for r := 0; r < board.Size; r++ {
		for c := 0; c < board.Size; c++ {
			out[c*board.Size+r] = e[r*board.Size+c]
		}
	}
	return out
}

// reverseRows mirrors each row horizontally.
func reverseRows(e board.Exponents) board.Exponents {
	var out board.Exponents
	for r := 0; r < board.Size; r++ {
		for c := 0; c < board.Size; c++ {
			out[r*board.Size+(board.Size-1-c)] = e[r*board.Size+c]
		}
	}
	return out
}
