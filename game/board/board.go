package board

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// Size is the board edge length. Every board is Size x Size.
	Size = 4
	// CellCount is the total number of cells on a board.
	CellCount = Size * Size
	// MaxExponent is the largest exponent a single cell can hold.
	MaxExponent = 15
	// MaxTile is the largest representable tile value (2^MaxExponent).
	MaxTile = 1 << MaxExponent
)

// ErrInvalidBoard reports a grid that is not exactly 4 rows of 4 cells.
var ErrInvalidBoard = errors.New("invalid board: must be 4x4")

// Exponents holds one tile exponent per cell in row-major order.
// A value of 0 means the cell is empty; a value k means the tile 2^k.
type Exponents [CellCount]int

// ToExponents converts a grid into its exponent array. The grid must be
// exactly 4x4 or ErrInvalidBoard is returned. Whether the grid holds raw
// tile values or is already exponent-encoded is detected across the whole
// grid, never per cell. Raw values above MaxTile are capped before
// conversion, and values that are not exact powers of two convert to the
// nearest exponent rather than failing the read.
func ToExponents(cells [][]int) (Exponents, error) {
	var exps Exponents
	if !validShape(cells) {
		return exps, fmt.Errorf("%w: got %s", ErrInvalidBoard, shapeOf(cells))
	}
	encoded := exponentEncoded(cells)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			v := cells[r][c]
			i := r*Size + c
			if encoded {
				exps[i] = clampExponent(v)
				continue
			}
			exps[i] = rawToExponent(v)
		}
	}
	return exps, nil
}

// ToBitboard converts a grid straight into its packed form.
func ToBitboard(cells [][]int) (uint64, error) {
	exps, err := ToExponents(cells)
	if err != nil {
		return 0, err
	}
	return exps.Pack(), nil
}

// FromExponents expands an exponent array back into a raw tile grid.
// Out-of-range exponents clamp to the maximum representable tile.
func FromExponents(exps Exponents) [][]int {
	cells := make([][]int, Size)
	for r := 0; r < Size; r++ {
		cells[r] = make([]int, Size)
		for c := 0; c < Size; c++ {
			cells[r][c] = Tile(exps[r*Size+c])
		}
	}
	return cells
}

// FromBitboard expands a packed board back into a raw tile grid.
func FromBitboard(bb uint64) [][]int {
	return FromExponents(Unpack(bb))
}

// Pack composes the exponents into a single uint64, 4 bits per cell,
// cell i occupying bits 4i..4i+3.
func (e Exponents) Pack() uint64 {
	var bb uint64
	for i, k := range e {
		bb |= uint64(clampExponent(k)) << (4 * i)
	}
	return bb
}

// Unpack splits a packed board back into its exponent array.
func Unpack(bb uint64) Exponents {
	var exps Exponents
	for i := range exps {
		exps[i] = int((bb >> (4 * i)) & 0xF)
	}
	return exps
}

// Tile returns the raw tile value for an exponent: 0 for empty, 2^k
// otherwise, clamped to MaxTile.
func Tile(k int) int {
	if k <= 0 {
		return 0
	}
	if k > MaxExponent {
		k = MaxExponent
	}
	return 1 << k
}

// Max returns the largest exponent on the board.
func (e Exponents) Max() int {
	max := 0
	for _, k := range e {
		if k > max {
			max = k
		}
	}
	return max
}

// Empty reports whether every cell is empty.
func (e Exponents) Empty() bool {
	for _, k := range e {
		if k != 0 {
			return false
		}
	}
	return true
}

// Grid is a convenience alias for FromExponents.
func (e Exponents) Grid() [][]int {
	return FromExponents(e)
}

// Hash returns an order-preserving serialization of a grid, used to detect
// whether a board changed between two reads. It tolerates malformed grids
// (nil or ragged rows) so it is safe to call on anything an adapter returns.
func Hash(cells [][]int) string {
	var b strings.Builder
	for _, row := range cells {
		for _, v := range row {
			b.WriteString(strconv.Itoa(v))
			b.WriteByte(',')
		}
		b.WriteByte('|')
	}
	return b.String()
}

// validShape reports whether cells is exactly Size rows of Size values.
func validShape(cells [][]int) bool {
	if len(cells) != Size {
		return false
	}
	for _, row := range cells {
		if len(row) != Size {
			return false
		}
	}
	return true
}

// shapeOf describes a grid's dimensions for error messages.
func shapeOf(cells [][]int) string {
	if cells == nil {
		return "nil"
	}
	cols := "ragged"
	if len(cells) > 0 {
		width := len(cells[0])
		uniform := true
		for _, row := range cells {
			if len(row) != width {
				uniform = false
				break
			}
		}
		if uniform {
			cols = strconv.Itoa(width)
		}
	} else {
		cols = "0"
	}
	return fmt.Sprintf("%dx%s", len(cells), cols)
}

// exponentEncoded reports whether the grid already stores exponents. Raw
// boards only ever contain powers of two, so a single nonzero cell that is
// not a power of two means the whole grid is exponent-encoded.
func exponentEncoded(cells [][]int) bool {
	for _, row := range cells {
		for _, v := range row {
			if v > 0 && !isPowerOfTwo(v) {
				return true
			}
		}
	}
	return false
}

func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// rawToExponent converts one raw tile value to its exponent. Values are
// capped at MaxTile first; non-power-of-two values round to the nearest
// exponent so a corrupted read degrades instead of failing.
func rawToExponent(v int) int {
	if v <= 0 {
		return 0
	}
	if v > MaxTile {
		v = MaxTile
	}
	exp := int(math.Round(math.Log2(float64(v))))
	return clampExponent(exp)
}

// clampExponent forces a value into the representable exponent range.
func clampExponent(k int) int {
	if k < 0 {
		return 0
	}
	if k > MaxExponent {
		return MaxExponent
	}
	return k
}
