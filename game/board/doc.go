// Package board provides the canonical encodings of a 4x4 sliding-tile board.
//
// The board package implements:
//   - Conversion between raw tile grids and exponent arrays
//   - Packing exponent arrays into a 64-bit bitboard
//   - Direction values, parsing, and list normalization
//   - Order-preserving board hashing for change detection
//
// Encodings:
//
// A grid is a 4x4 matrix of non-negative integers as read from a board
// surface. Cells hold either raw tile values (powers of two: 2, 4, ...,
// 32768) or exponents (tile 2^k stored as k, 0 meaning empty). Conversion
// auto-detects which form a grid is in by scanning the whole grid: raw
// boards only ever contain powers of two, so any nonzero cell that is not
// a power of two marks the grid as exponent-encoded.
//
// An Exponents value stores one exponent per cell in row-major order and
// packs into a uint64 bitboard at 4 bits per cell, cell i occupying bits
// 4i..4i+3. Packing round-trips losslessly for any valid exponent array.
//
// Directions:
//
// The four slide directions are Up, Right, Down and Left with fixed
// ordinals 0..3. UniqueDirections normalizes any direction list into a
// permutation of all four, which callers rely on for complete fallback
// move orderings.
//
// Usage:
//
//	exps, err := board.ToExponents(cells)
//	if err != nil {
//		// not a 4x4 grid
//	}
//	bb := exps.Pack()
//	same := board.FromBitboard(bb)
//
// All functions are deterministic and side-effect free.
package board
