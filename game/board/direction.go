package board

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Direction identifies one of the four slide directions. The ordinals are
// fixed: Up=0, Right=1, Down=2, Left=3. Any other value is invalid.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// Directions lists the four canonical directions in ordinal order.
func Directions() []Direction {
	return []Direction{Up, Right, Down, Left}
}

// DefaultOrder returns the degraded move ordering used when no engine
// produced a ranking: {Left, Down, Right, Up}.
func DefaultOrder() []Direction {
	return []Direction{Left, Down, Right, Up}
}

// Valid reports whether d is one of the four canonical directions.
func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection maps a direction name or ordinal string to its value.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "0":
		return Up, nil
	case "right", "1":
		return Right, nil
	case "down", "2":
		return Down, nil
	case "left", "3":
		return Left, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// MarshalJSON encodes the direction as its lowercase name.
func (d Direction) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid direction %d", int(d))
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts either a direction name or a 0..3 ordinal.
func (d *Direction) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, perr := ParseDirection(name)
		if perr != nil {
			return perr
		}
		*d = parsed
		return nil
	}
	var ord int
	if err := json.Unmarshal(data, &ord); err != nil {
		return fmt.Errorf("direction must be a name or ordinal: %w", err)
	}
	if v := Direction(ord); v.Valid() {
		*d = v
		return nil
	}
	return fmt.Errorf("direction ordinal %d out of range", ord)
}

// UniqueDirections drops invalid and duplicate entries while preserving
// first-seen order, then appends whichever canonical directions are missing.
// The result is always a permutation of all four directions, so callers get
// a complete move ordering even from a partial or malformed input list.
func UniqueDirections(dirs []Direction) []Direction {
	out := make([]Direction, 0, 4)
	var seen [4]bool
	for _, d := range dirs {
		if !d.Valid() || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	for _, d := range Directions() {
		if !seen[d] {
			out = append(out, d)
		}
	}
	return out
}
