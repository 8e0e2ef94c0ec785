package engine

import (
	"context"
	"sync"

	"github.com/wricardo/autopilot2048/game/board"
)

// HeuristicEngine is the built-in fallback planner. It orders the four
// directions by which quadrant holds the highest tile, biasing toward the
// two edges nearest that tile, and keeps only moves that actually change
// the board. It needs no setup, has no failure modes, and serves as the
// system's permanent safety net when the native engine is unavailable.
type HeuristicEngine struct {
	mu       sync.Mutex
	strategy Strategy
}

// NewHeuristicEngine returns a ready-to-use fallback planner.
func NewHeuristicEngine() *HeuristicEngine {
	return &HeuristicEngine{strategy: DefaultStrategy()}
}

// Name identifies the engine in status reports.
func (e *HeuristicEngine) Name() string {
	return "builtin"
}

// Configure stores the strategy. The heuristic has no tunable search, so
// the values only surface in status reporting.
func (e *HeuristicEngine) Configure(s Strategy) error {
	e.mu.Lock()
	e.strategy = s.Clamp()
	e.mu.Unlock()
	return nil
}

// Strategy returns the engine's current configuration.
func (e *HeuristicEngine) Strategy() Strategy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strategy
}

// RankMoves orders the directions by quadrant preference, filtered to moves
// that change the board. When nothing changes the board it returns the full
// preference order unfiltered; the caller must treat that as "no known-good
// move" and may pick randomly.
func (e *HeuristicEngine) RankMoves(_ context.Context, exps board.Exponents) ([]board.Direction, error) {
	pref := quadrantOrder(exps)
	ranked := make([]board.Direction, 0, len(pref))
	for _, d := range pref {
		if Legal(exps, d) {
			ranked = append(ranked, d)
		}
	}
	if len(ranked) == 0 {
		return pref, nil
	}
	return ranked, nil
}

// quadrantOrder picks a direction preference from the position of the
// highest tile: keep the big tile pinned to its nearest corner by moving
// toward its two nearest edges first. The first occurrence wins a tie.
func quadrantOrder(exps board.Exponents) []board.Direction {
	best, bestIdx := -1, 0
	for i, k := range exps {
		if k > best {
			best, bestIdx = k, i
		}
	}
	row, col := bestIdx/board.Size, bestIdx%board.Size
	top := row < board.Size/2
	left := col < board.Size/2

	switch {
	case top && left:
		return []board.Direction{board.Up, board.Left, board.Right, board.Down}
	case top && !left:
		return []board.Direction{board.Up, board.Right, board.Left, board.Down}
	case !top && left:
		return []board.Direction{board.Down, board.Left, board.Right, board.Up}
	default:
		return []board.Direction{board.Down, board.Right, board.Left, board.Up}
	}
}
