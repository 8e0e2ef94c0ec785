package engine

import (
	"context"

	"github.com/wricardo/autopilot2048/game/board"
)

const (
	// MinDepth and MaxDepth bound the search depth any engine accepts.
	MinDepth = 1
	MaxDepth = 8
	// MinProbability and MaxProbability bound the branch probability below
	// which a search engine stops expanding chance nodes.
	MinProbability = 0.0001
	MaxProbability = 0.2

	// Defaults applied at construction and wherever a field is left empty.
	DefaultKind        = "expectimax"
	DefaultHeuristic   = "corner"
	DefaultDepth       = 3
	DefaultProbability = 0.0025
)

// Strategy configures how a planning engine searches for moves. Values are
// kept in range at every boundary: construction, merge, and configure all
// run Clamp.
type Strategy struct {
	Kind        string  `json:"kind"`
	Heuristic   string  `json:"heuristic"`
	Depth       int     `json:"depth"`
	Probability float64 `json:"probability"`
}

// DefaultStrategy returns the configuration engines start with.
func DefaultStrategy() Strategy {
	return Strategy{
		Kind:        DefaultKind,
		Heuristic:   DefaultHeuristic,
		Depth:       DefaultDepth,
		Probability: DefaultProbability,
	}
}

// Clamp forces depth and probability into their allowed ranges and fills
// empty names from the defaults.
func (s Strategy) Clamp() Strategy {
	if s.Kind == "" {
		s.Kind = DefaultKind
	}
	if s.Heuristic == "" {
		s.Heuristic = DefaultHeuristic
	}
	if s.Depth < MinDepth {
		s.Depth = MinDepth
	}
	if s.Depth > MaxDepth {
		s.Depth = MaxDepth
	}
	if s.Probability < MinProbability {
		s.Probability = MinProbability
	}
	if s.Probability > MaxProbability {
		s.Probability = MaxProbability
	}
	return s
}

// StrategyUpdate carries a partial strategy change. Nil fields keep the
// current value.
type StrategyUpdate struct {
	Kind        *string  `json:"kind,omitempty"`
	Heuristic   *string  `json:"heuristic,omitempty"`
	Depth       *int     `json:"depth,omitempty"`
	Probability *float64 `json:"probability,omitempty"`
}

// Merge applies the update on top of s and re-clamps the result.
func (s Strategy) Merge(u StrategyUpdate) Strategy {
	if u.Kind != nil {
		s.Kind = *u.Kind
	}
	if u.Heuristic != nil {
		s.Heuristic = *u.Heuristic
	}
	if u.Depth != nil {
		s.Depth = *u.Depth
	}
	if u.Probability != nil {
		s.Probability = *u.Probability
	}
	return s.Clamp()
}

// BoardInfo is a best-effort evaluation of a position, produced only by the
// native engine.
type BoardInfo struct {
	Score    float64 `json:"score"`
	MaxTile  int     `json:"max_tile"`
	GameOver bool    `json:"game_over"`
}

// Planner is the contract every planning engine satisfies: given a position,
// return the four slide directions ordered best first. Implementations must
// tolerate repeated Configure calls and must not retain the exponent array
// beyond the call.
type Planner interface {
	// Name identifies the engine in status reports.
	Name() string
	// Configure replaces the engine's strategy.
	Configure(Strategy) error
	// RankMoves orders the directions for the position, best first. The
	// result may be partial or contain repeats; callers normalize it with
	// board.UniqueDirections.
	RankMoves(ctx context.Context, exps board.Exponents) ([]board.Direction, error)
}
