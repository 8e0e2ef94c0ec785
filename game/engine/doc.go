// Package engine defines the move-planning contract for the 2048 autopilot
// and provides the built-in fallback planner.
//
// The engine package implements:
//   - The Planner interface every planning engine satisfies
//   - Strategy configuration with clamped depth and probability
//   - Slide/merge simulation for all four directions
//   - The positional heuristic engine used when no native engine is available
//
// Core Types:
//
// Planner is the contract the manager drives: rank the four directions for a
// position, best first. Strategy carries the search configuration shared by
// all engines; partial changes arrive as a StrategyUpdate and merge over the
// retained value. BoardInfo is a best-effort position evaluation only the
// native engine produces.
//
// Usage:
//
//	planner := engine.NewHeuristicEngine()
//	if err := planner.Configure(engine.DefaultStrategy()); err != nil {
//		log.Fatal(err)
//	}
//	ranked, err := planner.RankMoves(ctx, exps)
//
// Move Simulation:
//
// Apply implements the standard sliding rules: each affected line compresses
// by dropping empties, adjacent equal tiles merge pairwise left-to-right
// (a merged tile cannot merge again in the same pass), and the line pads
// back to length four. Right runs the pass on mirrored rows; Up and Down run
// it on the transposed grid. Legal and AnyLegal derive move legality from
// whether Apply changes anything.
package engine
