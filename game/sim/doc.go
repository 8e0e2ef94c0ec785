// Package sim provides an in-process 2048 game usable as a board adapter.
//
// The sim package implements:
//   - A seeded, deterministic 2048 board with standard spawn rules
//   - Score accumulation from merges
//   - Game-over detection when no direction changes the board
//   - An optional move failure rate for exercising stuck handling
//
// The Game satisfies the driver's BoardAdapter contract, so the same loop
// that drives a live browser surface can play an in-process game for the
// play mode, the selfplay benchmark, and tests.
//
// Spawn Rules:
//
// After every move that changes the board, one new tile appears in a
// uniformly random empty cell: 2 with probability 0.9, 4 with probability
// 0.1. A fresh game starts with two spawned tiles.
//
// Usage:
//
//	game := sim.New(sim.WithSeed(42))
//	drv := driver.New(mgr, driver.Config{})
//	if err := drv.Attach(game); err != nil {
//		log.Fatal(err)
//	}
package sim
