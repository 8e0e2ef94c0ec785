// Package manager owns the two planning engines and decides which one is
// active.
//
// The manager package implements:
//   - The native engine lifecycle: idle, loading, ready, fallback
//   - Lazy, deduplicated loading of the native engine
//   - Permanent demotion to the built-in engine on any native fault
//   - Strategy distribution to whichever engines exist
//   - A read-only status snapshot for observability
//
// Lifecycle:
//
// A manager constructed with a native loader starts idle; without one (or
// with the native engine disabled) it starts in fallback. The first
// Initialize call, or the first RankMoves while idle, moves it to loading
// and runs the single load attempt; concurrent callers during loading wait
// for that same attempt instead of starting another. Success activates the
// native engine (ready); failure records the error and activates the
// built-in engine (fallback). A native engine that faults after loading is
// demoted to fallback permanently; the manager never retries it.
//
// The one guarantee callers build on: RankMoves always returns a complete
// ordering of the four directions, whatever has failed underneath. The
// execution loop is never exposed to "no ranking available".
//
// Usage:
//
//	m := manager.New(manager.Config{Loader: loader}, manager.WithLogger(logger))
//	ranked := m.RankMoves(ctx, cells)
//	status := m.GetStatus()
package manager
