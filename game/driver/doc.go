// Package driver provides the execution loop that plays the game through a
// board adapter.
//
// The driver package implements:
//   - A ticking loop that plans, moves, and confirms on a fixed cadence
//   - Rank-order move attempts with first-confirmed-change acceptance
//   - Stuck detection with forced random recovery moves
//   - Single-cycle stepping independent of the running loop
//   - Synchronous event delivery to registered observers
//
// Core Types:
//
// Driver owns the loop goroutine and all counters. BoardAdapter is the
// contract a board surface (simulator, browser bridge) must satisfy.
// MovePlanner supplies ranked directions; *manager.Manager implements it.
//
// Tick Protocol:
//
// Each cycle reads the board, hashes it, asks the planner for a ranked move
// list, then tries each direction in order: send the move, wait a bounded
// confirmation delay, re-read, and compare hashes. The first direction that
// changes the board wins and later candidates are not tried. A cycle where
// nothing changes feeds a stuck counter; at the threshold the driver issues
// exactly one uniformly random direction from the ranked list and resets the
// counter. Faults never end the loop; they only stretch the delay before the
// next cycle. Only Stop, Destroy, a confirmed game over, or an exhausted
// move budget end a run.
//
// Concurrency:
//
// One goroutine owns the loop. Control methods are safe from any goroutine
// and take effect at tick boundaries; an in-flight cycle always completes.
// Event handlers run synchronously in the emitting goroutine and must return
// promptly.
//
// Usage:
//
//	mgr := manager.New(manager.Config{Loader: loader})
//	drv := driver.New(mgr, driver.Config{StuckThreshold: 5})
//	if err := drv.Attach(adapter); err != nil {
//		log.Fatal(err)
//	}
//	cancel := drv.Subscribe(func(ev driver.Event) {
//		fmt.Println(ev.Type, ev.Message)
//	})
//	defer cancel()
//
//	if err := drv.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer drv.Destroy()
package driver
