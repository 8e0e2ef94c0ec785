// Package runs keeps the history of finished bot runs.
//
// The runs package implements:
//   - Thread-safe run record storage and retrieval
//   - Optional JSON file persistence across restarts
//   - Pruning so history stays bounded
//   - A driver-event recorder that captures each run's outcome
//
// Core Types:
//
// Record is the immutable outcome of one run: when it ran, why it ended,
// and the final counters. Manager stores records. Recorder subscribes to
// the driver's event stream and turns started/stopped pairs into records.
//
// Usage:
//
//	store := runs.NewManager(runs.WithPersistence(persistence))
//	if err := store.LoadPersisted(); err != nil {
//		log.Fatal(err)
//	}
//
//	recorder := runs.NewRecorder(store, runs.Source{
//		Stats:   drv.GetStats,
//		Score:   game.Score,
//		MaxTile: game.MaxTile,
//	})
//	drv.Subscribe(recorder.Handle)
//
// Concurrency:
//
// The manager is safe for concurrent use. The recorder relies on the
// driver's ordered event delivery: started and stopped arrive in sequence,
// so each record is opened and finalized exactly once.
package runs
